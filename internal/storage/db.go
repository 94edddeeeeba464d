// Package storage persists the watchlist and the wipe-on-boot flag in
// SQLite through gorm.
package storage

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/watchlist"
)

type DB struct {
	Conn   *gorm.DB
	logger *zap.Logger
}

// Open connects with dialector and migrates the schema.
func Open(dialector gorm.Dialector) (*DB, error) {
	logger := logging.GetLoggerWith(logging.NameStorage)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("Connected to database", zap.String("dialector", dialector.Name()))

	if err := conn.AutoMigrate(&Filter{}, &Preference{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Debug("Database migration completed")

	return &DB{Conn: conn, logger: logger}, nil
}

func UseSqliteDialector(path string) gorm.Dialector {
	if path == "" {
		path = "ble-watch.db"
	}
	return sqlite.Open(path)
}

// UseMemorySqliteDialector opens a named shared in-memory database so
// separate tests do not see each other's rows.
func UseMemorySqliteDialector(name string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

func (db *DB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveWatchlist replaces the stored list with entries in one transaction.
func (db *DB) SaveWatchlist(entries []watchlist.Entry) error {
	return db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Filter{}).Error; err != nil {
			return fmt.Errorf("delete filters: %w", err)
		}

		if len(entries) > 0 {
			rows := make([]Filter, len(entries))
			for i, e := range entries {
				rows[i] = Filter{Position: i, Identifier: e.Pattern, IsExact: e.Exact, Label: e.Label}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert filters: %w", err)
			}
		}

		return setPreference(tx, PrefFilterCount, strconv.Itoa(len(entries)))
	})
}

// LoadWatchlist returns the stored list. saved is false when no list was
// ever written.
func (db *DB) LoadWatchlist() (entries []watchlist.Entry, saved bool, err error) {
	if _, found, err := getPreference(db.Conn, PrefFilterCount); err != nil || !found {
		return nil, false, err
	}

	var rows []Filter
	if err := db.Conn.Order("position").Find(&rows).Error; err != nil {
		return nil, true, fmt.Errorf("load filters: %w", err)
	}

	for _, r := range rows {
		if r.Identifier == "" {
			continue
		}
		entries = append(entries, watchlist.Entry{Pattern: r.Identifier, Exact: r.IsExact, Label: r.Label})
	}
	return entries, true, nil
}

func (db *DB) SetFactoryResetPending(pending bool) error {
	return setPreference(db.Conn, PrefFactoryResetPending, strconv.FormatBool(pending))
}

func (db *DB) FactoryResetPending() (bool, error) {
	v, found, err := getPreference(db.Conn, PrefFactoryResetPending)
	if err != nil || !found {
		return false, err
	}
	pending, _ := strconv.ParseBool(v)
	return pending, nil
}

// Wipe removes every persisted row, the wipe flag included.
func (db *DB) Wipe() error {
	return db.Conn.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&Filter{}).Error; err != nil {
			return err
		}
		return all.Delete(&Preference{}).Error
	})
}

func setPreference(tx *gorm.DB, key, value string) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Preference{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func getPreference(tx *gorm.DB, key string) (string, bool, error) {
	var p Preference
	err := tx.Where(&Preference{Key: key}).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return p.Value, true, nil
}
