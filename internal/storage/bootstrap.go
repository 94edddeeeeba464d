package storage

import (
	"fmt"

	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/watchlist"
)

// BootResult describes how the initial watchlist was obtained.
type BootResult struct {
	Entries []watchlist.Entry
	Wiped   bool
	Seeded  bool
}

// Bootstrap applies the boot policy. A pending factory reset wipes all
// persisted data and starts empty. Otherwise the saved list is loaded, and
// the built-in defaults are used when nothing was ever saved.
func (db *DB) Bootstrap() (BootResult, error) {
	pending, err := db.FactoryResetPending()
	if err != nil {
		return BootResult{}, err
	}

	if pending {
		db.logger.Warn("Factory reset flag detected - clearing all data")
		if err := db.Wipe(); err != nil {
			return BootResult{}, fmt.Errorf("factory reset: %w", err)
		}
		db.logger.Info("Factory reset complete - starting with clean state")
		return BootResult{Wiped: true}, nil
	}

	entries, saved, err := db.LoadWatchlist()
	if err != nil {
		return BootResult{}, err
	}
	if !saved {
		entries = watchlist.Defaults()
		db.logger.Info("No saved filters - using defaults", zap.Int("entries", len(entries)))
		return BootResult{Entries: entries, Seeded: true}, nil
	}

	db.logger.Info("Loaded saved filters", zap.Int("entries", len(entries)))
	return BootResult{Entries: entries}, nil
}
