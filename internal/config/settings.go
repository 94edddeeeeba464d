package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvKeyAdapter        = "BLEWATCH_ADAPTER"
	EnvKeyDemo           = "BLEWATCH_DEMO"
	EnvKeyHeadless       = "BLEWATCH_HEADLESS"
	EnvKeyListenAddr     = "BLEWATCH_LISTEN_ADDR"
	EnvKeyDBPath         = "BLEWATCH_DB_PATH"
	EnvKeyLogDir         = "BLEWATCH_LOG_DIR"
	EnvKeyLogLevel       = "BLEWATCH_LOG_LEVEL"
	EnvKeyConfigTimeout  = "BLEWATCH_CONFIG_TIMEOUT"
	EnvKeyPortalRate     = "BLEWATCH_PORTAL_RATE"
	EnvKeyPortalBurst    = "BLEWATCH_PORTAL_BURST"
	EnvKeyNATSURL        = "BLEWATCH_NATS_URL"
	EnvKeyNATSSubject    = "BLEWATCH_NATS_SUBJECT"
	EnvKeyTelegramToken  = "BLEWATCH_TELEGRAM_TOKEN"
	EnvKeyTelegramChatID = "BLEWATCH_TELEGRAM_CHAT_ID"
)

// Settings holds the runtime configuration. Values come from the
// environment (optionally a .env file) and can be overridden by flags.
type Settings struct {
	Adapter    string
	Demo       bool
	Headless   bool
	ListenAddr string
	DBPath     string
	LogDir     string
	LogLevel   string

	ConfigTimeout time.Duration

	PortalRate  float64 // requests per second accepted by the portal
	PortalBurst int

	NATSURL     string
	NATSSubject string

	TelegramToken  string
	TelegramChatID int64
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Adapter:       "hci0",
		ListenAddr:    ":8080",
		DBPath:        "ble-watch.db",
		LogDir:        "logs",
		LogLevel:      "info",
		ConfigTimeout: ConfigTimeout,
		PortalRate:    5,
		PortalBurst:   10,
		NATSSubject:   "blewatch.alerts",
	}
}

// Load reads .env (if present) and the BLEWATCH_* variables on top of the
// defaults. Malformed values keep the default.
func Load() Settings {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv applies variables from lookup on top of the defaults.
func FromEnv(lookup func(string) (string, bool)) Settings {
	s := Defaults()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}

	str(EnvKeyAdapter, &s.Adapter)
	boolean(EnvKeyDemo, &s.Demo)
	boolean(EnvKeyHeadless, &s.Headless)
	str(EnvKeyListenAddr, &s.ListenAddr)
	str(EnvKeyDBPath, &s.DBPath)
	str(EnvKeyLogDir, &s.LogDir)
	str(EnvKeyLogLevel, &s.LogLevel)
	str(EnvKeyNATSURL, &s.NATSURL)
	str(EnvKeyNATSSubject, &s.NATSSubject)
	str(EnvKeyTelegramToken, &s.TelegramToken)

	if v, ok := lookup(EnvKeyConfigTimeout); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			s.ConfigTimeout = d
		}
	}
	if v, ok := lookup(EnvKeyPortalRate); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			s.PortalRate = f
		}
	}
	if v, ok := lookup(EnvKeyPortalBurst); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			s.PortalBurst = n
		}
	}
	if v, ok := lookup(EnvKeyTelegramChatID); ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			s.TelegramChatID = id
		}
	}

	return s
}
