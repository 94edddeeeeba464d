package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ble-watch.klederson.com/internal/app"
	"ble-watch.klederson.com/internal/bluetooth"
	"ble-watch.klederson.com/internal/config"
	"ble-watch.klederson.com/internal/detector"
	"ble-watch.klederson.com/internal/feedback"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/portal"
	"ble-watch.klederson.com/internal/storage"
	"ble-watch.klederson.com/internal/watchlist"
)

var settings config.Settings

func main() {
	settings = config.Load()

	rootCmd := &cobra.Command{
		Use:   "ble-watch",
		Short: "BLE Watch - watchlist proximity detector for Bluetooth Low Energy devices",
		Long: `BLE Watch listens for Bluetooth Low Energy advertisements and alerts when a
device on the watchlist comes into range.

It starts in configuration mode with an HTTP portal where the watchlist of
vendor prefixes (OUI) and full MAC addresses can be edited. After a submission,
or when nobody connects before the timeout, it switches to scanning mode.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth scanning.
Use --demo flag for demonstration mode without Bluetooth hardware.`,
		RunE:         run,
		SilenceUsage: true,
	}

	f := rootCmd.Flags()
	f.BoolVar(&settings.Demo, "demo", settings.Demo, "Run in demo mode with fake devices (no Bluetooth required)")
	f.StringVar(&settings.Adapter, "adapter", settings.Adapter, "Bluetooth adapter to use (hci0, hci1, ... on Linux)")
	f.BoolVar(&settings.Headless, "headless", settings.Headless, "Run without the terminal UI and log to the console")
	f.StringVar(&settings.ListenAddr, "listen", settings.ListenAddr, "Configuration portal listen address")
	f.StringVar(&settings.DBPath, "db", settings.DBPath, "SQLite database path")
	f.StringVar(&settings.LogDir, "log-dir", settings.LogDir, "Directory for rotated log files")
	f.StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "Log level (debug, info, warn, error)")
	f.DurationVar(&settings.ConfigTimeout, "config-timeout", settings.ConfigTimeout, "Switch to scanning when nobody uses the portal for this long")
	f.Float64Var(&settings.PortalRate, "portal-rate", settings.PortalRate, "Portal requests per second")
	f.IntVar(&settings.PortalBurst, "portal-burst", settings.PortalBurst, "Portal request burst")
	f.StringVar(&settings.NATSURL, "nats-url", settings.NATSURL, "Publish alerts to this NATS server")
	f.StringVar(&settings.NATSSubject, "nats-subject", settings.NATSSubject, "NATS subject for alerts")
	f.StringVar(&settings.TelegramToken, "telegram-token", settings.TelegramToken, "Telegram bot token for alert messages")
	f.Int64Var(&settings.TelegramChatID, "telegram-chat-id", settings.TelegramChatID, "Telegram chat to notify")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := logging.Init(logging.Options{
		Dir:     settings.LogDir,
		Level:   settings.LogLevel,
		Console: settings.Headless,
	}); err != nil {
		return err
	}
	defer logging.Sync()
	logger := logging.GetLoggerWith(logging.NameApp)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSinks := buildSinks(logger)
	defer closeSinks()

	// Each pass is one boot: a fired factory reset ends the pass and the
	// next one starts from the persisted state again.
	for {
		restart, err := boot(ctx, sink)
		if err != nil {
			return err
		}
		if !restart || ctx.Err() != nil {
			return nil
		}
		logger.Info("Restarting")
	}
}

func boot(ctx context.Context, sink feedback.Sink) (bool, error) {
	logger := logging.GetLoggerWith(logging.NameApp)

	db, err := storage.Open(storage.UseSqliteDialector(settings.DBPath))
	if err != nil {
		return false, err
	}
	defer db.Close()

	res, err := db.Bootstrap()
	if err != nil {
		return false, err
	}
	store := watchlist.NewStore(res.Entries)

	scanner, source, err := newScanner(store)
	if err != nil {
		return false, err
	}
	defer scanner.Stop()

	scanCtx, cancelScan := context.WithCancel(ctx)
	defer cancelScan()

	var (
		engine *detector.Engine
		server *portal.Server
		prog   *tea.Program
	)
	engine = detector.New(detector.Options{
		Watchlist: store,
		Persister: db,
		Timeout:   settings.ConfigTimeout,
		Now:       time.Now(),
		OnScanning: func() {
			go func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("Failed to stop configuration portal", zap.Error(err))
				}
				if err := scanner.Start(scanCtx, engine); err != nil {
					logger.Error("Failed to start scanner", zap.Error(err))
					if prog != nil {
						prog.Send(app.ScanErrorMsg{Err: err})
					}
				}
			}()
		},
	})

	server = portal.New(engine.Machine(), portal.Options{
		Addr:  settings.ListenAddr,
		Rate:  settings.PortalRate,
		Burst: settings.PortalBurst,
	})
	if err := server.Start(); err != nil {
		return false, fmt.Errorf("start configuration portal: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Stop(stopCtx)
	}()

	logger.Info("Configuration mode started",
		zap.String("portal", server.Addr()),
		zap.Int("filters", store.Len()),
		zap.Bool("wiped", res.Wiped),
		zap.Bool("seeded", res.Seeded),
		zap.Duration("timeout", settings.ConfigTimeout))

	if settings.Headless {
		return app.RunHeadless(ctx, engine, sink), nil
	}

	model := app.New(app.Options{
		Engine:     engine,
		Sink:       sink,
		Source:     source,
		PortalAddr: server.Addr(),
	})
	prog = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}
	m, ok := final.(app.AppModel)
	return ok && m.RestartRequested(), nil
}

func newScanner(store *watchlist.Store) (bluetooth.Scanner, string, error) {
	if settings.Demo {
		return bluetooth.NewDemoScanner(store), "demo", nil
	}

	ble := bluetooth.NewBLEScanner(settings.Adapter)
	if err := ble.Enable(); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
		fmt.Fprintln(os.Stderr, "Try one of:")
		fmt.Fprintln(os.Stderr, "  sudo ./ble-watch")
		fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./ble-watch")
		fmt.Fprintln(os.Stderr, "  ./ble-watch --demo    (demo mode, no hardware needed)")
		return nil, "", err
	}
	return ble, settings.Adapter, nil
}

// buildSinks wires the feedback outputs that are configured. Slow sinks
// run behind Async so the tick loop never waits on them.
func buildSinks(logger *zap.Logger) (feedback.Sink, func()) {
	var (
		sinks   = feedback.Multi{feedback.NewLogSink()}
		closers []func()
	)

	bell := feedback.NewAsync(feedback.NewBellSink(os.Stdout), 8)
	sinks = append(sinks, bell)
	closers = append(closers, bell.Close)

	if settings.NATSURL != "" {
		pub, nc, err := feedback.ConnectNATS(settings.NATSURL, settings.NATSSubject)
		if err != nil {
			logger.Warn("NATS alerts disabled", zap.Error(err))
		} else {
			async := feedback.NewAsync(pub, config.AlertQueueSize)
			sinks = append(sinks, async)
			closers = append(closers, async.Close, func() { _ = nc.Drain() })
			logger.Info("Publishing alerts to NATS", zap.String("subject", settings.NATSSubject))
		}
	}

	if settings.TelegramToken != "" {
		tg, err := feedback.ConnectTelegram(settings.TelegramToken, settings.TelegramChatID)
		if err != nil {
			logger.Warn("Telegram alerts disabled", zap.Error(err))
		} else {
			async := feedback.NewAsync(tg, config.AlertQueueSize)
			sinks = append(sinks, async)
			closers = append(closers, async.Close)
			logger.Info("Sending alerts to Telegram", zap.Int64("chat_id", settings.TelegramChatID))
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
