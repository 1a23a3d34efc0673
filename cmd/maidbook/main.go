package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"maidbook/internal/accounts"
	"maidbook/internal/api"
	"maidbook/internal/audit"
	"maidbook/internal/booking"
	"maidbook/internal/config"
	"maidbook/internal/events"
	"maidbook/internal/metrics"
	"maidbook/internal/notify"
	"maidbook/internal/sheets"
	"maidbook/internal/store"
	"maidbook/internal/workers"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MAIDBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	backend, pinger, closer, err := buildStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store error")
	}
	if closer != nil {
		defer closer()
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		backend = store.NewCached(backend, rdb, cfg.RedisCacheTTL())
	}

	notifier, err := buildNotifier(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create notifier error")
	}

	bus := events.NewBus()
	retries := cfg.ConflictRetries()

	accountsSvc := accounts.NewService(backend, retries, &logger)
	workersSvc := workers.NewService(backend, retries, &logger)
	bookingSvc := booking.NewService(backend, notifier, bus, retries, &logger)
	exporter := audit.NewExporter(backend, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sheets.Enabled {
		mirror, err := buildSheetsMirror(ctx, cfg, backend, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets mirror error")
		}
		go runSheetsSync(ctx, mirror, bus, cfg.SheetsSyncInterval(), &logger)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, pinger, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	apiSrv := api.NewServer(accountsSvc, workersSvc, bookingSvc, exporter, &logger)
	srv := &http.Server{Addr: cfg.Server.Address, Handler: apiSrv.Routes()}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("address", cfg.Server.Address).Str("store", cfg.Store.Backend).Msg("maidbook started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

// buildStore opens the configured backend. The pinger is nil for backends
// without a meaningful readiness probe.
func buildStore(cfg *config.Config) (store.Store, func(context.Context) error, func() error, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemory(), nil, nil, nil
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, db.PingContext, db.Close, nil
	case "github":
		gh, err := store.NewGitHub(store.GitHubConfig{
			Owner:   cfg.Store.GitHub.Owner,
			Repo:    cfg.Store.GitHub.Repo,
			Branch:  cfg.Store.GitHub.Branch,
			Token:   cfg.Store.GitHub.Token,
			Dir:     cfg.Store.GitHub.Dir,
			BaseURL: cfg.Store.GitHub.BaseURL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return gh, nil, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) (notify.Notifier, error) {
	var notifier notify.Notifier
	switch cfg.Notifier.Kind {
	case "smtp":
		notifier = notify.NewSMTP(notify.SMTPConfig{
			Host:        cfg.Notifier.SMTP.Host,
			Port:        cfg.Notifier.SMTP.Port,
			Username:    cfg.Notifier.SMTP.Username,
			Password:    cfg.Notifier.SMTP.Password,
			SenderName:  cfg.Notifier.SMTP.SenderName,
			SenderEmail: cfg.Notifier.SMTP.SenderEmail,
		}, logger)
	case "telegram":
		tg, err := notify.NewTelegram(cfg.Notifier.Telegram.BotToken, logger)
		if err != nil {
			return nil, err
		}
		notifier = tg
	case "none":
		notifier = notify.Noop{}
	default:
		return nil, fmt.Errorf("unknown notifier kind %q", cfg.Notifier.Kind)
	}

	if cfg.Notifier.RatePerSecond > 0 {
		notifier = notify.NewRateLimited(notifier, cfg.Notifier.RatePerSecond, cfg.Notifier.RateBurst)
	}
	return notifier, nil
}

func buildSheetsMirror(ctx context.Context, cfg *config.Config, backend store.Store, logger *zerolog.Logger) (*sheets.Mirror, error) {
	creds, err := os.ReadFile(cfg.Sheets.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	writer, err := sheets.NewWriter(ctx, creds)
	if err != nil {
		return nil, err
	}
	return sheets.NewMirror(backend, writer, cfg.Sheets.SpreadsheetID, logger), nil
}

// runSheetsSync refreshes the spreadsheet on a timer and immediately after
// booking changes.
func runSheetsSync(ctx context.Context, mirror *sheets.Mirror, bus *events.Bus, interval time.Duration, logger *zerolog.Logger) {
	kick := make(chan struct{}, 1)
	onChange := func(events.Event) {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
	bus.Subscribe(events.TypeBookingCreated, onChange)
	bus.Subscribe(events.TypeBookingCancelled, onChange)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-kick:
		}
		if err := mirror.Sync(ctx); err != nil {
			logger.Error().Err(err).Msg("sheets sync error")
		}
	}
}

func startHealthServer(ctx context.Context, port int, pinger func(context.Context) error, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if pinger != nil {
			if err := pinger(ctxPing); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
