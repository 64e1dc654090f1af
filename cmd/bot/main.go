package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentbot/internal/analytics"
	"contentbot/internal/callback"
	"contentbot/internal/config"
	"contentbot/internal/content"
	"contentbot/internal/conversation"
	"contentbot/internal/delivery"
	"contentbot/internal/handler"
	"contentbot/internal/httpclient"
	"contentbot/internal/middleware"
	"contentbot/internal/monitor"
	"contentbot/internal/repository/postgres"
	"contentbot/internal/service"
	"contentbot/internal/state"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v3"
)

const (
	sweepInterval  = 30 * time.Minute
	idleStateLimit = time.Hour
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "contentbot",
		Short:        "Telegram console for the portfolio content",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLogger(func(logger *zap.Logger) error {
				return runBot(cmd.Context(), logger)
			})
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check the content and analytics APIs and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLogger(func(logger *zap.Logger) error {
				return runCheck(cmd, logger)
			})
		},
	})
	return root
}

func withLogger(fn func(logger *zap.Logger) error) error {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}
	defer logger.Sync()

	if err := fn(logger); err != nil {
		logger.Error("Exiting", zap.Error(err))
		return err
	}
	return nil
}

func runBot(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Starting content bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("Configuration loaded successfully",
		zap.Bool("analytics", cfg.AnalyticsEnabled()),
		zap.Bool("monitor_enabled", cfg.Analytics.MonitorEnabled),
	)

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if err := runMigrations(db, logger); err != nil {
		return err
	}

	// Repositories and upstream clients
	backupRepo := postgres.NewBackupRepo(db)
	httpClient := httpclient.New(httpclient.Options{Timeout: cfg.HTTP.Timeout})
	contentClient := content.NewClient(cfg.Content.URL, cfg.Content.Token, httpClient, logger)

	// Services
	authService := service.NewAuthService(cfg.Telegram.AdminID)
	contentService := service.NewContentService(contentClient, backupRepo, logger)
	versionService := service.NewVersionService(contentClient, backupRepo, logger)

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Telegram update failed", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram bot initialized")

	store := state.NewStore()
	tokens, err := callback.NewRegistry(callback.DefaultTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create callback registry: %w", err)
	}
	defer tokens.Close()

	messenger := delivery.NewTelegramMessenger(bot)
	deps := handler.Deps{
		Store:    store,
		Engine:   conversation.NewEngine(store, contentService, tokens, logger),
		Delivery: delivery.NewStrategy(messenger, store, logger),
		Content:  contentService,
		Versions: versionService,
		Tokens:   tokens,
		Logger:   logger,
	}

	var poller *monitor.Poller
	if cfg.AnalyticsEnabled() {
		analyticsClient := analytics.NewClient(cfg.Analytics.URL, cfg.Analytics.SiteID, cfg.Analytics.Token, httpClient, logger)
		notifier := delivery.NewAdminNotifier(messenger, cfg.Telegram.AdminID, logger)
		poller = monitor.NewPoller(analyticsClient, notifier, contentService, monitor.Config{
			Interval: cfg.Analytics.PollInterval,
		}, logger)
		deps.Monitor = poller
		deps.Visits = analyticsClient
	}

	h := handler.NewHandler(deps)
	bot.Use(
		middleware.Recover(logger, h.OnPanic),
		middleware.AdminOnly(authService, logger),
		middleware.RateLimit(middleware.RateLimitOptions{Interval: cfg.Telegram.RateLimitInterval}, logger),
	)
	h.RegisterHandlers(bot)

	if err := bot.SetCommands(handler.Commands()); err != nil {
		logger.Warn("Failed to publish command list", zap.Error(err))
	}

	logger.Info("Handlers registered")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Bot started successfully")
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, stopping bot...")
		bot.Stop()
		return nil
	})
	g.Go(func() error {
		state.RunSweeper(gctx, store, sweepInterval, idleStateLimit, logger)
		return nil
	})
	if poller != nil {
		g.Go(func() error {
			if cfg.Analytics.MonitorEnabled {
				return poller.Run(gctx)
			}
			// Started on demand from the analytics menu
			<-gctx.Done()
			if err := poller.Stop(); err != nil {
				return err
			}
			poller.Wait()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Bot stopped gracefully")
	return nil
}

func runCheck(cmd *cobra.Command, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.HTTP.Timeout)
	defer cancel()

	httpClient := httpclient.New(httpclient.Options{Timeout: cfg.HTTP.Timeout})
	contents := service.NewContentService(content.NewClient(cfg.Content.URL, cfg.Content.Token, httpClient, logger), nil, logger)

	stats, err := contents.Stats(ctx)
	if err != nil {
		return fmt.Errorf("content API: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "content: ok, %d case studies, %d profiles, %d bytes\n",
		stats.CaseStudies, stats.Profiles, stats.FileSize)

	if !cfg.AnalyticsEnabled() {
		fmt.Fprintln(cmd.OutOrStdout(), "analytics: not configured")
		return nil
	}

	info, err := analytics.NewClient(cfg.Analytics.URL, cfg.Analytics.SiteID, cfg.Analytics.Token, httpClient, logger).TestConnection(ctx)
	if err != nil {
		return fmt.Errorf("analytics API: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "analytics: ok, site %s (%s)\n", info.Name, info.ID)
	return nil
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Backups are written rarely
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations creates the backup table
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case err == migrate.ErrNoChange:
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}
	return nil
}
