package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/kopaska88/pengaduan-jokerbola/internal/api/http"
	"github.com/kopaska88/pengaduan-jokerbola/internal/api/http/handlers"
	"github.com/kopaska88/pengaduan-jokerbola/internal/config"
	"github.com/kopaska88/pengaduan-jokerbola/internal/conversation"
	"github.com/kopaska88/pengaduan-jokerbola/internal/dedupe"
	"github.com/kopaska88/pengaduan-jokerbola/internal/events"
	"github.com/kopaska88/pengaduan-jokerbola/internal/notify"
	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
	"github.com/kopaska88/pengaduan-jokerbola/internal/persistence"
	"github.com/kopaska88/pengaduan-jokerbola/internal/session"
	"github.com/kopaska88/pengaduan-jokerbola/internal/status"
	"github.com/kopaska88/pengaduan-jokerbola/internal/store"
	"github.com/kopaska88/pengaduan-jokerbola/internal/ticket"
	"github.com/kopaska88/pengaduan-jokerbola/internal/transport/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		logger.Fatal("invalid BOT_TIMEZONE", zap.String("timezone", cfg.Bot.Timezone), zap.Error(err))
	}

	metrics := observability.NewMetrics()

	records, pg, err := buildRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init record store", zap.Error(err))
	}
	if pg != nil {
		defer pg.Close()
	}

	var redis *persistence.Redis
	var guard dedupe.Guard
	if cfg.Redis.Addr != "" {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		guard = dedupe.NewRedisGuard(redis.Client, dedupe.DefaultTTL, logger)
	} else {
		guard = dedupe.NewLocalGuard(dedupe.DefaultTTL)
	}

	bot, err := telegram.New(cfg.Bot, metrics, logger)
	if err != nil {
		logger.Fatal("failed to init telegram bot", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifier := notify.NewNotifier(bot, cfg.Bot.OperatorIDs, cfg.Notify, metrics, logger)
	notifier.RegisterHandlers(dispatcher)

	sessions := session.NewStore()
	sessions.StartSweeper(ctx, cfg.Session.SweepInterval(), cfg.Session.IdleTTL(), metrics, logger)

	issuer := ticket.NewIssuer(records, loc, logger)
	resolver := status.NewResolver(records, cfg.Bot.OperatorIDs, logger)

	conv := conversation.NewDispatcher(conversation.Dependencies{
		Sessions: sessions,
		Records:  records,
		Issuer:   issuer,
		Resolver: resolver,
		Replier:  bot,
		Files:    bot,
		Events:   dispatcher,
		Metrics:  metrics,
		Logger:   logger,
		Location: loc,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, records, redis),
		Metrics: handlers.NewMetricsHandler(metrics, sessions),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	go bot.Run(ctx, conv, guard)

	waitForShutdown(logger)
	cancel()
	_ = app.Shutdown()
}

func buildRecordStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.RecordStore, *persistence.Postgres, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		pgStore := store.NewPostgresStore(pg.PoolHandle())
		if err := pgStore.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pgStore, pg, nil
	case config.StoreBackendSheets:
		sheetsStore, err := store.NewSheetsStore(ctx, cfg.Sheets)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using google sheets record store", zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
		return sheetsStore, nil, nil
	default:
		logger.Warn("using in-memory record store; tickets will not survive restarts")
		return store.NewMemoryStore(), nil, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
