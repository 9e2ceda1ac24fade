package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eduraapp/edura-backend/internal/api"
	"github.com/eduraapp/edura-backend/internal/config"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/jobs"
	"github.com/eduraapp/edura-backend/internal/logging"
	"github.com/eduraapp/edura-backend/internal/notify"
	"github.com/eduraapp/edura-backend/internal/observability"
	"github.com/eduraapp/edura-backend/internal/ops"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "edura-backend")
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("db open", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("migrate", "err", err)
	}
	if err := db.SeedStore(ctx, database); err != nil {
		lg.Sugar.Fatalw("seed store", "err", err)
	}

	notifier, err := notify.New(cfg.BotToken, cfg.NotifyChatIDs, lg.Sugar)
	if err != nil {
		lg.Sugar.Fatalw("notifier", "err", err)
	}

	runner := jobs.New(ctx, lg.Sugar)
	runner.Every(time.Hour, "period_watch", jobs.PeriodWatch(database, lg.Sugar, notifier))

	ops.Start(ctx, cfg.OpsAddr, database)

	srv := api.New(database, lg, cfg, notifier)

	go func() {
		lg.Sugar.Infow("api listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			lg.Sugar.Errorw("api server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	lg.Sugar.Infow("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		lg.Sugar.Errorw("shutdown", "err", err)
	}
}
