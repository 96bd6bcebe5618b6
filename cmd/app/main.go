package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"go.uber.org/zap"

	"ptalsvc/internal/app/config"
	httpapi "ptalsvc/internal/app/http"
	"ptalsvc/internal/app/http/handler"
	"ptalsvc/internal/app/sweep"
	"ptalsvc/internal/domain/ptal"
	"ptalsvc/internal/infrastructure/async"
	"ptalsvc/internal/infrastructure/db/pg"
	"ptalsvc/internal/infrastructure/discord"
	"ptalsvc/internal/infrastructure/github"
	"ptalsvc/internal/infrastructure/logging"
	"ptalsvc/internal/render"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("db ping error", zap.Error(err))
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose dialect error", zap.Error(err))
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatal("goose up error", zap.Error(err))
	}

	uow := pg.NewTxManager(db)
	records := pg.NewRecordRepository(db)

	githubClient := github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.RemoteTimeout, log)
	discordClient := discord.NewClient(cfg.DiscordAPIURL, cfg.DiscordToken, cfg.RemoteTimeout, log)

	svc := ptal.NewService(
		uow,
		records,
		githubClient,
		discordClient,
		render.Payload,
		async.NewKeyedMutex(),
		ptal.Options{
			AllowedOwner:   cfg.GitHubOwner,
			ShowBotReviews: cfg.ShowBotReviews,
			RolePing:       cfg.PTALRoleID,
		},
		log,
	)

	eventBus := async.NewAsyncEventBus(ctx, cfg.WorkerCount, cfg.TaskTimeout, svc.HandleEvent, log)
	defer eventBus.Close()

	sweeper := sweep.NewSweeper(svc, cfg.SweepInterval, log)
	go sweeper.Run(ctx)

	h := handler.New(svc, eventBus, cfg.WebhookSecret, log)
	router := httpapi.NewRouter(h, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
