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

	"github.com/spf13/cobra"

	"github.com/ghorer-khabar/mealclub/internal/api"
	"github.com/ghorer-khabar/mealclub/internal/core/service"
	"github.com/ghorer-khabar/mealclub/internal/infrastructure/db/mongo"
	"github.com/ghorer-khabar/mealclub/internal/infrastructure/db/redis"
	"github.com/ghorer-khabar/mealclub/internal/infrastructure/http/handlers"
	"github.com/ghorer-khabar/mealclub/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  serveRun,
	}
}

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg, log, err := commonRun(cmd)
	if err != nil {
		return err
	}

	// The signing secret is fixed for the life of the process.
	tokens, err := service.NewTokenService(cfg.JWTSecret, service.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("refusing to start")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	members := mongo.NewMemberRepository(db)
	polls := mongo.NewPollRepository(db)
	packages := mongo.NewPackageRepository(db)

	guard := redis.NewLoginGuard(rdb, cfg.Auth.MaxFailures, cfg.Auth.Lockout)
	dispatcher := queue.NewDispatcher(cfg.Votes.Workers, service.NewVoteHistoryService(members), log)
	// Workers outlive the signal context so Stop can drain queued writes.
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	auth := service.NewAuthService(members, tokens, guard, log)
	e := api.NewRouter(api.Dependencies{
		Auth:          auth,
		Tokens:        tokens,
		Polls:         service.NewPollService(polls, members, dispatcher, log),
		Members:       service.NewMemberService(members, packages, log),
		Packages:      service.NewPackageService(packages, log),
		Log:           log,
		SecureCookies: cfg.IsProduction(),
		AuthRateLimit: cfg.Auth.RateLimit,
		AuthRateBurst: cfg.Auth.RateBurst,
		Probes: map[string]handlers.Pinger{
			"mongo": mongo.NewPinger(mongoClient),
			"redis": redis.NewPinger(rdb),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
