package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/halalbiye/halalbiye-server/src/config"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/server"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/halalbiye/halalbiye-server/src/store/mongostore"
	"github.com/halalbiye/halalbiye-server/src/store/revocation"
	"github.com/halalbiye/halalbiye-server/src/store/sqlstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	log, err := lib.NewLogger(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}

	revoked, closeRevocations, err := openRevocations(ctx, cfg, log)
	if err != nil {
		_ = backend.Close(context.Background())
		return err
	}

	app := server.New(server.Deps{
		Backend:     backend,
		Tokens:      lib.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL),
		Revocations: revoked,
		Log:         log,
		BcryptCost:  cfg.Auth.BcryptCost,
		CookieName:  cfg.Session.CookieName,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Production:  cfg.IsProduction(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening",
			zap.String("addr", cfg.HTTP.Addr()),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage.Driver),
		)
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errs := []error{app.ShutdownWithContext(shutdownCtx)}
		errs = append(errs, closeRevocations())
		errs = append(errs, backend.Close(shutdownCtx))
		return errors.Join(errs...)
	})

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := lib.ConnectSQLite(cfg.SQLite.Path, log)
		if err != nil {
			return nil, err
		}
		s, err := sqlstore.New(db, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		client, err := lib.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout, log)
		if err != nil {
			return nil, err
		}
		s, err := mongostore.New(ctx, client, cfg.Mongo.Database, cfg.Mongo.Timeout, log)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return s, nil
	}
}

func openRevocations(ctx context.Context, cfg *config.Config, log *zap.Logger) (revocation.List, func() error, error) {
	if cfg.Redis.URL == "" {
		log.Info("token revocation kept in memory")
		return revocation.NewMemoryList(), func() error { return nil }, nil
	}

	client, err := lib.ConnectRedis(ctx, cfg.Redis.URL, log)
	if err != nil {
		return nil, nil, err
	}
	return revocation.NewRedisList(client), client.Close, nil
}
