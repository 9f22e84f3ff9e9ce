package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"auto_repost_instagram/config"
	"auto_repost_instagram/internal/domain"
	"auto_repost_instagram/internal/logger"
	"auto_repost_instagram/internal/repository/memory"
	mongorepo "auto_repost_instagram/internal/repository/mongo"
	sqliterepo "auto_repost_instagram/internal/repository/sqlite"
)

// app holds what every command needs: configuration, logging and the stores
type app struct {
	cfg         *config.Config
	accountRepo domain.AccountRepository
	postRepo    domain.PostRepository
	closers     []func() error
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.NewManager(cfgFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := logger.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	a := &app{cfg: cfg, closers: []func() error{logger.Close}}
	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// openStores picks the backend from database.url: mongodb://, memory: or a SQLite path
func (a *app) openStores(ctx context.Context) error {
	url := a.cfg.DatabaseURL

	switch {
	case mongorepo.IsMongoURL(url):
		client, err := mongorepo.Connect(ctx, url, a.cfg.DatabaseName)
		if err != nil {
			return err
		}
		a.accountRepo = mongorepo.NewAccountRepository(client)
		a.postRepo = mongorepo.NewPostRepository(client)
		a.closers = append(a.closers, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Close(closeCtx)
		})
		logger.Info().Printf("Using MongoDB database %q", a.cfg.DatabaseName)

	case strings.HasPrefix(url, "memory:"):
		a.accountRepo = memory.NewAccountRepository()
		a.postRepo = memory.NewPostRepository()
		logger.Warn().Warnln("Using in-memory store, usage history is lost on exit")

	default:
		db, err := sqliterepo.Open(url)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		a.accountRepo = sqliterepo.NewAccountRepository(db)
		a.postRepo = sqliterepo.NewPostRepository(db)
		a.closers = append(a.closers, db.Close)
		logger.Info().Printf("Using SQLite database %s", url)
	}
	return nil
}

// Close releases stores first and the log files last
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
}
