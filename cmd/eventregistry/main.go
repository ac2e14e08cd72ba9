package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pershin-daniil/EventRegistry/internal/rest"
	"github.com/pershin-daniil/EventRegistry/internal/telegram"
	"github.com/pershin-daniil/EventRegistry/pkg/config"
	"github.com/pershin-daniil/EventRegistry/pkg/logger"
	"github.com/pershin-daniil/EventRegistry/pkg/memstore"
	"github.com/pershin-daniil/EventRegistry/pkg/notifier"
	"github.com/pershin-daniil/EventRegistry/pkg/pgstore"
	"github.com/pershin-daniil/EventRegistry/pkg/redisstore"
	"github.com/pershin-daniil/EventRegistry/pkg/service"
	"github.com/pershin-daniil/EventRegistry/pkg/worker"
	"github.com/redis/go-redis/v9"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// version is set by build flags.
var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := newStore(ctx, log, cfg)
	if err != nil {
		log.Panic(err)
	}
	defer closeStore()

	notifiers := notifier.Multi{notifier.New(log)}
	var bot *tele.Bot
	if cfg.Telegram.Token != "" {
		if bot, err = telegram.NewBot(cfg.Telegram.Token); err != nil {
			log.Panic(err)
		}
		notifiers = append(notifiers, telegram.NewNotifier(log, bot, cfg.Telegram.ChatID))
	}

	app := service.NewRegistry(log, store, notifiers)
	server := rest.New(log, app, cfg.HTTPAddr, version).WithShutdownTimeout(cfg.ShutdownTimeout)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
		<-sigCh
		log.Info("Received signal, shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	if bot != nil {
		tg := telegram.New(log, bot, app)
		wg.Add(1)
		go func() {
			defer wg.Done()
			tg.Run(ctx)
		}()
	}
	if cfg.DigestSchedule != "" {
		w := worker.New(log, app, notifiers, cfg.DigestSchedule)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				log.Errorf("worker stopped: %v", err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			log.Errorf("server stopped: %v", err)
			cancel()
		}
	}()
	wg.Wait()
	log.Info("Server stopped")
}

func newStore(ctx context.Context, log *logrus.Logger, cfg *config.Config) (service.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := pgstore.New(ctx, log, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("err connecting to postgres: %w", err)
		}
		if err = store.Migrate(migrate.Up); err != nil {
			return nil, nil, fmt.Errorf("err applying migrations: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warnf("err closing postgres: %v", err)
			}
		}, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("err connecting to redis: %w", err)
		}
		return redisstore.New(log, client), func() {
			if err := client.Close(); err != nil {
				log.Warnf("err closing redis: %v", err)
			}
		}, nil
	default:
		return memstore.New(), func() {}, nil
	}
}
