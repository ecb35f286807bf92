package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/commons"
	configpkg "comanda/internal/config"
	"comanda/internal/infrastructure/logger"
	"comanda/internal/infrastructure/mysql"
	"comanda/internal/infrastructure/redis"
	"comanda/internal/order"
	"comanda/internal/order/events"
	"comanda/internal/server"
	"comanda/internal/tenant"
	"comanda/internal/tracking"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var pageCache redis.Cache
	if cfg.Redis.Addr != "" {
		pageCache = redis.NewCache(cfg.Redis.Addr)
		zapLogger.Info("page cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var publisher *events.Publisher
	if cfg.AMQP.URL != "" {
		conn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			zapLogger.Fatal("connecting to amqp", zap.Error(err))
		}
		defer conn.Close()

		publisher, err = events.NewPublisher(conn)
		if err != nil {
			zapLogger.Fatal("creating event publisher", zap.Error(err))
		}
		defer publisher.Close()
		zapLogger.Info("event publishing enabled")
	}

	feed := tracking.NewFeed()

	carts := cart.NewStore(cfg.Cart.SessionTTL)
	sweeperStop := make(chan struct{})
	carts.StartSweeper(5*time.Minute, sweeperStop)
	defer close(sweeperStop)

	tenantModule := tenant.NewModule(db, pageCache, cfg, zapLogger)
	orderModule := order.NewModule(
		db,
		cfg,
		tenantModule.Service,
		tenantModule.Repository,
		feed,
		carts,
		publisher,
		zapLogger,
	)

	router := server.NewRouter(tenantModule, orderModule, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

func loadConfig() (*configpkg.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return configpkg.Load()
}
