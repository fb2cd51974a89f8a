package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShipDesk/ShipDesk/config"
	"github.com/ShipDesk/ShipDesk/internal/api/httpapi"
	"github.com/ShipDesk/ShipDesk/internal/auth"
	"github.com/ShipDesk/ShipDesk/internal/broker/kafka"
	"github.com/ShipDesk/ShipDesk/internal/cache/rediscache"
	"github.com/ShipDesk/ShipDesk/internal/services/accounts"
	"github.com/ShipDesk/ShipDesk/internal/services/payments"
	"github.com/ShipDesk/ShipDesk/internal/services/shipments"
	"github.com/ShipDesk/ShipDesk/internal/services/support"
	"github.com/ShipDesk/ShipDesk/internal/storage/pgstore"
)

type shipAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    shipAPIOpts
	handler http.Handler

	producer *kafka.Producer
	closeDB  func()
}

func mustBootstrapShipAPI() *shipAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	if cfg.ShipDesk.JWTSecret == "" {
		panic("shipdesk.jwt_secret is required")
	}

	httpAddr := cfg.ShipDesk.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	topic := cfg.Kafka.StatusUpdatedTopicName
	if topic == "" {
		topic = "shipment.status.updated"
	}
	costPerKg := cfg.ShipDesk.CostPerKilogram
	if costPerKg <= 0 {
		costPerKg = 10
	}
	snapshotTTL := time.Duration(cfg.ShipDesk.TrackingSnapshotTTLSeconds) * time.Second
	if snapshotTTL <= 0 {
		snapshotTTL = 10 * time.Minute
	}
	jwtTTL := time.Duration(cfg.ShipDesk.JWTTTLHours) * time.Hour

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)
	rl := rediscache.NewRateLimiter(redisAddr)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)

	am := auth.NewManager(cfg.ShipDesk.JWTSecret, jwtTTL)

	limits := accounts.DefaultLimits()
	if cfg.ShipDesk.OTPAttemptsPerWindow > 0 {
		limits.OTPAttempts = int64(cfg.ShipDesk.OTPAttemptsPerWindow)
	}
	if cfg.ShipDesk.OTPWindowSeconds > 0 {
		limits.OTPWindow = time.Duration(cfg.ShipDesk.OTPWindowSeconds) * time.Second
	}
	if cfg.ShipDesk.LoginAttemptsPerWindow > 0 {
		limits.LoginAttempts = int64(cfg.ShipDesk.LoginAttemptsPerWindow)
	}
	if cfg.ShipDesk.LoginWindowSeconds > 0 {
		limits.LoginWindow = time.Duration(cfg.ShipDesk.LoginWindowSeconds) * time.Second
	}

	accountsSvc := accounts.New(st, rl, am, limits)
	shipmentsSvc := shipments.New(st, rc, producer, topic, costPerKg, snapshotTTL)
	paymentsSvc := payments.New(st)
	supportSvc := support.New(st)

	srv := httpapi.New(accountsSvc, shipmentsSvc, paymentsSvc, supportSvc, am, swaggerPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &shipAPIApp{
		ctx:      ctx,
		cancel:   cancel,
		opts:     shipAPIOpts{httpAddr: httpAddr},
		handler:  srv.Routes(),
		producer: producer,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgstore.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgstore.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *shipAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *shipAPIApp) Run() error {
	return runShipAPI(a.ctx, a.opts, a.handler)
}
