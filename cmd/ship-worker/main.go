package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShipDesk/ShipDesk/config"
	"github.com/ShipDesk/ShipDesk/internal/broker/kafka"
	"github.com/ShipDesk/ShipDesk/internal/cache/rediscache"
	"github.com/ShipDesk/ShipDesk/internal/services/shipments"
	"github.com/ShipDesk/ShipDesk/internal/storage/pgstore"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	topic := cfg.Kafka.StatusUpdatedTopicName
	if topic == "" {
		topic = "shipment.status.updated"
	}
	consumerGroup := cfg.ShipDesk.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "ship-worker"
	}
	snapshotTTL := time.Duration(cfg.ShipDesk.TrackingSnapshotTTLSeconds) * time.Second
	if snapshotTTL <= 0 {
		snapshotTTL = 10 * time.Minute
	}
	costPerKg := cfg.ShipDesk.CostPerKilogram
	if costPerKg <= 0 {
		costPerKg = 10
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st, err := pgstore.New(connString)
	if err != nil {
		panic(err)
	}
	defer st.Close()

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)

	// Воркер только перечитывает снапшоты, продюсер ему не нужен.
	svc := shipments.New(st, rc, nil, topic, costPerKg, snapshotTTL)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	consumer := kafka.NewConsumer(brokers, topic, consumerGroup)
	defer func() { _ = consumer.Close() }()

	counters := &workerCounters{}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr: cfg.ShipDesk.WorkerHTTPAddr,
			counters: counters,
		})
	}()

	slog.Info("worker started", "topic", topic, "group", consumerGroup)
	if err := runConsumerLoop(ctx, consumer, svc, counters); err != nil && err != context.Canceled {
		panic(err)
	}

	select {
	case <-httpErr:
	case <-time.After(3 * time.Second):
	}
}
