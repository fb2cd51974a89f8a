package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/broker/kafka"
	"github.com/ShipDesk/ShipDesk/internal/broker/messages"
)

type snapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, code string) error
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler kafka.Handler) error
}

// workerCounters is read concurrently by the /stats handler.
type workerCounters struct {
	processed atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64
}

type workerStats struct {
	Processed uint64 `json:"processed"`
	Skipped   uint64 `json:"skipped"`
	Failed    uint64 `json:"failed"`
}

func (c *workerCounters) Stats() workerStats {
	return workerStats{
		Processed: c.processed.Load(),
		Skipped:   c.skipped.Load(),
		Failed:    c.failed.Load(),
	}
}

// runConsumerLoop keeps consuming until the context is cancelled. Consume
// stops on the first handler or broker error, so the loop restarts it after
// a short pause.
func runConsumerLoop(ctx context.Context, consumer kafkaConsumer, svc snapshotRefresher, counters *workerCounters) error {
	for {
		err := consumer.Consume(ctx, func(key, value []byte) error {
			var m messages.ShipmentStatusUpdated
			if err := json.Unmarshal(value, &m); err != nil {
				// Битое сообщение: пропускаем, чтобы не застрять на нём.
				slog.Error("skip malformed message", "key", string(key), "err", err)
				counters.skipped.Add(1)
				return nil
			}
			if m.TrackingCode == "" {
				counters.skipped.Add(1)
				return nil
			}
			if err := svc.RefreshSnapshot(ctx, m.TrackingCode); err != nil {
				if apperr.IsNotFound(err) {
					// Код не резолвится в отправление: retry не поможет.
					slog.Warn("skip event for unknown code", "tracking_code", m.TrackingCode)
					counters.skipped.Add(1)
					return nil
				}
				counters.failed.Add(1)
				return err
			}
			counters.processed.Add(1)
			slog.Info("snapshot refreshed", "tracking_code", m.TrackingCode, "status", m.Status)
			return nil
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("consume loop stopped, restarting", "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
}
