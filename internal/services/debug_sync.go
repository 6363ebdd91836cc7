package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"payhost-backend/internal/database"
	"payhost-backend/internal/metrics"
	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"
	"payhost-backend/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const DebugChannel = "payment:plugin:debug"

// InstanceID tags events published by this process so it can skip its own
// messages when they come back from Redis.
var InstanceID = uuid.New().String()

// DebugEvent is one debug mode switch, as published on DebugChannel and
// delivered to local watchers.
type DebugEvent struct {
	Platform payment.PlatformType     `json:"platform"`
	Debug    bool                     `json:"debug"`
	Operator string                   `json:"operator,omitempty"`
	Source   models.DebugChangeSource `json:"source"`
	Origin   string                   `json:"origin"`
	At       time.Time                `json:"at"`
	// Trace carries the publisher's span context so the receiving side
	// joins the same trace.
	Trace map[string]string `json:"trace,omitempty"`
}

func publishDebugChange(ctx context.Context, event DebugEvent) error {
	if database.RedisClient == nil {
		return nil
	}
	event.Trace = map[string]string{}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(event.Trace))

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, DebugChannel, payload).Err()
}

// StartDebugSync subscribes to debug changes made by other instances and
// applies them to reg. It returns once the subscription is confirmed; the
// returned stop function ends it and waits for the receiver to exit.
func StartDebugSync(ctx context.Context, reg *payment.Registry) (func(), error) {
	if database.RedisClient == nil {
		return nil, errors.New("redis client is not connected")
	}

	pubsub := database.RedisClient.Subscribe(ctx, DebugChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", DebugChannel, err)
	}

	log := logger.Named("debug-sync")
	ch := pubsub.Channel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ch {
			var event DebugEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn("Discarding malformed debug event", zap.Error(err))
				continue
			}
			if event.Origin == InstanceID {
				continue
			}
			applyRemoteDebugChange(reg, event)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = pubsub.Close()
			wg.Wait()
		})
	}
	return stop, nil
}

// applyRemoteDebugChange updates the live plugin only. The publishing
// instance has already persisted the change.
func applyRemoteDebugChange(reg *payment.Registry, event DebugEvent) {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.MapCarrier(event.Trace))
	_, span := tracer.Start(ctx, "plugins.ApplyRemoteDebug",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("payment.platform", event.Platform.String()),
			attribute.Bool("payment.debug", event.Debug),
			attribute.String("payment.origin", event.Origin),
		),
	)
	defer span.End()

	plugin, err := reg.Get(event.Platform)
	if err != nil {
		span.SetAttributes(attribute.Bool("payment.ignored", true))
		logger.Named("debug-sync").Debug("Ignoring debug event for unregistered plugin",
			zap.String("platform", event.Platform.String()))
		return
	}

	plugin.SetDebug(event.Debug)
	metrics.ObserveDebug(event.Platform.String(), event.Debug)
	metrics.RecordDebugChange(event.Platform.String(), string(models.DebugChangeSourceRemote))
	notifyWatchers(event)

	logger.Named("debug-sync").Info("Applied remote debug change",
		zap.String("platform", event.Platform.String()),
		zap.Bool("debug", event.Debug),
		zap.String("origin", event.Origin),
	)
}
