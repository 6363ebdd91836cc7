package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"payhost-backend/internal/database"
	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func publishRaw(t *testing.T, event DebugEvent) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, database.RedisClient.Publish(context.Background(), DebugChannel, payload).Err())
}

func TestStartDebugSyncAppliesRemoteChanges(t *testing.T) {
	setupTestDB(t)
	setupMockRedis(t)
	reg := loadTestRegistry(t, false)

	stop, err := StartDebugSync(context.Background(), reg)
	require.NoError(t, err)
	defer stop()

	// Our own echo must be ignored; the following foreign event proves the
	// echo was consumed first since one channel preserves order.
	publishRaw(t, DebugEvent{Platform: payment.PlatformEpay, Debug: true, Origin: InstanceID})
	publishRaw(t, DebugEvent{Platform: payment.PlatformAliPay, Debug: true, Origin: "peer", Source: models.DebugChangeSourceAdmin})

	alipayPlugin, _ := reg.Get(payment.PlatformAliPay)
	assert.Eventually(t, alipayPlugin.IsDebug, 2*time.Second, 10*time.Millisecond)

	epayPlugin, _ := reg.Get(payment.PlatformEpay)
	assert.False(t, epayPlugin.IsDebug())
	assert.Equal(t, payment.PlatformAliPay, alipayPlugin.PlatformType())
}

func TestStartDebugSyncIgnoresBadPayloads(t *testing.T) {
	setupTestDB(t)
	setupMockRedis(t)
	reg := loadTestRegistry(t, false)

	stop, err := StartDebugSync(context.Background(), reg)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, database.RedisClient.Publish(context.Background(), DebugChannel, "not json").Err())
	publishRaw(t, DebugEvent{Platform: payment.PlatformUnionPay, Debug: true, Origin: "peer"})
	publishRaw(t, DebugEvent{Platform: payment.PlatformWeChatPay, Debug: true, Origin: "peer"})

	wechat, _ := reg.Get(payment.PlatformWeChatPay)
	assert.Eventually(t, wechat.IsDebug, 2*time.Second, 10*time.Millisecond)
}

func TestSetPluginDebugPublishes(t *testing.T) {
	setupTestDB(t)
	setupMockRedis(t)
	reg := loadTestRegistry(t, false)

	ctx := context.Background()
	sub := database.RedisClient.Subscribe(ctx, DebugChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, SetPluginDebug(ctx, reg, payment.PlatformWeChatPay, true,
		DebugChangeMeta{Operator: "admin", Source: models.DebugChangeSourceAdmin}))

	select {
	case msg := <-sub.Channel():
		var event DebugEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, payment.PlatformWeChatPay, event.Platform)
		assert.True(t, event.Debug)
		assert.Equal(t, InstanceID, event.Origin)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published debug event")
	}
}

func TestPublishedDebugEventCarriesTraceContext(t *testing.T) {
	setupTestDB(t)
	setupMockRedis(t)
	reg := loadTestRegistry(t, false)

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	sub := database.RedisClient.Subscribe(ctx, DebugChannel)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, SetPluginDebug(ctx, reg, payment.PlatformEpay, true,
		DebugChangeMeta{Operator: "admin", Source: models.DebugChangeSourceAdmin}))

	select {
	case msg := <-sub.Channel():
		var event DebugEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Contains(t, event.Trace["traceparent"], traceID.String())
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published debug event")
	}
}

func TestStartDebugSyncRequiresRedis(t *testing.T) {
	database.RedisClient = nil
	_, err := StartDebugSync(context.Background(), payment.NewRegistry())
	assert.Error(t, err)
}

func TestWatchDebugChangesCancel(t *testing.T) {
	events, cancel := WatchDebugChanges()
	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)

	// Notifying after cancel must not panic.
	notifyWatchers(DebugEvent{Platform: payment.PlatformAliPay})
}
