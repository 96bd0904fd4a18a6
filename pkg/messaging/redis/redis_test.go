package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/pkg/messaging"
)

func newTestBroker(t *testing.T) messaging.Broker {
	t.Helper()
	srv := miniredis.RunT(t)

	logger := zerolog.Nop()
	broker, err := NewBroker(Config{URL: "redis://" + srv.Addr()}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { broker.Close() })
	return broker
}

func TestPublishSubscribe(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := broker.Subscribe(ctx, "clinic.events")
	require.NoError(t, err)

	want := messaging.Message{Type: "clinic.approved", Payload: map[string]interface{}{"name": "City Medical"}}
	require.NoError(t, broker.Publish(ctx, "clinic.events", want))

	select {
	case raw := <-msgs:
		var got messaging.Message
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "clinic.approved", got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestBadURL(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewBroker(Config{URL: "://nope"}, &logger)
	assert.Error(t, err)
}
