package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishWakesOnlyOwner(t *testing.T) {
	b := NewBroker()
	u1, cancel1 := b.Subscribe("u1")
	defer cancel1()
	u2, cancel2 := b.Subscribe("u2")
	defer cancel2()

	require.NoError(t, b.Publish(context.Background(), "u1"))

	select {
	case <-u1:
	case <-time.After(time.Second):
		t.Fatal("u1 watcher not woken")
	}
	select {
	case <-u2:
		t.Fatal("u2 watcher must not be woken")
	default:
	}
}

func TestBroker_BurstCoalesces(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("u1")
	defer cancel()

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(context.Background(), "u1"))
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending wake-up")
	default:
	}
}

func TestBroker_CancelIsIdempotent(t *testing.T) {
	b := NewBroker()
	_, cancel := b.Subscribe("u1")
	_, cancelOther := b.Subscribe("u1")
	assert.Equal(t, 2, b.Watchers("u1"))

	cancel()
	cancel()
	assert.Equal(t, 1, b.Watchers("u1"))

	cancelOther()
	assert.Equal(t, 0, b.Watchers("u1"))
	require.NoError(t, b.Publish(context.Background(), "u1"))
}
