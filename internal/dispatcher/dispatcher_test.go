package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/guilherme-santos/calbot/internal"
)

func TestDispatcher_KeepsUserOrder(t *testing.T) {
	var (
		mu       sync.Mutex
		got      = map[int64][]string{}
		inFlight = map[int64]*atomic.Int32{1: {}, 2: {}, 3: {}}
		overlap  atomic.Bool
	)
	d := New(context.Background(), Options{Workers: 2, QueueDepth: 100}, func(_ context.Context, msg internal.Message) {
		if inFlight[msg.UserID].Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(time.Millisecond)
		mu.Lock()
		got[msg.UserID] = append(got[msg.UserID], msg.Text)
		mu.Unlock()
		inFlight[msg.UserID].Add(-1)
	})

	want := map[int64][]string{}
	for i := 0; i < 20; i++ {
		for _, user := range []int64{1, 2, 3} {
			text := string(rune('a' + i))
			want[user] = append(want[user], text)
			require.NoError(t, d.Submit(internal.Message{UserID: user, Text: text}))
		}
	}
	d.Drain()

	assert.Equal(t, want, got)
	assert.False(t, overlap.Load(), "a user had two messages in flight")
}

func TestDispatcher_RateLimit(t *testing.T) {
	d := New(context.Background(), Options{Workers: 1, QueueDepth: 10, Rate: rate.Every(time.Hour), Burst: 2},
		func(context.Context, internal.Message) {})
	defer d.Drain()

	assert.NoError(t, d.Submit(internal.Message{UserID: 1}))
	assert.NoError(t, d.Submit(internal.Message{UserID: 1}))
	assert.ErrorIs(t, d.Submit(internal.Message{UserID: 1}), ErrRateLimited)
	assert.NoError(t, d.Submit(internal.Message{UserID: 2}), "limits are per user")
}

func TestDispatcher_QueueFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := New(context.Background(), Options{Workers: 1, QueueDepth: 1}, func(context.Context, internal.Message) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})

	require.NoError(t, d.Submit(internal.Message{UserID: 1}))
	<-started
	require.NoError(t, d.Submit(internal.Message{UserID: 1}))
	assert.Equal(t, 1, d.Len())
	assert.ErrorIs(t, d.Submit(internal.Message{UserID: 1}), ErrQueueFull)

	close(release)
	d.Drain()
}

func TestDispatcher_SubmitAfterDrain(t *testing.T) {
	d := New(context.Background(), Options{}, func(context.Context, internal.Message) {})
	d.Drain()
	d.Drain()

	assert.ErrorIs(t, d.Submit(internal.Message{UserID: 1}), ErrClosed)
}

func TestDispatcher_HandlersOutliveCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var handlerErr atomic.Value
	d := New(ctx, Options{}, func(ctx context.Context, _ internal.Message) {
		if err := ctx.Err(); err != nil {
			handlerErr.Store(err)
		}
	})

	cancel()
	require.NoError(t, d.Submit(internal.Message{UserID: 1}))
	d.Drain()

	assert.Nil(t, handlerErr.Load())
}

func TestDispatcher_ForgetsIdleLimiters(t *testing.T) {
	clock := time.Date(2024, time.September, 11, 10, 0, 0, 0, time.UTC)
	d := New(context.Background(), Options{Workers: 1, QueueDepth: 10, Rate: rate.Every(time.Second), Burst: 1},
		func(context.Context, internal.Message) {})
	defer d.Drain()
	d.now = func() time.Time { return clock }

	require.NoError(t, d.Submit(internal.Message{UserID: 1}))
	assert.ErrorIs(t, d.Submit(internal.Message{UserID: 1}), ErrRateLimited)
	assert.Len(t, d.limiters, 1)

	clock = clock.Add(2 * sweepEvery)
	require.NoError(t, d.Submit(internal.Message{UserID: 2}))
	assert.NotContains(t, d.limiters, int64(1))
	assert.Contains(t, d.limiters, int64(2))

	require.NoError(t, d.Submit(internal.Message{UserID: 1}))
}

func TestDispatcher_UnlimitedKeepsNoLimiters(t *testing.T) {
	d := New(context.Background(), Options{Workers: 1, QueueDepth: 10}, func(context.Context, internal.Message) {})
	defer d.Drain()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, d.Submit(internal.Message{UserID: i}))
	}
	assert.Empty(t, d.limiters)
}
