package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycdsl/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{CaseName: "ACME", Action: string(EventCaseCreated)})
	require.NoError(t, err)

	events, err := store.ListByCase(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(EventCaseCreated), events[0].Action)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{CaseName: "ACME", Action: string(EventCaseAmended)})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByCase(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), Event{CaseName: "ACME"})
	assert.ErrorIs(t, err, ErrClosed)
}

type blockingStore struct {
	release chan struct{}
}

func (b *blockingStore) Append(context.Context, Event) error {
	<-b.release
	return nil
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(pub.Emit(context.Background(), Event{CaseName: "ACME"}), ErrBufferFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	close(store.release)
	pub.Close()
	assert.Positive(t, full, "a one-slot buffer behind a stalled sink must reject some events")
}

func TestPublisher_EnrichesFromContext(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithActor(ctx, "analyst")
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "10.1.1.1",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	require.NoError(t, pub.Emit(ctx, Event{CaseName: "ACME", Action: string(EventCaseAmended)}))

	events, err := store.ListByCase(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, fixed, ev.Timestamp)
	assert.Equal(t, "analyst", ev.Actor)
	assert.Equal(t, "req-1", ev.RequestID)
	assert.Equal(t, "10.1.1.1", ev.ClientIP)
	assert.Contains(t, ev.Client, "Chrome")
	assert.Contains(t, ev.Client, "Linux")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), Event{CaseName: "ACME", Timestamp: customTime}))

	events, err := store.ListByCase(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("sink down") }

func TestSyncEmitReturnsStoreError(t *testing.T) {
	pub := NewPublisher(failingStore{})
	err := pub.Emit(context.Background(), Event{CaseName: "ACME"})
	require.ErrorContains(t, err, "sink down")
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inbox := make(chan Event)
	done := make(chan error, 1)
	go func() { done <- NewWorker(NewInMemoryStore(), inbox, nil).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestDescribeClient(t *testing.T) {
	assert.Contains(t, describeClient("curl/8.4.0"), "curl")
	assert.Contains(t, describeClient("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"), "Safari")
}
