package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDeliversPayload(t *testing.T) {
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	q := NewQueue("gc", func(ctx context.Context, job Job) error {
		mu.Lock()
		got = append(got, job.Payload)
		mu.Unlock()
		close(done)
		return nil
	}, QueueConfig{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "storage.gc", Payload: "wallpapers/a.jpg"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"wallpapers/a.jpg"}, got)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("gc", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{Payload: "x"}))
}
