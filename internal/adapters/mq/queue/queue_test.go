package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job(seq uint64) model.Job {
	return model.Job{Seq: seq, Lane: "volume:spotify", Action: action.SetVolume{Target: "spotify"}, Value: 0.5}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	assert.Equal(t, 0, q.Len())
	require.True(t, q.Enqueue(ctx, job(1)))
	assert.Equal(t, 1, q.Len())

	j := <-q.Dequeue()
	assert.Equal(t, uint64(1), j.Seq)
	assert.Equal(t, 0, q.Len())
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	require.True(t, q.Enqueue(ctx, job(1)))
	require.True(t, q.Enqueue(ctx, job(2)))
	assert.False(t, q.Enqueue(ctx, job(3)), "enqueue must fail when full")
	assert.Equal(t, 2, q.Cap())
}

func TestInMemoryQueue_Order(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()
	for i := uint64(1); i <= 5; i++ {
		q.Enqueue(ctx, job(i))
	}
	require.NoError(t, q.Close())

	var got []uint64
	for j := range q.Dequeue() {
		got = append(got, j.Seq)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, got, "queued jobs drain in order after close")
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Close())
	assert.NoError(t, q.Close(), "second close is a no-op")
	assert.True(t, q.IsClosed())
	assert.False(t, q.Enqueue(ctx, job(1)), "enqueue on a closed queue fails")

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, NewInMemoryQueue().Enqueue(cctx, job(1)), "enqueue with a canceled context fails")
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for j := uint64(0); j < 50; j++ {
				q.Enqueue(ctx, job(base+j))
			}
		}(uint64(i) * 100)
	}
	wg.Wait()

	assert.Equal(t, 500, q.Len())
}
