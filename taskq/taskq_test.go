package taskq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/database"
)

func TestSerialExecute(t *testing.T) {
	q := New(nil)
	defer q.Close()
	ctx := context.Background()
	var inflight int32
	var maxInflight int32
	counter := 0
	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Do(ctx, q, "incr", func(ctx context.Context, db database.IDatabase) (int, error) {
				cur := atomic.AddInt32(&inflight, 1)
				defer atomic.AddInt32(&inflight, -1)
				if cur > atomic.LoadInt32(&maxInflight) {
					atomic.StoreInt32(&maxInflight, cur)
				}
				counter++
				time.Sleep(time.Millisecond)
				return counter, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, int32(1), maxInflight)
}

func TestFIFO(t *testing.T) {
	q := New(nil)
	defer q.Close()
	ctx := context.Background()
	order := make([]int, 0, 10)
	ps := make([]*Promise[int], 0, 10)
	for i := 0; i < 10; i++ {
		idx := i
		ps = append(ps, Submit(ctx, q, "order", func(ctx context.Context, db database.IDatabase) (int, error) {
			order = append(order, idx)
			return idx, nil
		}))
	}
	for i, p := range ps {
		v, err := p.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestWaitOr(t *testing.T) {
	q := New(nil)
	defer q.Close()
	ctx := context.Background()
	p := Submit(ctx, q, "fail", func(ctx context.Context, db database.IDatabase) (string, error) {
		return "", errors.New("boom")
	})
	assert.Equal(t, "default", p.WaitOr(ctx, "default"))
	p = Submit(ctx, q, "succ", func(ctx context.Context, db database.IDatabase) (string, error) {
		return "value", nil
	})
	assert.Equal(t, "value", p.WaitOr(ctx, "default"))
}

func TestPanicTask(t *testing.T) {
	q := New(nil)
	defer q.Close()
	ctx := context.Background()
	_, err := Do(ctx, q, "panic", func(ctx context.Context, db database.IDatabase) (int, error) {
		panic("bad task")
	})
	assert.Error(t, err)
	v, err := Do(ctx, q, "after", func(ctx context.Context, db database.IDatabase) (int, error) {
		return 7, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestClosedQueue(t *testing.T) {
	q := New(nil)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	_, err := Do(context.Background(), q, "closed", func(ctx context.Context, db database.IDatabase) (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestObserver(t *testing.T) {
	var names []string
	var mu sync.Mutex
	q := New(nil, WithQueueSize(1), WithObserver(func(name string, wait, cost time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, name)
	}))
	ctx := context.Background()
	_, err := Do(ctx, q, "observed", func(ctx context.Context, db database.IDatabase) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	require.NoError(t, q.Close())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"observed"}, names)
}
