package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-parts-gateway/internal/querycache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	TotalItems int `json:"total_items"`
}

func TestClient_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("miss_then_hit", func(t *testing.T) {
		c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})
		var calls int32

		fn := func(ctx context.Context) ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			return []byte(`{"total_items":3}`), nil
		}

		first, err := c.Fetch(ctx, "cart-summary:u1", fn)
		require.NoError(t, err)
		second, err := c.Fetch(ctx, "cart-summary:u1", fn)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("stale_entry_is_refetched", func(t *testing.T) {
		c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})
		require.NoError(t, c.Write(ctx, "k", []byte(`{"total_items":1}`)))
		require.NoError(t, c.Invalidate(ctx, "k"))

		got, err := querycache.FetchJSON(ctx, c, "k", func(ctx context.Context) (summary, error) {
			return summary{TotalItems: 7}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got.TotalItems)

		e, ok, err := c.Read(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, e.Stale)
	})

	t.Run("aged_entry_is_refetched", func(t *testing.T) {
		c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{StaleTime: time.Millisecond})
		require.NoError(t, c.Write(ctx, "k", []byte(`1`)))
		time.Sleep(5 * time.Millisecond)

		got, err := c.Fetch(ctx, "k", func(ctx context.Context) ([]byte, error) {
			return []byte(`2`), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []byte(`2`), got)
	})

	t.Run("source_error_is_returned_and_not_cached", func(t *testing.T) {
		c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})
		boom := errors.New("upstream down")

		_, err := c.Fetch(ctx, "k", func(ctx context.Context) ([]byte, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		_, ok, err := c.Read(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent_fetches_are_coalesced", func(t *testing.T) {
		c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})
		release := make(chan struct{})
		var calls int32

		fn := func(ctx context.Context) ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return []byte(`{}`), nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.Fetch(ctx, "k", fn)
				assert.NoError(t, err)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestClient_CancelFetch(t *testing.T) {
	ctx := context.Background()
	c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})

	started := make(chan struct{})
	release := make(chan struct{})
	var fetchCtxErr atomic.Value

	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, "cart:u1:active", func(fctx context.Context) ([]byte, error) {
			close(started)
			<-release
			if fctx.Err() != nil {
				fetchCtxErr.Store(fctx.Err())
			}
			return []byte(`"server"`), nil
		})
		done <- err
	}()

	<-started
	c.CancelFetch("cart:u1:active")
	require.NoError(t, c.Write(ctx, "cart:u1:active", []byte(`"optimistic"`)))
	close(release)

	err := <-done
	assert.ErrorIs(t, err, querycache.ErrFetchCanceled)
	assert.Equal(t, context.Canceled, fetchCtxErr.Load())

	e, ok, err := c.Read(ctx, "cart:u1:active")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`"optimistic"`), e.Data)
}

func TestClient_Restore(t *testing.T) {
	ctx := context.Background()
	c := querycache.NewClient(querycache.NewMemoryStore(), querycache.Options{})

	t.Run("present_entry_is_put_back_exactly", func(t *testing.T) {
		require.NoError(t, c.Write(ctx, "k", []byte(`{"a":1}`)))
		before, ok, err := c.Read(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, c.Write(ctx, "k", []byte(`{"a":2}`)))
		require.NoError(t, c.Restore(ctx, "k", before, true))

		after, ok, err := c.Read(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("absent_entry_is_deleted", func(t *testing.T) {
		require.NoError(t, c.Write(ctx, "missing-before", []byte(`1`)))
		require.NoError(t, c.Restore(ctx, "missing-before", querycache.Entry{}, false))

		_, ok, err := c.Read(ctx, "missing-before")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := querycache.NewMemoryStore()
	data := []byte(`abc`)
	require.NoError(t, s.Set(ctx, "k", querycache.Entry{Data: data}))
	data[0] = 'x'

	e, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`abc`), e.Data)

	e.Data[0] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`abc`), again.Data)
}

func TestMemoryStore_MarkStaleMissingKey(t *testing.T) {
	s := querycache.NewMemoryStore()
	assert.NoError(t, s.MarkStale(context.Background(), "nope"))

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, querycache.ErrCacheMiss)
}
