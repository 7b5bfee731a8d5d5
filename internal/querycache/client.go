package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc func(ctx context.Context) ([]byte, error)

type Options struct {
	// StaleTime is how long a fetched entry is served without refetching.
	// Zero keeps entries fresh until they are explicitly marked stale.
	StaleTime time.Duration
	Logger    *zap.Logger
}

type Client struct {
	store     Store
	staleTime time.Duration
	logger    *zap.Logger
	now       func() time.Time

	sfg singleflight.Group

	mu       sync.Mutex
	inflight map[Key]*flight
}

// flight is one running fetch. Its mutex orders the cache write against
// CancelFetch for that key only.
type flight struct {
	cancel context.CancelFunc

	mu       sync.Mutex
	canceled bool
}

func NewClient(store Store, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		store:     store,
		staleTime: opts.StaleTime,
		logger:    opts.Logger.Named("querycache"),
		now:       time.Now,
		inflight:  make(map[Key]*flight),
	}
}

// Fetch returns the cached document for key when it is fresh, otherwise it runs fn
// and stores the result. Concurrent fetches of one key share a single call to fn.
// If CancelFetch is called for the key while fn runs, the result is dropped and
// ErrFetchCanceled is returned.
func (c *Client) Fetch(ctx context.Context, key Key, fn FetchFunc) ([]byte, error) {
	e, err := c.store.Get(ctx, key)
	if err == nil && c.fresh(e) {
		return e.Data, nil
	}
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("cache read failed, fetching from source", zap.String("key", string(key)), zap.Error(err))
	}

	ch := c.sfg.DoChan(string(key), func() (interface{}, error) {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()

		f := c.begin(key, cancel)
		defer c.finish(key, f)

		data, err := fn(fctx)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.canceled {
			return nil, ErrFetchCanceled
		}
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(fctx, key, Entry{Data: data, UpdatedAt: c.now()}); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", string(key)), zap.Error(err))
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]byte)), nil
	}
}

// CancelFetch aborts the in-flight fetch of key, if any, and guarantees that no
// fetch started before this call will write to the cache.
func (c *Client) CancelFetch(key Key) {
	c.mu.Lock()
	f, ok := c.inflight[key]
	if ok {
		delete(c.inflight, key)
		c.sfg.Forget(string(key))
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	// Waits for a write already under way, so the caller's own write lands last.
	f.mu.Lock()
	f.canceled = true
	f.mu.Unlock()
	f.cancel()
}

// Read returns the current entry without fetching. ok is false on a miss.
func (c *Client) Read(ctx context.Context, key Key) (Entry, bool, error) {
	e, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (c *Client) Write(ctx context.Context, key Key, data []byte) error {
	return c.store.Set(ctx, key, Entry{Data: data, UpdatedAt: c.now()})
}

// Restore puts back an entry captured by Read. A key that was absent is deleted.
func (c *Client) Restore(ctx context.Context, key Key, e Entry, present bool) error {
	if !present {
		return c.store.Delete(ctx, key)
	}
	return c.store.Set(ctx, key, e)
}

func (c *Client) Invalidate(ctx context.Context, key Key) error {
	return c.store.MarkStale(ctx, key)
}

func (c *Client) Remove(ctx context.Context, key Key) error {
	return c.store.Delete(ctx, key)
}

func (c *Client) fresh(e Entry) bool {
	if e.Stale {
		return false
	}
	if c.staleTime <= 0 {
		return true
	}
	return c.now().Sub(e.UpdatedAt) < c.staleTime
}

func (c *Client) begin(key Key, cancel context.CancelFunc) *flight {
	f := &flight{cancel: cancel}

	c.mu.Lock()
	c.inflight[key] = f
	c.mu.Unlock()
	return f
}

func (c *Client) finish(key Key, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[key] == f {
		delete(c.inflight, key)
	}
}

// FetchJSON is Fetch for a typed document.
func FetchJSON[T any](ctx context.Context, c *Client, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	data, err := c.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

// ReadJSON decodes the current entry for key. ok is false on a miss.
func ReadJSON[T any](ctx context.Context, c *Client, key Key) (T, bool, error) {
	var out T
	e, ok, err := c.Read(ctx, key)
	if err != nil || !ok {
		return out, ok, err
	}
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

func WriteJSON[T any](ctx context.Context, c *Client, key Key, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Write(ctx, key, data)
}
