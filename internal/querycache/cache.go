// Package querycache is the keyed cache that backs the gateway's derived views.
// Entries are raw JSON documents that can be read, written, marked stale and
// deleted; the Client on top of a Store adds fetch coalescing and cancellation of
// in-flight fetches.
package querycache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrFetchCanceled = errors.New("fetch canceled by a newer write")
)

type Key string

// Entry is one cached document. Stale entries are still readable but the next
// Fetch goes to the source.
type Entry struct {
	Data      []byte    `json:"data"`
	Stale     bool      `json:"stale"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	Get(ctx context.Context, key Key) (Entry, error)
	Set(ctx context.Context, key Key, e Entry) error
	MarkStale(ctx context.Context, key Key) error
	Delete(ctx context.Context, key Key) error
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
