package cart

import (
	"context"
	"encoding/json"
	"errors"

	"go-parts-gateway/internal/querycache"

	"go.uber.org/zap"
)

// MutationState tracks one optimistic cart mutation:
// Idle -> Patched -> Confirmed | RolledBack -> Idle.
type MutationState int

const (
	StateIdle MutationState = iota
	StatePatched
	StateConfirmed
	StateRolledBack
)

func (s MutationState) String() string {
	switch s {
	case StatePatched:
		return "patched"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

var errNotPrepared = errors.New("mutation snapshot was not captured")

type snapshot struct {
	entry   querycache.Entry
	present bool
}

type mutation struct {
	cache  *querycache.Client
	logger *zap.Logger
	keys   []querycache.Key

	state     MutationState
	outcome   MutationState
	prepared  bool
	snapshots map[querycache.Key]snapshot
}

func newMutation(cache *querycache.Client, logger *zap.Logger, keys ...querycache.Key) *mutation {
	return &mutation{
		cache:     cache,
		logger:    logger,
		keys:      keys,
		state:     StateIdle,
		snapshots: make(map[querycache.Key]snapshot, len(keys)),
	}
}

// prepare cancels in-flight fetches of every key and captures the snapshots.
// It must run before the patch and before the upstream call.
func (m *mutation) prepare(ctx context.Context) error {
	for _, k := range m.keys {
		m.cache.CancelFetch(k)
	}
	for _, k := range m.keys {
		e, ok, err := m.cache.Read(ctx, k)
		if err != nil {
			return err
		}
		m.snapshots[k] = snapshot{entry: e, present: ok}
	}
	m.prepared = true
	return nil
}

// patch applies fn to the cache. A patch is only attempted on a prepared mutation,
// since without snapshots it could not be undone.
func (m *mutation) patch(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.prepared {
		return errNotPrepared
	}
	m.state = StatePatched
	return fn(ctx)
}

// settle reconciles after the upstream call: callErr restores every snapshot,
// success keeps the patch. All keys are then marked stale so the next read goes
// to the backend. callErr is returned unchanged.
func (m *mutation) settle(ctx context.Context, callErr error) error {
	if callErr != nil {
		if m.prepared {
			for _, k := range m.keys {
				s := m.snapshots[k]
				if err := m.cache.Restore(ctx, k, s.entry, s.present); err != nil {
					m.logger.Error("cart rollback failed", zap.String("key", string(k)), zap.Error(err))
				}
			}
		}
		m.state = StateRolledBack
	} else {
		m.state = StateConfirmed
	}
	m.outcome = m.state

	for _, k := range m.keys {
		if err := m.cache.Invalidate(ctx, k); err != nil {
			m.logger.Warn("cart invalidate failed", zap.String("key", string(k)), zap.Error(err))
		}
	}

	m.state = StateIdle
	return callErr
}

// view decodes the snapshot of key. ok is false when the key was not cached.
func (m *mutation) view(key querycache.Key, out any) (bool, error) {
	s, found := m.snapshots[key]
	if !found || !s.present {
		return false, nil
	}
	if err := json.Unmarshal(s.entry.Data, out); err != nil {
		return false, err
	}
	return true, nil
}
