package main

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/samirrijal/trackmap/internal/adapters/aisstream"
	"github.com/samirrijal/trackmap/internal/core/domain"
)

type trackStore interface {
	Get(ctx context.Context, id string) (*domain.Track, error)
	Import(ctx context.Context, coll domain.TrackCollection) ([]string, error)
}

// accumulator buffers live positions per vessel and appends them to the
// stored tracks on Flush.
type accumulator struct {
	store trackStore

	mu      sync.Mutex
	pending map[string][]domain.ShipPosition
}

func newAccumulator(store trackStore) *accumulator {
	return &accumulator{store: store, pending: map[string][]domain.ShipPosition{}}
}

// Add is the subscription handler.
func (a *accumulator) Add(ctx context.Context, pos *domain.ShipPosition) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[pos.MMSI] = append(a.pending[pos.MMSI], *pos)
	return nil
}

// Flush merges buffered positions into stored tracks, one import for all
// vessels. On failure the buffer is kept for the next flush.
func (a *accumulator) Flush(ctx context.Context) error {
	a.mu.Lock()
	pending := a.pending
	a.pending = map[string][]domain.ShipPosition{}
	a.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	mmsis := make([]string, 0, len(pending))
	for m := range pending {
		mmsis = append(mmsis, m)
	}
	sort.Strings(mmsis)

	var coll domain.TrackCollection
	for _, mmsi := range mmsis {
		fresh := aisstream.Track(mmsi, pending[mmsi])
		existing, err := a.store.Get(ctx, fresh.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			a.requeue(pending)
			return err
		default:
			fresh.Points = append(existing.Points, fresh.Points...)
			fresh.SortByTime()
		}
		coll.Tracks = append(coll.Tracks, fresh)
	}

	if _, err := a.store.Import(ctx, coll); err != nil {
		a.requeue(pending)
		return err
	}
	slog.Info("live positions stored", "vessels", len(mmsis))
	return nil
}

func (a *accumulator) requeue(pending map[string][]domain.ShipPosition) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for m, ps := range pending {
		a.pending[m] = append(ps, a.pending[m]...)
	}
}
