package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

type fakeStore struct {
	tracks    map[string]domain.Track
	importErr error
	imports   int
}

func (f *fakeStore) Get(ctx context.Context, id string) (*domain.Track, error) {
	t, ok := f.tracks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) Import(ctx context.Context, coll domain.TrackCollection) ([]string, error) {
	if f.importErr != nil {
		return nil, f.importErr
	}
	f.imports++
	var ids []string
	for _, t := range coll.Tracks {
		f.tracks[t.ID] = t
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func fix(mmsi string, lon float64, at time.Time) *domain.ShipPosition {
	return &domain.ShipPosition{
		MMSI: mmsi,
		TrackPoint: domain.TrackPoint{
			Position: domain.Position{Lon: lon, Lat: 10},
			Time:     at,
		},
	}
}

func TestAccumulatorAppends(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{tracks: map[string]domain.Track{}}
	acc := newAccumulator(store)
	t0 := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	_ = acc.Add(ctx, fix("1", 179, t0))
	_ = acc.Add(ctx, fix("2", 0, t0))
	if err := acc.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	_ = acc.Add(ctx, fix("1", -179, t0.Add(time.Hour)))
	if err := acc.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if len(store.tracks) != 2 || store.imports != 2 {
		t.Fatalf("tracks %d imports %d", len(store.tracks), store.imports)
	}
	for _, tr := range store.tracks {
		if tr.Name == "Vessel 1" && (len(tr.Points) != 2 || tr.Points[1].Lon != -179) {
			t.Errorf("vessel 1 points = %+v", tr.Points)
		}
	}

	if err := acc.Flush(ctx); err != nil || store.imports != 2 {
		t.Errorf("empty flush should not import: %v, %d", err, store.imports)
	}
}

func TestAccumulatorRequeuesOnFailure(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{tracks: map[string]domain.Track{}, importErr: errors.New("db down")}
	acc := newAccumulator(store)

	_ = acc.Add(ctx, fix("1", 5, time.Now()))
	if err := acc.Flush(ctx); err == nil {
		t.Fatal("expected error")
	}

	store.importErr = nil
	if err := acc.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if len(store.tracks) != 1 {
		t.Errorf("requeued position lost: %d tracks", len(store.tracks))
	}
}
