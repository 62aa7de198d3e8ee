package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samirrijal/trackmap/internal/adapters/aisstream"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/pkg/metrics"
)

type archive interface {
	Add(mmsi string, raw []byte, at time.Time) (string, error)
}

// collector archives every message and forwards position reports.
type collector struct {
	archive   archive
	publisher ports.EventPublisher
}

func newCollector(a archive, pub ports.EventPublisher) *collector {
	return &collector{archive: a, publisher: pub}
}

func (c *collector) handle(ctx context.Context, raw []byte, received time.Time) {
	mmsi, err := aisstream.MMSI(raw)
	if err != nil {
		metrics.AISMessages.WithLabelValues("invalid").Inc()
		slog.Debug("dropping ais message", "error", err)
		return
	}

	if file, err := c.archive.Add(mmsi, raw, received); err != nil {
		slog.Error("archive add failed", "mmsi", mmsi, "error", err)
	} else if file != "" {
		slog.Info("archive file written", "file", file)
	}

	pos, err := aisstream.DecodePositionReport(raw, received)
	if errors.Is(err, aisstream.ErrNotPosition) {
		metrics.AISMessages.WithLabelValues("other").Inc()
		return
	}
	if err != nil {
		metrics.AISMessages.WithLabelValues("invalid").Inc()
		slog.Debug("bad position report", "mmsi", mmsi, "error", err)
		return
	}
	metrics.AISMessages.WithLabelValues("position").Inc()

	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishShipPosition(ctx, &pos); err != nil {
		slog.Warn("publish position failed", "mmsi", mmsi, "error", err)
	}
}
