package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/trackmap/internal/adapters/aisstream"
	natsadapter "github.com/samirrijal/trackmap/internal/adapters/nats"
	"github.com/samirrijal/trackmap/internal/adapters/parquet"
	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("trackmap-collector")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.AIS.APIKey == "" {
		log.Fatal("ais.api_key is required (TRACKMAP_AIS_API_KEY)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer, err := parquet.NewArchiveWriter(cfg.AIS.OutputDir, cfg.AIS.MaxRecords)
	if err != nil {
		log.Fatalf("archive: %v", err)
	}

	// Position events are optional; the archive is the record.
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, positions will only be archived", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	done := make(chan struct{})
	go func() {
		writer.Run(ctx, cfg.AIS.FlushInterval)
		close(done)
	}()

	client := aisstream.NewClient(cfg.AIS.URL, cfg.AIS.APIKey, bootstrap.AISBoxes(cfg)...)
	c := newCollector(writer, publisher)
	go func() {
		if err := client.Run(ctx, c.handle); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("ais stream stopped", "error", err)
			cancel()
		}
	}()

	slog.Info("AIS collector started",
		"output_dir", cfg.AIS.OutputDir,
		"flush_interval", cfg.AIS.FlushInterval.String(),
		"max_records", cfg.AIS.MaxRecords,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("received signal, shutting down collector", "signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	// The writer flushes whatever is buffered before returning.
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		slog.Error("final archive flush timed out")
	}
	slog.Info("collector stopped")
}
