package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/samirrijal/trackmap/internal/adapters/duckdb"
	natsadapter "github.com/samirrijal/trackmap/internal/adapters/nats"
	"github.com/samirrijal/trackmap/internal/adapters/postgres"
	"github.com/samirrijal/trackmap/internal/adapters/shipcsv"
	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/usecases"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
)

const usage = `usage:
  ingestor ships [DIR...]          load ship CSV directories (default ships.data_dir)
  ingestor storms YEAR [YEAR...]   load every storm of the given seasons
  ingestor archive FROM TO [MMSI]  load AIS parquet archive tracks (dates as 2006-01-02)
  ingestor positions               follow live positions from NATS`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load("trackmap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	tracks := usecases.NewTrackService(postgres.NewTrackRepo(db), nil)

	args := os.Args[2:]
	switch os.Args[1] {
	case "ships":
		err = ingestShips(ctx, cfg, tracks, args)
	case "storms":
		err = ingestStorms(ctx, cfg, tracks, args)
	case "archive":
		err = ingestArchive(ctx, cfg, tracks, args)
	case "positions":
		err = followPositions(ctx, cfg, tracks)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
	slog.Info("ingestion complete")
}

func ingestShips(ctx context.Context, cfg *config.Config, tracks *usecases.TrackService, dirs []string) error {
	if len(dirs) == 0 {
		dirs = []string{cfg.Ships.DataDir}
	}
	palette := shipcsv.NewPalette(cfg.Ships.Seed)
	for _, dir := range dirs {
		coll, skipped, err := shipcsv.LoadDir(dir, palette)
		if err != nil {
			return fmt.Errorf("load %s: %w", dir, err)
		}
		ids, err := tracks.Import(ctx, coll)
		if err != nil {
			return err
		}
		slog.Info("ships imported", "dir", dir, "tracks", len(ids), "skipped", skipped.Count)
	}
	return nil
}

func ingestStorms(ctx context.Context, cfg *config.Config, tracks *usecases.TrackService, years []string) error {
	if len(years) == 0 {
		return fmt.Errorf("at least one year is required")
	}
	archive, err := bootstrap.StormArchive(cfg)
	if err != nil {
		return err
	}
	if archive == nil {
		return fmt.Errorf("no best-track archive for basin %q", cfg.Storms.Basin)
	}

	for _, y := range years {
		year, err := strconv.Atoi(y)
		if err != nil {
			return fmt.Errorf("invalid year %q", y)
		}
		summaries, err := archive.StormsByYear(ctx, year)
		if err != nil {
			return err
		}
		var coll domain.TrackCollection
		for _, s := range summaries {
			storm, err := archive.StormByID(ctx, s.ID)
			if err != nil {
				slog.Warn("skipping storm", "id", s.ID, "storm", s.Name, "error", err)
				continue
			}
			coll.Tracks = append(coll.Tracks, *storm)
		}
		ids, err := tracks.Import(ctx, coll)
		if err != nil {
			return err
		}
		slog.Info("storms imported", "year", year, "tracks", len(ids))
	}
	return nil
}

func ingestArchive(ctx context.Context, cfg *config.Config, tracks *usecases.TrackService, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("FROM and TO dates are required")
	}
	from, err := time.Parse(time.DateOnly, args[0])
	if err != nil {
		return fmt.Errorf("invalid FROM: %w", err)
	}
	to, err := time.Parse(time.DateOnly, args[1])
	if err != nil {
		return fmt.Errorf("invalid TO: %w", err)
	}
	to = to.Add(24*time.Hour - time.Nanosecond)
	var mmsi string
	if len(args) > 2 {
		mmsi = args[2]
	}

	archive, err := duckdb.Open(cfg.AIS.OutputDir)
	if err != nil {
		return err
	}
	defer archive.Close()

	ships, err := archive.Tracks(ctx, from, to, mmsi)
	if err != nil {
		return err
	}
	ids, err := tracks.Import(ctx, domain.TrackCollection{Tracks: ships})
	if err != nil {
		return err
	}
	slog.Info("archive imported", "from", args[0], "to", args[1], "tracks", len(ids))
	return nil
}

func followPositions(ctx context.Context, cfg *config.Config, tracks *usecases.TrackService) error {
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer sub.Close()

	acc := newAccumulator(tracks)
	if err := sub.SubscribeShipPositions(ctx, acc.Add); err != nil {
		return err
	}
	slog.Info("following live positions", "flush_interval", cfg.AIS.FlushInterval.String())

	ticker := time.NewTicker(cfg.AIS.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Flush with a fresh context; ctx is already cancelled.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return acc.Flush(flushCtx)
		case <-ticker.C:
			if err := acc.Flush(ctx); err != nil {
				slog.Error("position flush failed", "error", err)
			}
		}
	}
}
