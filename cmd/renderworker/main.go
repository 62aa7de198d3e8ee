package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/trackmap/internal/adapters/nats"
	"github.com/samirrijal/trackmap/internal/adapters/valkey"
	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
	"github.com/samirrijal/trackmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("trackmap-renderworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Artifacts live in valkey; without it there is nowhere to keep them.
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	render, err := bootstrap.RenderService(cfg, pub, cache)
	if err != nil {
		log.Fatalf("render service: %v", err)
	}
	storms, err := bootstrap.StormService(cfg, cache)
	if err != nil {
		log.Fatalf("storm service: %v", err)
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// Batch requests arrive over NATS and each starts one workflow.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()
	if err := sub.SubscribeBatchRequests(ctx, startBatch(c, cfg.Temporal.TaskQueue)); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.BatchRenderWorkflow)
	w.RegisterActivity(&workflows.BatchActivities{
		Render:      render,
		Storms:      storms,
		Artifacts:   cache,
		Publisher:   pub,
		ArtifactTTL: cfg.Render.ArtifactTTL,
	})

	slog.Info("render worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// startBatch returns the NATS handler that hands a request to Temporal.
// The workflow ID is derived from the batch ID, so redeliveries are no-ops.
func startBatch(c client.Client, taskQueue string) func(context.Context, *domain.BatchRequest) error {
	return func(ctx context.Context, req *domain.BatchRequest) error {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        workflows.WorkflowID(req.ID),
			TaskQueue: taskQueue,
		}, workflows.BatchRenderWorkflow, *req)
		if err != nil {
			return err
		}
		slog.Info("batch workflow started", "batch", req.ID, "run_id", run.GetRunID(), "storms", len(req.Storms))
		return nil
	}
}
