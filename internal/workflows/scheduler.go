package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

// TemporalScheduler implements ports.PurgeScheduler by starting a
// MediaPurgeWorkflow per request.
type TemporalScheduler struct {
	client    client.Client
	taskQueue string
}

// NewTemporalScheduler creates a scheduler on taskQueue.
func NewTemporalScheduler(c client.Client, taskQueue string) *TemporalScheduler {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &TemporalScheduler{client: c, taskQueue: taskQueue}
}

// SchedulePurge starts the workflow and returns without waiting for it.
func (s *TemporalScheduler) SchedulePurge(ctx context.Context, storageIDs []string) error {
	if len(storageIDs) == 0 {
		return nil
	}
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "media-purge-" + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}, MediaPurgeWorkflow, MediaPurgeInput{StorageIDs: storageIDs})
	if err != nil {
		return fmt.Errorf("start media purge: %w", err)
	}
	slog.InfoContext(ctx, "media purge scheduled", "workflow_id", run.GetID(), "files", len(storageIDs))
	return nil
}

// NewWorker returns a worker serving the purge workflow and its activities.
func NewWorker(c client.Client, taskQueue string, acts *PurgeActivities) worker.Worker {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(MediaPurgeWorkflow)
	w.RegisterActivity(acts)
	return w
}

// DirectPurger implements ports.PurgeScheduler without Temporal by
// deleting files inline. Failures are logged and dropped.
type DirectPurger struct {
	Blobs ports.BlobStore
}

func (p *DirectPurger) SchedulePurge(ctx context.Context, storageIDs []string) error {
	for _, id := range storageIDs {
		if err := p.Blobs.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "blob purge failed", "storage_id", id, "error", err)
			continue
		}
		metrics.BlobsPurged.Inc()
	}
	return nil
}
