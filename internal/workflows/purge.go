package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DefaultTaskQueue is the queue the purge worker polls.
const DefaultTaskQueue = "media-purge"

// MediaPurgeInput lists the stored files to delete.
type MediaPurgeInput struct {
	StorageIDs []string
}

// MediaPurgeResult reports what a purge run did.
type MediaPurgeResult struct {
	Deleted int
	Failed  []string
}

// MediaPurgeWorkflow deletes the files of removed media. Each file is a
// separate activity so one bad blob does not block the others; files that
// still fail after the retries are reported, not retried forever.
func MediaPurgeWorkflow(ctx workflow.Context, input MediaPurgeInput) (*MediaPurgeResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting media purge", "files", len(input.StorageIDs))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	futures := make([]workflow.Future, len(input.StorageIDs))
	for i, id := range input.StorageIDs {
		futures[i] = workflow.ExecuteActivity(ctx, ActivityDeleteBlob, id)
	}

	res := &MediaPurgeResult{}
	for i, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			logger.Warn("blob purge failed", "storage_id", input.StorageIDs[i], "error", err)
			res.Failed = append(res.Failed, input.StorageIDs[i])
			continue
		}
		res.Deleted++
	}

	logger.Info("Media purge finished", "deleted", res.Deleted, "failed", len(res.Failed))
	return res, nil
}
