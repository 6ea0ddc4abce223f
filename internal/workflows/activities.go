package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

// ActivityDeleteBlob is the registered name of PurgeActivities.DeleteBlob.
const ActivityDeleteBlob = "DeleteBlob"

// PurgeActivities holds the activity implementations of the purge workflow.
type PurgeActivities struct {
	Blobs ports.BlobStore
}

// DeleteBlob removes one stored file. Missing files count as deleted.
func (a *PurgeActivities) DeleteBlob(ctx context.Context, storageID string) error {
	if err := a.Blobs.Delete(ctx, storageID); err != nil {
		return fmt.Errorf("delete blob %s: %w", storageID, err)
	}
	activity.GetLogger(ctx).Info("Blob deleted", "storage_id", storageID)
	metrics.BlobsPurged.Inc()
	return nil
}
