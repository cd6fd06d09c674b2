// Package activity records and queries the account's audit trail.
package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Recorder appends activity entries on behalf of the actor found in the
// request context. A failed write is logged and swallowed so the business
// operation that already committed is not reported as failed.
type Recorder struct {
	repo   activity.Repository
	logger *zap.Logger
}

// NewRecorder creates a new Recorder
func NewRecorder(repo activity.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record writes one entry. A nil Recorder is a no-op.
func (r *Recorder) Record(ctx context.Context, tenantID uuid.UUID, entry activity.Entry) {
	if r == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	log, err := activity.NewActivityLog(tenantID, actor, entry)
	if err == nil {
		err = r.repo.Create(ctx, log)
	}
	if err != nil {
		r.logger.Warn("Failed to record activity",
			zap.String("tenant_id", tenantID.String()),
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID.String()),
			zap.Error(err),
		)
	}
}
