package ports

import (
	"context"

	"github.com/scoresync/account-service/internal/core/domain"
)

// ActivityRecorder accepts audit events without blocking the caller.
type ActivityRecorder interface {
	Record(event domain.ActivityEvent)
}

// ActivityRepository persists audit events.
type ActivityRepository interface {
	InsertActivity(ctx context.Context, event domain.ActivityEvent) error
}
