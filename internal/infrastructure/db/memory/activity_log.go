package memory

import (
	"context"
	"sync"

	"github.com/scoresync/account-service/internal/core/domain"
)

// ActivityLog keeps audit events in memory.
type ActivityLog struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) InsertActivity(_ context.Context, event domain.ActivityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a snapshot of the recorded events in insertion order.
func (l *ActivityLog) Events() []domain.ActivityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ActivityEvent(nil), l.events...)
}
