package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/scoresync/account-service/internal/core/domain"
)

const (
	defaultActivityStream = "accounts:activity"
	activityStreamMaxLen  = 100_000
)

// ActivityStream appends account audit events to a capped Redis stream.
type ActivityStream struct {
	client *redis.Client
	stream string
}

func NewActivityStream(client *redis.Client) *ActivityStream {
	return &ActivityStream{client: client, stream: defaultActivityStream}
}

func (s *ActivityStream) InsertActivity(ctx context.Context, event domain.ActivityEvent) error {
	values := map[string]any{
		"username": event.Username,
		"kind":     string(event.Kind),
		"at":       formatTime(event.At),
	}
	if event.Detail != "" {
		values["detail"] = event.Detail
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: activityStreamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return storeErr("append activity", err)
	}
	return nil
}
