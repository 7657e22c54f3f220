// Package notify delivers per-user notifications produced by task
// mutations. Delivery is best-effort: a failed insert for one
// recipient is logged and never blocks the others, and callers never
// roll back the mutation that triggered the fan-out.
package notify

import (
	"context"
	"log"
	"time"

	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

// Notifier receives a fan-out after a mutation has committed.
type Notifier interface {
	Notify(ctx context.Context, userIDs []int64, typ, content string, relatedID *int64)
}

// Store writes one notification row per recipient.
type Store struct {
	Repo repo.Repo
	Log  *log.Logger
	Now  func() time.Time
}

func (s Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Store) Notify(ctx context.Context, userIDs []int64, typ, content string, relatedID *int64) {
	createdAt := s.now().UTC().Format(time.RFC3339)
	for _, id := range userIDs {
		err := s.Repo.InsertNotification(ctx, domain.Notification{
			UserID:    id,
			Type:      typ,
			Content:   content,
			RelatedID: relatedID,
			CreatedAt: createdAt,
		})
		if err != nil && s.Log != nil {
			s.Log.Printf("notify: user %d type %s: %v", id, typ, err)
		}
	}
}
