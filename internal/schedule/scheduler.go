package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignite/group-mailer/internal/pkg/logger"
)

// ContentPutter is the content-store surface the scheduler consumes.
type ContentPutter interface {
	Put(ctx context.Context, key string, raw []byte, metadata map[string]string) error
}

// Inserter is the index surface the scheduler consumes.
type Inserter interface {
	Insert(ctx context.Context, group, bucketKey, contentRef string) error
}

// Scheduler files a message for future delivery: content blob first, then
// the index entry pointing at it. The two writes are not atomic; a failed
// index write leaves an orphaned blob behind, which is logged rather than
// rolled back.
type Scheduler struct {
	content ContentPutter
	index   Inserter
	newKey  func() string
}

// NewScheduler creates a scheduler. newKey generates content blob keys.
func NewScheduler(content ContentPutter, index Inserter, newKey func() string) *Scheduler {
	return &Scheduler{content: content, index: index, newKey: newKey}
}

// Schedule validates and stores the message for the given group, returning
// the blob metadata for the caller's receipt. The index entry lands in the
// hour bucket derived from the message's schedule_on timestamp.
func (s *Scheduler) Schedule(ctx context.Context, group string, msg Message) (map[string]string, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	key := s.newKey()
	scheduledAt := msg.ScheduledAt()
	metadata := map[string]string{
		"group":     group,
		"subject":   msg.Subject,
		"scheduled": scheduledAt.Format(time.DateTime),
		"key":       key,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message content: %w", err)
	}

	logger.Info("saving message content", "group", group, "key", key)
	if err := s.content.Put(ctx, key, raw, metadata); err != nil {
		return nil, err
	}

	if err := s.index.Insert(ctx, group, BucketKey(scheduledAt), key); err != nil {
		// Content blob is already written; it stays orphaned.
		logger.Error("index write failed after content write", "group", group, "orphaned_key", key, "error", err)
		return nil, err
	}

	logger.Info("message scheduled", "group", group, "key", key, "bucket", BucketKey(scheduledAt))
	return metadata, nil
}
