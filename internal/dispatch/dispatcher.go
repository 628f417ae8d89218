package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/group-mailer/internal/groups"
	"github.com/ignite/group-mailer/internal/mailer"
	"github.com/ignite/group-mailer/internal/pkg/logger"
	"github.com/ignite/group-mailer/internal/schedule"
)

// Index is the schedule-index surface the dispatcher consumes.
type Index interface {
	QueryByBucket(ctx context.Context, bucketKey string) ([]schedule.Entry, error)
	MarkSent(ctx context.Context, group, bucketKey string) error
}

// SubscriberLister resolves a group to its subscriber list.
type SubscriberLister interface {
	ListByGroup(ctx context.Context, group string) ([]groups.Subscriber, error)
}

// ContentGetter fetches a stored message blob by its content ref.
type ContentGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Sender delivers one outbound email.
type Sender interface {
	Send(ctx context.Context, email mailer.Email) error
}

// Dispatcher finds due scheduled messages and delivers them. Each
// invocation is independent and single-threaded; overlapping invocations
// are not locked out and may double-send. Entries move Scheduled → Sent
// with no failed or retrying state: an entry whose dispatch fails stays
// unsent and is only rediscovered while its bucket is still being queried.
type Dispatcher struct {
	index       Index
	subscribers SubscriberLister
	content     ContentGetter
	sender      Sender
	lookback    int
	now         func() time.Time
}

// New creates a dispatcher over the given collaborators.
func New(index Index, subscribers SubscriberLister, content ContentGetter, sender Sender) *Dispatcher {
	return &Dispatcher{
		index:       index,
		subscribers: subscribers,
		content:     content,
		sender:      sender,
		now:         time.Now,
	}
}

// SetLookback widens each run to also query the given number of previous
// hour buckets, recovering entries whose hour passed without a run.
// Zero queries the current hour only.
func (d *Dispatcher) SetLookback(buckets int) {
	d.lookback = buckets
}

// SetClock overrides the wall clock. The clock must match the one the
// scheduler derived bucket keys from, or due entries are never found.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Run performs one dispatch invocation: query the current bucket (plus any
// lookback buckets), filter unsent entries, and deliver each one
// independently. A failing entry is logged and skipped, never blocking the
// rest of the batch; the joined failures are returned so the trigger layer
// still sees the invocation as failed.
func (d *Dispatcher) Run(ctx context.Context) error {
	now := d.now()
	buckets := schedule.BucketKeys(now, d.lookback)

	var due []schedule.Entry
	for _, bucket := range buckets {
		entries, err := d.index.QueryByBucket(ctx, bucket)
		if err != nil {
			return fmt.Errorf("querying due messages: %w", err)
		}
		for _, entry := range entries {
			if !entry.Sent {
				due = append(due, entry)
			}
		}
	}

	logger.Info("dispatch run", "buckets", buckets, "due", len(due))

	var errs []error
	for _, entry := range due {
		if err := d.dispatchOne(ctx, entry); err != nil {
			logger.Error("dispatch failed",
				"group", entry.GroupName,
				"bucket", entry.ScheduledDate,
				"key", entry.MessageKey,
				"error", err)
			errs = append(errs, fmt.Errorf("%s/%s: %w", entry.ScheduledDate, entry.GroupName, err))
		}
	}

	return errors.Join(errs...)
}

// dispatchOne resolves, sends, and marks a single entry. The entry is
// marked sent only after the send call returns; a crash in between sends
// again on the next run inside the same bucket window.
func (d *Dispatcher) dispatchOne(ctx context.Context, entry schedule.Entry) error {
	subscribers, err := d.subscribers.ListByGroup(ctx, entry.GroupName)
	if err != nil {
		return err
	}

	raw, err := d.content.Get(ctx, entry.MessageKey)
	if err != nil {
		return err
	}

	msg, err := schedule.DecodeMessage(raw)
	if err != nil {
		return err
	}

	if len(subscribers) == 0 {
		logger.Warn("no subscribers, skipping send", "group", entry.GroupName)
	} else {
		bcc := make([]string, len(subscribers))
		for i, sub := range subscribers {
			bcc[i] = sub.Email
		}
		if err := d.sender.Send(ctx, mailer.Email{
			BCC:      bcc,
			Subject:  msg.Subject,
			HTMLBody: msg.Body,
		}); err != nil {
			return err
		}
	}

	if err := d.index.MarkSent(ctx, entry.GroupName, entry.ScheduledDate); err != nil {
		return err
	}

	logger.Info("message dispatched", "group", entry.GroupName, "bucket", entry.ScheduledDate, "recipients", len(subscribers))
	return nil
}
