package schedule

import (
	"fmt"
	"time"
)

// BucketKey converts a timestamp into the hour-granularity key scheduled
// messages are filed under, "{year}_{month}_{day}_{hour}" with no zero
// padding. Two timestamps in the same calendar hour always encode equal.
// No timezone normalization happens here: the caller's clock wins, and the
// scheduler and dispatcher must share a clock source or due messages are
// permanently missed.
func BucketKey(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d_%d", t.Year(), int(t.Month()), t.Day(), t.Hour())
}

// BucketKeys returns the bucket for t plus the buckets of the preceding
// lookback hours, newest first. Lookback 0 yields only the current bucket.
func BucketKeys(t time.Time, lookback int) []string {
	keys := make([]string, 0, lookback+1)
	for i := 0; i <= lookback; i++ {
		keys = append(keys, BucketKey(t.Add(-time.Duration(i)*time.Hour)))
	}
	return keys
}
