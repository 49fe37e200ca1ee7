package monitoring

import (
	"time"

	"go.uber.org/atomic"
)

// A ProgressBar is a tracker of the progress. It is safe for concurrent
// use.
type ProgressBar struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	StartTime  time.Time     `json:"start_time"`
	Total      uint64        `json:"total"`
	Finished   atomic.Uint64 `json:"finished"`
	InProgress atomic.Uint64 `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.InProgress.Add(amount)
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.InProgress.Sub(amount)
	b.Finished.Add(amount)
}

// Done tells whether every element finished.
func (b *ProgressBar) Done() bool {
	return b.Finished.Load() >= b.Total
}
