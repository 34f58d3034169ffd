// Package supervisor holds the scheduled rules that watch field operations
// and notify people when something needs attention.
package supervisor

import (
	"context"
	"time"

	authdomain "genius-keeper-backend/internal/auth/domain"
)

const (
	OverdueVisitsJob = "overdue-visits"
	PendingOrdersJob = "pending-orders"
)

// Resolver maps a management email to a user.
type Resolver interface {
	Resolve(ctx context.Context, email string) (*authdomain.User, error)
}

// Job is one scheduled rule. now is passed in so rules never read the
// wall clock themselves.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) (RunSummary, error)
}

// RunSummary reports what a single run did.
type RunSummary struct {
	Job      string    `json:"job"`
	RanAt    time.Time `json:"ran_at"`
	Skipped  bool      `json:"skipped"`
	Reason   string    `json:"reason,omitempty"`
	Checked  int       `json:"checked"`
	Matched  int       `json:"matched"`
	Notified int       `json:"notified"`
	Failed   int       `json:"failed"`
}
