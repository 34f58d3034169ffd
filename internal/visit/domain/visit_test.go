package domain

import (
	"testing"
	"time"
)

func TestEvaluateVisit(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	daysAgo := func(d float64) *time.Time {
		ts := now.Add(-time.Duration(d * 24 * float64(time.Hour)))
		return &ts
	}

	tests := []struct {
		name        string
		interval    int
		last        *time.Time
		wantOverdue bool
		wantDays    int
	}{
		{name: "exactly at interval", interval: 7, last: daysAgo(7), wantOverdue: false},
		{name: "just past interval", interval: 7, last: daysAgo(7.1), wantOverdue: true, wantDays: 0},
		{name: "two days late", interval: 7, last: daysAgo(9), wantOverdue: true, wantDays: 2},
		{name: "recent visit", interval: 7, last: daysAgo(1), wantOverdue: false},
		{name: "default interval", interval: 0, last: daysAgo(8.5), wantOverdue: true, wantDays: 1},
		{name: "custom interval", interval: 14, last: daysAgo(10), wantOverdue: false},
		{name: "never visited", interval: 7, last: nil, wantOverdue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateVisit(tt.interval, tt.last, now)
			if got.Overdue != tt.wantOverdue {
				t.Errorf("overdue = %v, want %v (elapsed %.3f)", got.Overdue, tt.wantOverdue, got.ElapsedDays)
			}
			if got.OverdueDays != tt.wantDays {
				t.Errorf("overdue days = %d, want %d", got.OverdueDays, tt.wantDays)
			}
			if tt.last == nil && !got.NeverVisited {
				t.Error("never visited flag not set")
			}
		})
	}
}

func TestInterval(t *testing.T) {
	t.Parallel()

	if got := (PointOfSale{}).Interval(); got != DefaultVisitInterval {
		t.Errorf("default interval = %d", got)
	}
	if got := (PointOfSale{VisitInterval: 3}).Interval(); got != 3 {
		t.Errorf("interval = %d", got)
	}
}
