package domain

import (
	"math"
	"time"
)

// DefaultVisitInterval applies to points of sale without an interval.
const DefaultVisitInterval = 7

// PointOfSale is a store tracked for visit compliance.
type PointOfSale struct {
	ID            string    `json:"id" gorm:"primaryKey" firestore:"-"`
	Name          string    `json:"name" gorm:"not null" firestore:"name"`
	Address       string    `json:"address" firestore:"address"`
	Active        bool      `json:"active" gorm:"index" firestore:"active"`
	VisitInterval int       `json:"visit_interval" firestore:"visitInterval"` // days; 0 means DefaultVisitInterval
	AssignedTo    string    `json:"assigned_to,omitempty" gorm:"index" firestore:"assignedTo,omitempty"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p PointOfSale) Interval() int {
	if p.VisitInterval <= 0 {
		return DefaultVisitInterval
	}
	return p.VisitInterval
}

// VisitReport records one visit by a merchandiser.
type VisitReport struct {
	ID            string    `json:"id" gorm:"primaryKey" firestore:"-"`
	PointOfSaleID string    `json:"point_of_sale_id" gorm:"index:idx_visit_pos_created,priority:1;not null" firestore:"pointOfSaleId"`
	UserID        string    `json:"user_id" gorm:"index" firestore:"userId"`
	Notes         string    `json:"notes" firestore:"notes"`
	CreatedAt     time.Time `json:"created_at" gorm:"index:idx_visit_pos_created,priority:2" firestore:"createdAt"`
}

// VisitStatus is the outcome of EvaluateVisit.
type VisitStatus struct {
	IntervalDays int        `json:"interval_days"`
	LastVisitAt  *time.Time `json:"last_visit_at"`
	ElapsedDays  float64    `json:"elapsed_days"`
	NeverVisited bool       `json:"never_visited"`
	Overdue      bool       `json:"overdue"`
	OverdueDays  int        `json:"overdue_days"`
}

// EvaluateVisit decides whether a location is overdue at now. A location
// that was never visited is always overdue. Otherwise it is overdue once
// the elapsed fractional days strictly exceed the interval, and the
// overdue days are floor(elapsed - interval).
func EvaluateVisit(intervalDays int, lastVisit *time.Time, now time.Time) VisitStatus {
	if intervalDays <= 0 {
		intervalDays = DefaultVisitInterval
	}
	status := VisitStatus{IntervalDays: intervalDays}

	if lastVisit == nil {
		status.NeverVisited = true
		status.Overdue = true
		return status
	}

	status.LastVisitAt = lastVisit
	status.ElapsedDays = now.Sub(*lastVisit).Hours() / 24
	if status.ElapsedDays > float64(intervalDays) {
		status.Overdue = true
		status.OverdueDays = int(math.Floor(status.ElapsedDays - float64(intervalDays)))
	}
	return status
}
