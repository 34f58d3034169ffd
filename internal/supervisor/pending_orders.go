package supervisor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	authusecase "genius-keeper-backend/internal/auth/usecase"
	"genius-keeper-backend/internal/notification/dispatcher"
	orderdomain "genius-keeper-backend/internal/order/domain"
	orderrepo "genius-keeper-backend/internal/order/repository"
	"genius-keeper-backend/pkg/push"

	"github.com/sirupsen/logrus"
)

// PendingOrderSupervisor alerts management to undispatched orders during
// business hours.
type PendingOrderSupervisor struct {
	orders     orderrepo.OrderRepository
	notifier   dispatcher.Notifier
	resolver   Resolver
	recipients []string
	loc        *time.Location
	startHour  int
	endHour    int
	log        *logrus.Entry
}

func NewPendingOrderSupervisor(
	orders orderrepo.OrderRepository,
	notifier dispatcher.Notifier,
	resolver Resolver,
	recipients []string,
	loc *time.Location,
	startHour, endHour int,
) *PendingOrderSupervisor {
	if loc == nil {
		loc = time.UTC
	}
	return &PendingOrderSupervisor{
		orders:     orders,
		notifier:   notifier,
		resolver:   resolver,
		recipients: recipients,
		loc:        loc,
		startHour:  startHour,
		endHour:    endHour,
		log:        logrus.WithFields(logrus.Fields{"component": "supervisor", "job": PendingOrdersJob}),
	}
}

func (s *PendingOrderSupervisor) Name() string { return PendingOrdersJob }

// InBusinessHours reports whether the local hour of now is in [start, end).
func (s *PendingOrderSupervisor) InBusinessHours(now time.Time) bool {
	hour := now.In(s.loc).Hour()
	return hour >= s.startHour && hour < s.endHour
}

// Run notifies every recipient independently: a recipient that cannot be
// resolved or notified does not stop the others. Failures other than an
// unknown email are returned joined.
func (s *PendingOrderSupervisor) Run(ctx context.Context, now time.Time) (RunSummary, error) {
	summary := RunSummary{Job: PendingOrdersJob, RanAt: now}

	if !s.InBusinessHours(now) {
		summary.Skipped = true
		summary.Reason = "outside business hours"
		return summary, nil
	}

	pending, err := s.orders.FindByStatus(ctx, orderdomain.StatusPending)
	if err != nil {
		return summary, fmt.Errorf("load pending orders: %w", err)
	}
	summary.Checked = len(pending)
	summary.Matched = len(pending)
	if len(pending) == 0 {
		return summary, nil
	}

	msg := pendingOrdersMessage(len(pending))

	var errs []error
	for _, email := range s.recipients {
		log := s.log.WithField("email", email)

		user, err := s.resolver.Resolve(ctx, email)
		if err != nil {
			summary.Failed++
			if authusecase.IsNotFound(err) {
				log.Warn("[Supervisor] pending order recipient not found")
				continue
			}
			log.WithError(err).Error("[Supervisor] failed to resolve recipient")
			errs = append(errs, err)
			continue
		}

		if _, err := s.notifier.Notify(ctx, user.ID, msg); err != nil {
			summary.Failed++
			log.WithError(err).Error("[Supervisor] failed to notify recipient")
			errs = append(errs, fmt.Errorf("notify %s: %w", email, err))
			continue
		}
		summary.Notified++
	}

	s.log.WithFields(logrus.Fields{
		"pending":  len(pending),
		"notified": summary.Notified,
	}).Info("[Supervisor] pending order check finished")
	return summary, errors.Join(errs...)
}

func pendingOrdersMessage(count int) push.Message {
	body := fmt.Sprintf("There are %d pending orders awaiting dispatch.", count)
	if count == 1 {
		body = "There is 1 pending order awaiting dispatch."
	}
	return push.Message{
		Title: "Pending orders",
		Body:  body,
		Link:  "/orders",
		Data: map[string]string{
			"type":  "pending_orders",
			"count": strconv.Itoa(count),
		},
	}
}
