package supervisor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	authusecase "genius-keeper-backend/internal/auth/usecase"
	"genius-keeper-backend/internal/notification/dispatcher"
	visitdomain "genius-keeper-backend/internal/visit/domain"
	visitrepo "genius-keeper-backend/internal/visit/repository"
	"genius-keeper-backend/pkg/push"

	"github.com/sirupsen/logrus"
)

// OverdueVisitSupervisor notifies about every active point of sale whose
// visit interval has lapsed, one notification per location.
type OverdueVisitSupervisor struct {
	locations      visitrepo.PointOfSaleRepository
	visits         visitrepo.VisitReportRepository
	notifier       dispatcher.Notifier
	resolver       Resolver
	recipientEmail string
	notifyAssignee bool
	log            *logrus.Entry
}

func NewOverdueVisitSupervisor(
	locations visitrepo.PointOfSaleRepository,
	visits visitrepo.VisitReportRepository,
	notifier dispatcher.Notifier,
	resolver Resolver,
	recipientEmail string,
	notifyAssignee bool,
) *OverdueVisitSupervisor {
	return &OverdueVisitSupervisor{
		locations:      locations,
		visits:         visits,
		notifier:       notifier,
		resolver:       resolver,
		recipientEmail: recipientEmail,
		notifyAssignee: notifyAssignee,
		log:            logrus.WithFields(logrus.Fields{"component": "supervisor", "job": OverdueVisitsJob}),
	}
}

func (s *OverdueVisitSupervisor) Name() string { return OverdueVisitsJob }

// Run checks locations one at a time in query order. A store failure ends
// the run; notifications already sent stay sent.
func (s *OverdueVisitSupervisor) Run(ctx context.Context, now time.Time) (RunSummary, error) {
	summary := RunSummary{Job: OverdueVisitsJob, RanAt: now}

	defaultRecipient, err := s.defaultRecipient(ctx)
	if err != nil {
		return summary, err
	}
	if defaultRecipient == "" && !s.notifyAssignee {
		summary.Skipped = true
		summary.Reason = "no recipient"
		return summary, nil
	}

	locations, err := s.locations.FindActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("load active locations: %w", err)
	}

	for _, pos := range locations {
		summary.Checked++

		latest, err := s.visits.LatestForPointOfSale(ctx, pos.ID)
		if err != nil {
			return summary, fmt.Errorf("latest visit for %s: %w", pos.ID, err)
		}
		var last *time.Time
		if latest != nil {
			last = &latest.CreatedAt
		}

		status := visitdomain.EvaluateVisit(pos.VisitInterval, last, now)
		if !status.Overdue {
			continue
		}
		summary.Matched++

		recipient := defaultRecipient
		if s.notifyAssignee && pos.AssignedTo != "" {
			recipient = pos.AssignedTo
		}
		if recipient == "" {
			s.log.WithField("pos_id", pos.ID).Info("[Supervisor] overdue location without recipient")
			continue
		}

		if _, err := s.notifier.Notify(ctx, recipient, overdueMessage(pos, status)); err != nil {
			return summary, fmt.Errorf("notify overdue %s: %w", pos.ID, err)
		}
		summary.Notified++
	}

	s.log.WithFields(logrus.Fields{
		"checked":  summary.Checked,
		"overdue":  summary.Matched,
		"notified": summary.Notified,
	}).Info("[Supervisor] overdue visit check finished")
	return summary, nil
}

// defaultRecipient resolves the configured recipient. An unknown email is
// logged and treated as no recipient.
func (s *OverdueVisitSupervisor) defaultRecipient(ctx context.Context) (string, error) {
	if s.recipientEmail == "" {
		return "", nil
	}
	user, err := s.resolver.Resolve(ctx, s.recipientEmail)
	if err != nil {
		if authusecase.IsNotFound(err) {
			s.log.WithField("email", s.recipientEmail).Warn("[Supervisor] overdue recipient not found")
			return "", nil
		}
		return "", fmt.Errorf("resolve overdue recipient: %w", err)
	}
	return user.ID, nil
}

func overdueMessage(pos visitdomain.PointOfSale, status visitdomain.VisitStatus) push.Message {
	var body string
	if status.NeverVisited {
		body = fmt.Sprintf("%s has never been visited.", pos.Name)
	} else {
		body = fmt.Sprintf("%s is %s overdue for a visit.", pos.Name, days(status.OverdueDays))
	}

	return push.Message{
		Title: "Overdue visit",
		Body:  body,
		Link:  "/pos/" + pos.ID,
		Data: map[string]string{
			"type":         "overdue_visit",
			"pos_id":       pos.ID,
			"overdue_days": strconv.Itoa(status.OverdueDays),
		},
	}
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
