// Package dispatcher delivers one message to one user: a durable
// notification record first, then a best-effort multicast push to every
// registered device, pruning tokens the push backend reports as dead.
package dispatcher

import (
	"context"
	"fmt"

	authdomain "genius-keeper-backend/internal/auth/domain"
	"genius-keeper-backend/internal/notification/domain"
	"genius-keeper-backend/pkg/push"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// EventCreated is broadcast to the owner's sockets after a record is written.
const EventCreated = "notification.created"

// Recorder persists notification records.
type Recorder interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// TokenStore is the part of the subscriber token store the dispatcher needs.
type TokenStore interface {
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.FCMToken, error)
	DeleteToken(ctx context.Context, userID, token string) error
}

// Broadcaster pushes in-app events to connected clients.
type Broadcaster interface {
	SendToUser(userID, eventType string, payload any)
}

// Notifier is implemented by Dispatcher and consumed by every trigger.
type Notifier interface {
	Notify(ctx context.Context, userID string, msg push.Message) (Delivery, error)
}

// Delivery summarises one Notify call.
type Delivery struct {
	NotificationID string   `json:"notification_id,omitempty"`
	Tokens         int      `json:"tokens"`
	Delivered      int      `json:"delivered"`
	Failed         int      `json:"failed"`
	Pruned         []string `json:"-"`
	PruneFailures  int      `json:"prune_failures"`
}

type Dispatcher struct {
	recorder Recorder
	tokens   TokenStore
	sender   push.Sender
	hub      Broadcaster
	log      *logrus.Entry
}

// New creates a dispatcher. sender and hub may be nil; a nil sender records
// notifications without pushing.
func New(recorder Recorder, tokens TokenStore, sender push.Sender, hub Broadcaster) *Dispatcher {
	return &Dispatcher{
		recorder: recorder,
		tokens:   tokens,
		sender:   sender,
		hub:      hub,
		log:      logrus.WithField("component", "dispatcher"),
	}
}

// Notify records msg for userID and pushes it to every device of the user.
// An empty userID is a no-op. Only a failed record write or token read is
// returned as an error; push and prune failures are logged.
func (d *Dispatcher) Notify(ctx context.Context, userID string, msg push.Message) (Delivery, error) {
	var delivery Delivery
	if userID == "" {
		d.log.Debug("[Notify] no recipient, skipping")
		return delivery, nil
	}

	record := &domain.Notification{
		UserID: userID,
		Title:  msg.Title,
		Body:   msg.Body,
		Link:   msg.Link,
		Data:   toJSONMap(msg.Data),
	}
	if err := d.recorder.Create(ctx, record); err != nil {
		return delivery, fmt.Errorf("record notification: %w", err)
	}
	delivery.NotificationID = record.ID

	log := d.log.WithFields(logrus.Fields{"user_id": userID, "notification_id": record.ID})

	if d.hub != nil {
		d.hub.SendToUser(userID, EventCreated, record)
	}

	if d.sender == nil {
		return delivery, nil
	}

	stored, err := d.tokens.GetTokensByUserID(ctx, userID)
	if err != nil {
		return delivery, fmt.Errorf("read tokens: %w", err)
	}
	if len(stored) == 0 {
		log.Debug("[Notify] no registered devices")
		return delivery, nil
	}

	tokens := make([]string, 0, len(stored))
	for _, t := range stored {
		tokens = append(tokens, t.Token)
	}
	delivery.Tokens = len(tokens)

	// A batch error can come with the results of the batches sent before it;
	// those are still counted and pruned. Tokens without a result failed.
	results, err := d.sender.SendMulticast(ctx, tokens, msg)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"tokens":  len(tokens),
			"results": len(results),
		}).Warn("[Notify] push batch failed")
		delivery.Failed = len(tokens) - len(results)
	}

	var dead []string
	for _, r := range results {
		switch {
		case r.Success():
			delivery.Delivered++
		case r.Pruneable():
			delivery.Failed++
			dead = append(dead, r.Token)
		default:
			delivery.Failed++
			log.WithError(r.Err).WithField("token", push.ShortToken(r.Token)).Warn("[Notify] push to device failed")
		}
	}

	delivery.Pruned, delivery.PruneFailures = d.prune(ctx, log, userID, dead)

	log.WithFields(logrus.Fields{
		"tokens":    delivery.Tokens,
		"delivered": delivery.Delivered,
		"pruned":    len(delivery.Pruned),
	}).Info("[Notify] push sent")
	return delivery, nil
}

// prune deletes every dead token concurrently and waits for all deletions.
func (d *Dispatcher) prune(ctx context.Context, log *logrus.Entry, userID string, dead []string) ([]string, int) {
	if len(dead) == 0 {
		return nil, 0
	}

	ok := make([]bool, len(dead))
	var g errgroup.Group
	for i, token := range dead {
		g.Go(func() error {
			if err := d.tokens.DeleteToken(ctx, userID, token); err != nil {
				log.WithError(err).WithField("token", push.ShortToken(token)).Warn("[Notify] failed to prune token")
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	pruned := make([]string, 0, len(dead))
	failures := 0
	for i, token := range dead {
		if ok[i] {
			pruned = append(pruned, token)
		} else {
			failures++
		}
	}
	return pruned, failures
}

func toJSONMap(data map[string]string) datatypes.JSONMap {
	if len(data) == 0 {
		return nil
	}
	m := make(datatypes.JSONMap, len(data))
	for k, v := range data {
		m[k] = v
	}
	return m
}
