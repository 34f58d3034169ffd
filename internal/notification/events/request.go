// Package events turns notification requests published by other services
// into dispatcher calls.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	authdomain "genius-keeper-backend/internal/auth/domain"
	"genius-keeper-backend/internal/notification/dispatcher"
	"genius-keeper-backend/pkg/push"

	"github.com/sirupsen/logrus"
)

// ErrMalformed marks a message that can never be processed.
var ErrMalformed = errors.New("malformed notification request")

// Request is the JSON body of a broker message. Either UserID or Email
// identifies the recipient.
type Request struct {
	UserID string            `json:"user_id,omitempty"`
	Email  string            `json:"email,omitempty"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Link   string            `json:"link,omitempty"`
	Data   map[string]string `json:"data,omitempty"`
}

// Resolver finds a user by email.
type Resolver interface {
	Resolve(ctx context.Context, email string) (*authdomain.User, error)
}

// Handler decodes requests and notifies their recipients.
type Handler struct {
	notifier dispatcher.Notifier
	resolver Resolver
	notFound func(error) bool
	log      *logrus.Entry
}

// NewHandler builds a Handler. notFound reports whether a resolver error
// means the email has no user, which is logged and dropped.
func NewHandler(notifier dispatcher.Notifier, resolver Resolver, notFound func(error) bool) *Handler {
	return &Handler{
		notifier: notifier,
		resolver: resolver,
		notFound: notFound,
		log:      logrus.WithField("component", "events"),
	}
}

// Handle processes one raw message. Every message is consumed exactly
// once; the returned error is only for the transport's logging.
func (h *Handler) Handle(ctx context.Context, raw []byte) error {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		h.log.WithError(err).Warn("[Events] dropping undecodable message")
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Body) == "" {
		h.log.Warn("[Events] dropping message without title or body")
		return fmt.Errorf("%w: empty message", ErrMalformed)
	}

	msg := push.Message{
		Title: req.Title,
		Body:  req.Body,
		Link:  req.Link,
		Data:  req.Data,
	}
	if size := push.DataSize(msg); size > push.MaxDataBytes {
		h.log.WithField("bytes", size).Warn("[Events] dropping message with oversized data")
		return fmt.Errorf("%w: data payload is %d bytes", ErrMalformed, size)
	}

	userID := req.UserID
	if userID == "" && req.Email != "" {
		user, err := h.resolver.Resolve(ctx, req.Email)
		if err != nil {
			if h.notFound != nil && h.notFound(err) {
				h.log.WithField("email", req.Email).Info("[Events] no user for email, dropping")
				return nil
			}
			h.log.WithError(err).WithField("email", req.Email).Error("[Events] identity resolution failed")
			return err
		}
		userID = user.ID
	}

	delivery, err := h.notifier.Notify(ctx, userID, msg)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("[Events] notify failed")
		return err
	}

	h.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"delivered": delivery.Delivered,
	}).Debug("[Events] request handled")
	return nil
}
