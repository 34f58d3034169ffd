package fcm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"genius-keeper-backend/pkg/push"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
)

// maxTokensPerBatch is the FCM limit for one multicast request.
const maxTokensPerBatch = 500

// multicaster is the subset of *messaging.Client used by Client.
type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient multicaster
	icon            string
	baseURL         *url.URL
	log             *logrus.Entry
}

// NewClient creates a new FCM client from an initialized Firebase app.
// baseURL, when set, turns relative deep links into web push click links.
func NewClient(ctx context.Context, app *firebase.App, baseURL string) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	logrus.Info("[FCM] Client initialized successfully")
	return newClient(messagingClient, baseURL), nil
}

func newClient(m multicaster, baseURL string) *Client {
	c := &Client{
		messagingClient: m,
		icon:            "/icon-192.png",
		log:             logrus.WithField("component", "fcm"),
	}
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
			c.log.WithField("base_url", baseURL).Warn("[FCM] base URL must be absolute https, web push click links disabled")
		} else {
			c.baseURL = parsed
		}
	}
	return c
}

// clickLink returns the web push click target for link. FCM only accepts
// absolute https URLs there; anything else yields "" and the link travels
// in the data payload alone.
func (c *Client) clickLink(link string) string {
	if link == "" {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		if ref.Scheme == "https" && ref.Host != "" {
			return ref.String()
		}
		return ""
	}
	if c.baseURL == nil {
		return ""
	}
	return c.baseURL.ResolveReference(ref).String()
}

// SendMulticast sends one notification to every token and returns a result
// per token, in input order. Tokens beyond the FCM batch limit are split
// into further requests.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, msg push.Message) ([]push.Result, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	results := make([]push.Result, 0, len(tokens))
	for start := 0; start < len(tokens); start += maxTokensPerBatch {
		end := min(start+maxTokensPerBatch, len(tokens))
		batch, err := c.sendBatch(ctx, tokens[start:end], msg)
		if err != nil {
			return results, err
		}
		results = append(results, batch...)
	}
	return results, nil
}

func (c *Client) sendBatch(ctx context.Context, tokens []string, msg push.Message) ([]push.Result, error) {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: push.Payload(msg),
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: msg.Title,
				Body:  msg.Body,
				Icon:  c.icon,
			},
		},
	}
	if link := c.clickLink(msg.Link); link != "" {
		message.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: link}
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"success": response.SuccessCount,
		"failure": response.FailureCount,
	}).Info("[FCM] Multicast sent")

	accepted := response.SuccessCount > 0
	results := make([]push.Result, len(tokens))
	for i, token := range tokens {
		results[i] = push.Result{Token: token}
		if i >= len(response.Responses) || response.Responses[i] == nil {
			results[i].Failure = push.FailureOther
			results[i].Err = fmt.Errorf("missing response for token")
			continue
		}
		resp := response.Responses[i]
		if resp.Success {
			results[i].MessageID = resp.MessageID
			continue
		}
		results[i].Err = resp.Error
		results[i].Failure = classify(resp.Error, accepted)
	}
	return results, nil
}

// classify maps FCM error codes onto the two pruneable categories.
// UNREGISTERED is registration-token-not-registered. INVALID_ARGUMENT is
// also returned for payload faults, so it only counts as an invalid token
// when the error names the registration token or the same message was
// accepted for another token of the batch.
func classify(err error, batchAccepted bool) push.FailureKind {
	switch {
	case err == nil:
		return push.FailureNone
	case messaging.IsUnregistered(err):
		return push.FailureUnregistered
	case messaging.IsInvalidArgument(err):
		if batchAccepted || namesToken(err) {
			return push.FailureInvalidToken
		}
		return push.FailureOther
	default:
		return push.FailureOther
	}
}

func namesToken(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "registration token")
}
