package events

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// PubSubSource receives notification requests from a Pub/Sub subscription.
type PubSubSource struct {
	client  *pubsub.Client
	handler *Handler
	topic   string
	subName string
	log     *logrus.Entry
}

// NewPubSubClient connects to Pub/Sub with an optional credentials file.
func NewPubSubClient(ctx context.Context, projectID, credentialsFile string) (*pubsub.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return client, nil
}

func NewPubSubSource(client *pubsub.Client, topic, subscription string, handler *Handler) *PubSubSource {
	return &PubSubSource{
		client:  client,
		handler: handler,
		topic:   topic,
		subName: subscription,
		log:     logrus.WithFields(logrus.Fields{"component": "events", "transport": "pubsub"}),
	}
}

// ensureSubscription creates the subscription on the configured topic when
// it does not exist yet.
func (s *PubSubSource) ensureSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := s.client.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if exists {
		return sub, nil
	}

	topic := s.client.Topic(s.topic)
	topicExists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic: %w", err)
	}
	if !topicExists {
		return nil, fmt.Errorf("topic %s does not exist, cannot create subscription", s.topic)
	}

	sub, err = s.client.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	s.log.WithField("subscription", s.subName).Info("[PubSub] created subscription")
	return sub, nil
}

// Run blocks receiving messages. Every message is acked after handling,
// including the ones that fail, so a poison message is never redelivered.
func (s *PubSubSource) Run(ctx context.Context) error {
	sub, err := s.ensureSubscription(ctx)
	if err != nil {
		return err
	}

	s.log.WithField("subscription", s.subName).Info("[PubSub] listening for notification requests")
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := s.handler.Handle(ctx, msg.Data); err != nil {
			s.log.WithError(err).WithField("message_id", msg.ID).Debug("[PubSub] message handled with error")
		}
		msg.Ack()
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("receive: %w", err)
	}
	return nil
}

func (s *PubSubSource) Close() error {
	return s.client.Close()
}
