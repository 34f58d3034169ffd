package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// fetcher is the subset of *kafka.Reader used by KafkaSource.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSource consumes notification requests as part of a consumer group.
type KafkaSource struct {
	r       fetcher
	sem     chan struct{}
	handler *Handler
	log     *logrus.Entry
}

func NewKafkaSource(brokers []string, group, topic string, concurrency int, handler *Handler) *KafkaSource {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	return newKafkaSource(r, concurrency, handler)
}

func newKafkaSource(r fetcher, concurrency int, handler *Handler) *KafkaSource {
	if concurrency < 1 {
		concurrency = 1
	}
	return &KafkaSource{
		r:       r,
		sem:     make(chan struct{}, concurrency),
		handler: handler,
		log:     logrus.WithFields(logrus.Fields{"component": "events", "transport": "kafka"}),
	}
}

// Run fetches until ctx is cancelled. Messages are committed once handled,
// whatever the outcome.
func (s *KafkaSource) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		m, err := s.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		wg.Add(1)
		go func(m kafka.Message) {
			defer wg.Done()
			defer func() { <-s.sem }()

			if err := s.handler.Handle(ctx, m.Value); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"partition": m.Partition,
					"offset":    m.Offset,
				}).Debug("[Kafka] message handled with error")
			}
			if err := s.r.CommitMessages(context.WithoutCancel(ctx), m); err != nil {
				s.log.WithError(err).Warn("[Kafka] commit failed")
			}
		}(m)
	}
}

func (s *KafkaSource) Close() error { return s.r.Close() }
