package events

import "context"

// Source delivers raw messages to a Handler until ctx is cancelled.
type Source interface {
	Run(ctx context.Context) error
	Close() error
}
