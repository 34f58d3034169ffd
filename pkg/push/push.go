// Package push defines the backend-neutral contract for multicast push
// delivery. Every backend maps its own error codes onto FailureKind so that
// callers can tell dead tokens apart from transient failures.
package push

import (
	"context"
	"strings"
)

// Message is the payload delivered identically to every token of a batch.
type Message struct {
	Title string
	Body  string
	// Link is the deep link opened when the notification is clicked. It is
	// also copied into Data under the "link" key.
	Link string
	Data map[string]string
}

// FailureKind classifies a per-token failure.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureInvalidToken means the backend rejected the token as malformed.
	FailureInvalidToken
	// FailureUnregistered means the token was valid once but is no longer registered.
	FailureUnregistered
	// FailureOther covers every transient or unknown failure.
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureInvalidToken:
		return "invalid-registration-token"
	case FailureUnregistered:
		return "registration-token-not-registered"
	default:
		return "other"
	}
}

// Result is the outcome for a single token of a multicast send.
type Result struct {
	Token     string
	MessageID string
	Failure   FailureKind
	Err       error
}

// Success reports whether the backend accepted the message for this token.
func (r Result) Success() bool {
	return r.Failure == FailureNone && r.Err == nil
}

// Pruneable reports whether the token will never accept delivery again.
func (r Result) Pruneable() bool {
	return r.Failure == FailureInvalidToken || r.Failure == FailureUnregistered
}

// Sender submits one message to many tokens and reports one Result per
// token, in the same order as the input.
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, msg Message) ([]Result, error)
}

// MaxDataBytes is the FCM limit for the data payload of one message.
const MaxDataBytes = 4096

var reservedKeys = map[string]bool{
	"from":         true,
	"message_type": true,
	"collapse_key": true,
}

// ReservedKey reports whether FCM rejects key in a data payload.
func ReservedKey(key string) bool {
	lower := strings.ToLower(key)
	return reservedKeys[lower] || strings.HasPrefix(lower, "google") || strings.HasPrefix(lower, "gcm")
}

// Payload returns the data map sent with msg, with the link merged in.
// Reserved keys are dropped.
func Payload(msg Message) map[string]string {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		if ReservedKey(k) {
			continue
		}
		data[k] = v
	}
	data["link"] = msg.Link
	return data
}

// DataSize is the byte size of the keys and values Payload would send.
func DataSize(msg Message) int {
	size := 0
	for k, v := range Payload(msg) {
		size += len(k) + len(v)
	}
	return size
}

// ShortToken trims a token for log output.
func ShortToken(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
