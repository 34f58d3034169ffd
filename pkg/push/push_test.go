package push

import (
	"errors"
	"testing"
)

func TestResultClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		result    Result
		success   bool
		pruneable bool
	}{
		{"delivered", Result{Token: "a", MessageID: "m1"}, true, false},
		{"invalid token", Result{Token: "b", Failure: FailureInvalidToken, Err: errors.New("bad")}, false, true},
		{"unregistered", Result{Token: "c", Failure: FailureUnregistered, Err: errors.New("gone")}, false, true},
		{"transient", Result{Token: "d", Failure: FailureOther, Err: errors.New("unavailable")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.result.Success(); got != tt.success {
				t.Errorf("Success() = %v, want %v", got, tt.success)
			}
			if got := tt.result.Pruneable(); got != tt.pruneable {
				t.Errorf("Pruneable() = %v, want %v", got, tt.pruneable)
			}
		})
	}
}

func TestPayloadMergesLinkWithoutMutatingInput(t *testing.T) {
	t.Parallel()

	msg := Message{Title: "t", Body: "b", Link: "/pos/1", Data: map[string]string{"type": "overdue_visit"}}
	data := Payload(msg)

	if data["link"] != "/pos/1" || data["type"] != "overdue_visit" {
		t.Errorf("unexpected payload: %v", data)
	}
	if _, ok := msg.Data["link"]; ok {
		t.Error("Payload must not write into the caller's map")
	}

	empty := Payload(Message{})
	if v, ok := empty["link"]; !ok || v != "" {
		t.Errorf("missing link should be sent as empty string, got %q (present=%v)", v, ok)
	}
}

func TestPayloadDropsReservedKeys(t *testing.T) {
	t.Parallel()

	msg := Message{Link: "/orders", Data: map[string]string{
		"from":             "spoofed",
		"message_type":     "x",
		"google.sent_time": "1",
		"gcm.n.e":          "1",
		"type":             "pending_orders",
	}}
	data := Payload(msg)

	if len(data) != 2 || data["type"] != "pending_orders" || data["link"] != "/orders" {
		t.Errorf("payload = %v", data)
	}
	if got, want := DataSize(msg), len("type")+len("pending_orders")+len("link")+len("/orders"); got != want {
		t.Errorf("DataSize = %d, want %d", got, want)
	}
}

func TestShortToken(t *testing.T) {
	t.Parallel()

	if got := ShortToken("short"); got != "short" {
		t.Errorf("ShortToken(short) = %q", got)
	}
	if got := ShortToken("abcdefghijklmnopqrstuvwxyz"); got != "abcdefghijklmnopqrst..." {
		t.Errorf("ShortToken(long) = %q", got)
	}
}
