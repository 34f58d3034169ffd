package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	authdomain "genius-keeper-backend/internal/auth/domain"
	"genius-keeper-backend/internal/notification/dispatcher"
	"genius-keeper-backend/pkg/push"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/segmentio/kafka-go"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var errNoUser = errors.New("no such user")

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	msgs  []push.Message
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, userID string, msg push.Message) (dispatcher.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, userID)
	r.msgs = append(r.msgs, msg)
	return dispatcher.Delivery{}, r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, email string) (*authdomain.User, error) {
	if id, ok := m[email]; ok {
		return &authdomain.User{ID: id, Email: email}, nil
	}
	if email == "broken@example.com" {
		return nil, errors.New("store unavailable")
	}
	return nil, fmt.Errorf("resolve %s: %w", email, errNoUser)
}

func newHandler(n dispatcher.Notifier) *Handler {
	return NewHandler(n, mapResolver{"ops@example.com": "u-ops"}, func(err error) bool { return errors.Is(err, errNoUser) })
}

func encode(t *testing.T, req Request) []byte {
	t.Helper()
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       []byte
		wantErr   error
		anyErr    bool
		wantCalls []string
	}{
		{
			name:      "user id",
			raw:       []byte(`{"user_id":"u1","title":"Order dispatched","link":"/orders/3"}`),
			wantCalls: []string{"u1"},
		},
		{
			name:      "email resolved",
			raw:       []byte(`{"email":"ops@example.com","title":"Hello","body":"x"}`),
			wantCalls: []string{"u-ops"},
		},
		{
			name: "unknown email dropped",
			raw:  []byte(`{"email":"ghost@example.com","title":"Hello"}`),
		},
		{
			name:   "resolution failure",
			raw:    []byte(`{"email":"broken@example.com","title":"Hello"}`),
			anyErr: true,
		},
		{
			name:    "not json",
			raw:     []byte(`{{{`),
			wantErr: ErrMalformed,
		},
		{
			name:    "empty message",
			raw:     []byte(`{"user_id":"u1"}`),
			wantErr: ErrMalformed,
		},
		{
			name:      "no recipient still reaches notifier",
			raw:       []byte(`{"title":"orphan"}`),
			wantCalls: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			err := newHandler(n).Handle(context.Background(), tt.raw)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("expected an error")
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}

			if len(n.calls) != len(tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", n.calls, tt.wantCalls)
			}
			for i := range tt.wantCalls {
				if n.calls[i] != tt.wantCalls[i] {
					t.Errorf("call %d = %q, want %q", i, n.calls[i], tt.wantCalls[i])
				}
			}
		})
	}
}

func TestHandleCarriesLinkAndData(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	raw := encode(t, Request{UserID: "u1", Title: "t", Body: "b", Link: "/pos/2", Data: map[string]string{"kind": "visit"}})
	if err := newHandler(n).Handle(context.Background(), raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if n.msgs[0].Link != "/pos/2" || n.msgs[0].Data["kind"] != "visit" {
		t.Errorf("message = %+v", n.msgs[0])
	}
}

func TestHandleDropsOversizedData(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	raw := encode(t, Request{UserID: "u1", Title: "t", Data: map[string]string{"blob": strings.Repeat("x", push.MaxDataBytes)}})
	if err := newHandler(n).Handle(context.Background(), raw); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if n.count() != 0 {
		t.Error("oversized request must not reach the notifier")
	}
}

func TestHandleReservedKeysDoNotReachDevices(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	raw := encode(t, Request{UserID: "u1", Title: "t", Data: map[string]string{"from": "spoofed", "kind": "visit"}})
	if err := newHandler(n).Handle(context.Background(), raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	data := push.Payload(n.msgs[0])
	if _, ok := data["from"]; ok || data["kind"] != "visit" {
		t.Errorf("pushed data = %v", data)
	}
}

type fakeFetcher struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
	drained   chan struct{}
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.pending) > 0 {
		m := f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	if len(f.committed) == 3 {
		close(f.drained)
	}
	return nil
}

func (f *fakeFetcher) Close() error { return nil }

func TestKafkaSourceCommitsEveryMessage(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		drained: make(chan struct{}),
		pending: []kafka.Message{
			{Offset: 1, Value: []byte(`{"user_id":"u1","title":"a"}`)},
			{Offset: 2, Value: []byte(`garbage`)},
			{Offset: 3, Value: []byte(`{"user_id":"u2","title":"b"}`)},
		},
	}
	n := &recordingNotifier{}
	src := newKafkaSource(f, 2, newHandler(n))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	select {
	case <-f.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not committed")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n.count() != 2 {
		t.Errorf("notify calls = %d, want 2", n.count())
	}
}

func TestPubSubSourceAcksAndDispatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client, err := pubsub.NewClient(ctx, "genius-keeper-test", option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	topic, err := client.CreateTopic(ctx, "notification-requests")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}

	n := &recordingNotifier{}
	src := NewPubSubSource(client, "notification-requests", "notification-requests-sub", newHandler(n))
	t.Cleanup(func() { _ = src.Close() })

	// the subscription is created by the source on first run
	if _, err := src.ensureSubscription(ctx); err != nil {
		t.Fatalf("ensureSubscription: %v", err)
	}

	for _, body := range []string{`{"user_id":"u1","title":"hello"}`, `not json`} {
		if _, err := topic.Publish(ctx, &pubsub.Message{Data: []byte(body)}).Get(ctx); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- src.Run(runCtx) }()

	deadline := time.Now().Add(5 * time.Second)
	for n.count() < 1 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("message was never dispatched")
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n.calls[0] != "u1" {
		t.Errorf("calls = %v", n.calls)
	}
}
