package supervisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubJob struct {
	name string
	got  []time.Time
	err  error
}

func (s *stubJob) Name() string { return s.name }

func (s *stubJob) Run(_ context.Context, now time.Time) (RunSummary, error) {
	s.got = append(s.got, now)
	return RunSummary{Job: s.name, RanAt: now, Notified: 1}, s.err
}

func TestSchedulerRegisterAndRunNow(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(mexicoCity)
	fixed := time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC)
	sched.now = func() time.Time { return fixed }

	job := &stubJob{name: PendingOrdersJob}
	if err := sched.Register("0 * * * *", job); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := sched.Register("0 * * * *", job); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := sched.Register("not a cron", &stubJob{name: "broken"}); err == nil {
		t.Error("invalid spec should fail")
	}

	summary, err := sched.RunNow(context.Background(), PendingOrdersJob)
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if summary.Notified != 1 || len(job.got) != 1 {
		t.Fatalf("summary = %+v runs = %d", summary, len(job.got))
	}
	if job.got[0].Location() != mexicoCity || !job.got[0].Equal(fixed) {
		t.Errorf("job saw %v", job.got[0])
	}

	if _, err := sched.RunNow(context.Background(), "nope"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("unknown job err = %v", err)
	}

	entries := sched.Entries()
	if len(entries) != 1 || entries[0].Name != PendingOrdersJob || entries[0].Schedule != "0 * * * *" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(time.UTC)
	if err := sched.Register("@every 1h", &stubJob{name: OverdueVisitsJob}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	sched.Start(context.Background())
	if next := sched.Entries()[0].Next; next.IsZero() {
		t.Error("started scheduler should know the next run")
	}
	sched.Stop()
}

func TestRunHandler(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(time.UTC)
	_ = sched.Register("0 8 * * *", &stubJob{name: OverdueVisitsJob})
	_ = sched.Register("0 * * * *", &stubJob{name: PendingOrdersJob, err: errors.New("store unavailable")})

	r := gin.New()
	r.POST("/supervisors/:name/run", NewHandler(sched).Run)

	tests := []struct {
		name string
		want int
	}{
		{name: OverdueVisitsJob, want: http.StatusOK},
		{name: PendingOrdersJob, want: http.StatusBadGateway},
		{name: "unknown", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/supervisors/"+tt.name+"/run", nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}
