package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var ErrUnknownJob = errors.New("unknown supervisor")

// Scheduler runs supervisors on cron schedules in one time zone.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	now     func() time.Time
	mu      sync.RWMutex
	jobs    map[string]Job
	entries map[string]scheduled
	ctx     context.Context
	log     *logrus.Entry
}

type scheduled struct {
	id   cron.EntryID
	spec string
}

// EntryInfo describes a registered supervisor for the settings view.
type EntryInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next_run,omitempty"`
	Prev     time.Time `json:"prev_run,omitempty"`
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	log := logrus.WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log)), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		loc:     loc,
		now:     time.Now,
		jobs:    make(map[string]Job),
		entries: make(map[string]scheduled),
		ctx:     context.Background(),
		log:     log,
	}
}

// Register schedules job with a standard five-field cron spec.
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("supervisor %s already registered", job.Name())
	}

	id, err := s.cron.AddFunc(spec, func() { s.execute(job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	s.jobs[job.Name()] = job
	s.entries[job.Name()] = scheduled{id: id, spec: spec}
	s.log.WithFields(logrus.Fields{"job": job.Name(), "schedule": spec}).Info("[Scheduler] supervisor registered")
	return nil
}

func (s *Scheduler) execute(job Job) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	summary, err := job.Run(ctx, s.now().In(s.loc))
	log := s.log.WithFields(logrus.Fields{"job": job.Name(), "notified": summary.Notified})
	if err != nil {
		log.WithError(err).Error("[Scheduler] supervisor run failed")
		return
	}
	if summary.Skipped {
		log.WithField("reason", summary.Reason).Debug("[Scheduler] supervisor skipped")
		return
	}
	log.Debug("[Scheduler] supervisor run finished")
}

// Start begins running schedules; ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.log.WithField("timezone", s.loc.String()).Info("[Scheduler] started")
}

// Stop prevents new runs and waits for running ones to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("[Scheduler] stopped")
}

// RunNow executes a registered supervisor immediately at the current time.
func (s *Scheduler) RunNow(ctx context.Context, name string) (RunSummary, error) {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return job.Run(ctx, s.now().In(s.loc))
}

func (s *Scheduler) Location() *time.Location { return s.loc }

// Entries lists registered supervisors sorted by name.
func (s *Scheduler) Entries() []EntryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EntryInfo, 0, len(s.entries))
	for name, e := range s.entries {
		entry := s.cron.Entry(e.id)
		out = append(out, EntryInfo{Name: name, Schedule: e.spec, Next: entry.Next, Prev: entry.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
