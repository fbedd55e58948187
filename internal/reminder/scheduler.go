package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/fastwell/internal/logger"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/notifier"
)

// Source returns the fast reminders should follow, or nil when none is active
type Source func(ctx context.Context) (*models.Fast, error)

// Scheduler keeps cron entries in step with the active fast
type Scheduler struct {
	cron   *cron.Cron
	sender notifier.Sender
	now    func() time.Time

	mu      sync.Mutex
	key     string
	entries []cron.EntryID
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides the time used to check job bounds
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(sender notifier.Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(),
		sender: sender,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync replaces the scheduled jobs with those of f. A nil fast clears them.
// Syncing the same unchanged fast again is a no-op. It returns the number of
// jobs scheduled.
func (s *Scheduler) Sync(f *models.Fast) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ""
	if f != nil {
		key = f.ID + "@" + f.UpdatedAt.UTC().Format(time.RFC3339Nano) + "@" + string(f.Status)
	}
	if key == s.key && key != "" {
		return len(s.entries), nil
	}

	var jobs []Job
	if f != nil {
		var err error
		if jobs, err = Jobs(*f); err != nil {
			return len(s.entries), err
		}
	}

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = nil
	s.key = key

	for _, job := range jobs {
		id, err := s.cron.AddFunc(job.Spec, s.fire(job))
		if err != nil {
			return len(s.entries), fmt.Errorf("failed to schedule %s reminder %q: %w", job.Kind, job.Spec, err)
		}
		s.entries = append(s.entries, id)
	}
	if f != nil {
		logger.Info("Reminders synced", "fast_id", f.ID, "jobs", len(s.entries))
	}
	return len(s.entries), nil
}

func (s *Scheduler) fire(job Job) func() {
	return func() {
		if !job.Due(s.now()) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.sender.Notify(ctx, job.Text); err != nil {
			logger.Warn("Failed to send reminder", "kind", job.Kind, "error", err)
		}
	}
}

// Len returns the number of scheduled reminder jobs
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run syncs from source immediately and then every interval, firing jobs
// until ctx is done. It waits for running jobs before returning.
func (s *Scheduler) Run(ctx context.Context, source Source, interval time.Duration) error {
	resync := func() {
		f, err := source(ctx)
		if err != nil {
			logger.Warn("Failed to load active fast", "error", err)
			return
		}
		if _, err := s.Sync(f); err != nil {
			logger.Warn("Failed to sync reminders", "error", err)
		}
	}

	resync()
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), resync)
	if err != nil {
		return fmt.Errorf("failed to schedule resync: %w", err)
	}
	defer s.cron.Remove(id)

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
