// Package schedule runs the periodic reminder pulse: it scans the task
// collection for due reminders and fires each at most once.
package schedule

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"focus-api/domain"
	"focus-api/notify"
)

// DefaultInterval is the wall-clock cadence of the due-task poll.
const DefaultInterval = time.Minute

// ReminderIcon decorates fired notifications.
const ReminderIcon = "https://cdn-icons-png.flaticon.com/512/906/906334.png"

// Store is the slice of the task store the scheduler needs. Marking a task
// notified goes through the same store operations user actions use.
type Store interface {
	All() []domain.Task
	MarkNotified(ctx context.Context, id int64) bool
}

// Scheduler drives reminder delivery off a wall-clock ticker.
type Scheduler struct {
	store    Store
	notifier notify.Notifier
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// New creates a Scheduler. A non-positive interval falls back to
// DefaultInterval; a nil clock falls back to time.Now.
func New(store Store, notifier notify.Notifier, interval time.Duration, now func() time.Time, logger *log.Logger) *Scheduler {
	if store == nil {
		panic("schedule.New: store is nil")
	}
	if notifier == nil {
		panic("schedule.New: notifier is nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Scheduler{store: store, notifier: notifier, interval: interval, now: now, logger: logger}
}

// Run pulses until ctx is cancelled. The first pulse happens one interval
// after start; there is no immediate pulse on startup.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.WithField("interval", s.interval).Info("reminder scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Check(ctx, s.now())
		}
	}
}

// Check runs a single pulse at the given instant. It is a no-op unless
// notification permission is granted. A task fires when it is active,
// not yet notified, scheduled, and its trigger instant is not after now;
// a trigger long in the past still fires exactly once. The notified flag
// is only set after a successful Show, so a failed delivery is retried on
// the next pulse.
func (s *Scheduler) Check(ctx context.Context, now time.Time) {
	if s.notifier.Permission() != notify.PermissionGranted {
		return
	}

	for _, t := range s.store.All() {
		if t.Completed || t.Notified || !t.Scheduled() {
			continue
		}
		trigger, ok := t.ReminderAt(now.Location())
		if !ok {
			s.logger.WithFields(log.Fields{"task": t.ID, "dueDate": t.DueDate, "startTime": t.StartTime}).
				Warn("unparseable schedule, skipping reminder")
			continue
		}
		if now.Before(trigger) {
			continue
		}

		when := t.StartTime
		if when == "" {
			when = "Today"
		}
		n := notify.Notification{
			Title: t.Text,
			Body:  fmt.Sprintf("Reminder: Task is starting soon (%s)", when),
			Icon:  ReminderIcon,
		}
		if err := s.notifier.Show(ctx, n); err != nil {
			s.logger.WithError(err).WithField("task", t.ID).Error("reminder delivery failed")
			continue
		}
		s.store.MarkNotified(ctx, t.ID)
		s.logger.WithFields(log.Fields{"task": t.ID, "trigger": trigger}).Debug("reminder fired")
	}
}
