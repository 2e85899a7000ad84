package tasks

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"focus-api/domain"
)

// Backend round-trips the full ordered task collection to persistent
// storage. Implementations must tolerate missing data by returning an
// empty collection.
type Backend interface {
	LoadTasks(ctx context.Context) ([]domain.Task, error)
	SaveTasks(ctx context.Context, tasks []domain.Task) error
}

// Draft carries the user-supplied fields for a new task.
type Draft struct {
	Text           string
	DueDate        string
	StartTime      string
	EndTime        string
	Priority       string
	ReminderOffset int
}

// Changes describes a partial edit. Nil fields are left untouched.
type Changes struct {
	Text           *string
	DueDate        *string
	StartTime      *string
	EndTime        *string
	Priority       *string
	ReminderOffset *int
}

// Store owns the task collection. All mutation goes through its methods;
// each mutation persists the whole collection before returning, so the
// backend always holds the latest state when the reminder pulse reads it.
// The mutex covers concurrent access from HTTP handlers and the scheduler
// goroutine.
type Store struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time
	logger  *log.Logger

	tasks  []domain.Task
	lastID int64
}

// New creates a Store over backend. now supplies the clock (time.Now in
// production, frozen in tests).
func New(backend Backend, now func() time.Time, logger *log.Logger) *Store {
	if backend == nil {
		panic("tasks.New: backend is nil")
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{backend: backend, now: now, logger: logger}
}

// Load replaces the in-memory collection with the persisted one. Missing
// or unreadable storage yields an empty collection; the failure is logged,
// never surfaced.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.backend.LoadTasks(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("load tasks failed, starting empty")
		s.tasks = nil
		return
	}
	s.tasks = tasks
	for _, t := range tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	s.logger.WithField("count", len(tasks)).Debug("tasks loaded")
}

// Save persists the current collection.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

// All returns a snapshot of the collection in insertion order, newest
// first.
func (s *Store) All() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Add creates a task from the draft and prepends it to the collection.
// A draft whose text is empty after trimming is rejected and no task is
// created.
func (s *Store) Add(ctx context.Context, d Draft) (domain.Task, bool) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return domain.Task{}, false
	}
	if d.ReminderOffset < 0 {
		d.ReminderOffset = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task := domain.Task{
		ID:             s.nextID(),
		Text:           text,
		DueDate:        d.DueDate,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		Priority:       domain.NormalizePriority(d.Priority),
		ReminderOffset: d.ReminderOffset,
		CreatedAt:      s.now(),
	}
	s.tasks = append([]domain.Task{task}, s.tasks...)
	if err := s.persist(ctx); err != nil {
		s.logger.WithError(err).Error("persist after add failed")
	}
	return task, true
}

// Toggle flips the completed flag of the task with the given id. Unknown
// ids are a no-op.
func (s *Store) Toggle(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			if err := s.persist(ctx); err != nil {
				s.logger.WithError(err).Error("persist after toggle failed")
			}
			return true
		}
	}
	return false
}

// Delete removes the task with the given id. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			if err := s.persist(ctx); err != nil {
				s.logger.WithError(err).Error("persist after delete failed")
			}
			return true
		}
	}
	return false
}

// ClearCompleted removes every completed task and reports how many were
// dropped. Applying it twice equals applying it once.
func (s *Store) ClearCompleted(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	if err := s.persist(ctx); err != nil {
		s.logger.WithError(err).Error("persist after clear failed")
	}
	return removed
}

// Update applies a partial edit to the task with the given id. When any
// schedule field changes (due date, start time or reminder offset) the
// notified flag resets so the reminder fires again for the new instant.
func (s *Store) Update(ctx context.Context, id int64, c Changes) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		t := &s.tasks[i]
		rearmed := false
		if c.Text != nil {
			if text := strings.TrimSpace(*c.Text); text != "" {
				t.Text = text
			}
		}
		if c.DueDate != nil && *c.DueDate != t.DueDate {
			t.DueDate = *c.DueDate
			rearmed = true
		}
		if c.StartTime != nil && *c.StartTime != t.StartTime {
			t.StartTime = *c.StartTime
			rearmed = true
		}
		if c.EndTime != nil {
			t.EndTime = *c.EndTime
		}
		if c.Priority != nil {
			t.Priority = domain.NormalizePriority(*c.Priority)
		}
		if c.ReminderOffset != nil && *c.ReminderOffset != t.ReminderOffset {
			t.ReminderOffset = *c.ReminderOffset
			if t.ReminderOffset < 0 {
				t.ReminderOffset = 0
			}
			rearmed = true
		}
		if rearmed {
			t.Notified = false
		}
		if err := s.persist(ctx); err != nil {
			s.logger.WithError(err).Error("persist after update failed")
		}
		return *t, true
	}
	return domain.Task{}, false
}

// MarkNotified records that a reminder fired for the task. The scheduler
// mutates through this method so reminders share the same persistence path
// as user actions.
func (s *Store) MarkNotified(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			if s.tasks[i].Notified {
				return true
			}
			s.tasks[i].Notified = true
			if err := s.persist(ctx); err != nil {
				s.logger.WithError(err).Error("persist after notify failed")
			}
			return true
		}
	}
	return false
}

func (s *Store) persist(ctx context.Context) error {
	return s.backend.SaveTasks(ctx, s.tasks)
}

// nextID derives ids from the clock in Unix milliseconds, bumping past the
// previous id when two creations land in the same millisecond. Caller
// holds the mutex.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
