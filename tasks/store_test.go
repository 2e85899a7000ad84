package tasks

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"focus-api/domain"
)

type stubBackend struct {
	loadFn func(ctx context.Context) ([]domain.Task, error)
	saveFn func(ctx context.Context, tasks []domain.Task) error
	saved  [][]domain.Task
}

func (s *stubBackend) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	if s.loadFn == nil {
		return nil, nil
	}
	return s.loadFn(ctx)
}

func (s *stubBackend) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	snapshot := make([]domain.Task, len(tasks))
	copy(snapshot, tasks)
	s.saved = append(s.saved, snapshot)
	if s.saveFn == nil {
		return nil
	}
	return s.saveFn(ctx, tasks)
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetLevel(log.PanicLevel)
	return l
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAddRejectsBlankText(t *testing.T) {
	backend := &stubBackend{}
	store := New(backend, nil, quietLogger())

	if _, ok := store.Add(context.Background(), Draft{Text: "   "}); ok {
		t.Fatal("blank text must not create a task")
	}
	if len(backend.saved) != 0 {
		t.Fatal("rejected add must not persist")
	}
	if len(store.All()) != 0 {
		t.Fatal("rejected add must not grow the collection")
	}
}

func TestAddPrependsAndPersists(t *testing.T) {
	backend := &stubBackend{}
	now := time.Date(2024, time.January, 5, 8, 0, 0, 0, time.Local)
	store := New(backend, fixedClock(now), quietLogger())

	first, ok := store.Add(context.Background(), Draft{Text: " write notes ", Priority: "high"})
	if !ok {
		t.Fatal("add failed")
	}
	second, _ := store.Add(context.Background(), Draft{Text: "review"})

	if first.Text != "write notes" {
		t.Fatalf("text not trimmed: %q", first.Text)
	}
	if first.Priority != domain.PriorityHigh || second.Priority != domain.PriorityMedium {
		t.Fatalf("priorities = %q / %q", first.Priority, second.Priority)
	}
	if !first.CreatedAt.Equal(now) {
		t.Fatalf("createdAt = %v, want %v", first.CreatedAt, now)
	}

	all := store.All()
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected newest first, got %#v", all)
	}
	if len(backend.saved) != 2 {
		t.Fatalf("expected 2 persists, got %d", len(backend.saved))
	}
}

func TestMonotonicIDsUnderFrozenClock(t *testing.T) {
	now := time.Date(2024, time.January, 5, 8, 0, 0, 0, time.Local)
	store := New(&stubBackend{}, fixedClock(now), quietLogger())

	a, _ := store.Add(context.Background(), Draft{Text: "a"})
	b, _ := store.Add(context.Background(), Draft{Text: "b"})
	c, _ := store.Add(context.Background(), Draft{Text: "c"})
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Fatalf("ids not strictly increasing: %d %d %d", a.ID, b.ID, c.ID)
	}
	if a.ID != now.UnixMilli() {
		t.Fatalf("first id = %d, want creation millis %d", a.ID, now.UnixMilli())
	}
}

func TestToggleIsInvolution(t *testing.T) {
	store := New(&stubBackend{}, nil, quietLogger())
	task, _ := store.Add(context.Background(), Draft{Text: "flip me"})

	if !store.Toggle(context.Background(), task.ID) {
		t.Fatal("toggle reported not found")
	}
	if !store.All()[0].Completed {
		t.Fatal("toggle did not complete the task")
	}
	store.Toggle(context.Background(), task.ID)
	if store.All()[0].Completed {
		t.Fatal("double toggle must restore the original state")
	}
}

func TestToggleAndDeleteUnknownIDAreNoOps(t *testing.T) {
	backend := &stubBackend{}
	store := New(backend, nil, quietLogger())
	store.Add(context.Background(), Draft{Text: "keep"})
	persists := len(backend.saved)

	if store.Toggle(context.Background(), 42) {
		t.Fatal("toggle of unknown id should report not found")
	}
	if store.Delete(context.Background(), 42) {
		t.Fatal("delete of unknown id should report not found")
	}
	if len(backend.saved) != persists {
		t.Fatal("no-ops must not persist")
	}
	if len(store.All()) != 1 {
		t.Fatal("collection changed by no-ops")
	}
}

func TestClearCompletedIsIdempotent(t *testing.T) {
	store := New(&stubBackend{}, nil, quietLogger())
	a, _ := store.Add(context.Background(), Draft{Text: "a"})
	store.Add(context.Background(), Draft{Text: "b"})
	store.Toggle(context.Background(), a.ID)

	if removed := store.ClearCompleted(context.Background()); removed != 1 {
		t.Fatalf("first clear removed %d, want 1", removed)
	}
	once := store.All()
	if removed := store.ClearCompleted(context.Background()); removed != 0 {
		t.Fatalf("second clear removed %d, want 0", removed)
	}
	if !reflect.DeepEqual(once, store.All()) {
		t.Fatal("second clear changed the collection")
	}
}

func TestClearCompletedAlwaysPersists(t *testing.T) {
	backend := &stubBackend{}
	store := New(backend, nil, quietLogger())
	store.Add(context.Background(), Draft{Text: "keep"})

	saves := len(backend.saved)
	if removed := store.ClearCompleted(context.Background()); removed != 0 {
		t.Fatalf("clear removed %d, want 0", removed)
	}
	if len(backend.saved) != saves+1 {
		t.Fatalf("save count = %d, want %d", len(backend.saved), saves+1)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	var persisted []domain.Task
	backend := &stubBackend{
		saveFn: func(ctx context.Context, tasks []domain.Task) error {
			persisted = append([]domain.Task(nil), tasks...)
			return nil
		},
		loadFn: func(ctx context.Context) ([]domain.Task, error) {
			return persisted, nil
		},
	}
	now := time.Date(2024, time.January, 10, 7, 30, 0, 0, time.Local)
	store := New(backend, fixedClock(now), quietLogger())

	added, _ := store.Add(context.Background(), Draft{
		Text:           "standup",
		DueDate:        "2024-01-10",
		StartTime:      "09:00",
		EndTime:        "09:15",
		Priority:       "high",
		ReminderOffset: 15,
	})

	reloaded := New(backend, fixedClock(now), quietLogger())
	reloaded.Load(context.Background())
	got := reloaded.All()
	if len(got) != 1 {
		t.Fatalf("expected 1 task after reload, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0], added) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got[0], added)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	backend := &stubBackend{
		loadFn: func(ctx context.Context) ([]domain.Task, error) {
			return nil, errors.New("storage exploded")
		},
	}
	store := New(backend, nil, quietLogger())
	store.Load(context.Background())
	if len(store.All()) != 0 {
		t.Fatal("failed load must yield an empty collection")
	}
}

func TestLoadResumesIDSequence(t *testing.T) {
	existing := []domain.Task{{ID: 9_000_000_000_000, Text: "old"}}
	backend := &stubBackend{
		loadFn: func(ctx context.Context) ([]domain.Task, error) { return existing, nil },
	}
	past := time.UnixMilli(1_000)
	store := New(backend, fixedClock(past), quietLogger())
	store.Load(context.Background())

	added, _ := store.Add(context.Background(), Draft{Text: "new"})
	if added.ID <= existing[0].ID {
		t.Fatalf("new id %d must exceed highest loaded id %d", added.ID, existing[0].ID)
	}
}

func TestUpdateResetsNotifiedOnScheduleChange(t *testing.T) {
	store := New(&stubBackend{}, nil, quietLogger())
	task, _ := store.Add(context.Background(), Draft{Text: "call", DueDate: "2024-01-10", StartTime: "10:00"})
	store.MarkNotified(context.Background(), task.ID)

	newStart := "14:00"
	updated, ok := store.Update(context.Background(), task.ID, Changes{StartTime: &newStart})
	if !ok {
		t.Fatal("update reported not found")
	}
	if updated.Notified {
		t.Fatal("schedule change must reset the notified flag")
	}
	if updated.StartTime != newStart {
		t.Fatalf("startTime = %q, want %q", updated.StartTime, newStart)
	}
}

func TestUpdateKeepsNotifiedOnTextChange(t *testing.T) {
	store := New(&stubBackend{}, nil, quietLogger())
	task, _ := store.Add(context.Background(), Draft{Text: "call", DueDate: "2024-01-10"})
	store.MarkNotified(context.Background(), task.ID)

	text := "call back"
	updated, _ := store.Update(context.Background(), task.ID, Changes{Text: &text})
	if !updated.Notified {
		t.Fatal("text-only edit must not reset the notified flag")
	}
	if updated.Text != text {
		t.Fatalf("text = %q, want %q", updated.Text, text)
	}
}

func TestMarkNotifiedPersistsOnce(t *testing.T) {
	backend := &stubBackend{}
	store := New(backend, nil, quietLogger())
	task, _ := store.Add(context.Background(), Draft{Text: "remind"})
	persists := len(backend.saved)

	store.MarkNotified(context.Background(), task.ID)
	if len(backend.saved) != persists+1 {
		t.Fatal("first mark must persist")
	}
	store.MarkNotified(context.Background(), task.ID)
	if len(backend.saved) != persists+1 {
		t.Fatal("repeated mark must not persist again")
	}
}
