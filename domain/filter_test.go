package domain

import (
	"reflect"
	"testing"
)

func sampleTasks() []Task {
	return []Task{
		{ID: 4, Text: "d"},
		{ID: 3, Text: "c", Completed: true},
		{ID: 2, Text: "b"},
		{ID: 1, Text: "a", Completed: true},
	}
}

func TestFilterAllIsIdentity(t *testing.T) {
	tasks := sampleTasks()
	got := Filter(tasks, FilterAll)
	if !reflect.DeepEqual(got, tasks) {
		t.Fatalf("FilterAll changed the collection: %#v", got)
	}
}

func TestFilterPartitions(t *testing.T) {
	tasks := sampleTasks()
	active := Filter(tasks, FilterActive)
	completed := Filter(tasks, FilterCompleted)

	if len(active)+len(completed) != len(tasks) {
		t.Fatalf("partition sizes %d+%d != %d", len(active), len(completed), len(tasks))
	}
	seen := map[int64]bool{}
	for _, t2 := range append(append([]Task{}, active...), completed...) {
		if seen[t2.ID] {
			t.Fatalf("task %d appears in both partitions", t2.ID)
		}
		seen[t2.ID] = true
	}
	for _, t2 := range active {
		if t2.Completed {
			t.Fatalf("completed task %d in active partition", t2.ID)
		}
	}
	for _, t2 := range completed {
		if !t2.Completed {
			t.Fatalf("active task %d in completed partition", t2.ID)
		}
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	tasks := sampleTasks()
	active := Filter(tasks, FilterActive)
	wantIDs := []int64{4, 2}
	for i, task := range active {
		if task.ID != wantIDs[i] {
			t.Fatalf("active order = %v at %d, want %v", task.ID, i, wantIDs[i])
		}
	}
}

func TestParseFilterMode(t *testing.T) {
	if mode, ok := ParseFilterMode(""); !ok || mode != FilterAll {
		t.Fatalf("empty filter should mean all, got %q ok=%v", mode, ok)
	}
	if _, ok := ParseFilterMode("overdue"); ok {
		t.Fatal("unknown filter should be rejected")
	}
}

func TestActiveCount(t *testing.T) {
	if got := ActiveCount(sampleTasks()); got != 2 {
		t.Fatalf("ActiveCount = %d, want 2", got)
	}
}
