package domain

// FilterMode selects which tasks the list view shows.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterActive    FilterMode = "active"
	FilterCompleted FilterMode = "completed"
)

// ParseFilterMode validates a filter name. The empty string means all.
func ParseFilterMode(s string) (FilterMode, bool) {
	switch FilterMode(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterActive:
		return FilterActive, true
	case FilterCompleted:
		return FilterCompleted, true
	default:
		return "", false
	}
}

// Filter returns the subset of tasks matching mode, preserving insertion
// order. FilterAll returns the input slice unchanged; the other modes
// allocate a new slice. The input is never mutated.
func Filter(tasks []Task, mode FilterMode) []Task {
	switch mode {
	case FilterActive:
		out := make([]Task, 0, len(tasks))
		for _, t := range tasks {
			if !t.Completed {
				out = append(out, t)
			}
		}
		return out
	case FilterCompleted:
		out := make([]Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Completed {
				out = append(out, t)
			}
		}
		return out
	default:
		return tasks
	}
}

// ActiveCount reports how many tasks remain uncompleted.
func ActiveCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}
