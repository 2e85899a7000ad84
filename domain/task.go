package domain

import (
	"strings"
	"time"
)

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NormalizePriority maps arbitrary input to a valid priority. Empty or
// unknown values default to medium.
func NormalizePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

const (
	// DateLayout is the canonical calendar-date form for DueDate.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24h clock form for StartTime and EndTime.
	TimeLayout = "15:04"

	// defaultStartHour anchors reminders for tasks that carry a due date
	// but no start time.
	defaultStartHour = 9
)

// Task is a single to-do entry with optional scheduling metadata.
type Task struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	DueDate        string    `json:"dueDate,omitempty"`
	StartTime      string    `json:"startTime,omitempty"`
	EndTime        string    `json:"endTime,omitempty"`
	Priority       Priority  `json:"priority"`
	ReminderOffset int       `json:"reminderOffset,omitempty"`
	Completed      bool      `json:"completed,omitempty"`
	Notified       bool      `json:"notified,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Scheduled reports whether the task carries a due date.
func (t Task) Scheduled() bool { return t.DueDate != "" }

// Due parses the task's due date as midnight in loc.
func (t Task) Due(loc *time.Location) (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Overdue reports whether the task's due day has fully elapsed. A task is
// overdue iff it is not completed and 23:59:59 local on its due date is
// strictly before now. A task due today stays current until the day is over.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.Due(now.Location())
	if !ok {
		return false
	}
	endOfDay := time.Date(due.Year(), due.Month(), due.Day(), 23, 59, 59, 0, now.Location())
	return endOfDay.Before(now)
}

// StartAt computes the task's anchor instant: the due date combined with
// the start time, or 09:00 local when no start time is set.
func (t Task) StartAt(loc *time.Location) (time.Time, bool) {
	due, ok := t.Due(loc)
	if !ok {
		return time.Time{}, false
	}
	if t.StartTime == "" {
		return time.Date(due.Year(), due.Month(), due.Day(), defaultStartHour, 0, 0, 0, loc), true
	}
	st, err := time.ParseInLocation(TimeLayout, t.StartTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(due.Year(), due.Month(), due.Day(), st.Hour(), st.Minute(), 0, 0, loc), true
}

// ReminderAt computes the trigger instant: the anchor minus the reminder
// offset in minutes.
func (t Task) ReminderAt(loc *time.Location) (time.Time, bool) {
	start, ok := t.StartAt(loc)
	if !ok {
		return time.Time{}, false
	}
	return start.Add(-time.Duration(t.ReminderOffset) * time.Minute), true
}
