package domain

import (
	"fmt"
	"time"
)

// MaxMarkersPerDay caps how many presence markers a calendar cell carries.
// Days with more due tasks do not indicate the surplus.
const MaxMarkersPerDay = 3

// Marker flags one task due on a calendar day.
type Marker struct {
	TaskID    int64 `json:"taskId"`
	Completed bool  `json:"completed,omitempty"`
}

// Cell is one slot of the month grid. Leading placeholder cells that pad
// the first week have Day 0 and an empty Date.
type Cell struct {
	Day     int      `json:"day"`
	Date    string   `json:"date,omitempty"`
	Today   bool     `json:"today,omitempty"`
	Markers []Marker `json:"markers,omitempty"`
}

// DateKey renders the canonical zero-padded YYYY-MM-DD key for a day.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// MonthCells projects tasks onto the month grid for year/month. The grid
// starts with as many placeholder cells as the weekday index of the 1st
// (Sunday = 0), so day columns line up under fixed Sun-Sat headers, then
// one cell per day through the last day of the month. A cell is flagged
// Today when it matches the calendar date of today, and carries up to
// MaxMarkersPerDay markers for tasks whose DueDate equals its date key,
// in collection order. Purely derived; no state retained between calls.
func MonthCells(tasks []Task, year int, month time.Month, today time.Time) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	// Day 0 of the following month is the last day of this one.
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, today.Location()).Day()

	byDate := make(map[string][]Marker)
	for _, t := range tasks {
		if t.DueDate == "" {
			continue
		}
		if ms := byDate[t.DueDate]; len(ms) < MaxMarkersPerDay {
			byDate[t.DueDate] = append(ms, Marker{TaskID: t.ID, Completed: t.Completed})
		}
	}

	ty, tm, td := today.Date()
	cells := make([]Cell, 0, int(first.Weekday())+lastDay)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= lastDay; day++ {
		key := DateKey(year, month, day)
		cells = append(cells, Cell{
			Day:     day,
			Date:    key,
			Today:   year == ty && month == tm && day == td,
			Markers: byDate[key],
		})
	}
	return cells
}

// AddMonths moves a month cursor by delta months, rolling the year over
// naturally (January minus one month is December of the previous year).
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	d := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return d.Year(), d.Month()
}
