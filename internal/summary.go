package internal

import (
	"fmt"
	"time"
)

// FilterCounts holds the sidebar counters next to each filter.
type FilterCounts struct {
	All      int
	Today    int
	NextWeek int
	Priority int
}

// PriorityCounts holds the number of incomplete tasks per priority.
type PriorityCounts struct {
	High   int
	Medium int
	Low    int
}

// Of returns the count for p.
func (c PriorityCounts) Of(p Priority) int {
	switch p {
	case PriorityHigh:
		return c.High
	case PriorityMedium:
		return c.Medium
	case PriorityLow:
		return c.Low
	}

	return 0
}

// CategoryCounts holds the number of incomplete tasks per category.
type CategoryCounts struct {
	Work     int
	Personal int
	Shopping int
	Learning int
}

// Of returns the count for c.
func (c CategoryCounts) Of(cat Category) int {
	switch cat {
	case CategoryWork:
		return c.Work
	case CategoryPersonal:
		return c.Personal
	case CategoryShopping:
		return c.Shopping
	case CategoryLearning:
		return c.Learning
	}

	return 0
}

// Stats holds the headline numbers shown on the stat cards.
type Stats struct {
	TotalTasks     int
	CompletedToday int
	UrgentTasks    int
	DueToday       int
}

// Summary is every count derived from a task collection.
type Summary struct {
	Filters    FilterCounts
	Priorities PriorityCounts
	Categories CategoryCounts
	Stats      Stats
}

// Summarize computes the counts for tasks as of now.
//
// CompletedToday counts completed tasks whose CreatedAt falls on today's date; tasks carry no completion
// timestamp.
func Summarize(tasks []Task, now time.Time) Summary {
	var res Summary

	for _, task := range tasks {
		if task.Completed {
			if sameDay(task.CreatedAt.In(now.Location()), now) {
				res.Stats.CompletedToday++
			}

			continue
		}

		res.Filters.All++

		if IsDueToday(task, now) {
			res.Filters.Today++
		}

		if IsDueNextWeek(task, now) {
			res.Filters.NextWeek++
		}

		switch task.Priority {
		case PriorityHigh:
			res.Priorities.High++
		case PriorityMedium:
			res.Priorities.Medium++
		case PriorityLow:
			res.Priorities.Low++
		}

		switch task.Category {
		case CategoryWork:
			res.Categories.Work++
		case CategoryPersonal:
			res.Categories.Personal++
		case CategoryShopping:
			res.Categories.Shopping++
		case CategoryLearning:
			res.Categories.Learning++
		}

		if task.Status == StatusUrgent {
			res.Stats.UrgentTasks++
		}
	}

	res.Filters.Priority = res.Priorities.High
	res.Stats.TotalTasks = res.Filters.All
	res.Stats.DueToday = res.Filters.Today

	return res
}

// Headline is the sentence shown above the stat cards.
func (s Summary) Headline() string {
	return fmt.Sprintf("You have %d active tasks, %d due today", s.Stats.TotalTasks, s.Stats.DueToday)
}

// DueLabel formats the task's due date relative to now: "Today", "Tomorrow" or "DD.MM", followed by
// ", HH:MM" when a due time is set. Tasks without a due date return an empty string.
func DueLabel(task Task, now time.Time) string {
	if task.DueDate == nil {
		return ""
	}

	due := localDate(*task.DueDate, now.Location())
	tomorrow := localDate(now, now.Location()).AddDate(0, 0, 1)

	var res string

	switch {
	case sameDay(due, now):
		res = "Today"
	case sameDay(due, tomorrow):
		res = "Tomorrow"
	default:
		res = due.Format("02.01")
	}

	if task.DueTime != "" {
		res += ", " + task.DueTime
	}

	return res
}
