package internal

import "time"

// Dashboard is the derived state rendered for one filter key.
type Dashboard struct {
	Filter  FilterKey
	Tasks   []Task
	Summary Summary
	Now     time.Time
	Loaded  bool
}

// NewDashboard filters and summarizes tasks as of now.
func NewDashboard(tasks []Task, key FilterKey, now time.Time) Dashboard {
	return Dashboard{
		Filter:  key,
		Tasks:   FilterTasks(tasks, key, now),
		Summary: Summarize(tasks, now),
		Now:     now,
		Loaded:  true,
	}
}

// NewLoadingDashboard returns the state shown while the first load is still running: no tasks and zero counts.
func NewLoadingDashboard(key FilterKey, now time.Time) Dashboard {
	return Dashboard{
		Filter: key,
		Tasks:  []Task{},
		Now:    now,
	}
}
