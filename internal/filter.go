package internal

import (
	"strings"
	"time"
)

const (
	filterPrefixPriority = "priority-"
	filterPrefixCategory = "category-"

	nextWeekWindow = 7 * 24 * time.Hour
)

// FilterKey selects which predicate FilterTasks applies.
type FilterKey struct {
	kind     filterKind
	priority Priority
	category Category
}

type filterKind uint8

const (
	filterAll filterKind = iota
	filterToday
	filterNextWeek
	filterPriority
	filterCategory
)

var (
	FilterAll      = FilterKey{kind: filterAll}
	FilterToday    = FilterKey{kind: filterToday}
	FilterNextWeek = FilterKey{kind: filterNextWeek}
)

// FilterByPriority returns the key selecting tasks with the given priority.
func FilterByPriority(p Priority) FilterKey {
	return FilterKey{kind: filterPriority, priority: p}
}

// FilterByCategory returns the key selecting tasks with the given category.
func FilterByCategory(c Category) FilterKey {
	return FilterKey{kind: filterCategory, category: c}
}

// ParseFilterKey converts the token used by clients into a FilterKey. Tokens are case-sensitive, unrecognized
// tokens select all tasks.
func ParseFilterKey(s string) FilterKey {
	switch {
	case s == "today":
		return FilterToday
	case s == "nextWeek":
		return FilterNextWeek
	case s == "priority":
		return FilterByPriority(PriorityHigh)
	case strings.HasPrefix(s, filterPrefixPriority):
		name := strings.TrimPrefix(s, filterPrefixPriority)

		for _, p := range Priorities {
			if p.String() == name {
				return FilterByPriority(p)
			}
		}
	case strings.HasPrefix(s, filterPrefixCategory):
		name := strings.TrimPrefix(s, filterPrefixCategory)

		for _, c := range Categories {
			if c.String() == name {
				return FilterByCategory(c)
			}
		}
	}

	return FilterAll
}

// String returns the token representation. For keys returned by ParseFilterKey, ParseFilterKey(k.String()) == k
// except for "priority" which becomes "priority-high".
func (k FilterKey) String() string {
	switch k.kind {
	case filterToday:
		return "today"
	case filterNextWeek:
		return "nextWeek"
	case filterPriority:
		return filterPrefixPriority + k.priority.String()
	case filterCategory:
		return filterPrefixCategory + k.category.String()
	}

	return "all"
}

func (k FilterKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FilterKey) UnmarshalText(b []byte) error {
	*k = ParseFilterKey(string(b))
	return nil
}

func (k FilterKey) match(task Task, now time.Time) bool {
	switch k.kind {
	case filterToday:
		return IsDueToday(task, now)
	case filterNextWeek:
		return IsDueNextWeek(task, now)
	case filterPriority:
		return task.Priority == k.priority
	case filterCategory:
		return task.Category == k.category
	}

	return true
}

// FilterTasks returns the incomplete tasks matching key, keeping their relative order.
func FilterTasks(tasks []Task, key FilterKey, now time.Time) []Task {
	res := make([]Task, 0, len(tasks))

	for _, task := range tasks {
		if task.Completed || !key.match(task, now) {
			continue
		}

		res = append(res, task)
	}

	return res
}

// IsDueToday indicates whether the task's due date is the same calendar day as now, in now's location.
func IsDueToday(task Task, now time.Time) bool {
	if task.DueDate == nil {
		return false
	}

	return sameDay(*task.DueDate, now)
}

// IsDueNextWeek indicates whether the task's due date, taken as midnight in now's location, falls within
// [now, now+7 days].
func IsDueNextWeek(task Task, now time.Time) bool {
	if task.DueDate == nil {
		return false
	}

	due := localDate(*task.DueDate, now.Location())

	return !due.Before(now) && !due.After(now.Add(nextWeekWindow))
}

// localDate returns midnight of d's calendar date in loc. Due dates carry no zone of their own.
func localDate(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func sameDay(d, now time.Time) bool {
	dy, dm, dd := d.Date()
	ny, nm, nd := now.Date()

	return dy == ny && dm == nm && dd == nd
}
