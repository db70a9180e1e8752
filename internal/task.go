package internal

import (
	"strings"
	"time"
)

// Priority indicates how important a Task is.
type Priority int8

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// Priorities lists every supported priority, most important first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority converts the textual representation into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(s) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}

	return Priority(0), NewErrorf(ErrorCodeInvalidArgument, "unknown priority: %q", s)
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}

	return "unknown"
}

// Validate returns an error when the value is not one of the supported priorities.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown priority value")
}

func (p Priority) MarshalText() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}

	*p = v

	return nil
}

// Category groups Tasks by area of life.
type Category int8

const (
	CategoryWork Category = iota + 1
	CategoryPersonal
	CategoryShopping
	CategoryLearning
)

// Categories lists every supported category, in sidebar order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryLearning}

// ParseCategory converts the textual representation into a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "work":
		return CategoryWork, nil
	case "personal":
		return CategoryPersonal, nil
	case "shopping":
		return CategoryShopping, nil
	case "learning":
		return CategoryLearning, nil
	}

	return Category(0), NewErrorf(ErrorCodeInvalidArgument, "unknown category: %q", s)
}

func (c Category) String() string {
	switch c {
	case CategoryWork:
		return "work"
	case CategoryPersonal:
		return "personal"
	case CategoryShopping:
		return "shopping"
	case CategoryLearning:
		return "learning"
	}

	return "unknown"
}

// Validate returns an error when the value is not one of the supported categories.
func (c Category) Validate() error {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryLearning:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown category value")
}

func (c Category) MarshalText() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}

	*c = v

	return nil
}

// Status is the workflow state of a Task. It is independent of Task.Completed.
type Status int8

const (
	StatusActive Status = iota + 1
	StatusDone
	StatusUrgent
)

// ParseStatus converts the textual representation into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "active":
		return StatusActive, nil
	case "done":
		return StatusDone, nil
	case "urgent":
		return StatusUrgent, nil
	}

	return Status(0), NewErrorf(ErrorCodeInvalidArgument, "unknown status: %q", s)
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDone:
		return "done"
	case StatusUrgent:
		return "urgent"
	}

	return "unknown"
}

// Validate returns an error when the value is not one of the supported statuses.
func (s Status) Validate() error {
	switch s {
	case StatusActive, StatusDone, StatusUrgent:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown status value")
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

// Task is an activity that needs to be completed.
type Task struct {
	ID                string
	Title             string
	Description       string
	Priority          Priority
	Category          Category
	Status            Status
	DueDate           *time.Time // calendar date only
	DueTime           string     // HH:MM, empty when unset
	Progress          int
	DocumentsCount    int
	ParticipantsCount int
	Completed         bool
	CreatedAt         time.Time
}
