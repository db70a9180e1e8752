package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryLearning Category = "learning"
)

type Status string

const (
	StatusActive Status = "active"
	StatusDone   Status = "done"
	StatusUrgent Status = "urgent"
)

// Tasks is a row of the tasks table.
type Tasks struct {
	ID                pgtype.UUID
	Title             string
	Description       string
	Priority          Priority
	Category          Category
	Status            Status
	DueDate           pgtype.Date
	DueTime           pgtype.Time
	Progress          int32
	DocumentsCount    int32
	ParticipantsCount int32
	Completed         bool
	CreatedAt         pgtype.Timestamptz
}

// InsertTasksParams are the columns written when inserting a row, the rest use their defaults.
type InsertTasksParams struct {
	Title             string
	Description       string
	Priority          Priority
	Category          Category
	Status            Status
	DueDate           pgtype.Date
	DueTime           pgtype.Time
	Progress          int32
	DocumentsCount    int32
	ParticipantsCount int32
}
