package internal

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var dueTimeRegExp = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// CreateParams defines the arguments used for creating Task records.
type CreateParams struct {
	Title             string
	Description       string
	Priority          Priority
	Category          Category
	Status            Status
	DueDate           *time.Time
	DueTime           string
	Progress          int
	DocumentsCount    int
	ParticipantsCount int
}

// NewCreateParams returns the values a new task form starts with.
func NewCreateParams(title string) CreateParams {
	return CreateParams{
		Title:    title,
		Priority: PriorityMedium,
		Category: CategoryWork,
		Status:   StatusActive,
	}
}

// Normalize fills in defaults for unset enums, trims the text fields and clamps Progress to 0-100.
func (c CreateParams) Normalize() CreateParams {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.DueTime = strings.TrimSpace(c.DueTime)

	if c.Priority == 0 {
		c.Priority = PriorityMedium
	}

	if c.Category == 0 {
		c.Category = CategoryWork
	}

	if c.Status == 0 {
		c.Status = StatusActive
	}

	if c.Progress < 0 {
		c.Progress = 0
	} else if c.Progress > 100 {
		c.Progress = 100
	}

	return c
}

// Validate indicates whether the fields are valid or not.
func (c CreateParams) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Priority),
		validation.Field(&c.Category),
		validation.Field(&c.Status),
		validation.Field(&c.DueTime, validation.Match(dueTimeRegExp)),
		validation.Field(&c.DocumentsCount, validation.Min(0)),
		validation.Field(&c.ParticipantsCount, validation.Min(0)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}
