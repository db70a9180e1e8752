package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/postgresql/db"
)

const otelName = "github.com/sanLimbu/taskflow/internal/postgresql"

func convertPriority(p db.Priority) (internal.Priority, error) {
	switch p {
	case db.PriorityLow:
		return internal.PriorityLow, nil
	case db.PriorityMedium:
		return internal.PriorityMedium, nil
	case db.PriorityHigh:
		return internal.PriorityHigh, nil
	}

	return internal.Priority(0), fmt.Errorf("unknown priority value: %s", p)
}

func newPriority(p internal.Priority) db.Priority {
	switch p {
	case internal.PriorityLow:
		return db.PriorityLow
	case internal.PriorityMedium:
		return db.PriorityMedium
	case internal.PriorityHigh:
		return db.PriorityHigh
	}

	return "invalid"
}

func convertCategory(c db.Category) (internal.Category, error) {
	switch c {
	case db.CategoryWork:
		return internal.CategoryWork, nil
	case db.CategoryPersonal:
		return internal.CategoryPersonal, nil
	case db.CategoryShopping:
		return internal.CategoryShopping, nil
	case db.CategoryLearning:
		return internal.CategoryLearning, nil
	}

	return internal.Category(0), fmt.Errorf("unknown category value: %s", c)
}

func newCategory(c internal.Category) db.Category {
	switch c {
	case internal.CategoryWork:
		return db.CategoryWork
	case internal.CategoryPersonal:
		return db.CategoryPersonal
	case internal.CategoryShopping:
		return db.CategoryShopping
	case internal.CategoryLearning:
		return db.CategoryLearning
	}

	return "invalid"
}

func convertStatus(s db.Status) (internal.Status, error) {
	switch s {
	case db.StatusActive:
		return internal.StatusActive, nil
	case db.StatusDone:
		return internal.StatusDone, nil
	case db.StatusUrgent:
		return internal.StatusUrgent, nil
	}

	return internal.Status(0), fmt.Errorf("unknown status value: %s", s)
}

func newStatus(s internal.Status) db.Status {
	switch s {
	case internal.StatusActive:
		return db.StatusActive
	case internal.StatusDone:
		return db.StatusDone
	case internal.StatusUrgent:
		return db.StatusUrgent
	}

	return "invalid"
}

func newDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}

	y, m, d := t.Date()

	return pgtype.Date{
		Time:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

func convertDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}

	res := d.Time

	return &res
}

// newTime parses "HH:MM" into a TIME value, an empty string is NULL.
func newTime(s string) (pgtype.Time, error) {
	if s == "" {
		return pgtype.Time{}, nil
	}

	t, err := time.Parse("15:04", s)
	if err != nil {
		return pgtype.Time{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "time.Parse")
	}

	return pgtype.Time{
		Microseconds: int64(t.Hour())*int64(time.Hour/time.Microsecond) + int64(t.Minute())*int64(time.Minute/time.Microsecond),
		Valid:        true,
	}, nil
}

func convertTime(t pgtype.Time) string {
	if !t.Valid {
		return ""
	}

	d := time.Duration(t.Microseconds) * time.Microsecond

	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func convertTask(row db.Tasks) (internal.Task, error) {
	priority, err := convertPriority(row.Priority)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convert priority")
	}

	category, err := convertCategory(row.Category)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convert category")
	}

	status, err := convertStatus(row.Status)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convert status")
	}

	return internal.Task{
		ID:                uuid.UUID(row.ID.Bytes).String(),
		Title:             row.Title,
		Description:       row.Description,
		Priority:          priority,
		Category:          category,
		Status:            status,
		DueDate:           convertDate(row.DueDate),
		DueTime:           convertTime(row.DueTime),
		Progress:          int(row.Progress),
		DocumentsCount:    int(row.DocumentsCount),
		ParticipantsCount: int(row.ParticipantsCount),
		Completed:         row.Completed,
		CreatedAt:         row.CreatedAt.Time,
	}, nil
}

// convertError maps driver errors into internal.Error values.
func convertError(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.WrapErrorf(err, internal.ErrorCodeNotFound, msg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.InvalidTextRepresentation, pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, msg)
		}
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, msg)
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}
