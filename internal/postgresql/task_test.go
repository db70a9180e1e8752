package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/postgresql/db"
)

type fakeRow struct {
	scan func(dest ...interface{}) error
}

func (f fakeRow) Scan(dest ...interface{}) error {
	return f.scan(dest...)
}

type fakeDB struct {
	execTag  pgconn.CommandTag
	execErr  error
	execArgs []interface{}
	row      pgx.Row
	rowArgs  []interface{}
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execArgs = args
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...interface{}) pgx.Row {
	f.rowArgs = args
	return f.row
}

func TestTask_SetCompleted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		db     *fakeDB
		code   internal.ErrorCode
		hasErr bool
	}{
		{
			"OK",
			&fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")},
			0,
			false,
		},
		{
			"ERR: not found",
			&fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")},
			internal.ErrorCodeNotFound,
			true,
		},
		{
			"ERR: malformed id",
			&fakeDB{execErr: &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}},
			internal.ErrorCodeInvalidArgument,
			true,
		},
		{
			"ERR: connection",
			&fakeDB{execErr: errors.New("connection refused")},
			internal.ErrorCodeUnknown,
			true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewTask(tt.db).SetCompleted(context.Background(), "id", true)
			if (err != nil) != tt.hasErr {
				t.Fatalf("expected error %t, got %v", tt.hasErr, err)
			}

			if diff := cmp.Diff([]interface{}{true, "id"}, tt.db.execArgs); diff != "" {
				t.Fatalf("args mismatch (-want +got):\n%s", diff)
			}

			if !tt.hasErr {
				return
			}

			var ierr *internal.Error
			if !errors.As(err, &ierr) || ierr.Code() != tt.code {
				t.Fatalf("expected code %d, got %v", tt.code, err)
			}
		})
	}
}

func TestTask_Create(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("4a53c1b6-9a1e-4cb0-9b1f-0d3a1b6f1a10")
	createdAt := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	due := time.Date(2026, time.October, 20, 15, 0, 0, 0, time.Local)

	fdb := &fakeDB{
		row: fakeRow{scan: func(dest ...interface{}) error {
			*dest[0].(*pgtype.UUID) = pgtype.UUID{Bytes: id, Valid: true}
			*dest[1].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: createdAt, Valid: true}
			return nil
		}},
	}

	params := internal.NewCreateParams("Buy milk")
	params.Category = internal.CategoryShopping
	params.DueDate = &due
	params.DueTime = "18:30"

	got, err := NewTask(fdb).Create(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	wantDue := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)

	want := internal.Task{
		ID:        id.String(),
		Title:     "Buy milk",
		Priority:  internal.PriorityMedium,
		Category:  internal.CategoryShopping,
		Status:    internal.StatusActive,
		DueDate:   &wantDue,
		DueTime:   "18:30",
		CreatedAt: createdAt,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	if fdb.rowArgs[2] != "medium" || fdb.rowArgs[3] != "shopping" || fdb.rowArgs[4] != "active" {
		t.Fatalf("unexpected enum args %v", fdb.rowArgs[2:5])
	}
}

func TestTask_Create_InvalidDueTime(t *testing.T) {
	t.Parallel()

	params := internal.NewCreateParams("Buy milk")
	params.DueTime = "noon"

	_, err := NewTask(&fakeDB{}).Create(context.Background(), params)

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestConvertTask(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	row := db.Tasks{
		ID:                pgtype.UUID{Bytes: id, Valid: true},
		Title:             "Read book",
		Priority:          db.PriorityLow,
		Category:          db.CategoryLearning,
		Status:            db.StatusUrgent,
		DueTime:           pgtype.Time{Microseconds: int64(9*time.Hour/time.Microsecond + 5*time.Minute/time.Microsecond), Valid: true},
		Progress:          40,
		DocumentsCount:    2,
		ParticipantsCount: 3,
		Completed:         true,
	}

	got, err := convertTask(row)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	want := internal.Task{
		ID:                id.String(),
		Title:             "Read book",
		Priority:          internal.PriorityLow,
		Category:          internal.CategoryLearning,
		Status:            internal.StatusUrgent,
		DueTime:           "09:05",
		Progress:          40,
		DocumentsCount:    2,
		ParticipantsCount: 3,
		Completed:         true,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	row.Priority = "urgent"
	if _, err := convertTask(row); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
}

func TestEnumRoundTrip(t *testing.T) {
	t.Parallel()

	for _, p := range internal.Priorities {
		if got, err := convertPriority(newPriority(p)); err != nil || got != p {
			t.Fatalf("priority %s: got %s, %v", p, got, err)
		}
	}

	for _, c := range internal.Categories {
		if got, err := convertCategory(newCategory(c)); err != nil || got != c {
			t.Fatalf("category %s: got %s, %v", c, got, err)
		}
	}

	for _, s := range []internal.Status{internal.StatusActive, internal.StatusDone, internal.StatusUrgent} {
		if got, err := convertStatus(newStatus(s)); err != nil || got != s {
			t.Fatalf("status %s: got %s, %v", s, got, err)
		}
	}
}
