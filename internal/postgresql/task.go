package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/postgresql/db"
)

// DBTX is the subset of *pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Task represents the repository used for interacting with Task records.
type Task struct {
	db DBTX
}

// NewTask instantiates the Task repository.
func NewTask(db DBTX) *Task {
	return &Task{
		db: db,
	}
}

const selectTasksQuery = `
SELECT id,
       title,
       description,
       priority::text,
       category::text,
       status::text,
       due_date,
       due_time,
       progress,
       documents_count,
       participants_count,
       completed,
       created_at
FROM tasks
ORDER BY created_at DESC
`

// All returns every task, newest first.
func (t *Task) All(ctx context.Context) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.All").End()

	rows, err := t.db.Query(ctx, selectTasksQuery)
	if err != nil {
		return nil, convertError(err, "select tasks")
	}
	defer rows.Close()

	res := []internal.Task{}

	for rows.Next() {
		var row db.Tasks

		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.Description,
			&row.Priority,
			&row.Category,
			&row.Status,
			&row.DueDate,
			&row.DueTime,
			&row.Progress,
			&row.DocumentsCount,
			&row.ParticipantsCount,
			&row.Completed,
			&row.CreatedAt,
		); err != nil {
			return nil, convertError(err, "rows.Scan")
		}

		task, err := convertTask(row)
		if err != nil {
			return nil, err
		}

		res = append(res, task)
	}

	if err := rows.Err(); err != nil {
		return nil, convertError(err, "rows.Err")
	}

	return res, nil
}

const updateCompletedQuery = `
UPDATE tasks
SET completed = $1
WHERE id = $2
`

// SetCompleted updates the completed flag of the task identified by id.
func (t *Task) SetCompleted(ctx context.Context, id string, completed bool) error {
	defer newOTELSpan(ctx, "Task.SetCompleted").End()

	tag, err := t.db.Exec(ctx, updateCompletedQuery, completed, id)
	if err != nil {
		return convertError(err, "update task")
	}

	if tag.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "task not found: %s", id)
	}

	return nil
}

const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   priority,
                   category,
                   status,
                   due_date,
                   due_time,
                   progress,
                   documents_count,
                   participants_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at
`

// Create inserts a new task record.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	dueTime, err := newTime(params.DueTime)
	if err != nil {
		return internal.Task{}, err
	}

	args := db.InsertTasksParams{
		Title:             params.Title,
		Description:       params.Description,
		Priority:          newPriority(params.Priority),
		Category:          newCategory(params.Category),
		Status:            newStatus(params.Status),
		DueDate:           newDate(params.DueDate),
		DueTime:           dueTime,
		Progress:          int32(params.Progress),
		DocumentsCount:    int32(params.DocumentsCount),
		ParticipantsCount: int32(params.ParticipantsCount),
	}

	row := db.Tasks{
		Title:             args.Title,
		Description:       args.Description,
		Priority:          args.Priority,
		Category:          args.Category,
		Status:            args.Status,
		DueDate:           args.DueDate,
		DueTime:           args.DueTime,
		Progress:          args.Progress,
		DocumentsCount:    args.DocumentsCount,
		ParticipantsCount: args.ParticipantsCount,
	}

	if err := t.db.QueryRow(ctx, insertTaskQuery,
		args.Title,
		args.Description,
		string(args.Priority),
		string(args.Category),
		string(args.Status),
		args.DueDate,
		args.DueTime,
		args.Progress,
		args.DocumentsCount,
		args.ParticipantsCount,
	).Scan(&row.ID, &row.CreatedAt); err != nil {
		return internal.Task{}, convertError(err, "insert task")
	}

	return convertTask(row)
}
