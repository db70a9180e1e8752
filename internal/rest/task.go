package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sanLimbu/taskflow/internal"
)

const dateLayout = "2006-01-02"

// TaskService defines the dashboard state the handlers read and modify.
type TaskService interface {
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	Dashboard(ctx context.Context, key internal.FilterKey) internal.Dashboard
	Reload(ctx context.Context) error
	Search(ctx context.Context, q string) ([]internal.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) (internal.Task, error)
	Tasks(ctx context.Context, key internal.FilterKey) ([]internal.Task, error)
	ToggleComplete(ctx context.Context, id string) (internal.Task, error)
}

// TaskHandler serves the JSON API.
type TaskHandler struct {
	svc TaskService
}

// NewTaskHandler instantiates the JSON handlers.
func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (t *TaskHandler) Register(r chi.Router) {
	r.Get("/dashboard", t.dashboard)
	r.Get("/tasks", t.tasks)
	r.Post("/tasks", t.create)
	r.Post("/tasks/reload", t.reload)
	r.Get("/tasks/search", t.search)
	r.Put("/tasks/{id}/completed", t.setCompleted)
}

// Task is an activity that needs to be completed.
type Task struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Priority          internal.Priority `json:"priority"`
	Category          internal.Category `json:"category"`
	Status            internal.Status   `json:"status"`
	DueDate           string            `json:"due_date,omitempty"`
	DueTime           string            `json:"due_time,omitempty"`
	DueLabel          string            `json:"due_label,omitempty"`
	Progress          int               `json:"progress"`
	DocumentsCount    int               `json:"documents_count"`
	ParticipantsCount int               `json:"participants_count"`
	Completed         bool              `json:"completed"`
	CreatedAt         time.Time         `json:"created_at"`
}

func newTask(task internal.Task, now time.Time) Task {
	res := Task{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Priority:          task.Priority,
		Category:          task.Category,
		Status:            task.Status,
		DueTime:           task.DueTime,
		DueLabel:          internal.DueLabel(task, now),
		Progress:          task.Progress,
		DocumentsCount:    task.DocumentsCount,
		ParticipantsCount: task.ParticipantsCount,
		Completed:         task.Completed,
		CreatedAt:         task.CreatedAt,
	}

	if task.DueDate != nil {
		res.DueDate = task.DueDate.Format(dateLayout)
	}

	return res
}

func newTasks(tasks []internal.Task, now time.Time) []Task {
	res := make([]Task, len(tasks))
	for i, task := range tasks {
		res[i] = newTask(task, now)
	}

	return res
}

// FilterCounts holds the counters shown next to each filter.
type FilterCounts struct {
	All      int `json:"all"`
	Today    int `json:"today"`
	NextWeek int `json:"nextWeek"`
	Priority int `json:"priority"`
}

// PriorityCounts holds the number of incomplete tasks per priority.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// CategoryCounts holds the number of incomplete tasks per category.
type CategoryCounts struct {
	Work     int `json:"work"`
	Personal int `json:"personal"`
	Shopping int `json:"shopping"`
	Learning int `json:"learning"`
}

// Stats holds the stat card numbers.
type Stats struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedToday int `json:"completedToday"`
	UrgentTasks    int `json:"urgentTasks"`
	DueToday       int `json:"dueToday"`
}

// Summary is every count derived from the task collection.
type Summary struct {
	Filters    FilterCounts   `json:"filters"`
	Priorities PriorityCounts `json:"priorities"`
	Categories CategoryCounts `json:"categories"`
	Stats      Stats          `json:"stats"`
}

func newSummary(s internal.Summary) Summary {
	return Summary{
		Filters:    FilterCounts(s.Filters),
		Priorities: PriorityCounts(s.Priorities),
		Categories: CategoryCounts(s.Categories),
		Stats:      Stats(s.Stats),
	}
}

// DashboardResponse defines the response returned back after reading the dashboard.
type DashboardResponse struct {
	Filter  string  `json:"filter"`
	Header  string  `json:"header"`
	Loaded  bool    `json:"loaded"`
	Tasks   []Task  `json:"tasks"`
	Summary Summary `json:"summary"`
}

func (t *TaskHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d := t.svc.Dashboard(r.Context(), internal.ParseFilterKey(r.URL.Query().Get("filter")))

	renderResponse(w,
		&DashboardResponse{
			Filter:  d.Filter.String(),
			Header:  d.Summary.Headline(),
			Loaded:  d.Loaded,
			Tasks:   newTasks(d.Tasks, d.Now),
			Summary: newSummary(d.Summary),
		},
		http.StatusOK)
}

// TasksResponse defines the response returned back after listing tasks.
type TasksResponse struct {
	Tasks []Task `json:"tasks"`
}

func (t *TaskHandler) tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := t.svc.Tasks(r.Context(), internal.ParseFilterKey(r.URL.Query().Get("filter")))
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	renderResponse(w, &TasksResponse{Tasks: newTasks(tasks, time.Now())}, http.StatusOK)
}

// CreateTasksRequest defines the request used for creating tasks.
type CreateTasksRequest struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Priority          internal.Priority `json:"priority"`
	Category          internal.Category `json:"category"`
	Status            internal.Status   `json:"status"`
	DueDate           string            `json:"due_date"`
	DueTime           string            `json:"due_time"`
	Progress          int               `json:"progress"`
	DocumentsCount    int               `json:"documents_count"`
	ParticipantsCount int               `json:"participants_count"`
}

func (c CreateTasksRequest) convert() (internal.CreateParams, error) {
	res := internal.CreateParams{
		Title:             c.Title,
		Description:       c.Description,
		Priority:          c.Priority,
		Category:          c.Category,
		Status:            c.Status,
		DueTime:           c.DueTime,
		Progress:          c.Progress,
		DocumentsCount:    c.DocumentsCount,
		ParticipantsCount: c.ParticipantsCount,
	}

	if c.DueDate != "" {
		due, err := time.Parse(dateLayout, c.DueDate)
		if err != nil {
			return internal.CreateParams{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "time.Parse due_date")
		}

		res.DueDate = &due
	}

	return res, nil
}

// CreateTasksResponse defines the response returned back after creating tasks.
type CreateTasksResponse struct {
	Task Task `json:"task"`
}

func (t *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	params, err := req.convert()
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid request", err)
		return
	}

	task, err := t.svc.Create(r.Context(), params)
	if err != nil {
		renderErrorResponse(r.Context(), w, "create failed", err)
		return
	}

	renderResponse(w, &CreateTasksResponse{Task: newTask(task, time.Now())}, http.StatusCreated)
}

// SetCompletedRequest defines the request used for completing or reopening tasks.
type SetCompletedRequest struct {
	Completed bool `json:"completed"`
}

// SetCompletedResponse defines the response returned back after completing or reopening tasks.
type SetCompletedResponse struct {
	Task Task `json:"task"`
}

func (t *TaskHandler) setCompleted(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	var req SetCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	task, err := t.svc.SetCompleted(r.Context(), id, req.Completed)
	if err != nil {
		renderErrorResponse(r.Context(), w, "update failed", err)
		return
	}

	renderResponse(w, &SetCompletedResponse{Task: newTask(task, time.Now())}, http.StatusOK)
}

func (t *TaskHandler) reload(w http.ResponseWriter, r *http.Request) {
	if err := t.svc.Reload(r.Context()); err != nil {
		renderErrorResponse(r.Context(), w, "reload failed", err)
		return
	}

	tasks, err := t.svc.Tasks(r.Context(), internal.FilterAll)
	if err != nil {
		renderErrorResponse(r.Context(), w, "reload failed", err)
		return
	}

	renderResponse(w, &TasksResponse{Tasks: newTasks(tasks, time.Now())}, http.StatusOK)
}

// SearchTasksResponse defines the response returned back after searching tasks.
type SearchTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

func (t *TaskHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.NewErrorf(internal.ErrorCodeInvalidArgument, "q is required"))
		return
	}

	tasks, err := t.svc.Search(r.Context(), q)
	if err != nil {
		renderErrorResponse(r.Context(), w, "search failed", err)
		return
	}

	renderResponse(w, &SearchTasksResponse{Tasks: newTasks(tasks, time.Now())}, http.StatusOK)
}

func parseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "uuid.Parse")
	}

	return id.String(), nil
}
