package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/service"
)

var now = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type fakeRepo struct {
	mu sync.Mutex

	tasks     []internal.Task
	gate      chan struct{}
	allErr    error
	allCalls  int
	setErr    error
	setCalls  []bool
	created   internal.Task
	createErr error
}

func (f *fakeRepo) All(_ context.Context) ([]internal.Task, error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.allCalls++

	if f.allErr != nil {
		return nil, f.allErr
	}

	res := make([]internal.Task, len(f.tasks))
	copy(res, f.tasks)

	return res, nil
}

func (f *fakeRepo) Create(_ context.Context, params internal.CreateParams) (internal.Task, error) {
	if f.createErr != nil {
		return internal.Task{}, f.createErr
	}

	res := f.created
	res.Title = params.Title
	res.Priority = params.Priority
	res.Category = params.Category
	res.Status = params.Status
	res.Progress = params.Progress

	return res, nil
}

func (f *fakeRepo) SetCompleted(_ context.Context, _ string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setCalls = append(f.setCalls, completed)

	return f.setErr
}

type fakeBroker struct {
	created []internal.Task
	updated []internal.Task
	err     error
}

func (f *fakeBroker) Created(_ context.Context, task internal.Task) error {
	f.created = append(f.created, task)
	return f.err
}

func (f *fakeBroker) Updated(_ context.Context, task internal.Task) error {
	f.updated = append(f.updated, task)
	return f.err
}

type fakeSearch struct {
	res   []internal.Task
	err   error
	calls int
}

func (f *fakeSearch) Search(_ context.Context, _ string) ([]internal.Task, error) {
	f.calls++
	return f.res, f.err
}

func ids(tasks []internal.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

func scenarioTasks() []internal.Task {
	return []internal.Task{
		{ID: "1", Priority: internal.PriorityHigh, Category: internal.CategoryWork, Status: internal.StatusActive, DueDate: date(2026, time.October, 15)},
		{ID: "2", Priority: internal.PriorityLow, Category: internal.CategoryPersonal, Status: internal.StatusActive, DueDate: date(2026, time.October, 15), Completed: true},
	}
}

func TestBoard_LoadsLazily(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{tasks: scenarioTasks(), gate: make(chan struct{})}
	board := service.NewBoard(zap.NewNop(), repo, service.WithClock(clock))

	if board.Loaded() {
		t.Fatalf("expected board not to be loaded")
	}

	loading := board.Dashboard(context.Background(), internal.FilterAll)

	if loading.Loaded || len(loading.Tasks) != 0 || loading.Summary.Filters.All != 0 {
		t.Fatalf("expected a loading dashboard, got %+v", loading)
	}

	if board.Loaded() {
		t.Fatalf("expected load to wait for the store")
	}

	close(repo.gate)

	tasks, err := board.Tasks(context.Background(), internal.FilterAll)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if diff := cmp.Diff([]string{"1"}, ids(tasks)); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}

	got := board.Dashboard(context.Background(), internal.FilterAll)

	if !board.Loaded() || !got.Loaded {
		t.Fatalf("expected board to be loaded")
	}

	_ = board.Dashboard(context.Background(), internal.FilterToday)

	if repo.allCalls != 1 {
		t.Fatalf("expected a single load, got %d", repo.allCalls)
	}

	if diff := cmp.Diff([]string{"1"}, ids(got.Tasks)); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard_Tasks_ContextCanceledWhileLoading(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{tasks: scenarioTasks(), gate: make(chan struct{})}
	board := service.NewBoard(zap.NewNop(), repo, service.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := board.Tasks(ctx, internal.FilterAll); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}

	close(repo.gate)

	tasks, err := board.Tasks(context.Background(), internal.FilterAll)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected the detached load to finish, got %v %v", ids(tasks), err)
	}
}

func TestBoard_ReadFailureShowsNoTasks(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)

	repo := &fakeRepo{allErr: errors.New("connection refused")}
	board := service.NewBoard(zap.New(core), repo, service.WithClock(clock))

	tasks, err := board.Tasks(context.Background(), internal.FilterAll)
	if err != nil || len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %v %v", ids(tasks), err)
	}

	got := board.Dashboard(context.Background(), internal.FilterAll)

	if len(got.Tasks) != 0 || got.Summary.Filters.All != 0 || !got.Loaded {
		t.Fatalf("expected an empty loaded dashboard, got %+v", got)
	}

	if logs.FilterMessage("couldn't load tasks").Len() != 1 {
		t.Fatalf("expected read failure to be logged")
	}

	if err := board.Reload(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
}

func TestBoard_ToggleComplete(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{tasks: scenarioTasks()}
	broker := &fakeBroker{}
	board := service.NewBoard(zap.NewNop(), repo, service.WithClock(clock), service.WithMessageBroker(broker))

	task, err := board.ToggleComplete(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if !task.Completed {
		t.Fatalf("expected task to be completed")
	}

	got := board.Dashboard(context.Background(), internal.FilterAll)

	if len(got.Tasks) != 0 || got.Summary.Stats.DueToday != 0 || got.Summary.Priorities.High != 0 {
		t.Fatalf("expected no incomplete tasks, got %+v", got)
	}

	if diff := cmp.Diff([]bool{true}, repo.setCalls); diff != "" {
		t.Fatalf("writes mismatch (-want +got):\n%s", diff)
	}

	if len(broker.updated) != 1 || broker.updated[0].ID != "1" {
		t.Fatalf("expected updated event, got %v", broker.updated)
	}

	task, err = board.ToggleComplete(context.Background(), "1")
	if err != nil || task.Completed {
		t.Fatalf("expected task to be reopened, got %+v %v", task, err)
	}
}

func TestBoard_ToggleComplete_RollsBackOnWriteFailure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)

	repo := &fakeRepo{tasks: scenarioTasks(), setErr: internal.NewErrorf(internal.ErrorCodeUnknown, "timeout")}
	broker := &fakeBroker{}
	board := service.NewBoard(zap.New(core), repo, service.WithClock(clock), service.WithMessageBroker(broker))

	if _, err := board.ToggleComplete(context.Background(), "1"); err == nil {
		t.Fatalf("expected error")
	}

	got := board.Dashboard(context.Background(), internal.FilterAll)

	if diff := cmp.Diff([]string{"1"}, ids(got.Tasks)); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}

	if logs.FilterMessage("couldn't update task").Len() != 1 {
		t.Fatalf("expected write failure to be logged")
	}

	if len(broker.updated) != 0 {
		t.Fatalf("expected no event")
	}
}

func TestBoard_ToggleComplete_NotFound(t *testing.T) {
	t.Parallel()

	board := service.NewBoard(zap.NewNop(), &fakeRepo{tasks: scenarioTasks()}, service.WithClock(clock))

	_, err := board.ToggleComplete(context.Background(), "missing")

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBoard_SetCompleted(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{tasks: scenarioTasks()}
	board := service.NewBoard(zap.NewNop(), repo, service.WithClock(clock))

	task, err := board.SetCompleted(context.Background(), "2", false)
	if err != nil || task.Completed {
		t.Fatalf("unexpected result %+v %v", task, err)
	}

	got := board.Dashboard(context.Background(), internal.FilterAll)

	if diff := cmp.Diff([]string{"1", "2"}, ids(got.Tasks)); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard_Create(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{
		tasks:   scenarioTasks(),
		created: internal.Task{ID: "3", CreatedAt: now},
	}
	broker := &fakeBroker{err: errors.New("broker down")}
	board := service.NewBoard(zap.NewNop(), repo, service.WithClock(clock), service.WithMessageBroker(broker))

	task, err := board.Create(context.Background(), internal.CreateParams{Title: "  Buy milk ", Progress: 150})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	want := internal.Task{
		ID:        "3",
		Title:     "Buy milk",
		Priority:  internal.PriorityMedium,
		Category:  internal.CategoryWork,
		Status:    internal.StatusActive,
		Progress:  100,
		CreatedAt: now,
	}

	if diff := cmp.Diff(want, task); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	got := board.Dashboard(context.Background(), internal.FilterAll)

	if diff := cmp.Diff([]string{"3", "1"}, ids(got.Tasks)); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}

	if len(broker.created) != 1 {
		t.Fatalf("expected created event")
	}
}

func TestBoard_Create_Invalid(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	board := service.NewBoard(zap.NewNop(), repo, service.WithClock(clock))

	_, err := board.Create(context.Background(), internal.CreateParams{Title: "   "})

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	if repo.allCalls != 0 {
		t.Fatalf("expected no load for invalid input")
	}
}

func TestBoard_Search(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{res: []internal.Task{{ID: "a"}, {ID: "b", Completed: true}}}
	board := service.NewBoard(zap.NewNop(), &fakeRepo{}, service.WithClock(clock), service.WithSearch(search))

	got, err := board.Search(context.Background(), "milk")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard_Search_Disabled(t *testing.T) {
	t.Parallel()

	board := service.NewBoard(zap.NewNop(), &fakeRepo{}, service.WithClock(clock))

	if _, err := board.Search(context.Background(), "milk"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBoard_Search_OpensCircuit(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{err: errors.New("index unavailable")}
	board := service.NewBoard(zap.NewNop(), &fakeRepo{}, service.WithClock(clock), service.WithSearch(search))

	for i := 0; i < 5; i++ {
		if _, err := board.Search(context.Background(), "milk"); err == nil {
			t.Fatalf("expected error")
		}
	}

	if search.calls != 3 {
		t.Fatalf("expected the breaker to stop calling after 3 failures, got %d calls", search.calls)
	}
}
