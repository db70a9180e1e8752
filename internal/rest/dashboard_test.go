package rest_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/rest"
)

func newDashboardRouter(svc rest.TaskService) *chi.Mux {
	r := chi.NewRouter()
	rest.NewDashboardHandler(svc).Register(r)

	return r
}

func TestDashboardHandler_Index(t *testing.T) {
	t.Parallel()

	svc := &fakeService{tasks: fixtureTasks()}

	rec := doRequest(t, newDashboardRouter(svc), http.MethodGet, "/?filter=today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()

	for _, want := range []string{
		"You have 2 active tasks, 1 due today",
		"Ship release",
		"Today, 17:00",
		`action="/toggle/` + taskID + `"`,
		`name="filter" value="today"`,
		`name="completed" value="true"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}

	if strings.Contains(body, "Groceries") {
		t.Errorf("expected task due tomorrow to be filtered out")
	}
}

func TestDashboardHandler_Index_Empty(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newDashboardRouter(&fakeService{}), http.MethodGet, "/", "")

	if !strings.Contains(rec.Body.String(), "No tasks") {
		t.Fatalf("expected empty state, got %s", rec.Body.String())
	}
}

func TestDashboardHandler_Index_Loading(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newDashboardRouter(&fakeService{tasks: fixtureTasks(), loading: true}), http.MethodGet, "/", "")

	body := rec.Body.String()

	for _, want := range []string{"Loading...", `http-equiv="refresh"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}

	if strings.Contains(body, "Ship release") || strings.Contains(body, "No tasks") {
		t.Errorf("expected only the loading state, got %s", body)
	}
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestDashboardHandler_Toggle_PostsIntendedState(t *testing.T) {
	t.Parallel()

	svc := &fakeService{tasks: fixtureTasks()}
	router := newDashboardRouter(svc)

	for i := 0; i < 2; i++ {
		rec := postForm(t, router, "/toggle/"+taskID, url.Values{"filter": {"today"}, "completed": {"true"}})

		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/?filter=today" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
		}
	}

	if !svc.completed[taskID] || len(svc.toggled) != 0 {
		t.Fatalf("expected a resubmitted form to keep the task completed, got %v %v", svc.completed, svc.toggled)
	}
}

func TestDashboardHandler_Toggle_InvalidCompleted(t *testing.T) {
	t.Parallel()

	rec := postForm(t, newDashboardRouter(&fakeService{}), "/toggle/"+taskID, url.Values{"completed": {"maybe"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDashboardHandler_Toggle_WriteFailureRedirects(t *testing.T) {
	t.Parallel()

	svc := &fakeService{setErr: internal.WrapErrorf(errors.New("timeout"), internal.ErrorCodeUnknown, "update task")}

	rec := postForm(t, newDashboardRouter(svc), "/toggle/"+taskID, url.Values{"filter": {"priority-high"}, "completed": {"true"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := rec.Header().Get("Location"); got != "/?filter=priority-high" {
		t.Fatalf("unexpected location %q", got)
	}

	if ct := rec.Header().Get("Content-Type"); strings.Contains(ct, "json") {
		t.Fatalf("expected no error body, got content type %q", ct)
	}
}

func TestDashboardHandler_Toggle(t *testing.T) {
	t.Parallel()

	svc := &fakeService{tasks: fixtureTasks()}

	form := url.Values{"filter": {"category-work"}}

	req := httptest.NewRequest(http.MethodPost, "/toggle/"+taskID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	newDashboardRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	if got := rec.Header().Get("Location"); got != "/?filter=category-work" {
		t.Fatalf("unexpected location %q", got)
	}

	if len(svc.toggled) != 1 || svc.toggled[0] != taskID {
		t.Fatalf("expected task to be toggled, got %v", svc.toggled)
	}
}

func TestDashboardHandler_Toggle_Error(t *testing.T) {
	t.Parallel()

	svc := &fakeService{setErr: internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")}

	rec := doRequest(t, newDashboardRouter(svc), http.MethodPost, "/toggle/"+taskID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
