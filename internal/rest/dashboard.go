package rest

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sanLimbu/taskflow/internal"
)

//go:embed templates
var templates embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templates, "templates/dashboard.html"))

// DashboardHandler serves the HTML dashboard.
type DashboardHandler struct {
	svc TaskService
}

// NewDashboardHandler instantiates the HTML handlers.
func NewDashboardHandler(svc TaskService) *DashboardHandler {
	return &DashboardHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (d *DashboardHandler) Register(r chi.Router) {
	r.Get("/", d.index)
	r.Post("/toggle/{id}", d.toggle)
}

type sidebarItem struct {
	Key    string
	Label  string
	Count  int
	Active bool
}

type taskItem struct {
	ID                string
	Title             string
	Description       string
	Priority          string
	Category          string
	Status            string
	DueLabel          string
	Progress          int
	DocumentsCount    int
	ParticipantsCount int
}

type dashboardPage struct {
	Header     string
	Loaded     bool
	Filter     string
	Filters    []sidebarItem
	Priorities []sidebarItem
	Categories []sidebarItem
	Stats      internal.Stats
	Tasks      []taskItem
}

func newDashboardPage(d internal.Dashboard) dashboardPage {
	active := d.Filter.String()

	item := func(key internal.FilterKey, label string, count int) sidebarItem {
		return sidebarItem{
			Key:    key.String(),
			Label:  label,
			Count:  count,
			Active: key.String() == active,
		}
	}

	res := dashboardPage{
		Header: d.Summary.Headline(),
		Loaded: d.Loaded,
		Filter: active,
		Filters: []sidebarItem{
			item(internal.FilterAll, "All Tasks", d.Summary.Filters.All),
			item(internal.FilterToday, "Today", d.Summary.Filters.Today),
			item(internal.FilterNextWeek, "Next Week", d.Summary.Filters.NextWeek),
			item(internal.FilterByPriority(internal.PriorityHigh), "Priority", d.Summary.Filters.Priority),
		},
		Stats: d.Summary.Stats,
	}

	for _, p := range internal.Priorities {
		res.Priorities = append(res.Priorities, item(internal.FilterByPriority(p), title(p.String()), d.Summary.Priorities.Of(p)))
	}

	for _, c := range internal.Categories {
		res.Categories = append(res.Categories, item(internal.FilterByCategory(c), title(c.String()), d.Summary.Categories.Of(c)))
	}

	for _, task := range d.Tasks {
		res.Tasks = append(res.Tasks, taskItem{
			ID:                task.ID,
			Title:             task.Title,
			Description:       task.Description,
			Priority:          task.Priority.String(),
			Category:          task.Category.String(),
			Status:            task.Status.String(),
			DueLabel:          internal.DueLabel(task, d.Now),
			Progress:          task.Progress,
			DocumentsCount:    task.DocumentsCount,
			ParticipantsCount: task.ParticipantsCount,
		})
	}

	return res
}

func (d *DashboardHandler) index(w http.ResponseWriter, r *http.Request) {
	dashboard := d.svc.Dashboard(r.Context(), internal.ParseFilterKey(r.URL.Query().Get("filter")))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := dashboardTemplate.Execute(w, newDashboardPage(dashboard)); err != nil {
		renderErrorResponse(r.Context(), w, "render failed",
			internal.WrapErrorf(err, internal.ErrorCodeUnknown, "template.Execute"))
	}
}

// toggle stores the completion state posted by the form. Without a "completed" field the current state is
// flipped. Store failures are logged by the service and the browser is sent back to the list, which shows the
// persisted state.
func (d *DashboardHandler) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	if v := r.PostFormValue("completed"); v != "" {
		completed, perr := strconv.ParseBool(v)
		if perr != nil {
			renderErrorResponse(r.Context(), w, "invalid completed",
				internal.WrapErrorf(perr, internal.ErrorCodeInvalidArgument, "strconv.ParseBool"))
			return
		}

		_, err = d.svc.SetCompleted(r.Context(), id, completed)
	} else {
		_, err = d.svc.ToggleComplete(r.Context(), id)
	}

	var ierr *internal.Error
	if err != nil && errors.As(err, &ierr) && ierr.Code() != internal.ErrorCodeUnknown {
		renderErrorResponse(r.Context(), w, "toggle failed", err)
		return
	}

	filter := internal.ParseFilterKey(r.PostFormValue("filter"))

	http.Redirect(w, r, "/?filter="+url.QueryEscape(filter.String()), http.StatusSeeOther)
}

func title(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
