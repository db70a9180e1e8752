package rest

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

// NewOpenAPI3 describes the JSON API.
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "Tasks Dashboard API",
			Description: "REST APIs used for listing, filtering and completing tasks",
			Version:     "0.0.0",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://127.0.0.1:9234",
			},
		},
	}

	counts := func(names ...string) *openapi3.Schema {
		res := openapi3.NewObjectSchema()
		for _, name := range names {
			res = res.WithProperty(name, openapi3.NewIntegerSchema())
		}

		return res
	}

	taskList := openapi3.NewArraySchema()
	taskList.Items = &openapi3.SchemaRef{Ref: "#/components/schemas/Task"}

	swagger.Components = &openapi3.Components{
		Schemas: openapi3.Schemas{
			"Priority": openapi3.NewSchemaRef("",
				openapi3.NewStringSchema().WithEnum("low", "medium", "high")),
			"Category": openapi3.NewSchemaRef("",
				openapi3.NewStringSchema().WithEnum("work", "personal", "shopping", "learning")),
			"Status": openapi3.NewSchemaRef("",
				openapi3.NewStringSchema().WithEnum("active", "done", "urgent")),
			"Task": openapi3.NewSchemaRef("",
				openapi3.NewObjectSchema().
					WithProperty("id", openapi3.NewUUIDSchema()).
					WithProperty("title", openapi3.NewStringSchema()).
					WithProperty("description", openapi3.NewStringSchema()).
					WithPropertyRef("priority", &openapi3.SchemaRef{Ref: "#/components/schemas/Priority"}).
					WithPropertyRef("category", &openapi3.SchemaRef{Ref: "#/components/schemas/Category"}).
					WithPropertyRef("status", &openapi3.SchemaRef{Ref: "#/components/schemas/Status"}).
					WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date")).
					WithProperty("due_time", openapi3.NewStringSchema().WithPattern(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)).
					WithProperty("due_label", openapi3.NewStringSchema()).
					WithProperty("progress", openapi3.NewIntegerSchema().WithMin(0).WithMax(100)).
					WithProperty("documents_count", openapi3.NewIntegerSchema().WithMin(0)).
					WithProperty("participants_count", openapi3.NewIntegerSchema().WithMin(0)).
					WithProperty("completed", openapi3.NewBoolSchema()).
					WithProperty("created_at", openapi3.NewDateTimeSchema())),
			"Summary": openapi3.NewSchemaRef("",
				openapi3.NewObjectSchema().
					WithProperty("filters", counts("all", "today", "nextWeek", "priority")).
					WithProperty("priorities", counts("high", "medium", "low")).
					WithProperty("categories", counts("work", "personal", "shopping", "learning")).
					WithProperty("stats", counts("totalTasks", "completedToday", "urgentTasks", "dueToday"))),
		},
		RequestBodies: openapi3.RequestBodies{
			"CreateTasksRequest": &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithDescription("Request used for creating a task.").
					WithRequired(true).
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("title", openapi3.NewStringSchema().WithMinLength(1)).
						WithProperty("description", openapi3.NewStringSchema()).
						WithPropertyRef("priority", &openapi3.SchemaRef{Ref: "#/components/schemas/Priority"}).
						WithPropertyRef("category", &openapi3.SchemaRef{Ref: "#/components/schemas/Category"}).
						WithPropertyRef("status", &openapi3.SchemaRef{Ref: "#/components/schemas/Status"}).
						WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date")).
						WithProperty("due_time", openapi3.NewStringSchema()).
						WithProperty("progress", openapi3.NewIntegerSchema()).
						WithProperty("documents_count", openapi3.NewIntegerSchema()).
						WithProperty("participants_count", openapi3.NewIntegerSchema())),
			},
			"SetCompletedRequest": &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithDescription("Request used for completing or reopening a task.").
					WithRequired(true).
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("completed", openapi3.NewBoolSchema())),
			},
		},
		Responses: openapi3.ResponseBodies{
			"ErrorResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Response when errors happen.").
					WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("error", openapi3.NewStringSchema()))),
			},
			"TaskResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Response returned back after creating or updating a task.").
					WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
						WithPropertyRef("task", &openapi3.SchemaRef{Ref: "#/components/schemas/Task"}))),
			},
			"TasksResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Response returned back after listing or searching tasks.").
					WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("tasks", taskList))),
			},
			"DashboardResponse": &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Response returned back after reading the dashboard.").
					WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("filter", openapi3.NewStringSchema()).
						WithProperty("header", openapi3.NewStringSchema()).
						WithProperty("loaded", openapi3.NewBoolSchema()).
						WithProperty("tasks", taskList).
						WithPropertyRef("summary", &openapi3.SchemaRef{Ref: "#/components/schemas/Summary"}))),
			},
		},
	}

	filter := &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter("filter").
			WithDescription("all, today, nextWeek, priority, priority-<p> or category-<c>").
			WithSchema(openapi3.NewStringSchema()),
	}

	errorResponse := &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"}

	swagger.Paths = openapi3.NewPaths(
		openapi3.WithPath("/dashboard", &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadDashboard",
				Parameters:  openapi3.Parameters{filter},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Ref: "#/components/responses/DashboardResponse"}),
				),
			},
		}),
		openapi3.WithPath("/tasks", &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTasks",
				Parameters:  openapi3.Parameters{filter},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Ref: "#/components/responses/TasksResponse"}),
				),
			},
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateTasksRequest"},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"}),
					openapi3.WithStatus(http.StatusBadRequest, errorResponse),
					openapi3.WithStatus(http.StatusInternalServerError, errorResponse),
				),
			},
		}),
		openapi3.WithPath("/tasks/reload", &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "ReloadTasks",
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Ref: "#/components/responses/TasksResponse"}),
					openapi3.WithStatus(http.StatusInternalServerError, errorResponse),
				),
			},
		}),
		openapi3.WithPath("/tasks/search", &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "SearchTasks",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{
						Value: openapi3.NewQueryParameter("q").
							WithRequired(true).
							WithSchema(openapi3.NewStringSchema()),
					},
				},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Ref: "#/components/responses/TasksResponse"}),
					openapi3.WithStatus(http.StatusBadRequest, errorResponse),
					openapi3.WithStatus(http.StatusInternalServerError, errorResponse),
				),
			},
		}),
		openapi3.WithPath("/tasks/{taskId}/completed", &openapi3.PathItem{
			Put: &openapi3.Operation{
				OperationID: "SetTaskCompleted",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{
						Value: openapi3.NewPathParameter("taskId").
							WithSchema(openapi3.NewUUIDSchema()),
					},
				},
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/SetCompletedRequest"},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"}),
					openapi3.WithStatus(http.StatusBadRequest, errorResponse),
					openapi3.WithStatus(http.StatusNotFound, errorResponse),
					openapi3.WithStatus(http.StatusInternalServerError, errorResponse),
				),
			},
		}),
	)

	return swagger
}

// RegisterOpenAPI serves the API document as JSON and YAML.
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, r *http.Request) {
		renderResponse(w, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := yaml.Marshal(&swagger)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")
		w.WriteHeader(http.StatusOK)

		_, _ = w.Write(data)
	})
}
