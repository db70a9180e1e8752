package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv7api "github.com/elastic/go-elasticsearch/v7/esapi"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/taskflow/internal"
)

const (
	otelName = "github.com/sanLimbu/taskflow/internal/elasticsearch"

	dateLayout = "2006-01-02"
)

// Task represents the repository used for interacting with Task records.
type Task struct {
	client *esv7.Client
	index  string
	size   int
}

type indexedTask struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Priority          internal.Priority `json:"priority"`
	Category          internal.Category `json:"category"`
	Status            internal.Status   `json:"status"`
	DueDate           string            `json:"due_date,omitempty"`
	DueTime           string            `json:"due_time,omitempty"`
	Progress          int               `json:"progress"`
	DocumentsCount    int               `json:"documents_count"`
	ParticipantsCount int               `json:"participants_count"`
	Completed         bool              `json:"completed"`
	CreatedAt         int64             `json:"created_at"`
}

func newIndexedTask(task internal.Task) indexedTask {
	res := indexedTask{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Priority:          task.Priority,
		Category:          task.Category,
		Status:            task.Status,
		DueTime:           task.DueTime,
		Progress:          task.Progress,
		DocumentsCount:    task.DocumentsCount,
		ParticipantsCount: task.ParticipantsCount,
		Completed:         task.Completed,
		CreatedAt:         task.CreatedAt.UnixNano(),
	}

	if task.DueDate != nil {
		res.DueDate = task.DueDate.Format(dateLayout)
	}

	return res
}

func (i indexedTask) convert() internal.Task {
	res := internal.Task{
		ID:                i.ID,
		Title:             i.Title,
		Description:       i.Description,
		Priority:          i.Priority,
		Category:          i.Category,
		Status:            i.Status,
		DueTime:           i.DueTime,
		Progress:          i.Progress,
		DocumentsCount:    i.DocumentsCount,
		ParticipantsCount: i.ParticipantsCount,
		Completed:         i.Completed,
		CreatedAt:         time.Unix(0, i.CreatedAt).UTC(),
	}

	if due, err := time.Parse(dateLayout, i.DueDate); err == nil {
		res.DueDate = &due
	}

	return res
}

// NewTask instantiates the Task repository.
func NewTask(client *esv7.Client) *Task {
	return &Task{
		client: client,
		index:  "tasks",
		size:   20,
	}
}

// Index creates or updates a task in an index.
func (t *Task) Index(ctx context.Context, task internal.Task) error {
	defer newOTELSpan(ctx, "Task.Index").End()

	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(newIndexedTask(task)); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.IndexRequest{
		Index:      t.index,
		Body:       &buf,
		DocumentID: task.ID,
		Refresh:    "true",
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "IndexRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "IndexRequest.Do %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Search returns the incomplete tasks whose title or description match q, best match first.
func (t *Task) Search(ctx context.Context, q string) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Search").End()

	if q == "" {
		return []internal.Task{}, nil
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{
						"completed": false,
					},
				},
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"created_at": "desc"},
		},
		"size": t.size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.SearchRequest{
		Index: []string{t.index},
		Body:  &buf,
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "SearchRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "SearchRequest.Do %d", resp.StatusCode)
	}

	var hits struct {
		Hits struct {
			Hits []struct {
				Source indexedTask `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewDecoder.Decode")
	}

	res := make([]internal.Task, 0, len(hits.Hits.Hits))

	for _, hit := range hits.Hits.Hits {
		if hit.Source.Completed {
			continue
		}

		res = append(res, hit.Source.convert())
	}

	return res, nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemElasticsearch)

	return span
}
