package kafka

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/sanLimbu/taskflow/internal"
)

const otelName = "github.com/sanLimbu/taskflow/internal/kafka"

// Producer is the subset of *kafka.Producer used for publishing.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// Task represents the repository used for publishing Task records.
type Task struct {
	producer  Producer
	topicName string
}

// Event is the message published for every change to a task.
type Event struct {
	Type  string
	Value internal.Task
}

// NewTask instantiates the Task repository.
func NewTask(producer Producer, topicName string) *Task {
	return &Task{
		topicName: topicName,
		producer:  producer,
	}
}

// Created publishes a message indicating a task was created.
func (t *Task) Created(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Created", internal.EventTaskCreated, task)
}

// Updated publishes a message indicating a task was updated.
func (t *Task) Updated(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Updated", internal.EventTaskUpdated, task)
}

func (t *Task) publish(ctx context.Context, spanName, msgType string, task internal.Task) error {
	_, span := otel.Tracer(otelName).Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(semconv.MessagingSystemKey.String("kafka"))

	var b bytes.Buffer

	evt := Event{
		Type:  msgType,
		Value: task,
	}

	if err := json.NewEncoder(&b).Encode(evt); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Encode")
	}

	if err := t.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &t.topicName,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(task.ID),
		Value: b.Bytes(),
	}, nil); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "producer.Produce")
	}

	return nil
}

// DecodeEvent decodes the value of a published message.
func DecodeEvent(b []byte) (Event, error) {
	var res Event

	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return Event{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json.Decode")
	}

	return res, nil
}
