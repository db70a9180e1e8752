package internal

// Types of the events published when tasks change, also used as RabbitMQ routing keys.
const (
	EventTaskCreated = "tasks.event.created"
	EventTaskUpdated = "tasks.event.updated"
)
