package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (production-style: event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by schedule-service.
const (
	EventSessionBooked     = "schedule.session.booked.v1"
	EventSessionCancelled  = "schedule.session.cancelled.v1"
	EventReminderRequested = "schedule.reminder.requested.v1"
)
