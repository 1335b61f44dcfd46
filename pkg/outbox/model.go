package outbox

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Event is a row captured in the same transaction as the state change it
// announces, relayed to the broker asynchronously.
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
	Status        Status
	RelayID       string
	RetryCount    int
	LastError     *string
	CreatedAt     time.Time
}
