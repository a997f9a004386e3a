package amqp

import (
	"encoding/json"
	"time"

	"tally/internal/core"
)

// Record-change operations carried on the wire.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordEvent announces one store mutation to the mirror worker. For
// creates and updates it carries only the id; the worker fetches the
// current row from the store, so a stale event mirrors fresh data. A
// delete carries a snapshot of the record, since the row is already
// gone by the time the worker sees the event.
type RecordEvent struct {
	Op        string            `json:"op"`
	ID        int64             `json:"id"`
	OwnerID   string            `json:"ownerId"`
	Snapshot  *core.Transaction `json:"snapshot,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func NewRecordEvent(op string, id int64, ownerID string) *RecordEvent {
	return &RecordEvent{Op: op, ID: id, OwnerID: ownerID, Timestamp: time.Now().UTC()}
}

// NewDeleteEvent captures the deleted record as a tombstone snapshot.
func NewDeleteEvent(tx core.Transaction) *RecordEvent {
	snapshot := tx
	return &RecordEvent{
		Op:        OpDeleted,
		ID:        tx.ID,
		OwnerID:   tx.OwnerID,
		Snapshot:  &snapshot,
		Timestamp: time.Now().UTC(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var event RecordEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
