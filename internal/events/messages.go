package events

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// TransactionEvent is the wire shape of a transaction.recorded event.
// Consumers fetch the full row from the database using Kind and ID.
type TransactionEvent struct {
	Kind      string    `json:"kind"` // income | expense
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind, action string, id, userID int64) *TransactionEvent {
	return &TransactionEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
