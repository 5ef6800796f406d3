package queue

import (
	"encoding/json"
	"time"
)

// Item is the unit stored in a workflow queue. It is immutable once created
// and serialized as JSON at the store boundary.
type Item struct {
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
	Queue     string         `json:"queue"`
}

// NewItem wraps a payload with the current UTC timestamp and the logical
// route name it was enqueued on.
func NewItem(data map[string]any, queueName string) Item {
	return Item{
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Queue:     queueName,
	}
}

func (i Item) encode() (string, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func decodeItem(raw string) (*Item, error) {
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, err
	}

	return &item, nil
}

// queueKey is the persisted key layout for a workflow's queue list.
func queueKey(workflowName string) string {
	return "workflow:" + workflowName + ":queue"
}
