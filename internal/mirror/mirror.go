// Package mirror keeps an external document store eventually consistent
// with task mutations for downstream subscribers. Writes are strictly
// best-effort: failures are logged and never surface to the request
// that caused them, and consumers must tolerate reordered or duplicated
// documents.
package mirror

import (
	"context"
)

// Collection names used in the document store.
const (
	// TasksCollection holds one document per mutated task.
	TasksCollection = "tasks"
)

// Document is the mirrored record for a single task mutation. Field
// names follow the JSON contract consumed by external subscribers.
type Document struct {
	ActionType string `json:"actionType"`
	ID         string `json:"id"`
	UpdatedAt  string `json:"updatedAt"`
}

// Sink writes documents into the external store. Upsert creates the
// document or overwrites an existing one; no acknowledgement beyond the
// returned error is expected by callers.
type Sink interface {
	Upsert(ctx context.Context, collection, id string, doc Document) error
}

// NoopSink discards every write. Used when mirroring is disabled.
type NoopSink struct{}

// Upsert implements Sink.
func (NoopSink) Upsert(context.Context, string, string, Document) error { return nil }

var _ Sink = NoopSink{}
