package mirror

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavinrs01/task-manager-server/internal/events"
)

type captureSink struct {
	mu   sync.Mutex
	docs []Document
	err  error
}

func (s *captureSink) Upsert(_ context.Context, _ string, _ string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *captureSink) documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNotifierWritesDocuments(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	notifier := NewNotifier(sink, NotifierConfig{QueueSize: 8, WorkerCount: 2}, testLogger())
	notifier.Start()

	taskID := uuid.New()
	event := events.NewTaskMutationEvent(events.TaskActionCreated, taskID)
	require.NoError(t, notifier.HandleEvent(context.Background(), event))

	notifier.Stop() // drains the queue

	docs := sink.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "CREATED", docs[0].ActionType)
	assert.Equal(t, taskID.String(), docs[0].ID)
	_, err := time.Parse(time.RFC3339Nano, docs[0].UpdatedAt)
	assert.NoError(t, err)
}

func TestNotifierSwallowsSinkErrors(t *testing.T) {
	t.Parallel()

	sink := &captureSink{err: errors.New("document store unavailable")}
	notifier := NewNotifier(sink, NotifierConfig{}, testLogger())
	notifier.Start()

	err := notifier.HandleEvent(context.Background(),
		events.NewTaskMutationEvent(events.TaskActionUpdated, uuid.New()))
	assert.NoError(t, err)

	notifier.Stop()
}

func TestNotifierDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	// Never started, so nothing drains the queue.
	notifier := NewNotifier(&captureSink{}, NotifierConfig{QueueSize: 1}, testLogger())

	first := events.NewTaskMutationEvent(events.TaskActionCreated, uuid.New())
	second := events.NewTaskMutationEvent(events.TaskActionCreated, uuid.New())

	assert.NoError(t, notifier.HandleEvent(context.Background(), first))
	// Queue is full now; the second event is dropped, not blocked on.
	assert.NoError(t, notifier.HandleEvent(context.Background(), second))
}

func TestNotifierStartStopIdempotent(t *testing.T) {
	t.Parallel()

	notifier := NewNotifier(&captureSink{}, NotifierConfig{}, testLogger())
	notifier.Start()
	notifier.Start()
	notifier.Stop()
	notifier.Stop()
}
