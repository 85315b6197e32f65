package events

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*TaskMutationEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskMutationEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	t.Run("dispatches to all handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(testLogger())
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := NewTaskMutationEvent(TaskActionCreated, uuid.New())
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Len(t, first.events, 1)
		assert.Len(t, second.events, 1)
		assert.Equal(t, event.TaskID, first.events[0].TaskID)
	})

	t.Run("no handlers is not an error", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(testLogger())
		event := NewTaskMutationEvent(TaskActionUpdated, uuid.New())
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("failing handler does not block others", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(testLogger())
		failing := &recordingHandler{err: errors.New("sink down")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		err := emitter.EmitEvent(context.Background(), NewTaskMutationEvent(TaskActionUpdated, uuid.New()))
		assert.Error(t, err)
		assert.Len(t, healthy.events, 1)
	})
}
