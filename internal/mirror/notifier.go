package mirror

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kavinrs01/task-manager-server/internal/events"
)

// NotifierConfig holds configuration options for the notifier.
type NotifierConfig struct {
	// QueueSize is the capacity of the pending-event buffer. When the
	// buffer is full new events are dropped (and logged), never blocked
	// on. If zero or negative, defaults to 64.
	QueueSize int

	// WorkerCount determines how many concurrent writer goroutines to
	// start. If zero or negative, defaults to 1.
	WorkerCount int

	// WriteTimeout bounds each sink write. If zero, defaults to 5s.
	WriteTimeout time.Duration
}

// Notifier consumes task mutation events and writes mirror documents
// asynchronously. It implements events.EventHandler: HandleEvent only
// enqueues, so emitting an event never waits on the document store.
type Notifier struct {
	sink   Sink
	queue  chan *events.TaskMutationEvent
	config NotifierConfig

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu      sync.Mutex
	started bool
}

// Ensure Notifier implements events.EventHandler
var _ events.EventHandler = (*Notifier)(nil)

// NewNotifier creates a notifier writing to the given sink.
func NewNotifier(sink Sink, config NotifierConfig, logger *slog.Logger) *Notifier {
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Notifier{
		sink:   sink,
		queue:  make(chan *events.TaskMutationEvent, config.QueueSize),
		config: config,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(slog.String("component", "mirror_notifier")),
	}
}

// Start launches the writer goroutines. Calling Start more than once is
// a no-op.
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return
	}
	n.started = true

	for i := 0; i < n.config.WorkerCount; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}

	n.logger.Info("mirror notifier started",
		"worker_count", n.config.WorkerCount,
		"queue_size", n.config.QueueSize)
}

// Stop signals the workers to finish and waits for them. Events still
// queued are drained before returning.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if !n.started {
		n.mu.Unlock()
		return
	}
	n.started = false
	n.mu.Unlock()

	close(n.queue)
	n.wg.Wait()
	n.cancel()
	n.logger.Info("mirror notifier stopped")
}

// HandleEvent implements events.EventHandler. It enqueues the event for
// asynchronous mirroring and never blocks: when the queue is full the
// event is dropped with a warning, preserving the fire-and-forget
// contract.
func (n *Notifier) HandleEvent(_ context.Context, event *events.TaskMutationEvent) error {
	select {
	case n.queue <- event:
		return nil
	default:
		n.logger.Warn("mirror queue full, dropping event",
			"event_id", event.ID,
			"task_id", event.TaskID,
			"action", event.Action)
		return nil
	}
}

func (n *Notifier) worker(id int) {
	defer n.wg.Done()
	log := n.logger.With(slog.Int("worker_id", id))

	for event := range n.queue {
		n.write(log, event)
	}
}

func (n *Notifier) write(log *slog.Logger, event *events.TaskMutationEvent) {
	ctx, cancel := context.WithTimeout(n.ctx, n.config.WriteTimeout)
	defer cancel()

	doc := Document{
		ActionType: string(event.Action),
		ID:         event.TaskID.String(),
		UpdatedAt:  event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}

	if err := n.sink.Upsert(ctx, TasksCollection, doc.ID, doc); err != nil {
		// Best-effort by contract: log and move on, no retry.
		log.Error("failed to mirror task mutation",
			"error", err,
			"event_id", event.ID,
			"task_id", event.TaskID,
			"action", event.Action)
		return
	}

	log.Debug("task mutation mirrored",
		"event_id", event.ID,
		"task_id", event.TaskID,
		"action", event.Action)
}
