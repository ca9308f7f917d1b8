package xlsplit

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// eventBuffer is the capacity of each task's event channel.
const eventBuffer = 64

// Worker runs at most one task at a time on its own goroutine. Requests go
// in as values and events come out on a channel owned by the task; nothing
// is shared with the caller. Starting a task discards the previous one
// without waiting for it to drain.
type Worker struct {
	opts Options
	log  logrus.FieldLogger

	mu     sync.Mutex
	active *task
	wg     sync.WaitGroup
}

type task struct {
	cancel context.CancelFunc
}

// NewWorker creates an idle worker. opts apply to every conversion it runs;
// each request supplies its own chunk capacity.
func NewWorker(opts Options) *Worker {
	return &Worker{opts: opts, log: opts.logger()}
}

// Convert starts a conversion, preempting any running task. The returned
// channel is closed after the task's terminal event.
func (w *Worker) Convert(req ConvertRequest) <-chan Event {
	ctx, t, ch := w.start()
	go func() {
		defer w.finish(t, ch)
		defer w.recoverPanic(ctx, ch)
		Convert(ctx, req, w.opts, func(ev Event) { deliver(ctx, ch, ev) })
	}()
	return ch
}

// ListSheets starts a sheet listing, preempting any running task. The
// channel carries one SheetNamesEvent or FailedEvent.
func (w *Worker) ListSheets(req ListSheetsRequest) <-chan Event {
	ctx, t, ch := w.start()
	go func() {
		defer w.finish(t, ch)
		defer w.recoverPanic(ctx, ch)
		names, err := ListSheets(req)
		if err != nil {
			deliver(ctx, ch, failedEvent(NewConversionError("", StageOpen, err)))
			return
		}
		deliver(ctx, ch, SheetNamesEvent{Names: names})
	}()
	return ch
}

// Cancel stops the running task at its next yield point. It is a no-op when
// the worker is idle.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active != nil {
		w.active.cancel()
		w.active = nil
	}
}

// Close cancels the running task and waits for every task goroutine to exit.
func (w *Worker) Close() {
	w.Cancel()
	w.wg.Wait()
}

func (w *Worker) start() (context.Context, *task, chan Event) {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel}
	ch := make(chan Event, eventBuffer)

	w.mu.Lock()
	if w.active != nil {
		w.log.Debug("preempting running task")
		w.active.cancel()
	}
	w.active = t
	w.wg.Add(1)
	w.mu.Unlock()

	return ctx, t, ch
}

func (w *Worker) finish(t *task, ch chan Event) {
	close(ch)

	w.mu.Lock()
	if w.active == t {
		w.active = nil
	}
	w.mu.Unlock()

	t.cancel()
	w.wg.Done()
}

func (w *Worker) recoverPanic(ctx context.Context, ch chan Event) {
	if r := recover(); r != nil {
		w.log.WithField("panic", r).Error("panic in conversion task")
		deliver(ctx, ch, failedEvent(fmt.Errorf("internal error: %v", r)))
	}
}

// deliver sends ev unless the task was cancelled. A cancelled task never
// delivers a Completed event; its CancelledEvent is sent only if the
// channel has room.
func deliver(ctx context.Context, ch chan<- Event, ev Event) {
	if ctx.Err() != nil {
		switch ev.(type) {
		case CompletedEvent, CancelledEvent:
			select {
			case ch <- CancelledEvent{}:
			default:
			}
			return
		}
	}
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
