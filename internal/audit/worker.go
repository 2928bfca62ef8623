package audit

import "context"

// Worker consumes audit events from a channel and persists them. On
// cancellation it first drains whatever is already buffered, so completed
// verifications keep their trail through a shutdown.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			if err := w.store.Append(context.Background(), event); err != nil {
				return
			}
		default:
			return
		}
	}
}
