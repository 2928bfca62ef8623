package audit

import (
	"context"
	"time"
)

// Store is the append-only persistence contract. Implementations must be
// safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDocument(ctx context.Context, documentID string) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and goes
// through the Store interface so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	return p.store.Append(ctx, base)
}

func (p *Publisher) List(ctx context.Context, documentID string) ([]Event, error) {
	return p.store.ListByDocument(ctx, documentID)
}
