package messaging

import (
	"context"
	"sync"

	"pollsbot/internal/shared/events"
)

// MemoryPublisher collects envelopes in memory. Used by tests and by local
// wiring that runs without a broker.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, envelope events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, envelope)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Envelope, len(p.events))
	copy(out, p.events)
	return out
}
