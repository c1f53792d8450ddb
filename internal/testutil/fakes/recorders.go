package fakes

import (
	"context"
	"sync"

	"github.com/anonto42/circle/backend/internal/events"
)

// Publisher records published events
type Publisher struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

// Types returns the types of recorded events in publish order
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

func (p *Publisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// Invalidator records invalidated identity ids
type Invalidator struct {
	mu  sync.Mutex
	IDs []uint
}

func (i *Invalidator) Invalidate(id uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.IDs = append(i.IDs, id)
}

func (i *Invalidator) Invalidated() []uint {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]uint(nil), i.IDs...)
}
