// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package events

import (
	"context"
	"sync"

	"github.com/tomtom215/clubzones/internal/logging"
)

// Listener receives dataset events from the Forwarder.
type Listener interface {
	OnDatasetReplaced(ev DatasetReplaced)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(DatasetReplaced)

func (f ListenerFunc) OnDatasetReplaced(ev DatasetReplaced) { f(ev) }

// Forwarder subscribes to the bus and calls every registered listener.
// It is a suture service.
type Forwarder struct {
	bus *Bus

	mu        sync.RWMutex
	listeners []Listener
}

// NewForwarder creates a forwarder for bus.
func NewForwarder(bus *Bus) *Forwarder {
	return &Forwarder{bus: bus}
}

// Register adds l. Listeners are called in registration order on the
// forwarder goroutine and must not block.
func (f *Forwarder) Register(l Listener) {
	f.mu.Lock()
	f.listeners = append(f.listeners, l)
	f.mu.Unlock()
}

// Serve forwards events until ctx is done. A closed bus ends the service.
func (f *Forwarder) Serve(ctx context.Context) error {
	events, err := f.bus.SubscribeDatasetReplaced(ctx)
	if err != nil {
		return err
	}
	logging.Info().Msg("Dataset event forwarder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrBusClosed
			}
			f.dispatch(ev)
		}
	}
}

func (f *Forwarder) dispatch(ev DatasetReplaced) {
	f.mu.RLock()
	listeners := make([]Listener, len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.RUnlock()

	logging.Debug().
		Str("source", ev.Source).
		Int64("locations", ev.Locations).
		Int("listeners", len(listeners)).
		Msg("Forwarding dataset event")

	for _, l := range listeners {
		l.OnDatasetReplaced(ev)
	}
}

// String names the service in supervisor logs.
func (f *Forwarder) String() string {
	return "events-forwarder"
}
