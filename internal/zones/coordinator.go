// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"context"
	"sync"
)

// Runner performs one calculation. *Calculator implements it.
type Runner interface {
	Calculate(ctx context.Context, req Request, progress ProgressFunc) (Result, error)
}

// Coordinator keeps at most one calculation in flight. Each call cancels
// the one before it and waits for it to return, so the newest request wins.
type Coordinator struct {
	runner Runner

	// State - all protected by mu
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	done   chan struct{} // closed when the current call returns
}

// NewCoordinator wraps runner with single-flight semantics.
func NewCoordinator(runner Runner) *Coordinator {
	return &Coordinator{runner: runner}
}

// Calculate cancels any in-flight calculation, waits for it to finish and
// runs req. A call superseded by a newer one returns *Cancelled even when
// its computation completed.
func (c *Coordinator) Calculate(ctx context.Context, req Request, progress ProgressFunc) (Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	prev := c.done
	c.seq++
	seq := c.seq
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	defer close(done)
	defer cancel()

	// The previous call checks its context cooperatively, so this wait is
	// short. Waiting even when runCtx is cancelled keeps the chain ordered.
	if prev != nil {
		<-prev
	}

	var (
		res Result
		err error
	)
	if runCtx.Err() == nil {
		res, err = c.runner.Calculate(runCtx, req, progress)
	}

	c.mu.Lock()
	superseded := c.seq != seq
	if !superseded {
		c.cancel, c.done = nil, nil
	}
	c.mu.Unlock()

	if superseded || (res == nil && err == nil) {
		stats := Stats{Mode: req.Mode, BufferMeters: req.BufferMeters}
		if res != nil {
			stats = res.Stats()
		}
		return newCancelled(stats), nil
	}
	return res, err
}

// Cancel stops the in-flight calculation, if any, without starting a new one.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}
