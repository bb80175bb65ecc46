// Package worker provides a bounded pool of goroutines for processing
// broker deliveries.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Handler processes one delivery. The ctx is cancelled on shutdown.
type Handler func(ctx context.Context)

// Worker bounds the number of handlers running at any given time.
type Worker struct {
	wg        sync.WaitGroup
	semaphore chan struct{}
	shutdown  chan struct{}
	running   atomic.Int64
}

// New creates a worker allowing at most maxRunning handlers at once.
func New(maxRunning int) (*Worker, error) {
	if maxRunning <= 0 {
		return nil, errors.New("max running handlers must be greater than 0")
	}

	semaphore := make(chan struct{}, maxRunning)
	for range maxRunning {
		semaphore <- struct{}{}
	}

	w := Worker{
		semaphore: semaphore,
		shutdown:  make(chan struct{}),
	}
	return &w, nil
}

// Running returns the number of running handlers.
func (w *Worker) Running() int {
	return int(w.running.Load())
}

// Start blocks until a slot frees up, then runs the handler in its own
// goroutine. The handler gets a ctx derived from the caller's.
func (w *Worker) Start(ctx context.Context, handler Handler) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.shutdown:
		return errors.New("shutdown signal received")
	case <-w.semaphore:
	}

	hctx, cancel := context.WithCancel(ctx)

	w.running.Add(1)
	w.wg.Add(1)
	go func() {
		//free the slot even if the handler panics and takes the
		//goroutine down
		defer func() {
			w.semaphore <- struct{}{}
		}()

		defer func() {
			cancel()
			w.running.Add(-1)
			w.wg.Done()
		}()

		handler(hctx)
	}()

	return nil
}

// Shutdown refuses new handlers and waits for the running ones to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
