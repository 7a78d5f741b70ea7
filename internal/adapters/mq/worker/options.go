// Package worker delivers queued coaching messages to their sinks.
package worker

import (
	"time"

	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSinks adds delivery targets. Each message goes to every sink in order.
func WithSinks(sinks ...Sink) Option {
	return func(w *InMemoryWorker) {
		for _, s := range sinks {
			if s != nil {
				w.sinks = append(w.sinks, s)
			}
		}
	}
}

// WithWordDuration holds each message for d per word after delivery, which
// approximates how long it takes to be spoken aloud.
func WithWordDuration(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.wordDuration = d
		}
	}
}
