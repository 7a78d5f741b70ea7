package service

import (
	"errors"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
)

// Service errors.
var (
	ErrNotStreaming  = errors.New("stream not started")
	ErrUnknownShot   = errors.New("unknown shot type")
	ErrNoResult      = errors.New("no swing classified yet")
	ErrNoDatasetSink = errors.New("dataset recording disabled")
	ErrNilClassifier = errors.New("classifier is required")
	ErrNilEmitter    = errors.New("emitter is required")
)

func isNotFound(err error) bool {
	return errors.Is(err, classifier.ErrNotFound)
}
