// Package classifier talks to the swing classification service.
package classifier

import (
	"context"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// Classifier labels swing windows and reports the latest result per player.
type Classifier interface {
	// Classify submits one window. Failures are *TransportError or
	// *ServerError; there is no automatic retry.
	Classify(ctx context.Context, req model.SwingRequest) (model.SwingResponse, error)

	// LastSwing returns the most recent result for the player and optional
	// session, or ErrNotFound.
	LastSwing(ctx context.Context, playerID, sessionID string) (model.SwingResponse, error)
}
