package source

import (
	"errors"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// ErrUnknownPacket is returned for packets whose type is not recognised.
var ErrUnknownPacket = errors.New("unknown packet type")

// MalformedInputError is the shared decode failure type.
type MalformedInputError = model.MalformedInputError
