package detector

import "errors"

// Configuration errors.
var (
	ErrInvalidThreshold  = errors.New("threshold must be positive")
	ErrInvalidCooldown   = errors.New("cooldown must not be negative")
	ErrInvalidWindow     = errors.New("pre and post window sizes must be positive")
	ErrInvalidMinSamples = errors.New("min samples must be positive")
)
