// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Durations are plain integers in milliseconds so they map cleanly onto
//   env vars and YAML.
package config

import (
	"context"
	"fmt"
	"time"
)

// Classifier modes.
const (
	ClassifierHTTP  = "http"
	ClassifierLocal = "local"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AutoStart opens a session at boot instead of waiting for
	// POST /session/start.
	AutoStart bool `koanf:"auto_start"`

	// PlayerID and TargetShot are attached to every classification.
	PlayerID   string `koanf:"player_id"`
	TargetShot string `koanf:"target_shot"`
	// SourceName is sent as the request source, e.g. "phone" or "sensor".
	SourceName string `koanf:"source_name"`

	// SamplingRateHz is the nominal rate of the incoming stream.
	SamplingRateHz float64 `koanf:"sampling_rate_hz"`
	// BufferCapacity bounds the motion history ring.
	BufferCapacity int `koanf:"buffer_capacity"`

	// Detector calibration.
	SwingThreshold  float64 `koanf:"swing_threshold"`
	SwingCooldownMS int     `koanf:"swing_cooldown_ms"`
	WindowPre       int     `koanf:"window_pre"`
	WindowPost      int     `koanf:"window_post"`
	MinSamples      int     `koanf:"min_samples"`
	DeferPostWindow bool    `koanf:"defer_post_window"`

	// ClassifierMode is "http" for the remote service or "local" for the
	// in-process classifier.
	ClassifierMode      string `koanf:"classifier_mode"`
	ClassifierURL       string `koanf:"classifier_url"`
	ClassifierTimeoutMS int    `koanf:"classifier_timeout_ms"`
	// LocalLatencyMinMS and LocalLatencyMaxMS simulate model latency in local mode.
	LocalLatencyMinMS int `koanf:"local_latency_min_ms"`
	LocalLatencyMaxMS int `koanf:"local_latency_max_ms"`

	// PollEnabled turns on the last-result poller.
	PollEnabled    bool `koanf:"poll_enabled"`
	PollIntervalMS int  `koanf:"poll_interval_ms"`
	// DedupeSize bounds how many (player, session) fingerprints are kept.
	DedupeSize int `koanf:"dedupe_size"`

	// Coaching output.
	CoachingCooldownMS int `koanf:"coaching_cooldown_ms"`
	CoachingMinSwings  int `koanf:"coaching_min_swings"`
	EmissionQueueSize  int `koanf:"emission_queue_size"`

	// WordDurationMS holds each emitted message per word, roughly the time
	// it takes to read it aloud.
	WordDurationMS int `koanf:"word_duration_ms"`

	// Sample sources; empty disables.
	UDPAddr    string `koanf:"udp_addr"`
	SerialPort string `koanf:"serial_port"`
	SerialBaud int    `koanf:"serial_baud"`

	// Dataset recorder.
	DatasetWindowSize int    `koanf:"dataset_window_size"`
	DatasetLabel      string `koanf:"dataset_label"`

	// HistoryLimit bounds the finished-session history used for
	// the consistency score.
	HistoryLimit int `koanf:"history_limit"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		PlayerID:            "practice_player",
		SourceName:          "sensor",
		SamplingRateHz:      100,
		BufferCapacity:      400,
		SwingThreshold:      12,
		SwingCooldownMS:     500,
		WindowPre:           50,
		WindowPost:          50,
		MinSamples:          20,
		ClassifierMode:      ClassifierHTTP,
		ClassifierURL:       "http://127.0.0.1:8000",
		ClassifierTimeoutMS: 5000,
		LocalLatencyMinMS:   80,
		LocalLatencyMaxMS:   150,
		PollIntervalMS:      2000,
		DedupeSize:          1024,
		CoachingCooldownMS:  1800,
		CoachingMinSwings:   3,
		EmissionQueueSize:   16,
		WordDurationMS:      300,
		SerialBaud:          115200,
		DatasetWindowSize:   100,
		HistoryLimit:        20,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PlayerID == "":
		return fmt.Errorf("%w: player_id must not be empty", ErrInvalidConfig)
	case c.SamplingRateHz <= 0:
		return fmt.Errorf("%w: sampling_rate_hz must be positive", ErrInvalidConfig)
	case c.BufferCapacity < c.WindowPre+c.WindowPost:
		return fmt.Errorf("%w: buffer_capacity must hold window_pre+window_post samples", ErrInvalidConfig)
	case c.ClassifierMode != ClassifierHTTP && c.ClassifierMode != ClassifierLocal:
		return fmt.Errorf("%w: unknown classifier_mode %q", ErrInvalidConfig, c.ClassifierMode)
	case c.ClassifierMode == ClassifierHTTP && c.ClassifierURL == "":
		return fmt.Errorf("%w: classifier_url is required in http mode", ErrInvalidConfig)
	case c.LocalLatencyMaxMS < c.LocalLatencyMinMS:
		return fmt.Errorf("%w: local_latency_max_ms below local_latency_min_ms", ErrInvalidConfig)
	case c.PollEnabled && c.PollIntervalMS <= 0:
		return fmt.Errorf("%w: poll_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// SwingCooldown returns the detector cooldown.
func (c *Config) SwingCooldown() time.Duration { return ms(c.SwingCooldownMS) }

// WordDuration returns the per-word emission hold.
func (c *Config) WordDuration() time.Duration { return ms(c.WordDurationMS) }

// ClassifierTimeout returns the per-request classifier timeout.
func (c *Config) ClassifierTimeout() time.Duration { return ms(c.ClassifierTimeoutMS) }

// PollInterval returns the poll period.
func (c *Config) PollInterval() time.Duration { return ms(c.PollIntervalMS) }

// CoachingCooldown returns the minimum gap between coaching emissions.
func (c *Config) CoachingCooldown() time.Duration { return ms(c.CoachingCooldownMS) }

// LocalLatency returns the simulated latency range of the local classifier.
func (c *Config) LocalLatency() (time.Duration, time.Duration) {
	return ms(c.LocalLatencyMinMS), ms(c.LocalLatencyMaxMS)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
