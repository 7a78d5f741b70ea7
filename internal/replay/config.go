// Package replay sends recorded swing CSVs to a classifier and reports how
// each swing was labelled.
package replay

import "time"

// Defaults.
const (
	DefaultSamplingRate = 200.0
	DefaultPlayerID     = "test_player"
	DefaultSessionID    = "csv_test_session"
	DefaultWorkers      = 2
	DefaultTimeout      = 30 * time.Second
)

// Config holds configuration for a replay run.
type Config struct {
	Files        []string // CSV files to replay
	PlayerID     string   // player id sent with every request
	SessionID    string   // session id sent with every request
	SamplingRate float64  // Hz used to rebuild sample times
	Label        string   // expected shot when the CSV carries none
	Workers      int      // concurrent classifier calls
	Verbose      bool     // log every result
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.PlayerID == "" {
		out.PlayerID = DefaultPlayerID
	}
	if out.SessionID == "" {
		out.SessionID = DefaultSessionID
	}
	if out.SamplingRate <= 0 {
		out.SamplingRate = DefaultSamplingRate
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	return out
}

// Result is the outcome of one replayed swing.
type Result struct {
	File       string  `json:"file"`
	Swing      int     `json:"swing"`
	Samples    int     `json:"samples"`
	Expected   string  `json:"expected,omitempty"`
	ShotType   string  `json:"shot_type,omitempty"`
	Confidence float64 `json:"confidence"`
	SpeedMps   float64 `json:"speed_mps"`
	Err        error   `json:"-"`
}

// Match reports whether the predicted shot equals the expected label.
// Swings without a label never match.
func (r Result) Match() bool {
	return r.Err == nil && r.Expected != "" && equalFold(r.Expected, r.ShotType)
}

// Stats holds run statistics.
type Stats struct {
	Swings    int
	Succeeded int
	Failed    int
	Labelled  int
	Matched   int
	StartTime time.Time
	Duration  time.Duration
}

// Accuracy is the share of labelled swings classified as their label.
func (s Stats) Accuracy() float64 {
	if s.Labelled == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Labelled)
}
