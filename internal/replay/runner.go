package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/dataset"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
)

// ErrNoSwings is returned when none of the files contained samples.
var ErrNoSwings = errors.New("no swings loaded")

type job struct {
	file  string
	swing dataset.Swing
}

// Run classifies every swing in cfg.Files and writes a report to out.
func Run(ctx context.Context, cfg *Config, cls classifier.Classifier, out io.Writer) ([]Result, Stats, error) {
	c := cfg.withDefaults()
	stats := Stats{StartTime: time.Now()}
	log := logger.Get().Named("replay")

	jobs, err := load(c)
	if err != nil {
		return nil, stats, err
	}
	log.Info(ctx, "replaying swings",
		logger.Int("files", len(c.Files)),
		logger.Int("swings", len(jobs)),
		logger.Int("workers", c.Workers),
	)

	meta := model.Metadata{PlayerID: c.PlayerID, SessionID: c.SessionID, Source: "csv"}
	results := make([]Result, len(jobs))
	next := make(chan int, c.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < c.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range next {
				results[idx] = classify(ctx, cls, meta, c.SamplingRate, jobs[idx])
				if c.Verbose {
					logResult(ctx, log, results[idx])
				}
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case next <- i:
		}
	}
	close(next)
	wg.Wait()

	if ctx.Err() != nil {
		return nil, stats, ctx.Err()
	}

	for _, r := range results {
		stats.Swings++
		if r.Err != nil {
			stats.Failed++
		} else {
			stats.Succeeded++
		}
		if r.Expected != "" {
			stats.Labelled++
			if r.Match() {
				stats.Matched++
			}
		}
	}
	stats.Duration = time.Since(stats.StartTime)

	if err := writeReport(out, results, stats); err != nil {
		return results, stats, fmt.Errorf("write report: %w", err)
	}
	log.Info(ctx, "replay finished",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Float64("accuracy", stats.Accuracy()),
		logger.Duration("duration", stats.Duration),
	)
	return results, stats, nil
}

func load(c Config) ([]job, error) {
	var jobs []job
	for _, path := range c.Files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		swings, err := dataset.Import(f, c.SamplingRate)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		for _, sw := range swings {
			if sw.Label == "" {
				sw.Label = c.Label
			}
			jobs = append(jobs, job{file: path, swing: sw})
		}
	}
	if len(jobs) == 0 {
		return nil, ErrNoSwings
	}
	return jobs, nil
}

func classify(ctx context.Context, cls classifier.Classifier, meta model.Metadata, rate float64, j job) Result {
	res := Result{
		File:     j.file,
		Swing:    j.swing.Index,
		Samples:  len(j.swing.Window),
		Expected: j.swing.Label,
	}
	resp, err := cls.Classify(ctx, meta.Request(j.swing.Window, rate))
	if err != nil {
		res.Err = err
		return res
	}
	res.ShotType = resp.Result.ShotType
	res.Confidence = resp.Result.Confidence
	res.SpeedMps = resp.Result.SpeedMps
	return res
}

func logResult(ctx context.Context, log logger.Logger, r Result) {
	if r.Err != nil {
		log.Warn(ctx, "swing failed",
			logger.String("file", r.File),
			logger.Int("swing", r.Swing),
			logger.String("kind", classifier.Kind(r.Err)),
			logger.Error(r.Err),
		)
		return
	}
	log.Info(ctx, "swing classified",
		logger.String("file", r.File),
		logger.Int("swing", r.Swing),
		logger.String("shot", r.ShotType),
		logger.Float64("confidence", r.Confidence),
	)
}

// writeReport prints one line per swing followed by totals.
func writeReport(w io.Writer, results []Result, stats Stats) error {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Swing < sorted[j].Swing
	})

	var b strings.Builder
	for _, r := range sorted {
		fmt.Fprintf(&b, "%s #%d (%d samples): ", r.File, r.Swing, r.Samples)
		if r.Err != nil {
			fmt.Fprintf(&b, "error [%s] %v\n", classifier.Kind(r.Err), r.Err)
			continue
		}
		fmt.Fprintf(&b, "%s confidence=%.2f speed=%.2f m/s", r.ShotType, r.Confidence, r.SpeedMps)
		if r.Expected != "" {
			mark := "miss"
			if r.Match() {
				mark = "ok"
			}
			fmt.Fprintf(&b, " expected=%s %s", r.Expected, mark)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nswings=%d succeeded=%d failed=%d", stats.Swings, stats.Succeeded, stats.Failed)
	if stats.Labelled > 0 {
		fmt.Fprintf(&b, " accuracy=%.1f%% (%d/%d)", stats.Accuracy()*100, stats.Matched, stats.Labelled)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
