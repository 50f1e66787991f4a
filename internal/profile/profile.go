// Package profile loads the callprof.toml run profile: which functions to
// trace, how to render reports, and the shape of the demo workload.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ManifestName is the profile file callprof looks for.
const ManifestName = "callprof.toml"

// TraceConfig selects what gets traced.
type TraceConfig struct {
	// Functions are qualified "namespace.name" entries, resolved against
	// the runtime at startup.
	Functions []string `toml:"functions"`

	// EntryNamespace renders unqualified in reports.
	EntryNamespace string `toml:"entry_namespace"`
}

// ReportConfig shapes the rendered report.
type ReportConfig struct {
	Width    int    `toml:"width"`
	Snapshot string `toml:"snapshot"` // optional snapshot output path
}

// WatchConfig shapes the live view.
type WatchConfig struct {
	RefreshMS int `toml:"refresh_ms"`
}

// Refresh returns the live view refresh interval.
func (w WatchConfig) Refresh() time.Duration {
	return time.Duration(w.RefreshMS) * time.Millisecond
}

// WorkloadConfig shapes the demo workload the run and watch commands drive.
type WorkloadConfig struct {
	Workers    int `toml:"workers"`
	Iterations int `toml:"iterations"`
	Fib        int `toml:"fib"`
	NapMS      int `toml:"nap_ms"`
}

// Profile is the full callprof.toml document.
type Profile struct {
	Trace    TraceConfig    `toml:"trace"`
	Report   ReportConfig   `toml:"report"`
	Watch    WatchConfig    `toml:"watch"`
	Workload WorkloadConfig `toml:"workload"`
}

// Default returns the profile used when no callprof.toml is found.
func Default() *Profile {
	return &Profile{
		Trace: TraceConfig{
			Functions:      []string{"main.fib", "main.churn", "clockwork.nap"},
			EntryNamespace: "main",
		},
		Report:   ReportConfig{Width: 80},
		Watch:    WatchConfig{RefreshMS: 250},
		Workload: WorkloadConfig{Workers: 4, Iterations: 25, Fib: 12, NapMS: 1},
	}
}

// Load reads and validates a profile file. Missing values fall back to the
// defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	meta, err := toml.DecodeFile(path, p)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("trace", "functions") && len(p.Trace.Functions) == 0 {
		return nil, fmt.Errorf("%s: [trace] functions is empty", path)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks the profile for values the commands cannot work with.
func (p *Profile) Validate() error {
	if p.Report.Width < 40 {
		return fmt.Errorf("report width %d too narrow (minimum 40)", p.Report.Width)
	}
	if p.Watch.RefreshMS < 16 {
		return fmt.Errorf("watch refresh %dms too fast (minimum 16ms)", p.Watch.RefreshMS)
	}
	if p.Workload.Workers < 1 {
		return fmt.Errorf("workload needs at least one worker, got %d", p.Workload.Workers)
	}
	if p.Workload.Iterations < 1 {
		return fmt.Errorf("workload needs at least one iteration, got %d", p.Workload.Iterations)
	}
	if p.Workload.Fib < 0 || p.Workload.Fib > 25 {
		return fmt.Errorf("workload fib depth %d out of range (0..25)", p.Workload.Fib)
	}
	if p.Workload.NapMS < 0 {
		return fmt.Errorf("workload nap %dms is negative", p.Workload.NapMS)
	}
	return nil
}

// Find walks up from startDir to locate callprof.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
