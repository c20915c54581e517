package evaluate

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/dgryski/go-farm"
)

// Mode selects how the computed repeat mask is produced.
type Mode int

const (
	// Pointwise projects a reference repeat BED through each sample's
	// alignment table, one event at a time, interpolating gaps that precede
	// repeat events.
	Pointwise Mode = iota
	// Batch projects per-sample repeat intervals through a mapping table as
	// whole blocks.
	Batch
)

func (m Mode) String() string {
	switch m {
	case Pointwise:
		return "pointwise"
	case Batch:
		return "batch"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "pointwise":
		return Pointwise, nil
	case "batch":
		return Batch, nil
	}
	return 0, fmt.Errorf("unknown mode %q, must be pointwise or batch", s)
}

// Opts configures an evaluation run.
//
// Every per-sample input is named after the sample ID, which is derived from
// the file names in SignalDir: for sample "x", the alignment table is
// AlignmentDir/x.txt, the ground truth GroundTruthDir/x.txt, and so on.  Each
// of these may instead carry a ".gz" suffix.
type Opts struct {
	Mode Mode
	// SignalDir holds one signal dump per sample and defines the corpus.
	SignalDir string
	// AlignmentDir holds the signal-to-reference alignment tables.
	AlignmentDir string
	// GroundTruthDir holds the ground-truth masks.
	GroundTruthDir string

	// RepeatBED is the reference repeat annotation (pointwise mode).
	RepeatBED string
	// OneBasedBED interprets RepeatBED starts as 1-based.
	OneBasedBED bool

	// RepeatDir holds per-sample repeat intervals (batch mode).
	RepeatDir string
	// MappingDir holds per-sample tables mapping repeat-interval coordinates
	// to signal events (batch mode).  When empty the alignment table is used.
	MappingDir string

	// DiagDir, if set, receives a mask dump per evaluated sample.
	DiagDir string
	// CheckpointPath is where progress is persisted between runs.
	CheckpointPath string
	// ReportPath, if set, receives a TSV row per evaluated sample.
	ReportPath string
	// Parallelism is the number of samples evaluated concurrently.
	Parallelism int
}

// DefaultOpts are the default evaluation options.
var DefaultOpts = Opts{
	Mode:           Pointwise,
	CheckpointPath: "repeat-eval.checkpoint",
	Parallelism:    runtime.NumCPU(),
}

// Validate checks that the options name every input the mode needs.
func (o *Opts) Validate() error {
	for _, req := range []struct{ name, val string }{
		{"signal directory", o.SignalDir},
		{"alignment directory", o.AlignmentDir},
		{"ground-truth directory", o.GroundTruthDir},
		{"checkpoint path", o.CheckpointPath},
	} {
		if req.val == "" {
			return fmt.Errorf("evaluate: %s is required", req.name)
		}
	}
	switch o.Mode {
	case Pointwise:
		if o.RepeatBED == "" {
			return fmt.Errorf("evaluate: pointwise mode requires a repeat BED")
		}
	case Batch:
		if o.RepeatDir == "" {
			return fmt.Errorf("evaluate: batch mode requires a repeat interval directory")
		}
	default:
		return fmt.Errorf("evaluate: invalid mode %v", o.Mode)
	}
	if o.Parallelism <= 0 {
		return fmt.Errorf("evaluate: parallelism must be positive, got %d", o.Parallelism)
	}
	return nil
}

// Fingerprint identifies the inputs that determine the corpus totals.  A
// checkpoint written under one fingerprint cannot be resumed under another.
// Output-only settings (diagnostics, reports, parallelism) do not
// participate.
func (o *Opts) Fingerprint() string {
	key := strings.Join([]string{
		o.Mode.String(),
		o.SignalDir,
		o.AlignmentDir,
		o.GroundTruthDir,
		o.RepeatBED,
		strconv.FormatBool(o.OneBasedBED),
		o.RepeatDir,
		o.MappingDir,
	}, "\x00")
	return strconv.FormatUint(farm.Fingerprint64([]byte(key)), 16)
}
