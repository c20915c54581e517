// Package evaluate runs repeat-mask evaluation over a corpus of samples.  For
// each sample it projects repeat annotations into signal coordinates, compares
// the result with ground truth inside the aligned window and folds the counts
// into checkpointed corpus totals, so an interrupted run resumes where it
// stopped.
package evaluate

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/sigrepeat/checkpoint"
	"github.com/grailbio/sigrepeat/diag"
	"github.com/grailbio/sigrepeat/encoding/eventalign"
	"github.com/grailbio/sigrepeat/encoding/repeatmap"
	"github.com/grailbio/sigrepeat/encoding/signal"
	"github.com/grailbio/sigrepeat/interval"
	"github.com/grailbio/sigrepeat/mask"
	"github.com/grailbio/sigrepeat/overlap"
)

// Summary describes a finished (or stopped) run.
type Summary struct {
	// Samples is the corpus size.
	Samples int
	// Evaluated samples were counted during this run.
	Evaluated int
	// Resumed samples had been counted by an earlier run.
	Resumed int
	// Skipped samples had no aligned events and are never counted.
	Skipped int
	// Failed samples hit an error and will be retried by the next run.
	Failed int
	// Totals and Processed describe the whole corpus so far, including
	// earlier runs.
	Totals    overlap.Stats
	Processed int
}

// Complete reports whether every sample was either counted or skipped.
func (s Summary) Complete() bool {
	return s.Failed == 0 && s.Evaluated+s.Resumed+s.Skipped == s.Samples
}

type outcome int

const (
	evaluated outcome = iota
	resumed
	skipped
	failed
)

// evaluator holds the per-run state shared by the workers.
type evaluator struct {
	opts     Opts
	ckpt     *checkpoint.Manager
	reporter Reporter
	dumper   *diag.Dumper
	// bed is the loaded repeat annotation in pointwise mode.  Lookups mutate
	// it, so each worker uses its own Clone.
	bed interval.BEDUnion
}

// Run evaluates every sample in opts.SignalDir, reporting each to reporter
// (which may be nil).  Previously counted samples are skipped.  When the run
// ends with no failures the checkpoint is removed; otherwise it is kept so the
// next run retries the failed samples.  Run returns an error only for
// conditions that prevent a trustworthy result: bad options, an unreadable
// checkpoint or inputs shared by all samples, a checkpoint write failure, or
// cancellation.
func Run(ctx context.Context, opts Opts, reporter Reporter) (Summary, error) {
	var summary Summary
	if err := opts.Validate(); err != nil {
		return summary, err
	}
	samples, err := ListSamples(ctx, opts.SignalDir)
	if err != nil {
		return summary, err
	}
	summary.Samples = len(samples)
	log.Printf("evaluate: %d sample(s) in %s, mode %v", len(samples), opts.SignalDir, opts.Mode)

	e := &evaluator{opts: opts, dumper: &diag.Dumper{Dir: opts.DiagDir}}
	if opts.Mode == Pointwise {
		if e.bed, err = interval.NewBEDUnionFromPath(opts.RepeatBED, interval.NewBEDOpts{OneBasedInput: opts.OneBasedBED}); err != nil {
			return summary, err
		}
	}
	reporters := multiReporter{LogReporter{}}
	if reporter != nil {
		reporters = append(reporters, reporter)
	}
	if opts.ReportPath != "" {
		tsvReporter, err := NewTSVReporter(ctx, opts.ReportPath)
		if err != nil {
			return summary, err
		}
		defer func() {
			if cerr := tsvReporter.Close(ctx); cerr != nil {
				log.Error.Printf("evaluate: report %s: %v", opts.ReportPath, cerr)
			}
		}()
		reporters = append(reporters, tsvReporter)
	}
	e.reporter = reporters

	store := &checkpoint.FileStore{Path: opts.CheckpointPath, Fingerprint: opts.Fingerprint()}
	if e.ckpt, err = checkpoint.Open(ctx, store); err != nil {
		return summary, err
	}

	var (
		next   int64
		fatal  errors.Once
		mu     sync.Mutex
		counts [failed + 1]int
	)
	parallelism := opts.Parallelism
	if parallelism > len(samples) {
		parallelism = len(samples)
	}
	err = traverse.Each(parallelism, func(int) error {
		var bed interval.BEDUnion
		if opts.Mode == Pointwise {
			bed = e.bed.Clone()
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if fatal.Err() != nil {
				return nil
			}
			i := int(atomic.AddInt64(&next, 1) - 1)
			if i >= len(samples) {
				return nil
			}
			o, err := e.evaluateSample(ctx, samples[i], &bed)
			if err != nil {
				fatal.Set(err)
				return err
			}
			mu.Lock()
			counts[o]++
			mu.Unlock()
		}
	})
	summary.Evaluated = counts[evaluated]
	summary.Resumed = counts[resumed]
	summary.Skipped = counts[skipped]
	summary.Failed = counts[failed]
	summary.Totals, summary.Processed = e.ckpt.Totals()
	if err != nil {
		return summary, err
	}
	t := summary.Totals
	log.Printf("evaluate: %d evaluated, %d resumed, %d skipped, %d failed; cumulative iou %v, sensitivity %v, specificity %v over %d sample(s)",
		summary.Evaluated, summary.Resumed, summary.Skipped, summary.Failed,
		t.IoU(), t.Sensitivity(), t.Specificity(), summary.Processed)
	if summary.Failed > 0 {
		log.Error.Printf("evaluate: %d sample(s) failed; keeping %s so a rerun retries them", summary.Failed, opts.CheckpointPath)
		return summary, nil
	}
	return summary, e.ckpt.Reset(ctx)
}

// evaluateSample processes one sample.  Problems with the sample's own inputs
// are reported and turned into the failed or skipped outcome; only checkpoint
// write failures are returned as errors.
func (e *evaluator) evaluateSample(ctx context.Context, s Sample, bed *interval.BEDUnion) (outcome, error) {
	if e.ckpt.Contains(s.ID) {
		log.Debug.Printf("%s: already counted", s.ID)
		return resumed, nil
	}
	log.Debug.Printf("%s: processing", s.ID)
	computed, gt, w, err := e.masks(ctx, s, bed)
	if err == mask.ErrNoAlignment {
		e.reporter.SampleSkipped(s.ID, err)
		return skipped, nil
	}
	if err != nil {
		e.reporter.SampleSkipped(s.ID, err)
		return failed, nil
	}
	if log.At(log.Debug) {
		log.Debug.Printf("%s: %d computed and %d ground-truth repeat sample(s) of %d", s.ID, mask.Count(computed), mask.Count(gt), len(gt))
	}
	stats, err := overlap.Compute(computed, gt, w)
	if err != nil {
		e.reporter.SampleSkipped(s.ID, err)
		return failed, nil
	}
	added, err := e.ckpt.Commit(ctx, s.ID, stats)
	if err != nil {
		return failed, errors.E(err, "evaluate: cannot persist progress after sample", s.ID)
	}
	if !added {
		return resumed, nil
	}
	e.dumper.Dump(ctx, s.ID, gt, computed, w)
	totals, n := e.ckpt.Totals()
	e.reporter.SampleDone(Result{ID: s.ID, Window: w, Stats: stats, Totals: totals, Processed: n})
	return evaluated, nil
}

// masks loads a sample's inputs and returns its computed and ground-truth
// masks together with the aligned window.
func (e *evaluator) masks(ctx context.Context, s Sample, bed *interval.BEDUnion) (computed, gt []bool, w mask.Window, err error) {
	length, err := signal.LenPath(ctx, s.SignalPath)
	if err != nil {
		return
	}
	alignPath, err := findInput(ctx, e.opts.AlignmentDir, s.ID)
	if err != nil {
		return
	}
	table, err := eventalign.ReadPath(ctx, alignPath)
	if err != nil {
		return
	}
	if w, err = mask.AlignedWindow(table.Events, length); err != nil {
		return
	}
	gtPath, err := findInput(ctx, e.opts.GroundTruthDir, s.ID)
	if err != nil {
		return
	}
	if gt, err = repeatmap.ReadPath(ctx, gtPath, length); err != nil {
		return
	}
	switch e.opts.Mode {
	case Pointwise:
		computed = pointwiseMask(bed, table, length)
	case Batch:
		computed, err = e.batchMask(ctx, s, table, length)
	}
	return
}

func pointwiseMask(bed *interval.BEDUnion, table *eventalign.Table, length int) []bool {
	if log.At(log.Debug) {
		if bed.HasContig(table.Contig) {
			log.Debug.Printf("contig %q: %d annotated repeat base(s)", table.Contig, bed.Covered(table.Contig))
		} else {
			log.Debug.Printf("contig %q has no repeat annotation", table.Contig)
		}
	}
	p := mask.Pointwise{Pred: func(refPos int) bool {
		return bed.ContainsByName(table.Contig, interval.PosType(refPos))
	}}
	return p.Project(table.Events, length)
}

func (e *evaluator) batchMask(ctx context.Context, s Sample, table *eventalign.Table, length int) ([]bool, error) {
	repeatPath, err := findInput(ctx, e.opts.RepeatDir, s.ID)
	if err != nil {
		return nil, err
	}
	entries, err := interval.LoadEntriesFromPath(ctx, repeatPath, interval.NewBEDOpts{})
	if err != nil {
		return nil, err
	}
	mapping := table
	if e.opts.MappingDir != "" {
		mappingPath, err := findInput(ctx, e.opts.MappingDir, s.ID)
		if err != nil {
			return nil, err
		}
		if mapping, err = eventalign.ReadPath(ctx, mappingPath); err != nil {
			return nil, err
		}
	}
	b := mask.IntervalBatch{Intervals: make([]mask.Interval, len(entries))}
	for i, entry := range entries {
		b.Intervals[i] = mask.Interval{Start: int(entry.Start0), End: int(entry.End)}
	}
	return b.Project(mapping.Events, length), nil
}
