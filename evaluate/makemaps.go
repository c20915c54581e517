package evaluate

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/sigrepeat/encoding/eventalign"
	"github.com/grailbio/sigrepeat/encoding/repeatmap"
	"github.com/grailbio/sigrepeat/encoding/signal"
	"github.com/grailbio/sigrepeat/interval"
)

// MakeMapsOpts configures ground-truth mask generation.
type MakeMapsOpts struct {
	// SignalDir defines the corpus, as in Opts.
	SignalDir string
	// AlignmentDir holds the reference alignment tables.
	AlignmentDir string
	// RepeatBED is the reference repeat annotation.
	RepeatBED   string
	OneBasedBED bool
	// OutputDir receives one mask per sample, named <id>.txt.
	OutputDir   string
	Parallelism int
}

// DefaultMakeMapsOpts are the default mask generation options.
var DefaultMakeMapsOpts = MakeMapsOpts{
	Parallelism: DefaultOpts.Parallelism,
}

// MakeMaps writes a ground-truth mask for every sample in opts.SignalDir by
// projecting the repeat BED through the sample's alignment table pointwise.
// Samples whose inputs cannot be read are logged and left out; the number of
// masks written is returned along with an error if any sample failed.
func MakeMaps(ctx context.Context, opts MakeMapsOpts) (int, error) {
	if opts.SignalDir == "" || opts.AlignmentDir == "" || opts.RepeatBED == "" || opts.OutputDir == "" {
		return 0, fmt.Errorf("make-maps: missing input or output location in %+v", opts)
	}
	samples, err := ListSamples(ctx, opts.SignalDir)
	if err != nil {
		return 0, err
	}
	bed, err := interval.NewBEDUnionFromPath(opts.RepeatBED, interval.NewBEDOpts{OneBasedInput: opts.OneBasedBED})
	if err != nil {
		return 0, err
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	if parallelism > len(samples) {
		parallelism = len(samples)
	}
	var next, written, failures int64
	err = traverse.Each(parallelism, func(int) error {
		bed := bed.Clone()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			i := int(atomic.AddInt64(&next, 1) - 1)
			if i >= len(samples) {
				return nil
			}
			s := samples[i]
			if err := makeMap(ctx, opts, s, &bed); err != nil {
				log.Error.Printf("%s: %v", s.ID, err)
				atomic.AddInt64(&failures, 1)
				continue
			}
			atomic.AddInt64(&written, 1)
		}
	})
	if err != nil {
		return int(written), err
	}
	log.Printf("make-maps: wrote %d mask(s) to %s", written, opts.OutputDir)
	if failures > 0 {
		return int(written), fmt.Errorf("make-maps: %d sample(s) failed", failures)
	}
	return int(written), nil
}

func makeMap(ctx context.Context, opts MakeMapsOpts, s Sample, bed *interval.BEDUnion) error {
	length, err := signal.LenPath(ctx, s.SignalPath)
	if err != nil {
		return err
	}
	alignPath, err := findInput(ctx, opts.AlignmentDir, s.ID)
	if err != nil {
		return err
	}
	table, err := eventalign.ReadPath(ctx, alignPath)
	if err != nil {
		return err
	}
	return repeatmap.WritePath(ctx, outputPath(opts.OutputDir, s.ID), pointwiseMask(bed, table, length))
}
