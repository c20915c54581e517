package evaluate

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/encoding/repeatmap"
	"github.com/grailbio/sigrepeat/mask"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestMakeMaps(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	c := newCorpus(t, tmpdir)
	c.write(c.opts.RepeatBED, "chr1\t2\t3\n")
	c.addSignal("a", 30)
	c.addAlignment("a", "chr1", [3]int{0, 0, 10}, [3]int{1, 10, 15}, [3]int{2, 20, 25})
	c.addSignal("b", 8)
	c.addAlignment("b", "chrUn", [3]int{0, 0, 8})
	// No alignment table at all.
	c.addSignal("c", 8)

	opts := DefaultMakeMapsOpts
	opts.SignalDir = c.opts.SignalDir
	opts.AlignmentDir = c.opts.AlignmentDir
	opts.RepeatBED = c.opts.RepeatBED
	opts.OutputDir = c.dir("maps")
	n, err := MakeMaps(ctx, opts)
	expect.NotNil(t, err)
	expect.EQ(t, n, 2)

	got, err := repeatmap.ReadPath(ctx, filepath.Join(opts.OutputDir, "a.txt"), 30)
	assert.NoError(t, err)
	want := make([]bool, 30)
	mask.Fill(want, 15, 25)
	expect.EQ(t, got, want)

	got, err = repeatmap.ReadPath(ctx, filepath.Join(opts.OutputDir, "b.txt"), 8)
	assert.NoError(t, err)
	expect.EQ(t, got, make([]bool, 8))

	// Generated maps feed straight into an evaluation of the same projection.
	c.opts.GroundTruthDir = opts.OutputDir
	c.write(filepath.Join(c.opts.AlignmentDir, "c.txt"), "chr1\nmeta\n")
	c.write(filepath.Join(opts.OutputDir, "c.txt"), "")
	summary, err := Run(ctx, c.opts, nil)
	assert.NoError(t, err)
	expect.EQ(t, summary.Evaluated, 2)
	expect.EQ(t, summary.Skipped, 1)
	v, ok := summary.Totals.IoU().Value()
	expect.True(t, ok)
	expect.EQ(t, v, 1.0)
}
