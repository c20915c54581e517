package diag_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/diag"
	"github.com/grailbio/sigrepeat/mask"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestDump(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	gt := make([]bool, 10)
	mask.Fill(gt, 3, 6)
	computed := make([]bool, 10)
	mask.Fill(computed, 5, 9)
	d := &diag.Dumper{Dir: tmpdir}
	d.Dump(ctx, "read1", gt, computed, mask.Window{Start: 2, End: 8})

	got, err := ioutil.ReadFile(filepath.Join(tmpdir, "read1.txt"))
	assert.NoError(t, err)
	expect.EQ(t, string(got), "011100\n000111\n")
}

func TestDumpFailureIsNotFatal(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	// The dump directory is a regular file; Dump logs and returns.
	notDir := filepath.Join(tmpdir, "plain")
	assert.NoError(t, ioutil.WriteFile(notDir, nil, 0600))
	d := &diag.Dumper{Dir: notDir}
	d.Dump(ctx, "read1", make([]bool, 4), make([]bool, 4), mask.Window{Start: 0, End: 4})

	var nilDumper *diag.Dumper
	nilDumper.Dump(ctx, "read1", nil, nil, mask.Window{})
}
