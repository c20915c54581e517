package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/checkpoint"
	"github.com/grailbio/sigrepeat/overlap"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestStatus(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	path := filepath.Join(tmpdir, "ckpt")
	var buf bytes.Buffer
	expect.NotNil(t, status(ctx, &buf, path))

	m, err := checkpoint.Open(ctx, &checkpoint.FileStore{Path: path, Fingerprint: "abc"})
	assert.NoError(t, err)
	_, err = m.Commit(ctx, "read1", overlap.Stats{GT: 5, Computed: 10, Intersection: 5, Union: 10, Length: 15})
	assert.NoError(t, err)

	assert.NoError(t, status(ctx, &buf, path))
	expect.EQ(t, buf.String(), `processed	1
gt	5
computed	10
intersection	5
union	10
length	15
iou	0.500000
sensitivity	1.000000
specificity	0.500000
`)
}
