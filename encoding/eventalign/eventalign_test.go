package eventalign_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/encoding/eventalign"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestRead(t *testing.T) {
	tbl, err := eventalign.Read(strings.NewReader("chr1\n+ 0.93\n0 0 10\n1 10 15\n\n2 20 25\n"), "t")
	assert.NoError(t, err)
	expect.EQ(t, tbl.Contig, "chr1")
	expect.EQ(t, tbl.Meta, "+ 0.93")
	expect.EQ(t, tbl.Events, []eventalign.Event{{0, 0, 10}, {1, 10, 15}, {2, 20, 25}})
}

func TestReadNoEvents(t *testing.T) {
	for _, data := range []string{"", "chr1\n", "chr1\nmeta\n", "chr1\nmeta\n\n"} {
		tbl, err := eventalign.Read(strings.NewReader(data), "t")
		assert.NoError(t, err)
		expect.EQ(t, len(tbl.Events), 0, "data %q", data)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		data string
		line string
	}{
		{"c\nm\n0 0 10\n1 10\n", "t:4"},
		{"c\nm\n0 0 x\n", "t:3"},
		{"c\nm\n0 10 5\n", "t:3"},
		{"c\nm\n5 0 1\n4 1 2\n", "t:4"},
		{"c\nm\n0 -1 2\n", "t:3"},
		{"c\nm\n0 1 2 3\n", "t:3"},
	}
	for _, test := range tests {
		_, err := eventalign.Read(strings.NewReader(test.data), "t")
		assert.NotNil(t, err)
		expect.True(t, strings.Contains(err.Error(), test.line), "want %s in %v", test.line, err)
	}
}

func TestReadPath(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()
	path := filepath.Join(tmpdir, "s1.txt")
	out, err := file.Create(ctx, path)
	assert.NoError(t, err)
	_, err = out.Writer(ctx).Write([]byte("chr2\nx\n7 3 4\n"))
	assert.NoError(t, err)
	assert.NoError(t, out.Close(ctx))

	tbl, err := eventalign.ReadPath(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, tbl.Contig, "chr2")
	expect.EQ(t, tbl.Events, []eventalign.Event{{7, 3, 4}})

	_, err = eventalign.ReadPath(ctx, filepath.Join(tmpdir, "nope.txt"))
	expect.NotNil(t, err)
}
