package repeatmap_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/encoding/repeatmap"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestRead(t *testing.T) {
	m, err := repeatmap.Read(strings.NewReader("0\n1\n1\n0\n"), "m", 6)
	assert.NoError(t, err)
	expect.EQ(t, m, []bool{false, true, true, false, false, false})
}

func TestReadErrors(t *testing.T) {
	for _, data := range []string{"0\n2\n", "0\n\n1\n", "01\n", "1\n1\n1\n"} {
		_, err := repeatmap.Read(strings.NewReader(data), "m", 2)
		expect.NotNil(t, err, "data %q", data)
	}
	_, err := repeatmap.Read(strings.NewReader("0\nx\n"), "gt.txt", 5)
	assert.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "gt.txt:2"), "%v", err)
}

func TestWriteRoundTrip(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	var buf bytes.Buffer
	assert.NoError(t, repeatmap.Write(&buf, []bool{true, false, true}))
	expect.EQ(t, buf.String(), "1\n0\n1\n")

	path := filepath.Join(tmpdir, "s.txt")
	want := []bool{false, true, true, false}
	assert.NoError(t, repeatmap.WritePath(ctx, path, want))
	got, err := repeatmap.ReadPath(ctx, path, len(want))
	assert.NoError(t, err)
	expect.EQ(t, got, want)
}
