package signal

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestLen(t *testing.T) {
	n, err := Len(strings.NewReader("1.5 2\n-3e2\n\n 4 5 6"), "s")
	assert.NoError(t, err)
	expect.EQ(t, n, 6)

	n, err = Len(strings.NewReader(""), "s")
	assert.NoError(t, err)
	expect.EQ(t, n, 0)

	_, err = Len(strings.NewReader("1 2 abc"), "s")
	expect.NotNil(t, err)
}

func TestSampleID(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/data/reads/read_17.signal", "read_17"},
		{"read_17.signal.gz", "read_17"},
		{"dir/a.b.txt", "a.b"},
		{"noext", "noext"},
	}
	for _, test := range tests {
		expect.EQ(t, SampleID(test.path), test.want)
	}
}
