// Package signal reads raw-signal text dumps.  Decoding instrument files
// (e.g. fast5) is done upstream; this package only needs whitespace-separated
// numeric samples, and in practice only their count.
package signal

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/sigrepeat/util"
	"github.com/pkg/errors"
)

// Len returns the number of samples in r, validating that each one parses as
// a number.  name is used only in error messages.
func Len(r io.Reader, name string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	n := 0
	for scanner.Scan() {
		if _, err := strconv.ParseFloat(gunsafe.BytesToString(scanner.Bytes()), 64); err != nil {
			return 0, errors.Wrapf(err, "%s: sample %d", name, n)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrapf(err, "%s", name)
	}
	return n, nil
}

// LenPath is Len on a (possibly gzipped) path.
func LenPath(ctx context.Context, path string) (n int, err error) {
	var in *util.Input
	if in, err = util.Open(ctx, path); err != nil {
		return 0, err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Len(in, path)
}

// SampleID derives a sample identifier from a signal path: the base name
// without its extension, ignoring a trailing ".gz".
func SampleID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}
