// Package repeatmap reads and writes per-signal-position repeat masks.  The
// file holds one line per signal sample, each line a single "0" or "1"; line
// i describes sample i.
package repeatmap

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/sigrepeat/util"
	"github.com/pkg/errors"
)

// Read parses a mask for a signal of the given length.  A file shorter than
// length leaves the remaining positions false; a longer one is an error.
// name is used only in error messages.
func Read(r io.Reader, name string, length int) ([]bool, error) {
	m := make([]bool, length)
	scanner := bufio.NewScanner(r)
	pos := 0
	for scanner.Scan() {
		tok := bytes.TrimSpace(scanner.Bytes())
		if len(tok) != 1 || (tok[0] != '0' && tok[0] != '1') {
			return nil, errors.Errorf("%s:%d: expected 0 or 1, found %q", name, pos+1, tok)
		}
		if pos >= length {
			return nil, errors.Errorf("%s:%d: mask longer than signal length %d", name, pos+1, length)
		}
		m[pos] = tok[0] == '1'
		pos++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return m, nil
}

// ReadPath is Read on a (possibly gzipped) path.
func ReadPath(ctx context.Context, path string, length int) (m []bool, err error) {
	var in *util.Input
	if in, err = util.Open(ctx, path); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Read(in, path, length)
}

// Write writes m in the format Read accepts.
func Write(w io.Writer, m []bool) error {
	bw := bufio.NewWriter(w)
	for _, v := range m {
		c := byte('0')
		if v {
			c = '1'
		}
		if err := bw.WriteByte(c); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePath writes m to path.  The file appears under its final name only
// once it is complete.
func WritePath(ctx context.Context, path string, m []bool) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return Write(out.Writer(ctx), m)
}
