package util

import (
	"context"
	"io"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// Input is an opened, possibly decompressed, input file.
type Input struct {
	f  file.File
	gz *gzip.Reader
	r  io.Reader
}

// Open opens path for reading.  Paths ending in .gz are decompressed on the
// fly.  The caller must Close the returned Input.
func Open(ctx context.Context, path string) (*Input, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	in := &Input{f: f, r: f.Reader(ctx)}
	if fileio.DetermineType(path) == fileio.Gzip {
		if in.gz, err = gzip.NewReader(in.r); err != nil {
			_ = f.Close(ctx)
			return nil, err
		}
		in.r = in.gz
	}
	return in, nil
}

// Read implements io.Reader.
func (in *Input) Read(p []byte) (int, error) {
	return in.r.Read(p)
}

// Close closes the decompressor, if any, and the underlying file.
func (in *Input) Close(ctx context.Context) error {
	var err error
	if in.gz != nil {
		err = in.gz.Close()
	}
	if e := in.f.Close(ctx); e != nil && err == nil {
		err = e
	}
	return err
}

// IsNotExist reports whether err means a file does not exist, whether it came
// from the file package or straight from the OS.
func IsNotExist(err error) bool {
	return errors.Is(errors.NotExist, err) || os.IsNotExist(err)
}
