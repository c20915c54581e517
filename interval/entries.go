package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/grailbio/sigrepeat/util"
)

// Entry represents a single interval, with 0-based half-open coordinates.
type Entry struct {
	ChrName string
	Start0  PosType
	End     PosType
}

// Len returns the number of positions in the interval.
func (e Entry) Len() int {
	return int(e.End - e.Start0)
}

// LoadEntries reads "contig start end ..." lines without sorting or merging.
// Blank lines are skipped; any other line with fewer than three columns is an
// error.
func LoadEntries(r io.Reader, opts NewBEDOpts) ([]Entry, error) {
	startSubtract := 0
	if opts.OneBasedInput {
		startSubtract = 1
	}
	var (
		tokens  [3][]byte
		entries []Entry
		lineIdx int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineIdx++
		nToken := getTokens(tokens[:], scanner.Bytes())
		if nToken == 0 {
			continue
		}
		if nToken != 3 {
			return nil, fmt.Errorf("interval: line %d has fewer tokens than expected", lineIdx)
		}
		e, err := parseEntry(tokens[:], startSubtract, lineIdx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadEntriesFromPath is LoadEntries on a (possibly gzipped) path.  Errors
// are prefixed with the path.
func LoadEntriesFromPath(ctx context.Context, path string, opts NewBEDOpts) (entries []Entry, err error) {
	var in *util.Input
	if in, err = util.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if entries, err = LoadEntries(in, opts); err != nil {
		err = fmt.Errorf("%s: %v", path, err)
	}
	return
}
