// Package eventalign reads signal alignment tables: the sparse
// correspondence, produced by an external aligner, between reference
// positions and ranges of raw signal samples.
//
// A table file looks like
//
//   chr7
//   <metadata>
//   1000 0 12
//   1001 12 15
//   1003 20 31
//
// The first line names the reference contig the sample aligned to and the
// second line carries aligner metadata; neither is an event row.  Every
// following nonblank line is "ref_position event_start event_end", with
// ref_position nondecreasing and event_start <= event_end.  The signal range
// of an event is [event_start, event_end).
package eventalign

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/sigrepeat/util"
	"github.com/pkg/errors"
)

// Event maps one reference position to a half-open signal range.
type Event struct {
	RefPos int
	Start  int
	End    int
}

// Table is a parsed alignment table.
type Table struct {
	// Contig is the first header line, trimmed.
	Contig string
	// Meta is the second header line, trimmed.
	Meta   string
	Events []Event
}

const maxLineLen = 1 << 20

// Read parses a table from r.  name is used only in error messages.
func Read(r io.Reader, name string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineLen)
	t := &Table{}
	lineIdx := 0
	for lineIdx < 2 {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, errors.Wrapf(err, "%s", name)
			}
			// A truncated header still means "no events".
			return t, nil
		}
		lineIdx++
		if lineIdx == 1 {
			t.Contig = strings.TrimSpace(scanner.Text())
		} else {
			t.Meta = strings.TrimSpace(scanner.Text())
		}
	}
	prevRefPos := -1
	for scanner.Scan() {
		lineIdx++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.Errorf("%s:%d: expected 3 columns, found %d", name, lineIdx, len(fields))
		}
		var vals [3]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", name, lineIdx)
			}
			if v < 0 {
				return nil, errors.Errorf("%s:%d: negative value %d", name, lineIdx, v)
			}
			vals[i] = v
		}
		ev := Event{RefPos: vals[0], Start: vals[1], End: vals[2]}
		if ev.Start > ev.End {
			return nil, errors.Errorf("%s:%d: event start %d after end %d", name, lineIdx, ev.Start, ev.End)
		}
		if ev.RefPos < prevRefPos {
			return nil, errors.Errorf("%s:%d: reference position %d decreases (previous %d)", name, lineIdx, ev.RefPos, prevRefPos)
		}
		prevRefPos = ev.RefPos
		t.Events = append(t.Events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return t, nil
}

// ReadPath parses the (possibly gzipped) table at path.
func ReadPath(ctx context.Context, path string) (t *Table, err error) {
	var in *util.Input
	if in, err = util.Open(ctx, path); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Read(in, path)
}
