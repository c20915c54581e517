// Package mask projects reference-coordinate repeat annotations onto signal
// coordinates.
//
// An alignment table (see encoding/eventalign) says which range of signal
// samples each aligned reference position was observed in.  A Projector walks
// that table and produces a boolean mask with one entry per signal sample,
// true where the sample is believed to lie in a repeat.  Two strategies are
// provided: Pointwise consults a per-position predicate and interpolates
// across unaligned stretches; IntervalBatch paints one block per annotated
// interval.
package mask

import (
	"github.com/grailbio/sigrepeat/encoding/eventalign"
	"github.com/pkg/errors"
)

// ErrNoAlignment is returned by AlignedWindow for a table without events.
var ErrNoAlignment = errors.New("no aligned events")

// Projector builds a signal-coordinate mask of the given length from an
// alignment table.
type Projector interface {
	Project(events []eventalign.Event, length int) []bool
}

// Fill sets m[start:end] to true, after clamping both ends to [0, len(m)].
// It never clears a position, so overlapping fills OR together.
func Fill(m []bool, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(m) {
		end = len(m)
	}
	for i := start; i < end; i++ {
		m[i] = true
	}
}

// Count returns the number of true entries in m.
func Count(m []bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Predicate reports whether a reference position lies in a repeat.
type Predicate func(refPos int) bool

// Pointwise evaluates Pred at every aligned reference position and marks the
// event's signal range when it is true.
//
// When an event is preceded by an unaligned stretch of signal (the previous
// event ended before this one starts) and this event is a repeat, the
// stretch is marked too.  Only the event after the gap is consulted; a gap
// followed by a non-repeat event stays unmarked even if the event before it
// was a repeat.
type Pointwise struct {
	Pred Predicate
}

// Project implements Projector.
func (p Pointwise) Project(events []eventalign.Event, length int) []bool {
	m := make([]bool, length)
	for i, ev := range events {
		if !p.Pred(ev.RefPos) {
			continue
		}
		Fill(m, ev.Start, ev.End)
		if i > 0 && events[i-1].End < ev.Start {
			Fill(m, events[i-1].End, ev.Start)
		}
	}
	return m
}

// IntervalBatch marks, for each reference interval [s, e), the signal block
// from the first sample of position s to the last sample of position e-1.
// There is no gap interpolation beyond what the block itself spans.
//
// Intervals are used as given, whatever their contig; callers pass the
// intervals that belong to the sample's reference.  An interval whose first
// or last position was not aligned is skipped.  When a position appears in
// several events, the last of them is used for it.
type IntervalBatch struct {
	Intervals []Interval
}

// Interval is a half-open reference-coordinate range.
type Interval struct {
	Start, End int
}

// Project implements Projector.
func (b IntervalBatch) Project(events []eventalign.Event, length int) []bool {
	m := make([]bool, length)
	if len(events) == 0 {
		return m
	}
	// A reference position may own several events; the last one listed
	// supplies both ends of its span.
	startOf := make(map[int]int, len(events))
	endOf := make(map[int]int, len(events))
	for _, ev := range events {
		startOf[ev.RefPos] = ev.Start
		endOf[ev.RefPos] = ev.End
	}
	for _, iv := range b.Intervals {
		if iv.End <= iv.Start {
			continue
		}
		start, ok1 := startOf[iv.Start]
		end, ok2 := endOf[iv.End-1]
		if !ok1 || !ok2 {
			continue
		}
		Fill(m, start, end)
	}
	return m
}

// Window is a half-open range of signal positions.
type Window struct {
	Start, End int
}

// Len returns End - Start.
func (w Window) Len() int {
	return w.End - w.Start
}

// AlignedWindow returns the signal range covered by the alignment, from the
// smallest event start to the largest event end, clamped to [0, length].
// Positions outside it were never exercised by the aligner, so ground truth
// there is not comparable.
func AlignedWindow(events []eventalign.Event, length int) (Window, error) {
	if len(events) == 0 {
		return Window{}, ErrNoAlignment
	}
	w := Window{Start: events[0].Start, End: events[0].End}
	for _, ev := range events[1:] {
		if ev.Start < w.Start {
			w.Start = ev.Start
		}
		if ev.End > w.End {
			w.End = ev.End
		}
	}
	w.Start = clamp(w.Start, 0, length)
	w.End = clamp(w.End, w.Start, length)
	return w, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
