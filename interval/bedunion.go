package interval

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/util"
)

// PosType is the reference-coordinate type.
type PosType int32

// PosTypeMax is the largest representable PosType.  It is never a valid
// interval end.
const PosTypeMax = math.MaxInt32

// NewBEDOpts defines behavior of this package's BED-loading functions.
type NewBEDOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// getTokens fills tokens with up to len(tokens) whitespace-delimited fields
// of line, returning the number found.  Any byte <= ' ' is a delimiter, and
// columns past len(tokens) are never examined.
func getTokens(tokens [][]byte, line []byte) int {
	end := 0
	n := len(line)
	for i := range tokens {
		start := end
		for start != n && line[start] <= ' ' {
			start++
		}
		if start == n {
			return i
		}
		end = start
		for end != n && line[end] > ' ' {
			end++
		}
		tokens[i] = line[start:end]
	}
	return len(tokens)
}

// parseEntry converts the first three columns of a BED line.
func parseEntry(tokens [][]byte, startSubtract int, lineIdx int) (e Entry, err error) {
	var start, end int
	if start, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
		return e, fmt.Errorf("interval: line %d: bad start coordinate: %v", lineIdx, err)
	}
	start -= startSubtract
	if start < 0 {
		return e, fmt.Errorf("interval: line %d: negative start coordinate %s", lineIdx, tokens[1])
	}
	if end, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
		return e, fmt.Errorf("interval: line %d: bad end coordinate: %v", lineIdx, err)
	}
	if end < start || end >= PosTypeMax {
		return e, fmt.Errorf("interval: line %d: invalid coordinate pair [%d, %d)", lineIdx, start, end)
	}
	e.ChrName = string(tokens[0])
	e.Start0 = PosType(start)
	e.End = PosType(end)
	return e, nil
}

// searchPosType is sort.SearchInts for PosType.
func searchPosType(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// fwdsearchPosType checks a[idx], a[idx+1], a[idx+3], a[idx+7], ... and then
// finishes with a binary search.  Queries from the pointwise projector arrive
// in nondecreasing order, so the answer is almost always within a step or two
// of the previous one.
func fwdsearchPosType(a []PosType, x PosType, idx int) int {
	incr := 1
	lo := idx
	hi := len(a)
	for idx < hi {
		if a[idx] >= x {
			hi = idx
			break
		}
		lo = idx + 1
		idx += incr
		incr *= 2
	}
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if a[mid] >= x {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// BEDUnion is a per-contig union of reference intervals.  Each contig maps to
// a sorted endpoint slice {start0, end0, start1, end1, ...} of disjoint,
// non-touching intervals, so a position p is covered iff the insertion index
// of p+1 is odd.
//
// A BEDUnion carries search state for sequential queries and must not be
// shared between goroutines; use Clone to give each worker its own copy.
type BEDUnion struct {
	nameMap map[string][]PosType

	lastChrName      string
	lastChrIntervals []PosType
	// lastPosPlus1 is 1 plus the last queried position, and lastIdx is
	// searchPosType(lastChrIntervals, lastPosPlus1).
	lastPosPlus1 PosType
	lastIdx      int
	// isSequential is true while queries on the current contig have been
	// nondecreasing.
	isSequential bool
}

func initBEDUnion() BEDUnion {
	return BEDUnion{nameMap: make(map[string][]PosType)}
}

// ContainsByName reports whether reference position pos on contig chrName is
// covered by the union.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	posPlus1 := pos + 1
	if chrName != u.lastChrName {
		u.lastChrName = chrName
		u.lastChrIntervals = u.nameMap[chrName]
		if u.lastChrIntervals == nil {
			return false
		}
		u.lastIdx = searchPosType(u.lastChrIntervals, posPlus1)
		u.lastPosPlus1 = posPlus1
		u.isSequential = true
		return u.lastIdx&1 == 1
	}
	if u.lastChrIntervals == nil {
		return false
	}
	if u.isSequential {
		if posPlus1 >= u.lastPosPlus1 {
			u.lastIdx = fwdsearchPosType(u.lastChrIntervals, posPlus1, u.lastIdx)
			u.lastPosPlus1 = posPlus1
			return u.lastIdx&1 == 1
		}
		u.isSequential = false
	}
	return searchPosType(u.lastChrIntervals, posPlus1)&1 == 1
}

// HasContig reports whether chrName was mentioned in the input, even by an
// empty interval.
func (u *BEDUnion) HasContig(chrName string) bool {
	_, ok := u.nameMap[chrName]
	return ok
}

// Covered returns the number of positions covered on chrName.
func (u *BEDUnion) Covered(chrName string) int {
	n := 0
	endpoints := u.nameMap[chrName]
	for i := 0; i+1 < len(endpoints); i += 2 {
		n += int(endpoints[i+1] - endpoints[i])
	}
	return n
}

// Clone returns a BEDUnion sharing the interval data but with fresh search
// state.
func (u *BEDUnion) Clone() BEDUnion {
	return BEDUnion{nameMap: u.nameMap}
}

// unionBuilder accumulates entries sorted by contig and start into a
// BEDUnion.
type unionBuilder struct {
	u         BEDUnion
	chr       string
	endpoints []PosType
	// prevStart/prevEnd is the pending interval; prevEnd == -1 means none.
	prevStart, prevEnd PosType
	totBases           int
}

func newUnionBuilder() *unionBuilder {
	return &unionBuilder{u: initBEDUnion(), prevEnd: -1}
}

func (b *unionBuilder) flushContig() {
	if b.chr == "" {
		return
	}
	if b.prevEnd != -1 {
		b.endpoints = append(b.endpoints, b.prevStart, b.prevEnd)
	}
	b.u.nameMap[b.chr] = b.endpoints
}

func (b *unionBuilder) add(e Entry) error {
	if e.ChrName != b.chr {
		b.flushContig()
		if _, found := b.u.nameMap[e.ChrName]; found {
			return fmt.Errorf("interval: unsorted input (split contig %v)", e.ChrName)
		}
		b.chr = e.ChrName
		b.endpoints = []PosType{}
		b.prevStart, b.prevEnd = -1, -1
	}
	if e.End == e.Start0 {
		return nil
	}
	switch {
	case b.prevEnd == -1:
		b.prevStart, b.prevEnd = e.Start0, e.End
		b.totBases += int(e.End - e.Start0)
	case e.Start0 > b.prevEnd:
		b.endpoints = append(b.endpoints, b.prevStart, b.prevEnd)
		b.prevStart, b.prevEnd = e.Start0, e.End
		b.totBases += int(e.End - e.Start0)
	case e.Start0 < b.prevStart:
		return fmt.Errorf("interval: unsorted input on contig %v at %d", e.ChrName, e.Start0)
	case e.End > b.prevEnd:
		// Overlapping or touching; merge.
		b.totBases += int(e.End - b.prevEnd)
		b.prevEnd = e.End
	}
	return nil
}

func (b *unionBuilder) finish() BEDUnion {
	b.flushContig()
	return b.u
}

// NewBEDUnion loads a BED file, merging touching and overlapping intervals
// and dropping empty ones.  Lines may come in any order, and a contig's
// intervals may be split across the file.  Columns past the third are
// ignored.
func NewBEDUnion(reader io.Reader, opts NewBEDOpts) (BEDUnion, error) {
	entries, err := LoadEntries(reader, opts)
	if err != nil {
		return BEDUnion{}, err
	}
	return NewBEDUnionFromEntries(entries)
}

// NewBEDUnionFromPath is NewBEDUnion on a (possibly gzipped) path.
func NewBEDUnionFromPath(path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	ctx := vcontext.Background()
	var in *util.Input
	if in, err = util.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if bedUnion, err = NewBEDUnion(in, opts); err != nil {
		err = fmt.Errorf("%s: %v", path, err)
	}
	return
}

// NewBEDUnionFromEntries builds a BEDUnion from entries in any order.  The
// slice is not modified.
func NewBEDUnionFromEntries(entries []Entry) (BEDUnion, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ChrName != sorted[j].ChrName {
			return sorted[i].ChrName < sorted[j].ChrName
		}
		return sorted[i].Start0 < sorted[j].Start0
	})
	b := newUnionBuilder()
	annotated := 0
	for _, e := range sorted {
		if e.Start0 < 0 {
			return BEDUnion{}, fmt.Errorf("interval: negative start coordinate %d", e.Start0)
		}
		if e.End < e.Start0 || e.End >= PosTypeMax {
			return BEDUnion{}, fmt.Errorf("interval: invalid coordinate pair [%d, %d)", e.Start0, e.End)
		}
		if err := b.add(e); err != nil {
			return BEDUnion{}, err
		}
		annotated += e.Len()
	}
	log.Printf("BED loaded, %d interval(s) spanning %d base(s), %d base(s) covered.", len(entries), annotated, b.totBases)
	return b.finish(), nil
}
