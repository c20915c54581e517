// Package overlap compares a computed repeat mask with ground truth inside an
// aligned window.
package overlap

import (
	"fmt"
	"strconv"

	"github.com/grailbio/sigrepeat/mask"
)

// Stats holds the raw overlap counts for one sample, or their sum over many.
// All ratios are derived from these counts, so corpus-level ratios are micro
// averages: sum of numerators over sum of denominators.
type Stats struct {
	// GT is the number of ground-truth repeat positions.
	GT int64
	// Computed is the number of computed repeat positions.
	Computed int64
	// Intersection counts positions marked in both masks.
	Intersection int64
	// Union counts positions marked in either mask.
	Union int64
	// Length is the number of positions compared.
	Length int64
}

// Merge returns the field-wise sum of s and o.
func (s Stats) Merge(o Stats) Stats {
	s.GT += o.GT
	s.Computed += o.Computed
	s.Intersection += o.Intersection
	s.Union += o.Union
	s.Length += o.Length
	return s
}

// Validate checks the relations every Stats value (and every sum of them)
// must satisfy.
func (s Stats) Validate() error {
	switch {
	case s.GT < 0 || s.Computed < 0 || s.Intersection < 0 || s.Union < 0 || s.Length < 0:
		return fmt.Errorf("overlap: negative count in %+v", s)
	case s.Intersection > s.GT || s.Intersection > s.Computed:
		return fmt.Errorf("overlap: intersection exceeds a mask count in %+v", s)
	case s.Union > s.Length || s.Union < s.GT || s.Union < s.Computed:
		return fmt.Errorf("overlap: union out of range in %+v", s)
	case s.GT+s.Computed != s.Intersection+s.Union:
		return fmt.Errorf("overlap: inconsistent counts in %+v", s)
	}
	return nil
}

// Compute counts the overlap of computed and gt inside w.  Both masks must
// cover the window.
func Compute(computed, gt []bool, w mask.Window) (Stats, error) {
	if len(computed) != len(gt) {
		return Stats{}, fmt.Errorf("overlap: mask lengths differ: computed %d, ground truth %d", len(computed), len(gt))
	}
	if w.Start < 0 || w.Start > w.End || w.End > len(gt) {
		return Stats{}, fmt.Errorf("overlap: window [%d, %d) outside masks of length %d", w.Start, w.End, len(gt))
	}
	s := Stats{Length: int64(w.Len())}
	for i := w.Start; i < w.End; i++ {
		c, g := computed[i], gt[i]
		if g {
			s.GT++
		}
		if c {
			s.Computed++
		}
		if c && g {
			s.Intersection++
		}
		if c || g {
			s.Union++
		}
	}
	return s, nil
}

// Ratio is a fraction that may be undefined (zero denominator).
type Ratio struct {
	Num, Den int64
}

// Value returns Num/Den, and false if Den is zero.
func (r Ratio) Value() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

// String renders the ratio with six decimals, or "NA" when undefined.
func (r Ratio) String() string {
	v, ok := r.Value()
	if !ok {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// IoU is Intersection / Union.
func (s Stats) IoU() Ratio {
	return Ratio{s.Intersection, s.Union}
}

// Sensitivity is Intersection / GT.
func (s Stats) Sensitivity() Ratio {
	return Ratio{s.Intersection, s.GT}
}

// Specificity is (Length - Union) / (Length - GT): the fraction of
// ground-truth negatives that the computed mask also left unmarked.
func (s Stats) Specificity() Ratio {
	return Ratio{s.Length - s.Union, s.Length - s.GT}
}
