package overlap

import (
	"math/rand"
	"testing"

	"github.com/grailbio/sigrepeat/encoding/eventalign"
	"github.com/grailbio/sigrepeat/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	events := []eventalign.Event{{RefPos: 0, Start: 0, End: 10}, {RefPos: 1, Start: 10, End: 15}, {RefPos: 2, Start: 20, End: 25}}
	computed := mask.Pointwise{Pred: func(p int) bool { return p == 2 }}.Project(events, 30)
	gt := make([]bool, 30)
	mask.Fill(gt, 20, 25)
	w := mask.Window{Start: 10, End: 25}

	s, err := Compute(computed, gt, w)
	require.NoError(t, err)
	assert.Equal(t, Stats{GT: 5, Computed: 10, Intersection: 5, Union: 10, Length: 15}, s)
	assert.NoError(t, s.Validate())

	v, ok := s.IoU().Value()
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	v, ok = s.Sensitivity().Value()
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	v, ok = s.Specificity().Value()
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, "0.500000", s.IoU().String())
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute(make([]bool, 3), make([]bool, 4), mask.Window{Start: 0, End: 3})
	assert.Error(t, err)
	_, err = Compute(make([]bool, 3), make([]bool, 3), mask.Window{Start: 1, End: 4})
	assert.Error(t, err)
	_, err = Compute(make([]bool, 3), make([]bool, 3), mask.Window{Start: 2, End: 1})
	assert.Error(t, err)
}

func TestUndefinedRatios(t *testing.T) {
	// Nothing marked anywhere: IoU and sensitivity have zero denominators.
	s, err := Compute(make([]bool, 10), make([]bool, 10), mask.Window{Start: 0, End: 10})
	require.NoError(t, err)
	_, ok := s.IoU().Value()
	assert.False(t, ok)
	_, ok = s.Sensitivity().Value()
	assert.False(t, ok)
	assert.Equal(t, "NA", s.IoU().String())
	v, ok := s.Specificity().Value()
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	// Everything is ground truth: specificity is undefined.
	all := make([]bool, 4)
	mask.Fill(all, 0, 4)
	s, err = Compute(all, all, mask.Window{Start: 0, End: 4})
	require.NoError(t, err)
	_, ok = s.Specificity().Value()
	assert.False(t, ok)

	// An empty window is valid and yields all-zero counts.
	s, err = Compute(all, all, mask.Window{Start: 2, End: 2})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s)
}

func randomStats(r *rand.Rand) Stats {
	n := 1 + r.Intn(50)
	computed, gt := make([]bool, n), make([]bool, n)
	for i := range computed {
		computed[i] = r.Intn(2) == 0
		gt[i] = r.Intn(3) == 0
	}
	s, err := Compute(computed, gt, mask.Window{Start: r.Intn(n), End: n})
	if err != nil {
		panic(err)
	}
	return s
}

func TestMergeAlgebra(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		a, b, c := randomStats(r), randomStats(r), randomStats(r)
		assert.Equal(t, a.Merge(b), b.Merge(a))
		assert.Equal(t, a.Merge(b).Merge(c), a.Merge(b.Merge(c)))
		assert.Equal(t, a, a.Merge(Stats{}))
		assert.NoError(t, a.Merge(b).Merge(c).Validate())
	}
}

func TestCumulativeIsMicroAverage(t *testing.T) {
	// Per-sample IoUs are 1/1 and 0/3; their mean is 0.5, but the corpus IoU
	// is 1/4.
	a := Stats{GT: 1, Computed: 1, Intersection: 1, Union: 1, Length: 10}
	b := Stats{GT: 3, Computed: 0, Intersection: 0, Union: 3, Length: 10}
	total := a.Merge(b)
	v, ok := total.IoU().Value()
	require.True(t, ok)
	assert.Equal(t, 0.25, v)
}

func TestValidate(t *testing.T) {
	bad := []Stats{
		{GT: -1},
		{GT: 1, Computed: 1, Intersection: 2, Union: 0, Length: 5},
		{GT: 2, Computed: 2, Intersection: 1, Union: 3, Length: 2},
		{GT: 2, Computed: 2, Intersection: 1, Union: 2, Length: 9},
	}
	for _, s := range bad {
		assert.Error(t, s.Validate(), "%+v", s)
	}
}
