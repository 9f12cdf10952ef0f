package significance

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// definition evaluates the tail sum term by term in exact rational arithmetic
func definition(N, n1, n2, r int64) *big.Rat {
	sum := new(big.Rat)
	for k := r; k <= n2; k++ {
		term := big.NewRat(1, 1)
		for j := int64(0); j < n2-k; j++ {
			term.Mul(term, big.NewRat(N-j-n1, N-j))
		}
		for j := int64(0); j < k; j++ {
			term.Mul(term, big.NewRat((n1-j)*(n2-j), (N-n2+k-j)*(k-j)))
		}
		sum.Add(sum, term)
	}
	return sum
}

// hypergeometricTail is P(X >= r) for X ~ Hypergeometric(N, n1, n2) from binomials
func hypergeometricTail(N, n1, n2, r int64) *big.Rat {
	var a, b, total big.Int
	total.Binomial(N, n2)
	sum := new(big.Rat)
	for k := r; k <= n2; k++ {
		if n2-k > N-n1 {
			continue
		}
		a.Binomial(n1, k)
		b.Binomial(N-n1, n2-k)
		num := new(big.Int).Mul(&a, &b)
		sum.Add(sum, new(big.Rat).SetFrac(num, &total))
	}
	return sum
}

var exactCases = []struct {
	N, n1, n2, r int64
}{
	{10, 5, 3, 1},
	{20, 10, 10, 5},
	{50, 20, 15, 0},
	{100, 30, 30, 12},
	{7, 7, 3, 2},
	{12, 8, 6, 2},
	{12, 8, 6, 5},
	{1, 1, 1, 1},
	{0, 0, 0, 0},
	{300, 120, 90, 60},
}

func relativeDiff(got float64, want *big.Rat) float64 {
	w, _ := want.Float64()
	if w == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-w) / w
}

func TestPValueMatchesDefinition(t *testing.T) {
	for _, tt := range exactCases {
		p, err := PValue(tt.N, tt.n1, tt.n2, tt.r)
		require.NoError(t, err)
		assert.Less(t, relativeDiff(p, definition(tt.N, tt.n1, tt.n2, tt.r)), 1e-12, "case %+v", tt)
		assert.Less(t, relativeDiff(p, hypergeometricTail(tt.N, tt.n1, tt.n2, tt.r)), 1e-12, "case %+v", tt)
	}
}

func TestPValueAtZeroIsOne(t *testing.T) {
	for _, tt := range exactCases {
		p, err := PValue(tt.N, tt.n1, tt.n2, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, p, 1e-12, "case %+v", tt)
	}
}

func TestPValueMonotone(t *testing.T) {
	const N, n1, n2 = 200, 60, 40
	last := math.Inf(1)
	var pmax float64
	for r := int64(0); r <= n2; r++ {
		p, err := PValue(N, n1, n2, r)
		require.NoError(t, err)
		assert.LessOrEqual(t, p, last, "r=%v", r)
		last = p
		if r == n2 {
			pmax = p
		}
	}
	for r := int64(0); r < n2; r++ {
		p, _ := PValue(N, n1, n2, r)
		assert.LessOrEqual(t, pmax, p)
	}
}

func TestScoreExample(t *testing.T) {
	strong, err := ScoreOf(1000, 100, 80, 50)
	require.NoError(t, err)
	assert.Greater(t, strong.P, 0.0)
	assert.Less(t, strong.P, 1e-6*1e-6)
	assert.Greater(t, strong.Significance(1e-6), 0.0)
	assert.InDelta(t, math.Log10(strong.P), strong.Log10P, 1e-9)

	weaker, err := ScoreOf(1000, 100, 80, 25)
	require.NoError(t, err)
	assert.Greater(t, weaker.P, strong.P)
	assert.Less(t, weaker.Significance(1e-6), strong.Significance(1e-6))
}

func TestScoreBeyondFloat64(t *testing.T) {
	s, err := ScoreOf(100000, 5000, 5000, 5000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.P)
	assert.False(t, math.IsInf(s.Log10P, 0))
	assert.Less(t, s.Log10P, -400.0)
	assert.Greater(t, s.Significance(1e-6), 400.0)
}

func TestPValueInvalidArguments(t *testing.T) {
	for _, tt := range []struct {
		N, n1, n2, r int64
	}{
		{10, 5, 6, 1},
		{10, 11, 5, 1},
		{10, 5, 3, 4},
		{10, 5, 3, -1},
	} {
		_, err := PValue(tt.N, tt.n1, tt.n2, tt.r)
		assert.ErrorIs(t, err, ErrInvalidArguments, "case %+v", tt)
	}
}

func TestLog10(t *testing.T) {
	for _, v := range []float64{1, 0.5, 1e-6, 3.7e-200, 123.25} {
		assert.InDelta(t, math.Log10(v), Log10(big.NewFloat(v)), 1e-12)
	}
}
