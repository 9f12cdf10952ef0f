package significance

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

// Precision is the mantissa size in bits used for all intermediate values
const Precision = 128

var log10of2 = math.Log10(2)

// Score is the upper tail probability of seeing r or more joint occurrences of
// two items with marginal counts n1 >= n2 among N occasions, when the items
// are placed independently at random.
type Score struct {
	P float64
	// Log10P stays finite even where P underflows to 0
	Log10P float64
}

// Significance against the reference probability p0, positive when P < p0
func (s Score) Significance(p0 float64) float64 {
	return math.Log10(p0) - s.Log10P
}

func checkArguments(N, n1, n2, r int64) error {
	if r < 0 || n2 < r || n1 < n2 || N < n1 {
		return errors.Wrapf(ErrInvalidArguments, "need N >= n1 >= n2 >= r >= 0, got N=%v n1=%v n2=%v r=%v", N, n1, n2, r)
	}
	return nil
}

func newFloat() *big.Float {
	return new(big.Float).SetPrec(Precision)
}

// TailSum returns the exact null model p-value at Precision bits.
//
// Term k of the sum is the chance of exactly k joint occurrences. The k = n2
// term is prod_{j<n2} (n1-j)/(N-j) and each lower term follows from the one
// above through t(k-1) = t(k) * k*(N-n1-n2+k) / ((n1-k+1)*(n2-k+1)), which is
// zero below the support of the distribution.
//
// Building the k = n2 term costs O(n2) multiplications per call, also when r
// is close to n2.
func TailSum(N, n1, n2, r int64) (*big.Float, error) {
	if err := checkArguments(N, n1, n2, r); err != nil {
		return nil, err
	}

	term := newFloat().SetInt64(1)
	x := newFloat()
	for j := int64(0); j < n2; j++ {
		term.Mul(term, x.SetInt64(n1-j))
		term.Quo(term, x.SetInt64(N-j))
	}

	sum := newFloat().Set(term)
	for k := n2; k > r; k-- {
		free := N - n1 - n2 + k
		if free <= 0 {
			break
		}
		term.Mul(term, x.SetInt64(k))
		term.Mul(term, x.SetInt64(free))
		term.Quo(term, x.SetInt64(n1-k+1))
		term.Quo(term, x.SetInt64(n2-k+1))
		sum.Add(sum, term)
	}

	if sum.Sign() <= 0 {
		return nil, errors.Wrapf(ErrUnderflow, "N=%v n1=%v n2=%v r=%v", N, n1, n2, r)
	}
	if one := newFloat().SetInt64(1); sum.Cmp(one) > 0 {
		sum.Set(one)
	}
	return sum, nil
}

// Log10 of a positive big.Float, computed from mantissa and binary exponent
func Log10(f *big.Float) float64 {
	mant := new(big.Float)
	exp := f.MantExp(mant)
	m, _ := mant.Float64()
	return math.Log10(m) + float64(exp)*log10of2
}

func ScoreOf(N, n1, n2, r int64) (Score, error) {
	sum, err := TailSum(N, n1, n2, r)
	if err != nil {
		return Score{}, err
	}
	p, _ := sum.Float64()
	return Score{P: p, Log10P: Log10(sum)}, nil
}

// PValue is the probability of r or more joint occurrences, see Score
func PValue(N, n1, n2, r int64) (float64, error) {
	s, err := ScoreOf(N, n1, n2, r)
	return s.P, err
}
