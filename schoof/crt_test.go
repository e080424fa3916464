package schoof

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNextPrimeSkipsCharacteristic(t *testing.T) {
	p := big.NewInt(5)
	l := big.NewInt(1)
	var got []int64
	for i := 0; i < 5; i++ {
		l = nextPrime(l, p)
		got = append(got, l.Int64())
	}
	qt.Assert(t, got, qt.DeepEquals, []int64{2, 3, 7, 11, 13})
}

func TestTracePrimesBound(t *testing.T) {
	// p = 23: 4*sqrt(23) ~ 19.2, so 2*3 = 6 is not enough and 2*3*5 = 30 is.
	got := tracePrimes(big.NewInt(23))
	qt.Assert(t, len(got), qt.Equals, 3)
	qt.Assert(t, got[2].Int64(), qt.Equals, int64(5))

	// p = 5 must not appear in its own prime set.
	for _, l := range tracePrimes(big.NewInt(5)) {
		qt.Assert(t, l.Int64(), qt.Not(qt.Equals), int64(5))
	}
}

func TestResidueAccumulatorCombine(t *testing.T) {
	// t = 3: residues 1 mod 2, 0 mod 3, 3 mod 5 recombine to 3 mod 30.
	acc := newResidueAccumulator()
	acc.add(big.NewInt(1), big.NewInt(2))
	acc.add(big.NewInt(0), big.NewInt(3))
	acc.add(big.NewInt(3), big.NewInt(5))
	qt.Assert(t, acc.m.Int64(), qt.Equals, int64(30))
	qt.Assert(t, new(big.Int).Mod(acc.r, acc.m).Int64(), qt.Equals, int64(3))

	tr, err := acc.trace(big.NewInt(23))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, tr.Int64(), qt.Equals, int64(3))
}

func TestResidueAccumulatorCenteredRepresentative(t *testing.T) {
	// t = -3 over GF(5): residues 1 mod 2, 0 mod 3, 4 mod 7 give 39 mod 42,
	// whose centered representative is -3.
	acc := newResidueAccumulator()
	acc.add(big.NewInt(1), big.NewInt(2))
	acc.add(big.NewInt(0), big.NewInt(3))
	acc.add(big.NewInt(4), big.NewInt(7))
	tr, err := acc.trace(big.NewInt(5))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, tr.Int64(), qt.Equals, int64(-3))
}

func TestResidueAccumulatorInsufficient(t *testing.T) {
	acc := newResidueAccumulator()
	acc.add(big.NewInt(1), big.NewInt(2))
	_, err := acc.trace(big.NewInt(23))
	qt.Assert(t, err, qt.ErrorIs, ErrInsufficientModulus)
}

func TestHasseCandidates(t *testing.T) {
	// p = 5: the Hasse interval is |t| <= 4.
	acc := newResidueAccumulator()
	acc.add(big.NewInt(1), big.NewInt(2))
	var got []int64
	for _, c := range acc.hasseCandidates(big.NewInt(5)) {
		got = append(got, c.Int64())
	}
	qt.Assert(t, got, qt.DeepEquals, []int64{-3, -1, 1, 3})

	// Narrowing with 0 mod 3 leaves the pair ±3.
	acc.add(big.NewInt(0), big.NewInt(3))
	got = got[:0]
	for _, c := range acc.hasseCandidates(big.NewInt(5)) {
		got = append(got, c.Int64())
	}
	qt.Assert(t, got, qt.DeepEquals, []int64{-3, 3})
}