package schoof

import (
	"context"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/schoof/curve"
)

// smallCurves is the verification corpus: non-singular curves small enough
// for the brute-force enumeration oracle.
var smallCurves = []struct{ p, a, b int64 }{
	{5, 1, 1},
	{7, 2, 3},
	{11, 4, 7},
	{13, 1, 6},
	{23, 4, 2},
	{31, 2, 7},
	{47, 11, 19},
	{101, 5, 12},
	{199, 0, 7},
	{1009, 71, 602},
}

func TestCountPointsKnownCurves(t *testing.T) {
	ctx := context.Background()
	for _, strategy := range []Strategy{StrategyNaive, StrategyReduced} {
		n, err := CountPoints(ctx, big.NewInt(23), big.NewInt(4), big.NewInt(2), strategy)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, n.Int64(), qt.Equals, int64(21), qt.Commentf("strategy %s", strategy))

		n, err = CountPoints(ctx, big.NewInt(5), big.NewInt(1), big.NewInt(1), strategy)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, n.Int64(), qt.Equals, int64(9), qt.Commentf("strategy %s", strategy))
	}
}

func TestStrategiesMatchEnumerationOracle(t *testing.T) {
	ctx := context.Background()
	for _, tc := range smallCurves {
		crv, err := curve.New(big.NewInt(tc.p), big.NewInt(tc.a), big.NewInt(tc.b))
		qt.Assert(t, err, qt.IsNil)
		want := crv.OrderByEnumeration()

		naive, err := Count(ctx, crv, Options{Strategy: StrategyNaive})
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, naive.Cmp(want), qt.Equals, 0,
			qt.Commentf("naive on p=%d a=%d b=%d: got %s want %s", tc.p, tc.a, tc.b, naive, want))

		reduced, err := Count(ctx, crv, Options{Strategy: StrategyReduced})
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, reduced.Cmp(want), qt.Equals, 0,
			qt.Commentf("reduced on p=%d a=%d b=%d: got %s want %s", tc.p, tc.a, tc.b, reduced, want))
	}
}

func TestTraceWithinHasseBound(t *testing.T) {
	ctx := context.Background()
	for _, tc := range smallCurves {
		n, err := CountPoints(ctx, big.NewInt(tc.p), big.NewInt(tc.a), big.NewInt(tc.b), StrategyNaive)
		qt.Assert(t, err, qt.IsNil)
		// |t| <= 2*sqrt(p), checked as t^2 <= 4p.
		tr := big.NewInt(tc.p + 1)
		tr.Sub(tr, n)
		qt.Assert(t, new(big.Int).Mul(tr, tr).Cmp(big.NewInt(4*tc.p)) <= 0, qt.IsTrue,
			qt.Commentf("p=%d trace %s", tc.p, tr))
	}
}

func TestCountSingularCurve(t *testing.T) {
	_, err := CountPoints(context.Background(), big.NewInt(23), big.NewInt(-3), big.NewInt(2), StrategyNaive)
	qt.Assert(t, err, qt.ErrorIs, curve.ErrSingularCurve)
}

func TestCountUnknownStrategy(t *testing.T) {
	crv, err := curve.New(big.NewInt(23), big.NewInt(4), big.NewInt(2))
	qt.Assert(t, err, qt.IsNil)
	_, err = Count(context.Background(), crv, Options{Strategy: "bogus"})
	qt.Assert(t, err, qt.ErrorIs, ErrUnknownStrategy)
}

func TestCountHonorsCancellation(t *testing.T) {
	crv, err := curve.New(big.NewInt(1009), big.NewInt(71), big.NewInt(602))
	qt.Assert(t, err, qt.IsNil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Count(ctx, crv, Options{Strategy: StrategyReduced})
	qt.Assert(t, err, qt.ErrorIs, context.Canceled)
}

func TestOnResidueObservesEveryPrime(t *testing.T) {
	// The trace of y^2 = x^3+4x+2 over GF(23) is 3; every reported residue
	// must agree with it, and the naive prime set {2, 3, 5} is fixed by the
	// bound (2*3*5)^2 > 16*23.
	crv, err := curve.New(big.NewInt(23), big.NewInt(4), big.NewInt(2))
	qt.Assert(t, err, qt.IsNil)
	seen := map[int64]int64{}
	n, err := Count(context.Background(), crv, Options{
		Strategy: StrategyNaive,
		OnResidue: func(r TraceResidue) {
			seen[r.L.Int64()] = r.T.Int64()
		},
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, n.Int64(), qt.Equals, int64(21))
	qt.Assert(t, seen, qt.DeepEquals, map[int64]int64{2: 1, 3: 0, 5: 3})
}

func TestResiduesStream(t *testing.T) {
	crv, err := curve.New(big.NewInt(23), big.NewInt(4), big.NewInt(2))
	qt.Assert(t, err, qt.IsNil)
	var got []TraceResidue
	for r := range Residues(context.Background(), crv, StrategyNaive) {
		got = append(got, r)
	}
	qt.Assert(t, len(got), qt.Equals, 3)
	for _, r := range got {
		qt.Assert(t, r.T.Cmp(r.L) < 0, qt.IsTrue)
		// t = 3, so t mod l must match each reported residue.
		qt.Assert(t, r.T.Int64(), qt.Equals, new(big.Int).Mod(big.NewInt(3), r.L).Int64())
	}
}

func TestCountWorkersOne(t *testing.T) {
	// A single worker must agree with the default concurrent run.
	crv, err := curve.New(big.NewInt(101), big.NewInt(5), big.NewInt(12))
	qt.Assert(t, err, qt.IsNil)
	serial, err := Count(context.Background(), crv, Options{Strategy: StrategyNaive, Workers: 1})
	qt.Assert(t, err, qt.IsNil)
	parallel, err := Count(context.Background(), crv, Options{Strategy: StrategyNaive})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, serial.Cmp(parallel), qt.Equals, 0)
}