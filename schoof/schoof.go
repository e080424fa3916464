// Package schoof counts the rational points of an elliptic curve over a
// prime field in polynomial time. Per small prime l it solves the Frobenius
// characteristic equation pi^2 - t*pi + p = 0 symbolically on the l-torsion
// and recombines the trace residues by the Chinese remainder theorem; the
// group order is then N = p + 1 - t.
package schoof

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync"

	"github.com/vocdoni/schoof/curve"
)

var (
	// ErrNoCandidateFound is returned when no residue in [0, l) satisfies
	// the characteristic equation, which indicates a broken precondition
	// (a composite characteristic, typically).
	ErrNoCandidateFound = errors.New("no trace candidate satisfies the characteristic equation")

	// ErrInsufficientModulus is returned when trace reconstruction is
	// attempted before the accumulated CRT modulus exceeds the Hasse
	// interval width.
	ErrInsufficientModulus = errors.New("accumulated modulus does not cover the Hasse interval")

	// ErrUnknownStrategy is returned for a Strategy value that is neither
	// naive nor reduced.
	ErrUnknownStrategy = errors.New("unknown counting strategy")
)

// Strategy selects how per-prime residues are scheduled and when the
// computation stops.
type Strategy string

const (
	// StrategyNaive fixes the prime set up front (product > 4*sqrt(p)),
	// solves the primes concurrently and recombines once at the end.
	StrategyNaive Strategy = "naive"

	// StrategyReduced solves primes sequentially smallest-first, folding
	// each residue into a running CRT state and stopping as soon as a
	// single trace candidate survives inside the Hasse interval.
	StrategyReduced Strategy = "reduced"
)

// TraceResidue is one solved congruence: the Frobenius trace T modulo the
// small prime L.
type TraceResidue struct {
	L *big.Int
	T *big.Int
}

// Options tunes a Count run. The zero value selects the naive strategy
// with one solver per CPU and no progress callback.
type Options struct {
	Strategy Strategy

	// OnResidue, when set, is invoked once per solved residue in
	// completion order, from the orchestrating goroutine.
	OnResidue func(TraceResidue)

	// Workers caps the concurrent per-prime solvers of the naive strategy;
	// zero means GOMAXPROCS. The reduced strategy is sequential by nature.
	Workers int
}

// Count returns the number of rational points of the curve, including the
// point at infinity. Cancellation is cooperative: the context is checked
// between primes and inside the candidate scans.
func Count(ctx context.Context, crv *curve.Curve, opts Options) (*big.Int, error) {
	var t *big.Int
	var err error
	switch opts.Strategy {
	case StrategyNaive, "":
		t, err = traceNaive(ctx, crv, opts)
	case StrategyReduced:
		t, err = traceReduced(ctx, crv, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, opts.Strategy)
	}
	if err != nil {
		return nil, err
	}
	// N = p + 1 - t
	n := crv.P()
	n.Add(n, big.NewInt(1))
	return n.Sub(n, t), nil
}

// CountPoints is the convenience form of Count: it builds the curve
// y^2 = x^3 + ax + b over GF(p) and counts its points with the given
// strategy.
func CountPoints(ctx context.Context, p, a, b *big.Int, strategy Strategy) (*big.Int, error) {
	crv, err := curve.New(p, a, b)
	if err != nil {
		return nil, err
	}
	return Count(ctx, crv, Options{Strategy: strategy})
}

// Residues streams the per-prime trace residues produced while counting the
// curve with the given strategy. The channel is lazy, finite and closed
// when the strategy's stopping rule is met, the context is cancelled or the
// solver fails; callers that need the failure itself should use Count with
// Options.OnResidue instead.
func Residues(ctx context.Context, crv *curve.Curve, strategy Strategy) <-chan TraceResidue {
	out := make(chan TraceResidue)
	go func() {
		defer close(out)
		_, _ = Count(ctx, crv, Options{
			Strategy: strategy,
			OnResidue: func(r TraceResidue) {
				select {
				case out <- r:
				case <-ctx.Done():
				}
			},
		})
	}()
	return out
}

// traceNaive computes the full fixed prime set concurrently and performs a
// single CRT reconstruction at the end.
func traceNaive(ctx context.Context, crv *curve.Curve, opts Options) (*big.Int, error) {
	p := crv.P()
	primes := tracePrimes(p)

	type outcome struct {
		res TraceResidue
		err error
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(primes) {
		workers = len(primes)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *big.Int)
	results := make(chan outcome, len(primes))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range jobs {
				t, err := traceMod(ctx, crv, l)
				if err != nil {
					results <- outcome{err: fmt.Errorf("trace mod %s: %w", l, err)}
					return
				}
				results <- outcome{res: TraceResidue{L: l, T: t}}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, l := range primes {
			select {
			case jobs <- l:
			case <-ctx.Done():
				return
			}
		}
	}()

	acc := newResidueAccumulator()
	for range primes {
		o := <-results
		if o.err != nil {
			cancel()
			wg.Wait()
			return nil, o.err
		}
		if opts.OnResidue != nil {
			opts.OnResidue(o.res)
		}
		acc.add(o.res.T, o.res.L)
	}
	wg.Wait()
	return acc.trace(p)
}

// traceReduced solves primes one by one, keeping a running CRT state and
// stopping early once the Hasse interval admits a single candidate. For
// most curves this needs fewer and smaller primes than the fixed bound.
func traceReduced(ctx context.Context, crv *curve.Curve, opts Options) (*big.Int, error) {
	p := crv.P()
	acc := newResidueAccumulator()
	l := big.NewInt(1)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l = nextPrime(l, p)
		t, err := traceMod(ctx, crv, l)
		if err != nil {
			return nil, fmt.Errorf("trace mod %s: %w", l, err)
		}
		if opts.OnResidue != nil {
			opts.OnResidue(TraceResidue{L: new(big.Int).Set(l), T: t})
		}
		acc.add(t, l)
		switch candidates := acc.hasseCandidates(p); len(candidates) {
		case 1:
			return candidates[0], nil
		case 0:
			return nil, fmt.Errorf("%w: after modulus %s", ErrNoCandidateFound, acc.m)
		}
	}
}