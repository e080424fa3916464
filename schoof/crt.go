package schoof

import (
	"fmt"
	"math/big"
)

// residueAccumulator folds per-prime congruences t ≡ r_l (mod l) into a
// single congruence t ≡ r (mod m) by pairwise Chinese remaindering. The
// moduli are distinct primes, so every fold meets a coprime pair.
type residueAccumulator struct {
	r, m *big.Int
}

func newResidueAccumulator() *residueAccumulator {
	return &residueAccumulator{r: big.NewInt(0), m: big.NewInt(1)}
}

// add folds in the congruence t ≡ rl (mod l). The combined residue is the
// unique solution mod m*l of the current congruence and the new one.
func (a *residueAccumulator) add(rl, l *big.Int) {
	minv := new(big.Int).ModInverse(a.m, l)
	k := new(big.Int).Sub(rl, a.r)
	k.Mul(k, minv).Mod(k, l)
	a.r.Add(a.r, k.Mul(k, a.m))
	a.m.Mul(a.m, l)
}

// sufficient reports whether the accumulated modulus exceeds the width of
// the Hasse interval. The comparison m^2 > 16p is exact integer arithmetic
// for m > 4*sqrt(p).
func (a *residueAccumulator) sufficient(p *big.Int) bool {
	return new(big.Int).Mul(a.m, a.m).Cmp(new(big.Int).Lsh(p, 4)) > 0
}

// trace reconstructs the Frobenius trace: the centered representative of
// r mod m, which is the only candidate left inside |t| <= 2*sqrt(p) once
// the modulus is sufficient.
func (a *residueAccumulator) trace(p *big.Int) (*big.Int, error) {
	if !a.sufficient(p) {
		return nil, fmt.Errorf("%w: modulus %s for p=%s", ErrInsufficientModulus, a.m, p)
	}
	t := new(big.Int).Mod(a.r, a.m)
	if new(big.Int).Lsh(t, 1).Cmp(a.m) >= 0 {
		t.Sub(t, a.m)
	}
	return t, nil
}

// hasseCandidates lists every integer t ≡ r (mod m) with t^2 <= 4p: the
// trace candidates still alive inside the Hasse interval. The reduced
// strategy stops as soon as exactly one survives.
func (a *residueAccumulator) hasseCandidates(p *big.Int) []*big.Int {
	s := new(big.Int).Sqrt(new(big.Int).Lsh(p, 2)) // floor(2*sqrt(p))
	r := new(big.Int).Mod(a.r, a.m)
	// k ranges over ceil((-s-r)/m) .. floor((s-r)/m); big.Int division
	// floors for a positive divisor.
	kmin := new(big.Int).Sub(new(big.Int).Neg(s), r)
	kmin.Add(kmin, new(big.Int).Sub(a.m, big.NewInt(1))).Div(kmin, a.m)
	kmax := new(big.Int).Sub(s, r)
	kmax.Div(kmax, a.m)
	var out []*big.Int
	one := big.NewInt(1)
	for k := new(big.Int).Set(kmin); k.Cmp(kmax) <= 0; k.Add(k, one) {
		out = append(out, new(big.Int).Add(r, new(big.Int).Mul(k, a.m)))
	}
	return out
}