package schoof

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/schoof/algebra"
	"github.com/vocdoni/schoof/curve"
)

// traceMod computes the Frobenius trace of the curve modulo the small prime
// l by solving the characteristic equation pi^2 - t*pi + p = 0 on the
// l-torsion.
func traceMod(ctx context.Context, crv *curve.Curve, l *big.Int) (*big.Int, error) {
	if l.Cmp(big.NewInt(2)) == 0 {
		return traceParity(crv)
	}
	return traceModOdd(ctx, crv, l)
}

// traceParity decides t mod 2. The group order p+1-t is even exactly when
// the curve has a rational 2-torsion point, i.e. when x^3+Ax+B has a root
// in GF(p); that is the case iff gcd(x^p - x, f) is non-trivial, with x^p
// computed by exponentiation modulo f. p+1 is even, so an even order means
// t ≡ 0 and an odd one t ≡ 1.
func traceParity(crv *curve.Curve) (*big.Int, error) {
	f := crv.RHS()
	qr, err := algebra.NewQuotientRing(f.Ring(), f)
	if err != nil {
		return nil, fmt.Errorf("2-torsion ring: %w", err)
	}
	xp := qr.X().Exp(crv.P())
	diff := xp.Sub(qr.X()).(*algebra.QuotientElement).Rep()
	if diff.IsZero() {
		// f divides x^p - x: every root of f is rational.
		return big.NewInt(0), nil
	}
	g, err := f.GCD(diff)
	if err != nil {
		return nil, fmt.Errorf("2-torsion gcd: %w", err)
	}
	if g.Degree() > 0 {
		return big.NewInt(0), nil
	}
	// A cubic without rational roots; no 2-torsion.
	return big.NewInt(1), nil
}

// torsionTower carries the nested rings the odd-l solver computes in:
// R = GF(p)[x]/(h) for a divisor h of the l-th division polynomial, and
// S = R[y]/(y^2 - f) adjoining a genuine y coordinate. The generic
// l-torsion point is P = (x, y) with both coordinates in S, so the one
// group law of the curve package applies to it unchanged.
type torsionTower struct {
	group *curve.Group
	x, y  *algebra.QuotientElement
}

func newTorsionTower(crv *curve.Curve, h *algebra.Polynomial) (*torsionTower, error) {
	px := h.Ring()
	r, err := algebra.NewQuotientRing(px, h)
	if err != nil {
		return nil, fmt.Errorf("torsion ring mod %s: %w", h, err)
	}
	fR := r.Element(crv.RHS())
	py := algebra.NewPolynomialRing(r)
	s, err := algebra.NewQuotientRing(py, py.New(fR.Neg(), r.Zero(), r.One()))
	if err != nil {
		return nil, fmt.Errorf("y-adjoined ring: %w", err)
	}
	aS := s.Element(py.New(r.Element(px.New(crv.A()))))
	bS := s.Element(py.New(r.Element(px.New(crv.B()))))
	return &torsionTower{
		group: curve.NewGroup(s, aS, bS),
		x:     s.Element(py.New(r.X())),
		y:     s.X(),
	}, nil
}

// traceModOdd scans the candidates tau in [0, l) for the one satisfying
// pi^2(P) + [p mod l]P = tau*pi(P) on the generic l-torsion point. Any
// NotInvertibleError raised along the way is a zero-divisor witness: its
// representative shares a factor with the current modulus h, so h shrinks
// to that factor and the computation restarts in the smaller ring. The
// degree of h strictly decreases, which bounds the restarts.
func traceModOdd(ctx context.Context, crv *curve.Curve, l *big.Int) (*big.Int, error) {
	psi, err := crv.DivisionPolynomial(int(l.Int64()))
	if err != nil {
		return nil, err
	}
	h, err := psi.Monic()
	if err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := solveInTower(ctx, crv, h, l)
		if err == nil {
			return t, nil
		}
		var nie *algebra.NotInvertibleError
		if !errors.As(err, &nie) {
			return nil, err
		}
		h, err = modulusFactor(h, nie.Element)
		if err != nil {
			return nil, fmt.Errorf("trace mod %s recovery: %w", l, err)
		}
	}
}

func solveInTower(ctx context.Context, crv *curve.Curve, h *algebra.Polynomial, l *big.Int) (*big.Int, error) {
	tw, err := newTorsionTower(crv, h)
	if err != nil {
		return nil, err
	}
	p := crv.P()
	pSquared := new(big.Int).Mul(p, p)
	// pi = (x^p, y^p) and pi^2 = (x^{p^2}, y^{p^2}); x powers stay inside R,
	// y powers fold through y^2 = f.
	pi := tw.group.Affine(tw.x.Exp(p), tw.y.Exp(p))
	pi2 := tw.group.Affine(tw.x.Exp(pSquared), tw.y.Exp(pSquared))
	kP, err := tw.group.ScalarMul(new(big.Int).Mod(p, l), tw.group.Affine(tw.x, tw.y))
	if err != nil {
		return nil, err
	}
	lhs, err := tw.group.Add(pi2, kP)
	if err != nil {
		return nil, err
	}
	if lhs.IsIdentity() {
		return big.NewInt(0), nil
	}
	// Walk tau*pi(P) by repeated addition; comparing both coordinates
	// resolves the sign, so tau and l-tau are never confused.
	acc := tw.group.Identity()
	one := big.NewInt(1)
	for tau := big.NewInt(1); tau.Cmp(l) < 0; tau.Add(tau, one) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		acc, err = tw.group.Add(acc, pi)
		if err != nil {
			return nil, err
		}
		if lhs.Equal(acc) {
			return new(big.Int).Set(tau), nil
		}
	}
	return nil, fmt.Errorf("%w: l=%s", ErrNoCandidateFound, l)
}

// modulusFactor turns a zero-divisor witness raised in the tower over h
// into a proper monic divisor of h. A witness from R carries the shared
// factor in its own representative; a witness from S is folded down to R
// through the quadratic norm c0^2 - c1^2*f of its y-expansion c0 + c1*y.
func modulusFactor(h *algebra.Polynomial, witness algebra.Element) (*algebra.Polynomial, error) {
	qe, ok := witness.(*algebra.QuotientElement)
	if !ok {
		return nil, fmt.Errorf("unexpected non-invertible %T", witness)
	}
	var rep *algebra.Polynomial
	switch qe.Ring().PolynomialRing().BaseRing().(type) {
	case *algebra.PrimeField:
		rep = qe.Rep()
	case *algebra.QuotientRing:
		c0 := qe.Rep().Coeff(0)
		c1 := qe.Rep().Coeff(1)
		negF := qe.Ring().Modulus().Coeff(0)
		norm := c0.Mul(c0).Add(c1.Mul(c1).Mul(negF))
		rep = norm.(*algebra.QuotientElement).Rep()
	default:
		return nil, fmt.Errorf("unexpected non-invertible %T", witness)
	}
	g, err := h.GCD(rep)
	if err != nil {
		return nil, err
	}
	if g.Degree() < 1 || g.Degree() >= h.Degree() {
		return nil, fmt.Errorf("witness %s yields no proper factor of the torsion modulus", witness)
	}
	return g, nil
}