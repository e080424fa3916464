// Package curve implements short Weierstrass elliptic curves y^2 = x^3+Ax+B
// over a prime field, with a group law written once against the generic ring
// contract of the algebra package. The same addition formulas therefore
// serve ordinary points with GF(p) coordinates and the symbolic torsion
// points the Schoof solver builds over quotient rings.
package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/schoof/algebra"
)

var (
	// ErrSingularCurve is returned when the discriminant 4A^3+27B^2 is zero,
	// so the Weierstrass equation does not define an elliptic curve.
	ErrSingularCurve = errors.New("singular curve: discriminant is zero")

	// ErrInvalidIndex is returned for a malformed division polynomial
	// request.
	ErrInvalidIndex = errors.New("invalid division polynomial index")
)

// Curve is an immutable descriptor of an elliptic curve over GF(p). It owns
// the prime field and the memoized division polynomial table, which is
// shared read-mostly across concurrently executing solver instances.
type Curve struct {
	p        *big.Int
	field    *algebra.PrimeField
	a, b     *algebra.FieldElement
	divpolys *DivPolyTable
}

// New returns the curve y^2 = x^3 + ax + b over GF(p). The modulus must be
// a prime of at least 5 (short Weierstrass form degenerates in
// characteristic 2 and 3) and the curve must be non-singular.
func New(p, a, b *big.Int) (*Curve, error) {
	if p == nil || p.Cmp(big.NewInt(5)) < 0 {
		return nil, fmt.Errorf("%w: characteristic must be a prime >= 5", algebra.ErrInvalidModulus)
	}
	field, err := algebra.NewPrimeField(p)
	if err != nil {
		return nil, err
	}
	ae := field.Element(a)
	be := field.Element(b)
	// 4a^3 + 27b^2 != 0.
	disc := field.FromInt(4).Mul(ae).Mul(ae).Mul(ae).
		Add(field.FromInt(27).Mul(be).Mul(be))
	if disc.IsZero() {
		return nil, ErrSingularCurve
	}
	c := &Curve{p: new(big.Int).Set(p), field: field, a: ae, b: be}
	c.divpolys = newDivPolyTable(c)
	return c, nil
}

// P returns a copy of the field characteristic.
func (c *Curve) P() *big.Int { return new(big.Int).Set(c.p) }

// Field returns the prime field the curve is defined over.
func (c *Curve) Field() *algebra.PrimeField { return c.field }

// A returns the curve coefficient A as a field element.
func (c *Curve) A() *algebra.FieldElement { return c.a }

// B returns the curve coefficient B as a field element.
func (c *Curve) B() *algebra.FieldElement { return c.b }

// RHS returns the right-hand side x^3 + Ax + B as a polynomial over GF(p).
func (c *Curve) RHS() *algebra.Polynomial {
	ring := algebra.NewPolynomialRing(c.field)
	return ring.New(c.b, c.a, c.field.Zero(), c.field.One())
}

// DivisionPolynomial returns the n-th division polynomial in the y-folded
// representation (see DivPolyTable), memoized across calls.
func (c *Curve) DivisionPolynomial(n int) (*algebra.Polynomial, error) {
	return c.divpolys.Psi(n)
}

// Group returns the point group with coordinates in the curve's own field.
func (c *Curve) Group() *Group {
	return NewGroup(c.field, c.a, c.b)
}

// OrderByEnumeration counts the points of the curve by scanning every x and
// testing whether x^3+Ax+B is a square, via Euler's criterion. It takes
// Theta(p) field exponentiations and exists as a verification oracle for
// small fields, not as a counting strategy.
func (c *Curve) OrderByEnumeration() *big.Int {
	exp := new(big.Int).Rsh(new(big.Int).Sub(c.p, big.NewInt(1)), 1) // (p-1)/2
	f := c.RHS()
	n := big.NewInt(1) // the point at infinity
	one := big.NewInt(1)
	pm1 := new(big.Int).Sub(c.p, big.NewInt(1))
	for x := big.NewInt(0); x.Cmp(c.p) < 0; x.Add(x, one) {
		y2 := f.Eval(c.field.Element(x)).(*algebra.FieldElement).Value()
		if y2.Sign() == 0 {
			n.Add(n, one) // one point with y = 0
			continue
		}
		legendre := new(big.Int).Exp(y2, exp, c.p)
		if legendre.Cmp(one) == 0 {
			n.Add(n, big.NewInt(2)) // two points (x, ±y)
		} else if legendre.Cmp(pm1) != 0 {
			// Euler's criterion yields 0, 1 or p-1 for prime p.
			panic(fmt.Sprintf("euler criterion returned %s for %s mod %s", legendre, y2, c.p))
		}
	}
	return n
}

func (c *Curve) String() string {
	return fmt.Sprintf("y^2 = x^3 + %s*x + %s over %s", c.a, c.b, c.field)
}