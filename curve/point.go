package curve

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/schoof/algebra"
)

// Group is the elliptic curve point group with coordinates in an arbitrary
// ring carrying images of the curve coefficients A and B. Over the curve's
// own prime field it is the ordinary rational point group; over the
// solver's quotient tower the very same formulas act on symbolic torsion
// points.
type Group struct {
	ring algebra.Ring
	a, b algebra.Element
}

// NewGroup returns the point group over the given coefficient ring. a and b
// must be the images of the curve coefficients in that ring.
func NewGroup(ring algebra.Ring, a, b algebra.Element) *Group {
	return &Group{ring: ring, a: a, b: b}
}

// Ring returns the coordinate ring.
func (g *Group) Ring() algebra.Ring { return g.ring }

// Point is either the identity (the point at infinity, neutral element of
// addition) or an affine pair (x, y) of coordinate ring elements.
type Point struct {
	x, y algebra.Element
	inf  bool
}

// Identity returns the point at infinity.
func (g *Group) Identity() Point { return Point{inf: true} }

// Affine returns the affine point (x, y). The curve equation is not
// re-validated here: symbolic quotient ring points satisfy it only as an
// algebraic identity, not coordinate-wise.
func (g *Group) Affine(x, y algebra.Element) Point {
	return Point{x: x, y: y}
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool { return p.inf }

// X returns the affine x coordinate; it panics on the identity.
func (p Point) X() algebra.Element {
	if p.inf {
		panic("identity point has no affine coordinates")
	}
	return p.x
}

// Y returns the affine y coordinate; it panics on the identity.
func (p Point) Y() algebra.Element {
	if p.inf {
		panic("identity point has no affine coordinates")
	}
	return p.y
}

// Equal reports whether two points are the same: both the identity, or both
// affine with equal x and equal y (the y comparison matters, since distinct
// points may collide on x alone).
func (p Point) Equal(q Point) bool {
	if p.inf || q.inf {
		return p.inf == q.inf
	}
	return p.x.Equal(q.x) && p.y.Equal(q.y)
}

func (p Point) String() string {
	if p.inf {
		return "(inf)"
	}
	return fmt.Sprintf("(%s, %s)", p.x, p.y)
}

// Neg returns the additive inverse: the identity maps to itself, an affine
// point to (x, -y).
func (g *Group) Neg(p Point) Point {
	if p.inf {
		return p
	}
	return Point{x: p.x, y: p.y.Neg()}
}

// Add adds two points using the chord-and-tangent law. A non-invertible
// slope denominator surfaces as a NotInvertibleError: over a field that
// never happens for valid inputs, while over a quotient ring with zero
// divisors it is an algebraically meaningful signal the caller must
// interpret (it exposes a factor of the ring modulus).
func (g *Group) Add(p, q Point) (Point, error) {
	if p.inf {
		return q, nil
	}
	if q.inf {
		return p, nil
	}
	if p.x.Equal(q.x) {
		if p.y.Equal(q.y.Neg()) {
			// Vertical line: P + (-P), including the 2-torsion case y = 0.
			return g.Identity(), nil
		}
		if p.y.Equal(q.y) {
			return g.Double(p)
		}
		// Equal x with y neither equal nor opposite cannot happen for
		// points satisfying the curve equation; treat as vertical.
		return g.Identity(), nil
	}
	// lambda = (y2-y1)/(x2-x1)
	den := q.x.Sub(p.x)
	inv, err := den.Inverse()
	if err != nil {
		return Point{}, fmt.Errorf("point addition: %w", err)
	}
	lambda := q.y.Sub(p.y).Mul(inv)
	x3 := lambda.Mul(lambda).Sub(p.x).Sub(q.x)
	y3 := lambda.Mul(p.x.Sub(x3)).Sub(p.y)
	return Point{x: x3, y: y3}, nil
}

// Double returns 2P by the tangent formula lambda = (3x^2+A)/(2y). A point
// with non-invertible 2y is 2-torsion (or a zero-divisor witness inside a
// quotient ring); the NotInvertibleError is the diagnostic the solver's
// l=2 handling relies on.
func (g *Group) Double(p Point) (Point, error) {
	if p.inf {
		return p, nil
	}
	if p.y.IsZero() {
		return g.Identity(), nil
	}
	den := p.y.Add(p.y)
	inv, err := den.Inverse()
	if err != nil {
		return Point{}, fmt.Errorf("point doubling: %w", err)
	}
	x2 := p.x.Mul(p.x)
	lambda := x2.Add(x2).Add(x2).Add(g.a).Mul(inv)
	x3 := lambda.Mul(lambda).Sub(p.x).Sub(p.x)
	y3 := lambda.Mul(p.x.Sub(x3)).Sub(p.y)
	return Point{x: x3, y: y3}, nil
}

// ScalarMul returns k*P by double-and-add over the binary representation of
// k. Negative k is handled by negating the point first.
func (g *Group) ScalarMul(k *big.Int, p Point) (Point, error) {
	if k.Sign() == 0 || p.inf {
		return g.Identity(), nil
	}
	if k.Sign() < 0 {
		return g.ScalarMul(new(big.Int).Neg(k), g.Neg(p))
	}
	result := g.Identity()
	var err error
	for i := k.BitLen() - 1; i >= 0; i-- {
		result, err = g.Double(result)
		if err != nil {
			return Point{}, err
		}
		if k.Bit(i) == 1 {
			result, err = g.Add(result, p)
			if err != nil {
				return Point{}, err
			}
		}
	}
	return result, nil
}