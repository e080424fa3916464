package curve

import (
	"sync"

	"github.com/vocdoni/schoof/algebra"
)

// DivPolyTable is the memoized sequence of division polynomials of a curve:
// psi_n vanishes exactly on the x-coordinates of the n-torsion points.
//
// The table stores the y-folded representation over GF(p)[x]: for odd n the
// entry is psi_n itself, while for even n (where psi_n carries a single
// factor of y) the entry is psi_n/y. All mixed powers of y arising in the
// recurrences are folded back through y^2 = x^3+Ax+B, so no entry ever
// introduces y as a free variable.
//
// Entries are computed bottom-up on demand and cached for the lifetime of
// the curve; the read-through cache is guarded so that concurrent solver
// runs share it, with a single writer filling missing indices.
type DivPolyTable struct {
	mu   sync.RWMutex
	ring *algebra.PolynomialRing
	f    *algebra.Polynomial // x^3 + Ax + B
	f2   *algebra.Polynomial // f^2, the folded image of y^4
	inv2 algebra.Element
	psi  []*algebra.Polynomial
}

func newDivPolyTable(c *Curve) *DivPolyTable {
	ring := algebra.NewPolynomialRing(c.field)
	f := c.RHS()
	inv2, err := c.field.FromInt(2).Inverse()
	if err != nil {
		// 2 is always invertible for p >= 5.
		panic(err)
	}
	t := &DivPolyTable{
		ring: ring,
		f:    f,
		f2:   f.Mul(f).(*algebra.Polynomial),
		inv2: inv2,
	}

	a := algebra.Element(c.a)
	b := algebra.Element(c.b)
	zero := c.field.Zero()
	mul := func(n int64, e algebra.Element) algebra.Element { return c.field.FromInt(n).Mul(e) }

	// psi_0 = 0, psi_1 = 1, psi_2 = 2y (stored as 2).
	t.psi = append(t.psi, ring.New(), ring.FromInts(1), ring.FromInts(2))
	// psi_3 = 3x^4 + 6Ax^2 + 12Bx - A^2.
	t.psi = append(t.psi, ring.New(
		a.Mul(a).Neg(),
		mul(12, b),
		mul(6, a),
		zero,
		c.field.FromInt(3),
	))
	// psi_4 = 4y(x^6 + 5Ax^4 + 20Bx^3 - 5A^2x^2 - 4ABx - 8B^2 - A^3),
	// stored without the y factor.
	t.psi = append(t.psi, ring.New(
		mul(-8, b.Mul(b)).Sub(a.Mul(a).Mul(a)),
		mul(-4, a.Mul(b)),
		mul(-5, a.Mul(a)),
		mul(20, b),
		mul(5, a),
		zero,
		c.field.One(),
	).MulScalar(c.field.FromInt(4)))
	return t
}

// Psi returns the n-th division polynomial in the y-folded representation.
// Already computed indices are returned in O(1); missing ones are filled
// bottom-up from the recurrences. Requests for n < 0 fail with
// ErrInvalidIndex.
func (t *DivPolyTable) Psi(n int) (*algebra.Polynomial, error) {
	if n < 0 {
		return nil, ErrInvalidIndex
	}
	t.mu.RLock()
	if n < len(t.psi) {
		p := t.psi[n]
		t.mu.RUnlock()
		return p, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.psi); i <= n; i++ {
		t.psi = append(t.psi, t.compute(i))
	}
	return t.psi[n], nil
}

// compute expects every index below i to be present already.
func (t *DivPolyTable) compute(i int) *algebra.Polynomial {
	m := i / 2
	if i%2 == 1 {
		// psi_{2m+1} = psi_{m+2} psi_m^3 - psi_{m-1} psi_{m+1}^3, with y^4
		// folding to f^2 on whichever side holds the even-index factors.
		t1 := t.psi[m+2].Mul(cube(t.psi[m]))
		t2 := t.psi[m-1].Mul(cube(t.psi[m+1]))
		if m%2 == 0 {
			return t.f2.Mul(t1).Sub(t2).(*algebra.Polynomial)
		}
		return t1.Sub(t.f2.Mul(t2)).(*algebra.Polynomial)
	}
	// psi_{2m} = (psi_m / 2y)(psi_{m+2} psi_{m-1}^2 - psi_{m-2} psi_{m+1}^2);
	// in the folded representation the y factors cancel uniformly, leaving
	// a division by 2 in the field.
	bracket := t.psi[m+2].Mul(square(t.psi[m-1])).Sub(t.psi[m-2].Mul(square(t.psi[m+1])))
	return t.psi[m].Mul(bracket).(*algebra.Polynomial).MulScalar(t.inv2)
}

func square(p *algebra.Polynomial) *algebra.Polynomial {
	return p.Mul(p).(*algebra.Polynomial)
}

func cube(p *algebra.Polynomial) *algebra.Polynomial {
	return p.Mul(p).Mul(p).(*algebra.Polynomial)
}