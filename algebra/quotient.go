package algebra

import (
	"fmt"
	"math/big"
)

// QuotientRing is a polynomial ring modulo a fixed non-constant modulus M.
// Elements are canonical remainders of degree < deg(M); every operation
// reduces its raw polynomial result by M, which keeps intermediate degrees
// bounded and makes Frobenius exponentiation tractable.
type QuotientRing struct {
	base    *PolynomialRing
	modulus *Polynomial
}

// NewQuotientRing returns the quotient of the polynomial ring by the ideal
// generated by modulus. The modulus must be non-constant and is normalized
// to monic form, so reductions never need a leading-coefficient inversion;
// a modulus whose leading coefficient is not invertible is rejected.
func NewQuotientRing(base *PolynomialRing, modulus *Polynomial) (*QuotientRing, error) {
	if modulus == nil || modulus.Degree() < 1 {
		return nil, fmt.Errorf("%w: quotient modulus must have degree >= 1", ErrInvalidModulus)
	}
	m, err := modulus.Monic()
	if err != nil {
		return nil, fmt.Errorf("%w: quotient modulus has non-invertible leading coefficient", ErrInvalidModulus)
	}
	return &QuotientRing{base: base, modulus: m}, nil
}

// Modulus returns the monic modulus polynomial M.
func (r *QuotientRing) Modulus() *Polynomial { return r.modulus }

// PolynomialRing returns the underlying polynomial ring.
func (r *QuotientRing) PolynomialRing() *PolynomialRing { return r.base }

// Degree returns the degree of the modulus, which strictly bounds the degree
// of every canonical element.
func (r *QuotientRing) Degree() int { return r.modulus.Degree() }

// Element reduces p modulo M and returns the canonical residue class.
func (r *QuotientRing) Element(p *Polynomial) *QuotientElement {
	if p.Degree() < r.modulus.Degree() {
		return &QuotientElement{ring: r, rep: p}
	}
	// The modulus is monic, so this division cannot fail.
	_, rem, err := p.Div(r.modulus)
	if err != nil {
		panic(fmt.Sprintf("reduction by monic modulus failed: %v", err))
	}
	return &QuotientElement{ring: r, rep: rem}
}

// X returns the residue class of the monomial x.
func (r *QuotientRing) X() *QuotientElement { return r.Element(r.base.X()) }

// Zero returns the zero residue class.
func (r *QuotientRing) Zero() Element { return r.Element(r.base.New()) }

// One returns the residue class of 1.
func (r *QuotientRing) One() Element { return r.Element(r.base.New(r.base.BaseRing().One())) }

// FromInt returns the residue class of the constant n.
func (r *QuotientRing) FromInt(n int64) Element { return r.Element(r.base.FromInts(n)) }

// QuotientElement is a canonical residue class: a polynomial of degree
// strictly below the modulus degree.
type QuotientElement struct {
	ring *QuotientRing
	rep  *Polynomial
}

// Rep returns the canonical representative polynomial of the residue class.
func (e *QuotientElement) Rep() *Polynomial { return e.rep }

// Ring returns the quotient ring the element belongs to.
func (e *QuotientElement) Ring() *QuotientRing { return e.ring }

func (e *QuotientElement) cast(x Element) *QuotientElement {
	o, ok := x.(*QuotientElement)
	if !ok {
		panic(fmt.Sprintf("mixed ring arithmetic: %T with *QuotientElement", x))
	}
	if !o.ring.modulus.Equal(e.ring.modulus) {
		panic(fmt.Sprintf("mixed quotient ring arithmetic: modulus %s with %s",
			o.ring.modulus, e.ring.modulus))
	}
	return o
}

// Add returns e + x reduced modulo M.
func (e *QuotientElement) Add(x Element) Element {
	o := e.cast(x)
	return e.ring.Element(e.rep.Add(o.rep).(*Polynomial))
}

// Sub returns e - x reduced modulo M.
func (e *QuotientElement) Sub(x Element) Element {
	o := e.cast(x)
	return e.ring.Element(e.rep.Sub(o.rep).(*Polynomial))
}

// Neg returns -e.
func (e *QuotientElement) Neg() Element {
	return e.ring.Element(e.rep.Neg().(*Polynomial))
}

// Mul returns e * x reduced modulo M.
func (e *QuotientElement) Mul(x Element) Element {
	o := e.cast(x)
	return e.ring.Element(e.rep.Mul(o.rep).(*Polynomial))
}

// Inverse returns the multiplicative inverse by the extended Euclidean
// algorithm over polynomials. When the representative shares a factor with
// the modulus (possible, since the modulus need not be irreducible), the
// element is a zero divisor and a NotInvertibleError is returned; the
// solver consumes that signal to split the modulus.
func (e *QuotientElement) Inverse() (Element, error) {
	if e.rep.IsZero() {
		return nil, &NotInvertibleError{Element: e}
	}
	g, s, _, err := e.rep.ExtendedGCD(e.ring.modulus)
	if err != nil {
		// The base ring is itself not a field and a division inside the
		// Euclidean loop hit a non-invertible leading coefficient; the error
		// already carries the deepest offending element.
		return nil, err
	}
	if g.Degree() != 0 {
		return nil, &NotInvertibleError{Element: e}
	}
	// s*rep ≡ g (mod M) with g a non-zero constant.
	ginv, err := g.Coeff(0).Inverse()
	if err != nil {
		return nil, &NotInvertibleError{Element: e}
	}
	return e.ring.Element(s.MulScalar(ginv)), nil
}

// Exp returns e^k for k >= 0 by square-and-multiply, reducing after every
// step. This is the workhorse behind the symbolic Frobenius computation.
func (e *QuotientElement) Exp(k *big.Int) *QuotientElement {
	result := e.ring.One().(*QuotientElement)
	if k.Sign() <= 0 {
		return result
	}
	for i := k.BitLen() - 1; i >= 0; i-- {
		result = result.Mul(result).(*QuotientElement)
		if k.Bit(i) == 1 {
			result = result.Mul(e).(*QuotientElement)
		}
	}
	return result
}

// Equal reports whether x is the same residue class modulo the same modulus.
func (e *QuotientElement) Equal(x Element) bool {
	o, ok := x.(*QuotientElement)
	if !ok || !o.ring.modulus.Equal(e.ring.modulus) {
		return false
	}
	return e.rep.Equal(o.rep)
}

// IsZero reports whether e is the zero residue class.
func (e *QuotientElement) IsZero() bool { return e.rep.IsZero() }

func (e *QuotientElement) String() string { return e.rep.String() }