package algebra

import (
	"fmt"
	"strings"
)

// PolynomialRing is the ring of polynomials in one indeterminate with
// coefficients from the given base ring. The base may itself be a
// PolynomialRing or QuotientRing, so the engine nests recursively.
type PolynomialRing struct {
	base Ring
}

// NewPolynomialRing returns the polynomial ring over the given coefficient
// ring.
func NewPolynomialRing(base Ring) *PolynomialRing {
	return &PolynomialRing{base: base}
}

// BaseRing returns the coefficient ring.
func (r *PolynomialRing) BaseRing() Ring { return r.base }

// New builds a polynomial from coefficients in ascending order: first the
// constant, then the linear coefficient, and so on. Trailing zero
// coefficients are stripped so the representation is canonical; the zero
// polynomial holds no coefficients at all.
func (r *PolynomialRing) New(coeffs ...Element) *Polynomial {
	cs := make([]Element, len(coeffs))
	copy(cs, coeffs)
	return (&Polynomial{ring: r, coeffs: cs}).normalize()
}

// FromInts builds a polynomial from small integer coefficients in ascending
// order, mapped into the base ring.
func (r *PolynomialRing) FromInts(vs ...int64) *Polynomial {
	cs := make([]Element, len(vs))
	for i, v := range vs {
		cs[i] = r.base.FromInt(v)
	}
	return (&Polynomial{ring: r, coeffs: cs}).normalize()
}

// X returns the monomial x.
func (r *PolynomialRing) X() *Polynomial {
	return r.New(r.base.Zero(), r.base.One())
}

// Zero returns the zero polynomial.
func (r *PolynomialRing) Zero() Element { return r.New() }

// One returns the constant polynomial 1.
func (r *PolynomialRing) One() Element { return r.New(r.base.One()) }

// FromInt returns the constant polynomial n.
func (r *PolynomialRing) FromInt(n int64) Element { return r.New(r.base.FromInt(n)) }

// Polynomial is a dense polynomial in canonical form: coefficients ascending
// by degree, the highest occupied index non-zero, the zero polynomial empty.
type Polynomial struct {
	ring   *PolynomialRing
	coeffs []Element
}

func (p *Polynomial) normalize() *Polynomial {
	n := len(p.coeffs)
	for n > 0 && p.coeffs[n-1].IsZero() {
		n--
	}
	p.coeffs = p.coeffs[:n]
	return p
}

func (p *Polynomial) cast(x Element) *Polynomial {
	o, ok := x.(*Polynomial)
	if !ok {
		panic(fmt.Sprintf("mixed ring arithmetic: %T with *Polynomial", x))
	}
	return o
}

// Ring returns the polynomial ring the polynomial belongs to.
func (p *Polynomial) Ring() *PolynomialRing { return p.ring }

// Degree returns the degree of the polynomial, with -1 for the zero
// polynomial so it is distinguishable from a non-zero constant.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Coeff returns the coefficient of x^i, which is zero beyond the degree.
func (p *Polynomial) Coeff(i int) Element {
	if i < 0 || i >= len(p.coeffs) {
		return p.ring.base.Zero()
	}
	return p.coeffs[i]
}

// Coefficients returns a copy of the coefficient sequence in ascending
// order. It is empty for the zero polynomial.
func (p *Polynomial) Coefficients() []Element {
	cs := make([]Element, len(p.coeffs))
	copy(cs, p.coeffs)
	return cs
}

// Lead returns the leading coefficient, or zero for the zero polynomial.
func (p *Polynomial) Lead() Element {
	if len(p.coeffs) == 0 {
		return p.ring.base.Zero()
	}
	return p.coeffs[len(p.coeffs)-1]
}

// IsZero reports whether p is the zero polynomial.
func (p *Polynomial) IsZero() bool { return len(p.coeffs) == 0 }

// Equal reports whether x is a polynomial with identical coefficients.
func (p *Polynomial) Equal(x Element) bool {
	o, ok := x.(*Polynomial)
	if !ok || len(o.coeffs) != len(p.coeffs) {
		return false
	}
	for i, c := range p.coeffs {
		if !c.Equal(o.coeffs[i]) {
			return false
		}
	}
	return true
}

// Add returns p + x.
func (p *Polynomial) Add(x Element) Element {
	o := p.cast(x)
	n := max(len(p.coeffs), len(o.coeffs))
	cs := make([]Element, n)
	for i := range cs {
		cs[i] = p.Coeff(i).Add(o.Coeff(i))
	}
	return (&Polynomial{ring: p.ring, coeffs: cs}).normalize()
}

// Sub returns p - x.
func (p *Polynomial) Sub(x Element) Element {
	o := p.cast(x)
	n := max(len(p.coeffs), len(o.coeffs))
	cs := make([]Element, n)
	for i := range cs {
		cs[i] = p.Coeff(i).Sub(o.Coeff(i))
	}
	return (&Polynomial{ring: p.ring, coeffs: cs}).normalize()
}

// Neg returns -p.
func (p *Polynomial) Neg() Element {
	cs := make([]Element, len(p.coeffs))
	for i, c := range p.coeffs {
		cs[i] = c.Neg()
	}
	return &Polynomial{ring: p.ring, coeffs: cs}
}

// Mul returns the product p * x by coefficient convolution, with every
// resulting coefficient reduced through the base ring's own arithmetic.
func (p *Polynomial) Mul(x Element) Element {
	o := p.cast(x)
	if p.IsZero() || o.IsZero() {
		return p.ring.Zero()
	}
	cs := make([]Element, len(p.coeffs)+len(o.coeffs)-1)
	for i := range cs {
		cs[i] = p.ring.base.Zero()
	}
	for i, a := range p.coeffs {
		for j, b := range o.coeffs {
			cs[i+j] = cs[i+j].Add(a.Mul(b))
		}
	}
	return (&Polynomial{ring: p.ring, coeffs: cs}).normalize()
}

// MulScalar returns p scaled by the base ring element c.
func (p *Polynomial) MulScalar(c Element) *Polynomial {
	cs := make([]Element, len(p.coeffs))
	for i, a := range p.coeffs {
		cs[i] = a.Mul(c)
	}
	return (&Polynomial{ring: p.ring, coeffs: cs}).normalize()
}

// Inverse returns the multiplicative inverse of p, which exists in the
// polynomial ring only for non-zero constants with invertible value.
func (p *Polynomial) Inverse() (Element, error) {
	if p.Degree() != 0 {
		return nil, &NotInvertibleError{Element: p}
	}
	inv, err := p.coeffs[0].Inverse()
	if err != nil {
		return nil, err
	}
	return p.ring.New(inv), nil
}

// Div performs division with remainder: p = q*d + r with deg(r) < deg(d) or
// r = 0. Division by the zero polynomial yields ErrDivisionByZero; a
// non-invertible leading coefficient of d (possible when the base ring is
// not a field) yields a NotInvertibleError carrying that coefficient.
func (p *Polynomial) Div(d *Polynomial) (q, r *Polynomial, err error) {
	if d.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	invLead, err := d.Lead().Inverse()
	if err != nil {
		return nil, nil, err
	}
	dd := d.Degree()
	rem := make([]Element, len(p.coeffs))
	copy(rem, p.coeffs)
	r = (&Polynomial{ring: p.ring, coeffs: rem}).normalize()
	if p.Degree() < dd {
		return p.ring.New(), r, nil
	}
	quo := make([]Element, p.Degree()-dd+1)
	for i := range quo {
		quo[i] = p.ring.base.Zero()
	}
	for r.Degree() >= dd {
		k := r.Degree() - dd
		c := r.Lead().Mul(invLead)
		quo[k] = quo[k].Add(c)
		// r -= c * x^k * d
		cs := make([]Element, len(r.coeffs))
		copy(cs, r.coeffs)
		for i := 0; i <= dd; i++ {
			cs[k+i] = cs[k+i].Sub(c.Mul(d.Coeff(i)))
		}
		r = (&Polynomial{ring: p.ring, coeffs: cs}).normalize()
	}
	return (&Polynomial{ring: p.ring, coeffs: quo}).normalize(), r, nil
}

// Eval evaluates the polynomial at the base ring element x using Horner's
// method.
func (p *Polynomial) Eval(x Element) Element {
	acc := p.ring.base.Zero()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coeffs[i])
	}
	return acc
}

// Monic returns the polynomial scaled so its leading coefficient is one.
func (p *Polynomial) Monic() (*Polynomial, error) {
	if p.IsZero() {
		return p, nil
	}
	inv, err := p.Lead().Inverse()
	if err != nil {
		return nil, err
	}
	return p.MulScalar(inv), nil
}

// GCD returns the greatest common divisor of p and b by the iterative
// Euclidean algorithm, normalized to monic form whenever the leading
// coefficient is invertible (always, over a field).
func (p *Polynomial) GCD(b *Polynomial) (*Polynomial, error) {
	a := p
	for !b.IsZero() {
		_, r, err := a.Div(b)
		if err != nil {
			return nil, err
		}
		a, b = b, r
	}
	if m, err := a.Monic(); err == nil {
		return m, nil
	}
	return a, nil
}

// ExtendedGCD returns g, s, t with g = gcd(p, b) and s*p + t*b = g.
func (p *Polynomial) ExtendedGCD(b *Polynomial) (g, s, t *Polynomial, err error) {
	r0, r1 := p, b
	s0, s1 := p.ring.New(p.ring.base.One()), p.ring.New()
	t0, t1 := p.ring.New(), p.ring.New(p.ring.base.One())
	for !r1.IsZero() {
		q, rem, err := r0.Div(r1)
		if err != nil {
			return nil, nil, nil, err
		}
		r0, r1 = r1, rem
		s0, s1 = s1, s0.Sub(s1.Mul(q)).(*Polynomial)
		t0, t1 = t1, t0.Sub(t1.Mul(q)).(*Polynomial)
	}
	return r0, s0, t0, nil
}

func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	terms := make([]string, 0, len(p.coeffs))
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		if p.coeffs[i].IsZero() {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, p.coeffs[i].String())
		case 1:
			terms = append(terms, fmt.Sprintf("%s*x", p.coeffs[i]))
		default:
			terms = append(terms, fmt.Sprintf("%s*x^%d", p.coeffs[i], i))
		}
	}
	return strings.Join(terms, " + ")
}