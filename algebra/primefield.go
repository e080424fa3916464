package algebra

import (
	"fmt"
	"math/big"
)

// PrimeField is the finite field GF(p) of integers modulo a prime p.
// Primality of p is the caller's responsibility; the constructor only
// rejects moduli below 2 (spec'd behavior: no internal primality test).
type PrimeField struct {
	p *big.Int
}

// NewPrimeField returns the field of integers modulo p.
func NewPrimeField(p *big.Int) (*PrimeField, error) {
	if p == nil || p.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("%w: modulus must be a prime >= 2", ErrInvalidModulus)
	}
	return &PrimeField{p: new(big.Int).Set(p)}, nil
}

// Modulus returns a copy of the field characteristic p.
func (f *PrimeField) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// Element returns the canonical representative of v modulo p.
func (f *PrimeField) Element(v *big.Int) *FieldElement {
	r := new(big.Int).Mod(v, f.p)
	return &FieldElement{field: f, v: r}
}

// Zero returns the additive identity of the field.
func (f *PrimeField) Zero() Element { return f.Element(big.NewInt(0)) }

// One returns the multiplicative identity of the field.
func (f *PrimeField) One() Element { return f.Element(big.NewInt(1)) }

// FromInt returns the image of n in GF(p).
func (f *PrimeField) FromInt(n int64) Element { return f.Element(big.NewInt(n)) }

func (f *PrimeField) String() string {
	return fmt.Sprintf("GF(%s)", f.p)
}

// FieldElement is a canonical residue in [0, p). It is immutable.
type FieldElement struct {
	field *PrimeField
	v     *big.Int
}

// Value returns a copy of the canonical value in [0, p).
func (e *FieldElement) Value() *big.Int { return new(big.Int).Set(e.v) }

// Field returns the field the element belongs to.
func (e *FieldElement) Field() *PrimeField { return e.field }

// cast asserts that x is a field element over the same modulus. Arithmetic
// between elements of different fields is undefined, so this panics.
func (e *FieldElement) cast(x Element) *FieldElement {
	o, ok := x.(*FieldElement)
	if !ok {
		panic(fmt.Sprintf("mixed ring arithmetic: %T with *FieldElement", x))
	}
	if o.field.p.Cmp(e.field.p) != 0 {
		panic(fmt.Sprintf("mixed field arithmetic: GF(%s) with GF(%s)", o.field.p, e.field.p))
	}
	return o
}

// Add returns e + x mod p.
func (e *FieldElement) Add(x Element) Element {
	o := e.cast(x)
	r := new(big.Int).Add(e.v, o.v)
	r.Mod(r, e.field.p)
	return &FieldElement{field: e.field, v: r}
}

// Sub returns e - x mod p.
func (e *FieldElement) Sub(x Element) Element {
	o := e.cast(x)
	r := new(big.Int).Sub(e.v, o.v)
	r.Mod(r, e.field.p)
	return &FieldElement{field: e.field, v: r}
}

// Neg returns -e mod p.
func (e *FieldElement) Neg() Element {
	r := new(big.Int).Neg(e.v)
	r.Mod(r, e.field.p)
	return &FieldElement{field: e.field, v: r}
}

// Mul returns e * x mod p.
func (e *FieldElement) Mul(x Element) Element {
	o := e.cast(x)
	r := new(big.Int).Mul(e.v, o.v)
	r.Mod(r, e.field.p)
	return &FieldElement{field: e.field, v: r}
}

// Inverse returns e^-1 mod p by the extended Euclidean algorithm. The only
// non-invertible element of a prime field is zero.
func (e *FieldElement) Inverse() (Element, error) {
	inv := new(big.Int).ModInverse(e.v, e.field.p)
	if inv == nil {
		return nil, &NotInvertibleError{Element: e}
	}
	return &FieldElement{field: e.field, v: inv}, nil
}

// Equal reports whether x is the same residue over the same modulus.
func (e *FieldElement) Equal(x Element) bool {
	o, ok := x.(*FieldElement)
	if !ok || o.field.p.Cmp(e.field.p) != 0 {
		return false
	}
	return e.v.Cmp(o.v) == 0
}

// IsZero reports whether e is the additive identity.
func (e *FieldElement) IsZero() bool { return e.v.Sign() == 0 }

func (e *FieldElement) String() string { return e.v.String() }