// Package algebra implements the tower of exact arithmetic structures used
// by the point counting engine: a prime field GF(p), a ring of polynomials
// with coefficients in any ring satisfying the same contract, and quotient
// rings of polynomials modulo a fixed modulus. All three implement one
// capability interface, so code written against it (polynomial arithmetic,
// the elliptic curve group law) is never duplicated per concrete ring.
package algebra

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModulus is returned when a field or quotient ring is built
	// over an unusable modulus.
	ErrInvalidModulus = errors.New("invalid modulus")

	// ErrNotInvertible is returned when a multiplicative inverse is requested
	// for an element that has none. Callers inspect it through
	// NotInvertibleError, since a failed inversion inside a quotient ring is
	// algebraically meaningful (it exposes a factor of the modulus) and not
	// necessarily a fault.
	ErrNotInvertible = errors.New("element is not invertible")

	// ErrDivisionByZero is returned on polynomial division by the zero
	// polynomial.
	ErrDivisionByZero = errors.New("division by zero polynomial")
)

// NotInvertibleError wraps ErrNotInvertible and carries the element whose
// inversion failed, so that callers can react to the structure it reveals.
type NotInvertibleError struct {
	Element Element
}

func (e *NotInvertibleError) Error() string {
	return fmt.Sprintf("element %s is not invertible", e.Element)
}

func (e *NotInvertibleError) Unwrap() error { return ErrNotInvertible }

// Element is a value in a commutative ring. Implementations are immutable:
// every operation returns a fresh element and never mutates the receiver.
// Mixing elements of different ring instances (different moduli) is a
// programming error and panics.
type Element interface {
	// Add returns the sum of the receiver and x.
	Add(x Element) Element
	// Sub returns the difference of the receiver and x.
	Sub(x Element) Element
	// Neg returns the additive inverse of the receiver.
	Neg() Element
	// Mul returns the product of the receiver and x.
	Mul(x Element) Element
	// Inverse returns the multiplicative inverse of the receiver, or a
	// NotInvertibleError if it has none.
	Inverse() (Element, error)
	// Equal reports whether the receiver and x are the same ring value.
	Equal(x Element) bool
	// IsZero reports whether the receiver is the additive identity.
	IsZero() bool
	// String returns a human readable representation, for logs and errors.
	String() string
}

// Ring builds the distinguished elements of a ring. The concrete rings of
// this package (PrimeField, PolynomialRing, QuotientRing) all implement it.
type Ring interface {
	// Zero returns the additive identity.
	Zero() Element
	// One returns the multiplicative identity.
	One() Element
	// FromInt returns the image of the integer n in the ring.
	FromInt(n int64) Element
}