package types

import "time"

// CurveRequest describes a curve y^2 = x^3 + Ax + B over GF(P) to count.
// Strategy is optional and defaults to the naive schedule.
type CurveRequest struct {
	P        *BigInt `json:"p"                  cbor:"0,keyasint"`
	A        *BigInt `json:"a"                  cbor:"1,keyasint"`
	B        *BigInt `json:"b"                  cbor:"2,keyasint"`
	Strategy string  `json:"strategy,omitempty" cbor:"3,keyasint,omitempty"`
}

// CountResult is the stored outcome of a counting run. Either Order and
// Trace are set, or Error carries the failure.
type CountResult struct {
	Request     CurveRequest  `json:"request"           cbor:"0,keyasint"`
	Order       *BigInt       `json:"order,omitempty"   cbor:"1,keyasint,omitempty"`
	Trace       *BigInt       `json:"trace,omitempty"   cbor:"2,keyasint,omitempty"`
	Error       string        `json:"error,omitempty"   cbor:"3,keyasint,omitempty"`
	Duration    time.Duration `json:"duration"          cbor:"4,keyasint,omitempty"`
	CompletedAt time.Time     `json:"completedAt"       cbor:"5,keyasint,omitempty"`
	// Residues are the per-prime trace congruences the count went through,
	// in the order they were resolved.
	Residues []TraceCongruence `json:"residues,omitempty" cbor:"6,keyasint,omitempty"`
}

// TraceCongruence is one per-prime progress report: the Frobenius trace T
// modulo the small prime L.
type TraceCongruence struct {
	L *BigInt `json:"l" cbor:"0,keyasint"`
	T *BigInt `json:"t" cbor:"1,keyasint"`
}