// Package field implements arithmetic modulo an odd prime on math/big integers.
package field

import (
	"fmt"
	"math/big"

	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// Field is the reduction context of a prime field. It is immutable after New
// and may be shared by any number of points and goroutines.
//
// Every method returns a freshly allocated, reduced value and never modifies
// its arguments. The constants returned by Zero, One and Two are shared and
// must not be modified by callers.
type Field struct {
	p       *big.Int
	byteLen int

	zero *big.Int
	one  *big.Int
	two  *big.Int
}

// New creates the field of integers modulo p. p must be an odd prime.
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Sign() <= 0 || p.Bit(0) == 0 || !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("%w: field modulus must be an odd prime", pseudoanon.ErrInvalidCurveConfig)
	}
	return &Field{
		p:       new(big.Int).Set(p),
		byteLen: (p.BitLen() + 7) / 8,
		zero:    big.NewInt(0),
		one:     big.NewInt(1),
		two:     big.NewInt(2),
	}, nil
}

// P returns a copy of the modulus.
func (f *Field) P() *big.Int { return new(big.Int).Set(f.p) }

// ByteLen is the length of an encoded element.
func (f *Field) ByteLen() int { return f.byteLen }

// BitLen is the bit length of the modulus.
func (f *Field) BitLen() int { return f.p.BitLen() }

func (f *Field) Zero() *big.Int { return f.zero }
func (f *Field) One() *big.Int  { return f.one }
func (f *Field) Two() *big.Int  { return f.two }

// Reduce maps any integer, including negative ones, into [0, p).
func (f *Field) Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, f.p)
}

// FromInt64 returns v mod p.
func (f *Field) FromInt64(v int64) *big.Int {
	return f.Reduce(big.NewInt(v))
}

// Contains reports whether x is already a reduced residue.
func (f *Field) Contains(x *big.Int) bool {
	return x.Sign() >= 0 && x.Cmp(f.p) < 0
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	if r.Cmp(f.p) >= 0 {
		r.Sub(r, f.p)
	}
	return r
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	if r.Sign() < 0 {
		r.Add(r, f.p)
	}
	return r
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.p)
}

func (f *Field) Sqr(a *big.Int) *big.Int {
	return f.Mul(a, a)
}

func (f *Field) Neg(a *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(f.p, a)
}

// Inv returns a⁻¹, or nil when a is zero.
func (f *Field) Inv(a *big.Int) *big.Int {
	return new(big.Int).ModInverse(a, f.p)
}

// Div returns a / b, or nil when b is zero.
func (f *Field) Div(a, b *big.Int) *big.Int {
	inv := f.Inv(b)
	if inv == nil {
		return nil
	}
	return f.Mul(a, inv)
}

// Sqrt returns a square root of a. The boolean is false when a is not a
// quadratic residue.
func (f *Field) Sqrt(a *big.Int) (*big.Int, bool) {
	r := new(big.Int).ModSqrt(a, f.p)
	if r == nil {
		return nil, false
	}
	return r, true
}

func (f *Field) IsZero(a *big.Int) bool { return a.Sign() == 0 }

func (f *Field) IsOdd(a *big.Int) bool { return a.Bit(0) == 1 }

func (f *Field) Equal(a, b *big.Int) bool { return a.Cmp(b) == 0 }

// Encode returns the big-endian encoding of a padded to ByteLen bytes.
func (f *Field) Encode(a *big.Int) []byte {
	return a.FillBytes(make([]byte, f.byteLen))
}

// Decode reads a big-endian integer and reduces it.
func (f *Field) Decode(b []byte) *big.Int {
	return f.Reduce(new(big.Int).SetBytes(b))
}

// DecodeCanonical reads a big-endian element and rejects values ≥ p.
func (f *Field) DecodeCanonical(b []byte) (*big.Int, error) {
	x := new(big.Int).SetBytes(b)
	if !f.Contains(x) {
		return nil, fmt.Errorf("field: element %x is not reduced", b)
	}
	return x, nil
}
