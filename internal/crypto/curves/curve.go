// Package curves implements group arithmetic on elliptic curves over prime
// fields. Three families share one contract: short Weierstrass curves in
// Jacobian coordinates, twisted Edwards curves in projective or extended
// coordinates, and Montgomery curves in x-only projective coordinates.
package curves

import (
	"fmt"
	"math/big"

	"github.com/icure/pseudoanon/internal/crypto/field"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// Curve is implemented by every curve family.
type Curve interface {
	Name() string
	Family() pseudoanon.Family

	// Params returns the parameters the curve was built from. The result is
	// shared and must not be modified.
	Params() *Params

	// Field returns the reduction context shared by all points of the curve.
	Field() *field.Field

	// Zero, One and Two are the reduced field constants.
	Zero() *big.Int
	One() *big.Int
	Two() *big.Int

	// N returns the order of the generator.
	N() *big.Int

	Infinity() Point
	Generator() Point

	// Point builds a point from raw coordinates. The accepted arity depends
	// on the family; no coordinates yields the point at infinity. The point
	// is not checked against the curve equation, use Validate for that.
	Point(coords ...*big.Int) (Point, error)

	// PointFromX recovers a point from its x-coordinate, choosing the root
	// whose parity matches odd. It returns pseudoanon.ErrInvalidPoint when x
	// is not the abscissa of a curve point.
	PointFromX(x *big.Int, odd bool) (Point, error)

	// Validate reports whether p satisfies the curve equation. It normalizes p.
	Validate(p Point) bool

	// PointFromJSON decodes a point persisted with Point.MarshalJSON.
	PointFromJSON(data []byte) (Point, error)

	// DecodePoint decodes a point serialized with Point.Encode.
	DecodePoint(data []byte) (Point, error)
}

// Point is an element of a curve group. Operations return new points and
// leave the coordinates of their operands untouched, except Normalize which
// rescales the receiver. Precompute stores tables on the receiver, and Mul on
// a point without them caches its odd multiples on first use. A point must
// not be used by several goroutines at once unless it was precomputed and
// normalized beforehand, as curve generators are.
type Point interface {
	Curve() Curve
	IsInfinity() bool

	// Normalize rescales the coordinates so that z is one. It is idempotent
	// and returns the receiver.
	Normalize() Point

	// X returns the affine x-coordinate. It is zero for the point at
	// infinity on every family.
	X() *big.Int

	// Y returns the affine y-coordinate. Montgomery points track no y and
	// return pseudoanon.ErrUnsupportedOperation.
	Y() (*big.Int, error)

	Double() Point
	Add(q Point) (Point, error)
	Neg() Point
	Equal(q Point) bool

	// Mul returns k·P. Negative scalars are allowed.
	Mul(k *big.Int) Point

	// MulAdd returns k1·P + k2·Q in normalized form.
	MulAdd(k1 *big.Int, q Point, k2 *big.Int) (Point, error)

	// JMulAdd returns k1·P + k2·Q without normalizing the result.
	JMulAdd(k1 *big.Int, q Point, k2 *big.Int) (Point, error)

	// Precompute caches multiples of the point so that later multiplications
	// by scalars of up to power bits use the fixed-base method. A non-positive
	// power covers scalars up to the bit length of the group order.
	Precompute(power int) Point

	// Encode serializes the point in SEC1 style: 0x04|x|y, or 0x02/0x03|x
	// when compact. Montgomery points encode their x-coordinate only.
	Encode(compact bool) []byte

	MarshalJSON() ([]byte, error)
	String() string
}

// base holds what every curve family shares: parameters, the field and the
// group order. It is immutable after construction.
type base struct {
	params *Params
	field  *field.Field
	n      *big.Int

	// redN is n reduced modulo p, stepped through by EqXToP.
	redN *big.Int
}

func newBase(params *Params) (base, error) {
	if err := params.Validate(); err != nil {
		return base{}, err
	}
	f, err := field.New(params.P)
	if err != nil {
		return base{}, fmt.Errorf("curve %s: %w", params.Name, err)
	}
	return base{
		params: params,
		field:  f,
		n:      new(big.Int).Set(params.N),
		redN:   f.Reduce(params.N),
	}, nil
}

func (b *base) Name() string               { return b.params.Name }
func (b *base) Family() pseudoanon.Family { return b.params.Family }
func (b *base) Params() *Params            { return b.params }
func (b *base) Field() *field.Field        { return b.field }
func (b *base) Zero() *big.Int             { return b.field.Zero() }
func (b *base) One() *big.Int              { return b.field.One() }
func (b *base) Two() *big.Int              { return b.field.Two() }
func (b *base) N() *big.Int                { return new(big.Int).Set(b.n) }

// orderBits is the bit length of the group order, the minimum digit count
// used by fixed-base multiplication.
func (b *base) orderBits() int { return b.n.BitLen() }

// coord reduces a caller-supplied coordinate into the field.
func (b *base) coord(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return b.field.Reduce(v)
}

func (b *base) arityError(family string, got int, want string) error {
	return fmt.Errorf("%w: %s point takes %s coordinates, got %d", pseudoanon.ErrInvalidPoint, family, want, got)
}

// New builds the curve described by params.
func New(params *Params) (Curve, error) {
	switch params.Family {
	case pseudoanon.Short:
		return NewShortCurve(params)
	case pseudoanon.Edwards:
		return NewEdwardsCurve(params)
	case pseudoanon.Mont:
		return NewMontCurve(params)
	}
	return nil, fmt.Errorf("%w: unsupported family %s", pseudoanon.ErrInvalidCurveConfig, params.Family)
}

// MustNew is like New but panics on invalid parameters.
func MustNew(params *Params) Curve {
	c, err := New(params)
	if err != nil {
		panic(err)
	}
	return c
}
