package curves

import (
	"fmt"
	"math/big"

	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// MontCurve is a Montgomery curve b·y² = x³ + a·x² + x. Points are kept as
// x-only projective pairs (x : z), so a point and its negation coincide and
// only doubling and differential addition are available.
type MontCurve struct {
	base

	a, b *big.Int
	a24  *big.Int

	g *MontPoint
}

var (
	_ Curve = (*MontCurve)(nil)
	_ Point = (*MontPoint)(nil)
)

func NewMontCurve(params *Params) (*MontCurve, error) {
	bs, err := newBase(params)
	if err != nil {
		return nil, err
	}
	f := bs.field

	mc := &MontCurve{
		base: bs,
		a:    f.Reduce(params.A),
		b:    f.Reduce(params.B),
	}
	i4 := f.Inv(f.FromInt64(4))
	mc.a24 = f.Mul(i4, f.Add(mc.a, f.Two()))

	mc.g = mc.point(f.Reduce(params.Gx), f.One())
	if !mc.Validate(mc.g) {
		return nil, fmt.Errorf("%w: curve %s: generator is not on the curve", pseudoanon.ErrInvalidCurveConfig, params.Name)
	}
	return mc, nil
}

func (mc *MontCurve) point(x, z *big.Int) *MontPoint {
	return &MontPoint{curve: mc, x: x, z: z}
}

func (mc *MontCurve) infinity() *MontPoint {
	return mc.point(mc.field.One(), mc.field.Zero())
}

func (mc *MontCurve) Infinity() Point  { return mc.infinity() }
func (mc *MontCurve) Generator() Point { return mc.g }

// Point accepts (), (x) or (x, z).
func (mc *MontCurve) Point(coords ...*big.Int) (Point, error) {
	switch len(coords) {
	case 0:
		return mc.infinity(), nil
	case 1:
		return mc.point(mc.coord(coords[0]), mc.field.One()), nil
	case 2:
		return mc.point(mc.coord(coords[0]), mc.coord(coords[1])), nil
	}
	return nil, mc.arityError("montgomery", len(coords), "0, 1 or 2")
}

// PointFromX returns (x : 1) when x³ + a·x² + x is a square. The parity
// flag is ignored since no y is tracked.
func (mc *MontCurve) PointFromX(x *big.Int, _ bool) (Point, error) {
	p := mc.point(mc.coord(x), mc.field.One())
	if !mc.onCurve(p.x) {
		return nil, fmt.Errorf("%w: x is not on %s", pseudoanon.ErrInvalidPoint, mc.Name())
	}
	return p, nil
}

func (mc *MontCurve) onCurve(x *big.Int) bool {
	f := mc.field
	x2 := f.Sqr(x)
	rhs := f.Add(f.Add(f.Mul(x2, x), f.Mul(x2, mc.a)), x)
	y, ok := f.Sqrt(rhs)
	return ok && f.Equal(f.Sqr(y), rhs)
}

func (mc *MontCurve) Validate(p Point) bool {
	mp, ok := p.(*MontPoint)
	if !ok || mp.curve != mc {
		return false
	}
	if mp.IsInfinity() {
		return true
	}
	mp.normalize()
	return mc.onCurve(mp.x)
}

func (mc *MontCurve) PointFromJSON(data []byte) (Point, error) {
	coords, err := unmarshalCoords(mc.field, data)
	if err != nil {
		return nil, err
	}
	p, err := mc.Point(coords...)
	if err != nil {
		return nil, err
	}
	mp := p.(*MontPoint)
	if !mc.Validate(&MontPoint{curve: mc, x: mp.x, z: mp.z}) {
		return nil, fmt.Errorf("%w: decoded point is not on %s", pseudoanon.ErrInvalidPoint, mc.Name())
	}
	return p, nil
}

// DecodePoint reads a big-endian x-coordinate.
func (mc *MontCurve) DecodePoint(data []byte) (Point, error) {
	if len(data) != mc.field.ByteLen() {
		return nil, fmt.Errorf("%w: montgomery encoding must be %d bytes, got %d", pseudoanon.ErrInvalidPoint, mc.field.ByteLen(), len(data))
	}
	x, err := mc.field.DecodeCanonical(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pseudoanon.ErrInvalidPoint, err)
	}
	return mc.PointFromX(x, false)
}

// MontPoint is an x-only projective point (x : z). z = 0 is the point at
// infinity.
type MontPoint struct {
	curve *MontCurve
	x, z  *big.Int
}

func (p *MontPoint) Curve() Curve { return p.curve }

func (p *MontPoint) IsInfinity() bool {
	return p.curve.field.IsZero(p.z)
}

func (p *MontPoint) Normalize() Point {
	p.normalize()
	return p
}

func (p *MontPoint) normalize() {
	f := p.curve.field
	if f.Equal(p.z, f.One()) || f.IsZero(p.z) {
		return
	}
	p.x = f.Div(p.x, p.z)
	p.z = f.One()
}

// X returns the affine x-coordinate, or zero for the point at infinity.
func (p *MontPoint) X() *big.Int {
	if p.IsInfinity() {
		return new(big.Int)
	}
	p.normalize()
	return new(big.Int).Set(p.x)
}

func (p *MontPoint) Y() (*big.Int, error) {
	return nil, p.unsupported("y-coordinate")
}

// Double is dbl-1987-m-3, 2M + 2S + 4A.
func (p *MontPoint) Double() Point { return p.dbl() }

func (p *MontPoint) dbl() *MontPoint {
	f := p.curve.field
	a := f.Add(p.x, p.z)
	aa := f.Sqr(a)
	b := f.Sub(p.x, p.z)
	bb := f.Sqr(b)
	c := f.Sub(aa, bb)
	nx := f.Mul(aa, bb)
	nz := f.Mul(c, f.Add(bb, f.Mul(p.curve.a24, c)))
	return p.curve.point(nx, nz)
}

// DiffAdd returns p + q given diff = p - q. It is dadd-1987-m-3,
// 4M + 2S + 6A.
func (p *MontPoint) DiffAdd(q, diff *MontPoint) *MontPoint {
	f := p.curve.field
	a := f.Add(p.x, p.z)
	b := f.Sub(p.x, p.z)
	c := f.Add(q.x, q.z)
	d := f.Sub(q.x, q.z)
	da := f.Mul(d, a)
	cb := f.Mul(c, b)
	nx := f.Mul(diff.z, f.Sqr(f.Add(da, cb)))
	nz := f.Mul(diff.x, f.Sqr(f.Sub(da, cb)))
	return p.curve.point(nx, nz)
}

// Mul runs the Montgomery ladder. The sign of k is irrelevant on x-only
// points.
func (p *MontPoint) Mul(k *big.Int) Point {
	t := new(big.Int).Abs(k)
	bits := make([]uint, 0, t.BitLen())
	for i := 0; i < t.BitLen(); i++ {
		bits = append(bits, t.Bit(i))
	}

	a := p                  // (N / 2)·Q + Q
	b := p.curve.infinity() // (N / 2)·Q
	c := p                  // Q
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] == 0 {
			a = a.DiffAdd(b, c)
			b = b.dbl()
		} else {
			b = a.DiffAdd(b, c)
			a = a.dbl()
		}
	}
	return b
}

func (p *MontPoint) Add(Point) (Point, error) {
	return nil, p.unsupported("addition")
}

func (p *MontPoint) MulAdd(*big.Int, Point, *big.Int) (Point, error) {
	return nil, p.unsupported("mulAdd")
}

func (p *MontPoint) JMulAdd(*big.Int, Point, *big.Int) (Point, error) {
	return nil, p.unsupported("jmulAdd")
}

// Neg returns a copy of p, which stands for both ±y.
func (p *MontPoint) Neg() Point {
	return p.curve.point(p.x, p.z)
}

// Precompute is a no-op, the ladder uses no tables.
func (p *MontPoint) Precompute(int) Point { return p }

// Equal compares normalized x-coordinates.
func (p *MontPoint) Equal(q Point) bool {
	mq, ok := q.(*MontPoint)
	if !ok || mq.curve != p.curve {
		return false
	}
	if p.IsInfinity() || mq.IsInfinity() {
		return p.IsInfinity() && mq.IsInfinity()
	}
	return p.curve.field.Equal(p.X(), mq.X())
}

func (p *MontPoint) Encode(bool) []byte {
	return p.curve.field.Encode(p.X())
}

// MarshalJSON writes [x, z].
func (p *MontPoint) MarshalJSON() ([]byte, error) {
	return marshalCoords(p.curve.field, p.x, p.z)
}

func (p *MontPoint) String() string {
	if p.IsInfinity() {
		return "<EC Point Infinity>"
	}
	return fmt.Sprintf("<EC Point x: %x z: %x>", p.x, p.z)
}

func (p *MontPoint) unsupported(op string) error {
	return fmt.Errorf("%w: %s on montgomery curve %s", pseudoanon.ErrUnsupportedOperation, op, p.curve.Name())
}
