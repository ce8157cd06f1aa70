package curves

import (
	"fmt"
	"math/big"

	"github.com/icure/pseudoanon/internal/memo"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// ShortCurve is a short Weierstrass curve y² = x³ + a·x + b. Points use
// Jacobian coordinates (X : Y : Z) standing for (X/Z², Y/Z³).
type ShortCurve struct {
	base

	a, b *big.Int

	// Doubling shortcuts for a = -3 and a = 0.
	threeA bool
	zeroA  bool

	g *ShortPoint
}

var (
	_ Curve                   = (*ShortCurve)(nil)
	_ groupPoint[*ShortPoint] = (*ShortPoint)(nil)
)

func NewShortCurve(params *Params) (*ShortCurve, error) {
	bs, err := newBase(params)
	if err != nil {
		return nil, err
	}
	f := bs.field

	sc := &ShortCurve{
		base: bs,
		a:    f.Reduce(params.A),
		b:    f.Reduce(params.B),
	}
	sc.zeroA = f.IsZero(sc.a)
	sc.threeA = f.Equal(sc.a, f.FromInt64(-3))

	if f.IsZero(f.Add(f.Mul(f.FromInt64(4), f.Mul(f.Sqr(sc.a), sc.a)), f.Mul(f.FromInt64(27), f.Sqr(sc.b)))) {
		return nil, fmt.Errorf("%w: curve %s is singular", pseudoanon.ErrInvalidCurveConfig, params.Name)
	}

	sc.g = sc.point(f.Reduce(params.Gx), f.Reduce(params.Gy), f.One())
	if !sc.Validate(sc.g) {
		return nil, fmt.Errorf("%w: curve %s: generator is not on the curve", pseudoanon.ErrInvalidCurveConfig, params.Name)
	}
	sc.g.Precompute(0)
	return sc, nil
}

func (sc *ShortCurve) point(x, y, z *big.Int) *ShortPoint {
	return &ShortPoint{curve: sc, x: x, y: y, z: z}
}

func (sc *ShortCurve) infinity() *ShortPoint {
	f := sc.field
	return sc.point(f.One(), f.One(), f.Zero())
}

func (sc *ShortCurve) Infinity() Point  { return sc.infinity() }
func (sc *ShortCurve) Generator() Point { return sc.g }

// Point accepts () for infinity, affine (x, y) or Jacobian (x, y, z).
func (sc *ShortCurve) Point(coords ...*big.Int) (Point, error) {
	switch len(coords) {
	case 0:
		return sc.infinity(), nil
	case 2:
		return sc.point(sc.coord(coords[0]), sc.coord(coords[1]), sc.field.One()), nil
	case 3:
		return sc.point(sc.coord(coords[0]), sc.coord(coords[1]), sc.coord(coords[2])), nil
	}
	return nil, sc.arityError("short weierstrass", len(coords), "0, 2 or 3")
}

func (sc *ShortCurve) rhs(x *big.Int) *big.Int {
	f := sc.field
	return f.Add(f.Add(f.Mul(f.Sqr(x), x), f.Mul(sc.a, x)), sc.b)
}

// PointFromX solves y² = x³ + a·x + b.
func (sc *ShortCurve) PointFromX(x *big.Int, odd bool) (Point, error) {
	f := sc.field
	x = sc.coord(x)
	y2 := sc.rhs(x)
	y, ok := f.Sqrt(y2)
	if !ok || !f.Equal(f.Sqr(y), y2) {
		return nil, fmt.Errorf("%w: x has no matching y on %s", pseudoanon.ErrInvalidPoint, sc.Name())
	}
	if f.IsOdd(y) != odd {
		y = f.Neg(y)
	}
	return sc.point(x, y, f.One()), nil
}

func (sc *ShortCurve) Validate(p Point) bool {
	sp, ok := p.(*ShortPoint)
	if !ok || sp.curve != sc {
		return false
	}
	if sp.IsInfinity() {
		return true
	}
	sp.normalize()
	f := sc.field
	return f.Equal(f.Sqr(sp.y), sc.rhs(sp.x))
}

// PointFromJSON accepts [] for infinity and [x, y] otherwise.
func (sc *ShortCurve) PointFromJSON(data []byte) (Point, error) {
	coords, err := unmarshalCoords(sc.field, data)
	if err != nil {
		return nil, err
	}
	if len(coords) != 0 && len(coords) != 2 {
		return nil, sc.arityError("short weierstrass", len(coords), "0 or 2")
	}
	p, _ := sc.Point(coords...)
	if !sc.Validate(p.(*ShortPoint).clone()) {
		return nil, fmt.Errorf("%w: decoded point is not on %s", pseudoanon.ErrInvalidPoint, sc.Name())
	}
	return p, nil
}

func (sc *ShortCurve) DecodePoint(data []byte) (Point, error) {
	if len(data) == 1 && data[0] == 0 {
		return sc.infinity(), nil
	}
	return decodeSEC1(sc, data)
}

// ShortPoint is a Jacobian point. z = 0 is the point at infinity.
type ShortPoint struct {
	curve   *ShortCurve
	x, y, z *big.Int

	pre  *precomputation[*ShortPoint]
	wnaf memo.Value[*nafTable[*ShortPoint]]
}

func (p *ShortPoint) Curve() Curve { return p.curve }

func (p *ShortPoint) clone() *ShortPoint {
	return &ShortPoint{curve: p.curve, x: p.x, y: p.y, z: p.z}
}

func (p *ShortPoint) IsInfinity() bool {
	return p.curve.field.IsZero(p.z)
}

func (p *ShortPoint) Normalize() Point {
	p.normalize()
	return p
}

func (p *ShortPoint) normalize() {
	f := p.curve.field
	if f.IsZero(p.z) || f.Equal(p.z, f.One()) {
		return
	}
	zi := f.Inv(p.z)
	zi2 := f.Sqr(zi)
	p.x = f.Mul(p.x, zi2)
	p.y = f.Mul(p.y, f.Mul(zi2, zi))
	p.z = f.One()
}

// X returns the affine x-coordinate, or zero for the point at infinity.
func (p *ShortPoint) X() *big.Int {
	if p.IsInfinity() {
		return new(big.Int)
	}
	p.normalize()
	return new(big.Int).Set(p.x)
}

func (p *ShortPoint) Y() (*big.Int, error) {
	if p.IsInfinity() {
		return nil, fmt.Errorf("%w: point at infinity has no affine y", pseudoanon.ErrInvalidPoint)
	}
	p.normalize()
	return new(big.Int).Set(p.y), nil
}

func (p *ShortPoint) identity() *ShortPoint { return p.curve.infinity() }

func (p *ShortPoint) precomputed() *precomputation[*ShortPoint] { return p.pre }
func (p *ShortPoint) window() *memo.Value[*nafTable[*ShortPoint]] { return &p.wnaf }

func (p *ShortPoint) orderBits() int { return p.curve.orderBits() }

// dbl is dbl-2007-bl with the usual shortcuts for a = -3 and a = 0.
func (p *ShortPoint) dbl() *ShortPoint {
	if p.IsInfinity() {
		return p
	}
	f := p.curve.field
	xx := f.Sqr(p.x)
	yy := f.Sqr(p.y)
	yyyy := f.Sqr(yy)
	zz := f.Sqr(p.z)

	s := f.Sub(f.Sub(f.Sqr(f.Add(p.x, yy)), xx), yyyy)
	s = f.Add(s, s)

	var m *big.Int
	switch {
	case p.curve.zeroA:
		m = f.Add(f.Add(xx, xx), xx)
	case p.curve.threeA:
		m = f.Mul(f.Sub(p.x, zz), f.Add(p.x, zz))
		m = f.Add(f.Add(m, m), m)
	default:
		m = f.Add(f.Add(f.Add(xx, xx), xx), f.Mul(p.curve.a, f.Sqr(zz)))
	}

	t := f.Sub(f.Sub(f.Sqr(m), s), s)
	y8 := f.Mul(f.FromInt64(8), yyyy)
	ny := f.Sub(f.Mul(m, f.Sub(s, t)), y8)
	nz := f.Sub(f.Sub(f.Sqr(f.Add(p.y, p.z)), yy), zz)
	return p.curve.point(t, ny, nz)
}

// add is add-2007-bl. Equal inputs fall back to doubling and opposite
// inputs give infinity.
func (p *ShortPoint) add(q *ShortPoint) *ShortPoint {
	if p.IsInfinity() {
		return q.clone()
	}
	if q.IsInfinity() {
		return p.clone()
	}
	f := p.curve.field
	z1z1 := f.Sqr(p.z)
	z2z2 := f.Sqr(q.z)
	u1 := f.Mul(p.x, z2z2)
	u2 := f.Mul(q.x, z1z1)
	s1 := f.Mul(f.Mul(p.y, q.z), z2z2)
	s2 := f.Mul(f.Mul(q.y, p.z), z1z1)
	h := f.Sub(u2, u1)
	r := f.Sub(s2, s1)
	r = f.Add(r, r)

	if f.IsZero(h) {
		if f.IsZero(r) {
			return p.dbl()
		}
		return p.curve.infinity()
	}

	i := f.Sqr(f.Add(h, h))
	j := f.Mul(h, i)
	v := f.Mul(u1, i)
	nx := f.Sub(f.Sub(f.Sub(f.Sqr(r), j), v), v)
	s1j := f.Mul(s1, j)
	ny := f.Sub(f.Mul(r, f.Sub(v, nx)), f.Add(s1j, s1j))
	nz := f.Mul(f.Sub(f.Sub(f.Sqr(f.Add(p.z, q.z)), z1z1), z2z2), h)
	return p.curve.point(nx, ny, nz)
}

func (p *ShortPoint) neg() *ShortPoint {
	if p.IsInfinity() {
		return p
	}
	return p.curve.point(p.x, p.curve.field.Neg(p.y), p.z)
}

func (p *ShortPoint) Double() Point { return p.dbl() }
func (p *ShortPoint) Neg() Point    { return p.neg() }

func (p *ShortPoint) Add(q Point) (Point, error) {
	sq, err := p.same(q)
	if err != nil {
		return nil, err
	}
	return p.add(sq), nil
}

func (p *ShortPoint) Mul(k *big.Int) Point {
	return scalarMul(p, k)
}

func (p *ShortPoint) MulAdd(k1 *big.Int, q Point, k2 *big.Int) (Point, error) {
	r, err := p.JMulAdd(k1, q, k2)
	if err != nil {
		return nil, err
	}
	return r.Normalize(), nil
}

func (p *ShortPoint) JMulAdd(k1 *big.Int, q Point, k2 *big.Int) (Point, error) {
	sq, err := p.same(q)
	if err != nil {
		return nil, err
	}
	return jsfMulAdd(p, k1, sq, k2), nil
}

func (p *ShortPoint) Precompute(power int) Point {
	p.pre = precompute(p, power)
	return p
}

func (p *ShortPoint) Equal(q Point) bool {
	sq, ok := q.(*ShortPoint)
	if !ok || sq.curve != p.curve {
		return false
	}
	if p == sq {
		return true
	}
	if p.IsInfinity() || sq.IsInfinity() {
		return p.IsInfinity() && sq.IsInfinity()
	}
	f := p.curve.field
	p.normalize()
	sq.normalize()
	return f.Equal(p.x, sq.x) && f.Equal(p.y, sq.y)
}

// EqXToP reports whether x, a residue modulo the group order, equals the
// affine x-coordinate of p once lifted back into the field.
func (p *ShortPoint) EqXToP(x *big.Int) bool {
	if p.IsInfinity() {
		return false
	}
	f := p.curve.field
	zs := f.Sqr(p.z)
	rx := f.Mul(f.Reduce(x), zs)
	if f.Equal(p.x, rx) {
		return true
	}

	xc := new(big.Int).Set(x)
	t := f.Mul(p.curve.redN, zs)
	for {
		xc.Add(xc, p.curve.n)
		if xc.Cmp(f.P()) >= 0 {
			return false
		}
		rx = f.Add(rx, t)
		if f.Equal(p.x, rx) {
			return true
		}
	}
}

func (p *ShortPoint) same(q Point) (*ShortPoint, error) {
	sq, ok := q.(*ShortPoint)
	if !ok || sq.curve != p.curve {
		return nil, fmt.Errorf("%w: %s and %s", pseudoanon.ErrCurveMismatch, p.curve.Name(), q.Curve().Name())
	}
	return sq, nil
}

// Encode returns a single zero byte for the point at infinity.
func (p *ShortPoint) Encode(compact bool) []byte {
	if p.IsInfinity() {
		return []byte{0}
	}
	y, _ := p.Y()
	return encodeSEC1(p.curve.field, p.X(), y, compact)
}

// MarshalJSON writes the affine [x, y], or [] for the point at infinity.
func (p *ShortPoint) MarshalJSON() ([]byte, error) {
	if p.IsInfinity() {
		return marshalCoords(p.curve.field)
	}
	p.normalize()
	return marshalCoords(p.curve.field, p.x, p.y)
}

func (p *ShortPoint) String() string {
	if p.IsInfinity() {
		return "<EC JPoint Infinity>"
	}
	return fmt.Sprintf("<EC JPoint x: %x y: %x z: %x>", p.x, p.y, p.z)
}
