package curves

import (
	"fmt"
	"math/big"

	"github.com/icure/pseudoanon/internal/memo"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// EdwardsCurve is a twisted Edwards curve a·x² + y² = c²·(1 + d·x²·y²).
//
// The curve is twisted when a ≠ 1. When a = -1 points carry the extended
// coordinate t = x·y/z and use the faster extended formulas.
type EdwardsCurve struct {
	base

	a, c, d *big.Int
	c2, dd  *big.Int

	twisted  bool
	mOneA    bool
	extended bool
	oneC     bool

	g *EdwardsPoint
}

var _ Curve = (*EdwardsCurve)(nil)

// NewEdwardsCurve builds a twisted Edwards curve. A twisted curve must have
// c = 1.
func NewEdwardsCurve(params *Params) (*EdwardsCurve, error) {
	b, err := newBase(params)
	if err != nil {
		return nil, err
	}
	f := b.field

	ec := &EdwardsCurve{
		base: b,
		a:    f.Reduce(params.A),
		c:    f.Reduce(params.C),
		d:    f.Reduce(params.D),
	}
	ec.c2 = f.Sqr(ec.c)
	ec.dd = f.Add(ec.d, ec.d)
	ec.twisted = !f.Equal(ec.a, f.One())
	ec.mOneA = ec.twisted && f.Equal(ec.a, f.Neg(f.One()))
	ec.extended = ec.mOneA
	ec.oneC = f.Equal(ec.c, f.One())

	if ec.twisted && !ec.oneC {
		return nil, fmt.Errorf("%w: curve %s: twisted Edwards curve requires c = 1", pseudoanon.ErrInvalidCurveConfig, params.Name)
	}

	ec.g = ec.point(f.Reduce(params.Gx), f.Reduce(params.Gy), nil, nil)
	if !ec.Validate(ec.g) {
		return nil, fmt.Errorf("%w: curve %s: generator is not on the curve", pseudoanon.ErrInvalidCurveConfig, params.Name)
	}
	ec.g.Precompute(0)
	return ec, nil
}

// Twisted reports whether a ≠ 1.
func (ec *EdwardsCurve) Twisted() bool { return ec.twisted }

// Extended reports whether points use extended coordinates.
func (ec *EdwardsCurve) Extended() bool { return ec.extended }

func (ec *EdwardsCurve) mulA(v *big.Int) *big.Int {
	if ec.mOneA {
		return ec.field.Neg(v)
	}
	return ec.field.Mul(ec.a, v)
}

func (ec *EdwardsCurve) mulC(v *big.Int) *big.Int {
	if ec.oneC {
		return v
	}
	return ec.field.Mul(ec.c, v)
}

// point assembles a point from reduced coordinates. A nil z means one; a
// nil t is derived on extended curves.
func (ec *EdwardsCurve) point(x, y, z, t *big.Int) *EdwardsPoint {
	f := ec.field
	p := &EdwardsPoint{curve: ec, x: x, y: y, z: z, t: t}
	if p.z == nil {
		p.z = f.One()
	}
	p.zOne = f.Equal(p.z, f.One())
	if ec.extended && p.t == nil {
		p.t = f.Mul(p.x, p.y)
		if !p.zOne {
			if zi := f.Inv(p.z); zi != nil {
				p.t = f.Mul(p.t, zi)
			}
		}
	}
	if !ec.extended {
		p.t = nil
	}
	return p
}

func (ec *EdwardsCurve) infinity() *EdwardsPoint {
	f := ec.field
	return ec.point(f.Zero(), ec.c, f.One(), f.Zero())
}

func (ec *EdwardsCurve) Infinity() Point  { return ec.infinity() }
func (ec *EdwardsCurve) Generator() Point { return ec.g }

// Point accepts (), (x, y), (x, y, z) or, on extended curves, (x, y, z, t).
// A supplied t must satisfy t·z = x·y.
func (ec *EdwardsCurve) Point(coords ...*big.Int) (Point, error) {
	switch len(coords) {
	case 0:
		return ec.infinity(), nil
	case 2:
		return ec.point(ec.coord(coords[0]), ec.coord(coords[1]), nil, nil), nil
	case 3:
		return ec.point(ec.coord(coords[0]), ec.coord(coords[1]), ec.coord(coords[2]), nil), nil
	case 4:
		if ec.extended {
			f := ec.field
			x, y, z, t := ec.coord(coords[0]), ec.coord(coords[1]), ec.coord(coords[2]), ec.coord(coords[3])
			if !f.Equal(f.Mul(t, z), f.Mul(x, y)) {
				return nil, fmt.Errorf("%w: t·z != x·y on %s", pseudoanon.ErrInvalidPoint, ec.Name())
			}
			return ec.point(x, y, z, t), nil
		}
	}
	want := "0, 2 or 3"
	if ec.extended {
		want = "0, 2, 3 or 4"
	}
	return nil, ec.arityError("edwards", len(coords), want)
}

// PointFromX solves y² = (c² - a·x²) / (1 - c²·d·x²).
func (ec *EdwardsCurve) PointFromX(x *big.Int, odd bool) (Point, error) {
	f := ec.field
	x = ec.coord(x)
	x2 := f.Sqr(x)
	rhs := f.Sub(ec.c2, f.Mul(ec.a, x2))
	lhs := f.Sub(f.One(), f.Mul(f.Mul(ec.c2, ec.d), x2))
	y2 := f.Div(rhs, lhs)
	if y2 == nil {
		return nil, fmt.Errorf("%w: x has no matching y on %s", pseudoanon.ErrInvalidPoint, ec.Name())
	}

	y, ok := f.Sqrt(y2)
	if !ok || !f.Equal(f.Sqr(y), y2) {
		return nil, fmt.Errorf("%w: x has no matching y on %s", pseudoanon.ErrInvalidPoint, ec.Name())
	}
	if f.IsOdd(y) != odd {
		y = f.Neg(y)
	}
	return ec.point(x, y, nil, nil), nil
}

// PointFromY solves x² = (y² - c²) / (c²·d·y² - a).
func (ec *EdwardsCurve) PointFromY(y *big.Int, odd bool) (Point, error) {
	f := ec.field
	y = ec.coord(y)
	y2 := f.Sqr(y)
	lhs := f.Sub(y2, ec.c2)
	rhs := f.Sub(f.Mul(f.Mul(y2, ec.d), ec.c2), ec.a)
	x2 := f.Div(lhs, rhs)
	if x2 == nil {
		return nil, fmt.Errorf("%w: y has no matching x on %s", pseudoanon.ErrInvalidPoint, ec.Name())
	}

	if f.IsZero(x2) {
		if odd {
			return nil, fmt.Errorf("%w: x = 0 has no odd root", pseudoanon.ErrInvalidPoint)
		}
		return ec.point(f.Zero(), y, nil, nil), nil
	}

	x, ok := f.Sqrt(x2)
	if !ok || !f.Equal(f.Sqr(x), x2) {
		return nil, fmt.Errorf("%w: y has no matching x on %s", pseudoanon.ErrInvalidPoint, ec.Name())
	}
	if f.IsOdd(x) != odd {
		x = f.Neg(x)
	}
	return ec.point(x, y, nil, nil), nil
}

func (ec *EdwardsCurve) Validate(p Point) bool {
	ep, ok := p.(*EdwardsPoint)
	if !ok || ep.curve != ec {
		return false
	}
	if ep.IsInfinity() {
		return true
	}
	ep.Normalize()

	f := ec.field
	if ec.extended && !f.Equal(ep.t, f.Mul(ep.x, ep.y)) {
		return false
	}
	x2 := f.Sqr(ep.x)
	y2 := f.Sqr(ep.y)
	lhs := f.Add(f.Mul(x2, ec.a), y2)
	rhs := f.Mul(ec.c2, f.Add(f.One(), f.Mul(f.Mul(ec.d, x2), y2)))
	return f.Equal(lhs, rhs)
}

func (ec *EdwardsCurve) PointFromJSON(data []byte) (Point, error) {
	coords, err := unmarshalCoords(ec.field, data)
	if err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, ec.arityError("edwards", 0, "2 or more")
	}
	p, err := ec.Point(coords...)
	if err != nil {
		return nil, err
	}
	if !ec.Validate(p.(*EdwardsPoint).clone()) {
		return nil, fmt.Errorf("%w: decoded point is not on %s", pseudoanon.ErrInvalidPoint, ec.Name())
	}
	return p, nil
}

func (ec *EdwardsCurve) DecodePoint(data []byte) (Point, error) {
	return decodeSEC1(ec, data)
}

// EdwardsPoint is a projective point (x : y : z), with t = x·y/z on
// extended curves.
type EdwardsPoint struct {
	curve      *EdwardsCurve
	x, y, z, t *big.Int
	zOne       bool

	pre  *precomputation[*EdwardsPoint]
	wnaf memo.Value[*nafTable[*EdwardsPoint]]
}

var _ groupPoint[*EdwardsPoint] = (*EdwardsPoint)(nil)

func (p *EdwardsPoint) Curve() Curve { return p.curve }

func (p *EdwardsPoint) clone() *EdwardsPoint {
	return &EdwardsPoint{curve: p.curve, x: p.x, y: p.y, z: p.z, t: p.t, zOne: p.zOne}
}

// IsInfinity reports whether p is the neutral element (0 : c : 1).
func (p *EdwardsPoint) IsInfinity() bool {
	f := p.curve.field
	if !f.IsZero(p.x) {
		return false
	}
	if f.Equal(p.y, p.z) || (p.zOne && f.Equal(p.y, p.curve.c)) {
		return true
	}
	return !p.curve.oneC && f.Equal(p.y, p.curve.mulC(p.z))
}

func (p *EdwardsPoint) Normalize() Point {
	p.normalize()
	return p
}

func (p *EdwardsPoint) normalize() {
	if p.zOne {
		return
	}
	f := p.curve.field
	zi := f.Inv(p.z)
	if zi == nil {
		return
	}
	p.x = f.Mul(p.x, zi)
	p.y = f.Mul(p.y, zi)
	if p.t != nil {
		p.t = f.Mul(p.t, zi)
	}
	p.z = f.One()
	p.zOne = true
}

func (p *EdwardsPoint) X() *big.Int {
	p.normalize()
	return new(big.Int).Set(p.x)
}

func (p *EdwardsPoint) Y() (*big.Int, error) {
	p.normalize()
	return new(big.Int).Set(p.y), nil
}

func (p *EdwardsPoint) identity() *EdwardsPoint { return p.curve.infinity() }

func (p *EdwardsPoint) precomputed() *precomputation[*EdwardsPoint] { return p.pre }
func (p *EdwardsPoint) window() *memo.Value[*nafTable[*EdwardsPoint]] { return &p.wnaf }

func (p *EdwardsPoint) orderBits() int { return p.curve.orderBits() }

// extDbl is dbl-2008-hwcd, 4M + 4S.
func (p *EdwardsPoint) extDbl() *EdwardsPoint {
	f := p.curve.field
	a := f.Sqr(p.x)
	b := f.Sqr(p.y)
	c := f.Sqr(p.z)
	c = f.Add(c, c)
	d := p.curve.mulA(a)
	e := f.Sub(f.Sub(f.Sqr(f.Add(p.x, p.y)), a), b)
	g := f.Add(d, b)
	ff := f.Sub(g, c)
	h := f.Sub(d, b)
	return p.curve.point(f.Mul(e, ff), f.Mul(g, h), f.Mul(ff, g), f.Mul(e, h))
}

// projDbl is dbl-2008-bbjlp on twisted curves and dbl-2007-bl otherwise.
func (p *EdwardsPoint) projDbl() *EdwardsPoint {
	f := p.curve.field
	b := f.Sqr(f.Add(p.x, p.y))
	c := f.Sqr(p.x)
	d := f.Sqr(p.y)

	var nx, ny, nz *big.Int
	if p.curve.twisted {
		e := p.curve.mulA(c)
		ff := f.Add(e, d)
		if p.zOne {
			nx = f.Mul(f.Sub(f.Sub(b, c), d), f.Sub(ff, f.Two()))
			ny = f.Mul(ff, f.Sub(e, d))
			nz = f.Sub(f.Sub(f.Sqr(ff), ff), ff)
		} else {
			h := f.Sqr(p.z)
			j := f.Sub(f.Sub(ff, h), h)
			nx = f.Mul(f.Sub(f.Sub(b, c), d), j)
			ny = f.Mul(ff, f.Sub(e, d))
			nz = f.Mul(ff, j)
		}
	} else {
		e := f.Add(c, d)
		h := f.Sqr(p.curve.mulC(p.z))
		j := f.Sub(f.Sub(e, h), h)
		nx = f.Mul(p.curve.mulC(f.Sub(b, e)), j)
		ny = f.Mul(p.curve.mulC(e), f.Sub(c, d))
		nz = f.Mul(e, j)
	}
	return p.curve.point(nx, ny, nz, nil)
}

func (p *EdwardsPoint) dbl() *EdwardsPoint {
	if p.IsInfinity() {
		return p
	}
	if p.curve.extended {
		return p.extDbl()
	}
	return p.projDbl()
}

// extAdd is add-2008-hwcd-3, 8M.
func (p *EdwardsPoint) extAdd(q *EdwardsPoint) *EdwardsPoint {
	f := p.curve.field
	a := f.Mul(f.Sub(p.y, p.x), f.Sub(q.y, q.x))
	b := f.Mul(f.Add(p.y, p.x), f.Add(q.y, q.x))
	c := f.Mul(f.Mul(p.t, p.curve.dd), q.t)
	d := f.Mul(p.z, f.Add(q.z, q.z))
	e := f.Sub(b, a)
	ff := f.Sub(d, c)
	g := f.Add(d, c)
	h := f.Add(b, a)
	return p.curve.point(f.Mul(e, ff), f.Mul(g, h), f.Mul(ff, g), f.Mul(e, h))
}

// projAdd is add-2008-bbjlp on twisted curves and add-2007-bc otherwise,
// 10M + 1S.
func (p *EdwardsPoint) projAdd(q *EdwardsPoint) *EdwardsPoint {
	f := p.curve.field
	a := f.Mul(p.z, q.z)
	b := f.Sqr(a)
	c := f.Mul(p.x, q.x)
	d := f.Mul(p.y, q.y)
	e := f.Mul(f.Mul(p.curve.d, c), d)
	ff := f.Sub(b, e)
	g := f.Add(b, e)
	tmp := f.Sub(f.Sub(f.Mul(f.Add(p.x, p.y), f.Add(q.x, q.y)), c), d)
	nx := f.Mul(f.Mul(a, ff), tmp)

	var ny, nz *big.Int
	if p.curve.twisted {
		ny = f.Mul(f.Mul(a, g), f.Sub(d, p.curve.mulA(c)))
		nz = f.Mul(ff, g)
	} else {
		ny = f.Mul(f.Mul(a, g), f.Sub(d, c))
		nz = f.Mul(p.curve.mulC(ff), g)
	}
	return p.curve.point(nx, ny, nz, nil)
}

func (p *EdwardsPoint) add(q *EdwardsPoint) *EdwardsPoint {
	if p.IsInfinity() {
		return q.clone()
	}
	if q.IsInfinity() {
		return p.clone()
	}
	if p.curve.extended {
		return p.extAdd(q)
	}
	return p.projAdd(q)
}

func (p *EdwardsPoint) neg() *EdwardsPoint {
	f := p.curve.field
	var t *big.Int
	if p.t != nil {
		t = f.Neg(p.t)
	}
	return p.curve.point(f.Neg(p.x), p.y, p.z, t)
}

func (p *EdwardsPoint) Double() Point { return p.dbl() }
func (p *EdwardsPoint) Neg() Point    { return p.neg() }

func (p *EdwardsPoint) Add(q Point) (Point, error) {
	eq, err := p.same(q)
	if err != nil {
		return nil, err
	}
	return p.add(eq), nil
}

func (p *EdwardsPoint) Mul(k *big.Int) Point {
	return scalarMul(p, k)
}

func (p *EdwardsPoint) MulAdd(k1 *big.Int, q Point, k2 *big.Int) (Point, error) {
	r, err := p.JMulAdd(k1, q, k2)
	if err != nil {
		return nil, err
	}
	return r.Normalize(), nil
}

func (p *EdwardsPoint) JMulAdd(k1 *big.Int, q Point, k2 *big.Int) (Point, error) {
	eq, err := p.same(q)
	if err != nil {
		return nil, err
	}
	return jsfMulAdd(p, k1, eq, k2), nil
}

func (p *EdwardsPoint) Precompute(power int) Point {
	p.pre = precompute(p, power)
	return p
}

// Equal compares the affine coordinates of p and q.
func (p *EdwardsPoint) Equal(q Point) bool {
	eq, ok := q.(*EdwardsPoint)
	if !ok || eq.curve != p.curve {
		return false
	}
	if p == eq {
		return true
	}
	f := p.curve.field
	p.normalize()
	eq.normalize()
	return f.Equal(p.x, eq.x) && f.Equal(p.y, eq.y)
}

// EqXToP reports whether x, a residue modulo the group order, equals the
// x-coordinate of p once lifted back into the field.
func (p *EdwardsPoint) EqXToP(x *big.Int) bool {
	f := p.curve.field
	rx := f.Mul(f.Reduce(x), p.z)
	if f.Equal(p.x, rx) {
		return true
	}

	xc := new(big.Int).Set(x)
	t := f.Mul(p.curve.redN, p.z)
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

func (p *EdwardsPoint) same(q Point) (*EdwardsPoint, error) {
	eq, ok := q.(*EdwardsPoint)
	if !ok || eq.curve != p.curve {
		return nil, fmt.Errorf("%w: %s and %s", pseudoanon.ErrCurveMismatch, p.curve.Name(), q.Curve().Name())
	}
	return eq, nil
}

func (p *EdwardsPoint) Encode(compact bool) []byte {
	x := p.X()
	y, _ := p.Y()
	return encodeSEC1(p.curve.field, x, y, compact)
}

// MarshalJSON writes [x, y] for normalized points of non-extended curves,
// [x, y, z] for projective points and [x, y, z, t] on extended curves.
func (p *EdwardsPoint) MarshalJSON() ([]byte, error) {
	f := p.curve.field
	switch {
	case p.curve.extended:
		return marshalCoords(f, p.x, p.y, p.z, p.t)
	case p.zOne:
		return marshalCoords(f, p.x, p.y)
	default:
		return marshalCoords(f, p.x, p.y, p.z)
	}
}

func (p *EdwardsPoint) String() string {
	if p.IsInfinity() {
		return "<EC Point Infinity>"
	}
	return fmt.Sprintf("<EC Point x: %x y: %x z: %x>", p.x, p.y, p.z)
}
