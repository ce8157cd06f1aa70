package curves

import (
	"math/big"

	"github.com/icure/pseudoanon/internal/crypto/recoding"
	"github.com/icure/pseudoanon/internal/memo"
)

const (
	// wnafWindow is the window width used for points without precomputation.
	wnafWindow = 4

	// precomputedWindow is the window width of the NAF table cached by
	// Precompute.
	precomputedWindow = 8

	// doublesStep is the spacing, in doublings, between entries of the
	// fixed-base table.
	doublesStep = 4
)

// groupPoint is the group law a family provides to the shared
// multiplication routines. add must accept any two points of the same
// curve, including equal points and the identity.
type groupPoint[P any] interface {
	Point
	add(q P) P
	dbl() P
	neg() P
	identity() P
	precomputed() *precomputation[P]
	window() *memo.Value[*nafTable[P]]
	orderBits() int
}

// precomputation holds the multiples cached on a point by Precompute.
type precomputation[P any] struct {
	doubles *doublesTable[P]
	naf     memo.Value[*nafTable[P]]
}

// doublesTable stores P, 2^step·P, 2^(2·step)·P, ...
type doublesTable[P any] struct {
	step   int
	nbits  int
	points []P
}

// nafTable stores the odd multiples P, 3P, 5P, ... for window width wnd.
type nafTable[P any] struct {
	wnd    int
	points []P
}

func (d *doublesTable[P]) covers(k *big.Int) bool {
	bits := k.BitLen()
	if d.nbits > bits {
		bits = d.nbits
	}
	return len(d.points) >= (bits+1+d.step-1)/d.step
}

func dblp[P groupPoint[P]](p P, n int) P {
	for i := 0; i < n; i++ {
		p = p.dbl()
	}
	return p
}

func buildDoubles[P groupPoint[P]](p P, step, power int) *doublesTable[P] {
	points := []P{p}
	acc := p
	for i := 0; i < power; i += step {
		acc = dblp(acc, step)
		points = append(points, acc)
	}
	return &doublesTable[P]{step: step, nbits: p.orderBits(), points: points}
}

func buildNAFTable[P groupPoint[P]](p P, wnd int) *nafTable[P] {
	points := make([]P, 1<<(wnd-1))
	points[0] = p
	if len(points) > 1 {
		twice := p.dbl()
		for i := 1; i < len(points); i++ {
			points[i] = points[i-1].add(twice)
		}
	}
	return &nafTable[P]{wnd: wnd, points: points}
}

// precompute fills both tables of p. The NAF table is built eagerly so that
// a precomputed point can afterwards be read from several goroutines.
func precompute[P groupPoint[P]](p P, power int) *precomputation[P] {
	if power <= 0 {
		power = p.orderBits() + 1
	}
	pre := &precomputation[P]{doubles: buildDoubles(p, doublesStep, power)}
	pre.naf.Set(buildNAFTable(p, precomputedWindow))
	return pre
}

// nafPoints returns the odd multiples used by wnafMul. Points without
// precomputation build a narrower table on first use and keep it.
func nafPoints[P groupPoint[P]](p P) *nafTable[P] {
	if pre := p.precomputed(); pre != nil {
		return pre.naf.Get(func() *nafTable[P] { return buildNAFTable(p, precomputedWindow) })
	}
	return p.window().Get(func() *nafTable[P] { return buildNAFTable(p, wnafWindow) })
}

// scalarMul dispatches to the fixed-base comb when p carries a doubles table
// long enough for k and to the windowed NAF method otherwise.
func scalarMul[P groupPoint[P]](p P, k *big.Int) P {
	if k.Sign() < 0 {
		return scalarMul(p, new(big.Int).Neg(k)).neg()
	}
	if k.Sign() == 0 || p.IsInfinity() {
		return p.identity()
	}
	if pre := p.precomputed(); pre != nil && pre.doubles != nil && pre.doubles.covers(k) {
		return fixedNafMul(p, k, pre.doubles)
	}
	return wnafMul(p, k)
}

func fixedNafMul[P groupPoint[P]](p P, k *big.Int, doubles *doublesTable[P]) P {
	step := doubles.step
	naf := recoding.NAF(k, 1, doubles.nbits)

	// Largest window value a NAF can produce over step digits.
	top := 1<<(step+1) - 2
	if step%2 != 0 {
		top = 1<<(step+1) - 1
	}
	top /= 3

	repr := make([]int, 0, (len(naf)+step-1)/step)
	for j := 0; j < len(naf); j += step {
		w := 0
		for l := j + step - 1; l >= j; l-- {
			w <<= 1
			if l < len(naf) {
				w += naf[l]
			}
		}
		repr = append(repr, w)
	}

	a := p.identity()
	b := p.identity()
	for i := top; i > 0; i-- {
		for j, w := range repr {
			switch w {
			case i:
				b = b.add(doubles.points[j])
			case -i:
				b = b.add(doubles.points[j].neg())
			}
		}
		a = a.add(b)
	}
	return a
}

func wnafMul[P groupPoint[P]](p P, k *big.Int) P {
	tbl := nafPoints(p)
	naf := recoding.NAF(k, tbl.wnd, 0)

	acc := p.identity()
	for i := len(naf) - 1; i >= 0; i-- {
		l := 0
		for ; i >= 0 && naf[i] == 0; i-- {
			l++
		}
		if i >= 0 {
			l++
		}
		acc = dblp(acc, l)
		if i < 0 {
			break
		}
		if z := naf[i]; z > 0 {
			acc = acc.add(tbl.points[(z-1)>>1])
		} else {
			acc = acc.add(tbl.points[(-z-1)>>1].neg())
		}
	}
	return acc
}

// jsfMulAdd computes k1·P1 + k2·P2 with one shared chain of doublings.
func jsfMulAdd[P groupPoint[P]](p1 P, k1 *big.Int, p2 P, k2 *big.Int) P {
	if k1.Sign() < 0 {
		p1, k1 = p1.neg(), new(big.Int).Neg(k1)
	}
	if k2.Sign() < 0 {
		p2, k2 = p2.neg(), new(big.Int).Neg(k2)
	}

	sum := p1.add(p2)
	diff := p1.add(p2.neg())
	jsf := recoding.JSF(k1, k2)

	acc := p1.identity()
	for i := len(jsf[0]) - 1; i >= 0; i-- {
		acc = acc.dbl()

		u1, u2 := jsf[0][i], jsf[1][i]
		var t P
		switch {
		case u1 == 0 && u2 == 0:
			continue
		case u2 == 0:
			t = p1
		case u1 == 0:
			t = p2
		case u1 == u2:
			t = sum
		default:
			t = diff
		}
		if u1 < 0 || (u1 == 0 && u2 < 0) {
			t = t.neg()
		}
		acc = acc.add(t)
	}
	return acc
}
