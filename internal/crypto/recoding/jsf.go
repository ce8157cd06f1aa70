package recoding

import (
	"math/big"
)

// JSF returns the joint sparse form of the non-negative integers k1 and k2.
// Both sequences have the same length and digits in {-1, 0, 1}; at most half
// of the joint columns are nonzero, which lets k1·P + k2·Q share doublings.
func JSF(k1, k2 *big.Int) [2][]int {
	if k1.Sign() < 0 || k2.Sign() < 0 {
		panic("recoding: JSF of a negative scalar")
	}

	var jsf [2][]int
	a := new(big.Int).Set(k1)
	b := new(big.Int).Set(k2)
	d1, d2 := 0, 0

	for a.Sign() > 0 || d1 > 0 || b.Sign() > 0 || d2 > 0 {
		// First phase: pick the digits.
		m14 := (low(a, 3) + d1) & 3
		m24 := (low(b, 3) + d2) & 3
		if m14 == 3 {
			m14 = -1
		}
		if m24 == 3 {
			m24 = -1
		}

		u1 := 0
		if m14&1 != 0 {
			m8 := (low(a, 7) + d1) & 7
			if (m8 == 3 || m8 == 5) && m24 == 2 {
				u1 = -m14
			} else {
				u1 = m14
			}
		}
		jsf[0] = append(jsf[0], u1)

		u2 := 0
		if m24&1 != 0 {
			m8 := (low(b, 7) + d2) & 7
			if (m8 == 3 || m8 == 5) && m14 == 2 {
				u2 = -m24
			} else {
				u2 = m24
			}
		}
		jsf[1] = append(jsf[1], u2)

		// Second phase: update the carries.
		if 2*d1 == u1+1 {
			d1 = 1 - d1
		}
		if 2*d2 == u2+1 {
			d2 = 1 - d2
		}
		a.Rsh(a, 1)
		b.Rsh(b, 1)
	}
	return jsf
}

// low returns k & mask for a small mask.
func low(k *big.Int, mask uint) int {
	r := 0
	for i := 0; mask>>i != 0; i++ {
		if mask>>i&1 == 1 {
			r |= int(k.Bit(i)) << i
		}
	}
	return r
}
