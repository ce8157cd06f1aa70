// Package recoding converts scalars into signed-digit sequences used by
// scalar multiplication: width-w non-adjacent form and joint sparse form.
//
// A digit sequence d represents Σ d[i]·2^i, least significant digit first.
package recoding

import (
	"math/big"
)

// NAF returns the width-w non-adjacent form of k, a non-negative integer.
//
// The sequence has max(k.BitLen(), minBits)+1 digits. Every nonzero digit is
// odd with absolute value below 2^w, and nonzero digits are more than w
// positions apart. w must be between 1 and 30.
func NAF(k *big.Int, w, minBits int) []int {
	if k.Sign() < 0 {
		panic("recoding: NAF of a negative scalar")
	}
	if w < 1 || w > 30 {
		panic("recoding: window width out of range")
	}

	n := k.BitLen()
	if minBits > n {
		n = minBits
	}
	naf := make([]int, n+1)

	ws := int64(1) << (w + 1)
	mask := big.NewInt(ws - 1)
	kk := new(big.Int).Set(k)
	mod := new(big.Int)
	z := new(big.Int)

	for i := range naf {
		if kk.Bit(0) == 1 {
			m := mod.And(kk, mask).Int64()
			d := m
			if m > ws>>1-1 {
				d = m - ws
			}
			kk.Sub(kk, z.SetInt64(d))
			naf[i] = int(d)
		}
		kk.Rsh(kk, 1)
	}
	return naf
}

// Value reconstructs Σ d[i]·2^i.
func Value(digits []int) *big.Int {
	r := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		r.Lsh(r, 1)
		r.Add(r, big.NewInt(int64(digits[i])))
	}
	return r
}
