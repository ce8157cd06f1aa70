package benchmark

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/icure/pseudoanon/internal/crypto/curves"
	"github.com/icure/pseudoanon/internal/derive"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// scalar returns a random scalar below the curve order.
func scalar(b *testing.B, c curves.Curve) *big.Int {
	k, err := rand.Int(rand.Reader, c.N())
	if err != nil {
		b.Fatal(err)
	}
	return k
}

// plainPoint returns a random point without precomputed tables.
func plainPoint(b *testing.B, c curves.Curve) curves.Point {
	p := c.Generator().Mul(scalar(b, c))
	if c.Family() == pseudoanon.Mont {
		q, err := c.Point(p.X())
		if err != nil {
			b.Fatal(err)
		}
		return q
	}
	y, err := p.Y()
	if err != nil {
		b.Fatal(err)
	}
	q, err := c.Point(p.X(), y)
	if err != nil {
		b.Fatal(err)
	}
	return q
}

// BenchmarkFixedBaseMul benchmarks the comb on the precomputed generator.
func BenchmarkFixedBaseMul(b *testing.B) {
	for _, name := range curves.Names() {
		c := curves.MustByName(name)
		b.Run(name, func(b *testing.B) {
			k := scalar(b, c)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				c.Generator().Mul(k)
			}
		})
	}
}

// BenchmarkVariableBaseMul benchmarks wNAF, or the ladder on Montgomery
// curves.
func BenchmarkVariableBaseMul(b *testing.B) {
	for _, name := range curves.Names() {
		c := curves.MustByName(name)
		b.Run(name, func(b *testing.B) {
			p := plainPoint(b, c)
			k := scalar(b, c)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p.Mul(k)
			}
		})
	}
}

// BenchmarkMulAdd benchmarks the joint sparse form double multiplication.
func BenchmarkMulAdd(b *testing.B) {
	for _, name := range []string{"p256", "secp256k1", "ed25519", "ed448"} {
		c := curves.MustByName(name)
		b.Run(name, func(b *testing.B) {
			p := plainPoint(b, c)
			q := plainPoint(b, c)
			k1, k2 := scalar(b, c), scalar(b, c)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := p.MulAdd(k1, q, k2); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPrecompute benchmarks building the comb and NAF tables.
func BenchmarkPrecompute(b *testing.B) {
	c := curves.P521()
	for i := 0; i < b.N; i++ {
		plainPoint(b, c).Precompute(0)
	}
}

// BenchmarkDerive benchmarks identifier derivation on P-521.
func BenchmarkDerive(b *testing.B) {
	d, err := derive.New(curves.P521(), derive.DefaultBufferSize)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := d.Derive([]byte(fmt.Sprintf("patient-%d", i))); err != nil {
			b.Fatal(err)
		}
	}
}
