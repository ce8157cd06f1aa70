package derive

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/icure/pseudoanon/internal/crypto/curves"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

var vectors = []struct {
	identifier string
	x, y       string
	attempts   int
}{
	{
		identifier: "MQ==",
		x:          "MQEAAAAAAAAAAA==",
		y:          "AXl70XtfhDm4Cnea3hlex8b28hJIcKyrTvVPZIJcKXB9i5Fa31edK1Vixy0uToeBjdmciimSZJitewWWI1Gl8O8D",
		attempts:   1,
	},
	{
		identifier: "MTI=",
		x:          "MTICAAAAAAAAAAA=",
		y:          "AURV0WACmddkLIQK2IF76J0XGOygU+mSZ5gnbQFQ7WSyEUq9H/c0738e2pwVTiSxcI1xz1dGqTcYfotir3K0LQrz",
		attempts:   1,
	},
	{
		identifier: "MTIz",
		x:          "MTIzAwAAAAAAAAAC",
		y:          "Ab7tvuqKb0YZUbDylYcjLMwSFZktNJDW+8g9PWVGCQskCN6OGtOpQuHogHUbvuPE30B0U5UCA6PaXzlF7wzKVEbx",
		attempts:   3,
	},
}

func newP521(t testing.TB, opts ...Option) *Deriver {
	d, err := New(curves.P521(), DefaultBufferSize, opts...)
	require.NoError(t, err)
	return d
}

func TestVectors(t *testing.T) {
	d := newP521(t)
	for _, v := range vectors {
		t.Run(v.identifier, func(t *testing.T) {
			r, err := d.DeriveBase64(v.identifier)
			require.NoError(t, err)

			assert.Equal(t, v.x, r.XBase64())
			y, err := r.YBase64()
			require.NoError(t, err)
			assert.Equal(t, v.y, y)
			assert.Equal(t, v.attempts, r.Attempts)

			assert.True(t, curves.P521().Validate(r.Point))
			assert.Equal(t, uint(1), mustY(t, r.Point).Bit(0))
		})
	}
}

func TestCheckVectors(t *testing.T) {
	checks, err := CheckVectors()
	require.NoError(t, err)
	require.Len(t, checks, len(vectors))
	for i, c := range checks {
		assert.True(t, c.OK(), c.Identifier)
		assert.Equal(t, vectors[i].attempts, c.Attempts)
	}

	// A different lead byte moves every point.
	checks, err = CheckVectors(WithLeadByte(1))
	require.NoError(t, err)
	for _, c := range checks {
		assert.False(t, c.OK(), c.Identifier)
	}
}

func mustY(t testing.TB, p curves.Point) *big.Int {
	y, err := p.Y()
	require.NoError(t, err)
	return y
}

func TestBuffer(t *testing.T) {
	d := newP521(t)
	assert.Equal(t, []byte{0, '1', '2', 2, 0, 0, 0, 0, 0, 0, 0, 0}, d.Buffer([]byte("12")))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, d.Buffer(nil))

	d, err := New(curves.P521(), 0, WithLeadByte(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 'a', 1}, d.Buffer([]byte("a")))

	// The length byte wraps.
	long := bytes.Repeat([]byte{7}, 300)
	buf := d.Buffer(long)
	assert.Len(t, buf, 302)
	assert.Equal(t, byte(300%256), buf[301])
}

func TestCandidate(t *testing.T) {
	d := newP521(t)
	r, err := d.Derive([]byte("123"))
	require.NoError(t, err)

	want := new(big.Int).SetBytes(d.Buffer([]byte("123")))
	assert.Zero(t, want.Cmp(r.Candidate))
	assert.Zero(t, new(big.Int).Add(want, big.NewInt(2)).Cmp(r.Point.X()))
	assert.Equal(t, []byte("123"), r.Identifier)

	// Candidates wider than the field wrap around the prime.
	wide, err := d.Derive(bytes.Repeat([]byte{0xff}, 80))
	require.NoError(t, err)
	assert.Negative(t, wide.Candidate.Cmp(curves.P521().Field().P()))
}

func TestLeadByteChangesPoint(t *testing.T) {
	a, err := newP521(t).Derive([]byte("123"))
	require.NoError(t, err)
	b, err := newP521(t, WithLeadByte(1)).Derive([]byte("123"))
	require.NoError(t, err)
	assert.False(t, a.Point.Equal(b.Point))
}

func TestDeterministic(t *testing.T) {
	d := newP521(t)
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(rt, "id")

		a, err := d.Derive(id)
		if err != nil {
			rt.Fatal(err)
		}
		b, err := d.Derive(id)
		if err != nil {
			rt.Fatal(err)
		}
		if !a.Point.Equal(b.Point) || a.Attempts != b.Attempts {
			rt.Fatalf("derivation of %x is not stable", id)
		}
	})
}

func TestDistinct(t *testing.T) {
	d := newP521(t)
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(rt, "a")
		b := rapid.SliceOfN(rapid.Byte(), 0, 32).Filter(func(b []byte) bool { return !bytes.Equal(a, b) }).Draw(rt, "b")

		pa, err := d.Derive(a)
		if err != nil {
			rt.Fatal(err)
		}
		pb, err := d.Derive(b)
		if err != nil {
			rt.Fatal(err)
		}
		if pa.Point.Equal(pb.Point) {
			rt.Fatalf("%x and %x map to the same point", a, b)
		}
	})
}

func TestExhausted(t *testing.T) {
	d := newP521(t, WithMaxIterations(2))
	_, err := d.DeriveBase64("MTIz")
	require.Error(t, err)
	assert.ErrorIs(t, err, pseudoanon.ErrDerivationExhausted)

	var de *pseudoanon.DerivationError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Attempts)
	assert.Equal(t, []byte("123"), de.Identifier)

	r, err := newP521(t, WithMaxIterations(3)).DeriveBase64("MTIz")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Attempts)
}

func TestNewRejects(t *testing.T) {
	_, err := New(curves.P521(), -1)
	assert.Error(t, err)
	_, err = New(nil, 8)
	assert.Error(t, err)
	_, err = New(curves.P521(), 8, WithMaxIterations(0))
	assert.Error(t, err)

	_, err = newP521(t).DeriveBase64("not base64!")
	assert.Error(t, err)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Output: &buf,
		Level:  hclog.Trace,
	})

	_, err := newP521(t, WithLogger(logger)).DeriveBase64("MTIz")
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("candidate rejected")))
	assert.Contains(t, out, "derived point")
	assert.Contains(t, out, "test.derive")
	assert.Contains(t, out, "curve=p521")
}

func TestConcurrentUse(t *testing.T) {
	d := newP521(t)
	want, err := d.Derive([]byte("shared"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.Derive([]byte("shared"))
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.NoError(t, errs[i])
		assert.True(t, r.Point.Equal(want.Point), "goroutine %d", i)
	}
}

func TestDeriveAll(t *testing.T) {
	d := newP521(t)

	ids := [][]byte{[]byte("1"), []byte("12"), []byte("123")}
	got, err := d.DeriveAll(ids)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	for i, r := range got {
		assert.Equal(t, ids[i], r.Identifier)
	}
	assert.Equal(t, 3, got[2].Attempts)

	strict, err := New(curves.P521(), DefaultBufferSize, WithMaxIterations(1))
	require.NoError(t, err)
	_, err = strict.DeriveAll(ids)
	var derr *pseudoanon.DerivationError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, []byte("123"), derr.Identifier)

	empty, err := d.DeriveAll(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// offCurve hands out one point that is not on the curve before deferring to
// the wrapped curve.
type offCurve struct {
	curves.Curve
	served bool
}

func (c *offCurve) PointFromX(x *big.Int, odd bool) (curves.Point, error) {
	if !c.served {
		c.served = true
		return c.Curve.Point(x, big.NewInt(1))
	}
	return c.Curve.PointFromX(x, odd)
}

func TestDeriveSkipsInvalidPoints(t *testing.T) {
	want, err := newP521(t).Derive([]byte("12"))
	require.NoError(t, err)
	require.Equal(t, 1, want.Attempts)

	c := &offCurve{Curve: curves.P521()}
	d, err := New(c, DefaultBufferSize)
	require.NoError(t, err)

	r, err := d.Derive([]byte("12"))
	require.NoError(t, err)
	assert.True(t, c.served)
	assert.Greater(t, r.Attempts, 1)
	assert.Zero(t, r.Candidate.Cmp(want.Candidate))
	assert.Positive(t, r.Point.X().Cmp(want.Point.X()))
	assert.True(t, curves.P521().Validate(r.Point))
}

func TestOtherCurves(t *testing.T) {
	for _, name := range curves.Names() {
		t.Run(name, func(t *testing.T) {
			c := curves.MustByName(name)
			d, err := New(c, DefaultBufferSize)
			require.NoError(t, err)

			r, err := d.Derive([]byte(fmt.Sprintf("id-%s", name)))
			require.NoError(t, err)
			assert.True(t, c.Validate(r.Point))

			_, err = r.YBase64()
			if c.Family() == pseudoanon.Mont {
				assert.ErrorIs(t, err, pseudoanon.ErrUnsupportedOperation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResultJSON(t *testing.T) {
	r, err := newP521(t).DeriveBase64("MTI=")
	require.NoError(t, err)

	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"identifier":"MTI=","x":%q,"y":%q,"attempts":1}`, vectors[1].x, vectors[1].y), string(data))

	// x-only curves leave y out.
	d, err := New(curves.Curve25519(), 4)
	require.NoError(t, err)
	r, err = d.Derive([]byte("123"))
	require.NoError(t, err)
	data, err = r.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"y"`)
}
