package curves

import (
	"fmt"
	"math/big"

	fasthex "github.com/tmthrgd/go-hex"

	"github.com/icure/pseudoanon/internal/crypto/field"
	"github.com/icure/pseudoanon/internal/utils"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// marshalCoords writes coordinates as a JSON array of fixed-width
// big-endian hex strings.
func marshalCoords(f *field.Field, coords ...*big.Int) ([]byte, error) {
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = fasthex.EncodeToString(f.Encode(c))
	}
	return utils.MarshalJSON(out)
}

func unmarshalCoords(f *field.Field, data []byte) ([]*big.Int, error) {
	var raw []string
	if err := utils.UnmarshalJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", pseudoanon.ErrInvalidPoint, err)
	}

	coords := make([]*big.Int, len(raw))
	for i, s := range raw {
		b, err := fasthex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: coordinate %d: %v", pseudoanon.ErrInvalidPoint, i, err)
		}
		if len(b) > f.ByteLen() {
			return nil, fmt.Errorf("%w: coordinate %d is %d bytes, want at most %d", pseudoanon.ErrInvalidPoint, i, len(b), f.ByteLen())
		}
		if coords[i], err = f.DecodeCanonical(b); err != nil {
			return nil, fmt.Errorf("%w: coordinate %d: %v", pseudoanon.ErrInvalidPoint, i, err)
		}
	}
	return coords, nil
}

// encodeSEC1 writes 0x04|x|y, or 0x02|x / 0x03|x according to the parity
// of y when compact.
func encodeSEC1(f *field.Field, x, y *big.Int, compact bool) []byte {
	n := f.ByteLen()
	if compact {
		out := make([]byte, 1+n)
		out[0] = 0x02
		if f.IsOdd(y) {
			out[0] = 0x03
		}
		x.FillBytes(out[1:])
		return out
	}
	out := make([]byte, 1+2*n)
	out[0] = 0x04
	x.FillBytes(out[1 : 1+n])
	y.FillBytes(out[1+n:])
	return out
}

// decodeSEC1 reads the compressed, uncompressed and hybrid (0x06/0x07)
// encodings.
func decodeSEC1(c Curve, data []byte) (Point, error) {
	f := c.Field()
	n := f.ByteLen()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty encoding", pseudoanon.ErrInvalidPoint)
	}

	switch tag := data[0]; tag {
	case 0x02, 0x03:
		if len(data) != 1+n {
			return nil, fmt.Errorf("%w: compressed encoding must be %d bytes, got %d", pseudoanon.ErrInvalidPoint, 1+n, len(data))
		}
		x, err := f.DecodeCanonical(data[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pseudoanon.ErrInvalidPoint, err)
		}
		return c.PointFromX(x, tag == 0x03)

	case 0x04, 0x06, 0x07:
		if len(data) != 1+2*n {
			return nil, fmt.Errorf("%w: uncompressed encoding must be %d bytes, got %d", pseudoanon.ErrInvalidPoint, 1+2*n, len(data))
		}
		x, err := f.DecodeCanonical(data[1 : 1+n])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pseudoanon.ErrInvalidPoint, err)
		}
		y, err := f.DecodeCanonical(data[1+n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pseudoanon.ErrInvalidPoint, err)
		}
		if tag != 0x04 && f.IsOdd(y) != (tag == 0x07) {
			return nil, fmt.Errorf("%w: hybrid tag %#x does not match y parity", pseudoanon.ErrInvalidPoint, tag)
		}
		p, err := c.Point(x, y)
		if err != nil {
			return nil, err
		}
		if !c.Validate(p) {
			return nil, fmt.Errorf("%w: decoded point is not on %s", pseudoanon.ErrInvalidPoint, c.Name())
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: unknown encoding tag %#x", pseudoanon.ErrInvalidPoint, data[0])
}
