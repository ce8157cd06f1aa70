package derive

import (
	"github.com/icure/pseudoanon/internal/crypto/curves"
)

// Vector is a known mapping on P-521. Identifiers and coordinates are
// standard base64; coordinates use their minimal big-endian bytes.
type Vector struct {
	Identifier string `json:"identifier"`
	BufferSize int    `json:"bufferSize"`
	X          string `json:"x"`
	Y          string `json:"y"`
}

var Vectors = []Vector{
	{
		Identifier: "MQ==",
		BufferSize: 8,
		X:          "MQEAAAAAAAAAAA==",
		Y:          "AXl70XtfhDm4Cnea3hlex8b28hJIcKyrTvVPZIJcKXB9i5Fa31edK1Vixy0uToeBjdmciimSZJitewWWI1Gl8O8D",
	},
	{
		Identifier: "MTI=",
		BufferSize: 8,
		X:          "MTICAAAAAAAAAAA=",
		Y:          "AURV0WACmddkLIQK2IF76J0XGOygU+mSZ5gnbQFQ7WSyEUq9H/c0738e2pwVTiSxcI1xz1dGqTcYfotir3K0LQrz",
	},
	{
		Identifier: "MTIz",
		BufferSize: 8,
		X:          "MTIzAwAAAAAAAAAC",
		Y:          "Ab7tvuqKb0YZUbDylYcjLMwSFZktNJDW+8g9PWVGCQskCN6OGtOpQuHogHUbvuPE30B0U5UCA6PaXzlF7wzKVEbx",
	},
}

// VectorCheck is the outcome of re-deriving a Vector.
type VectorCheck struct {
	Vector
	GotX     string `json:"gotX"`
	GotY     string `json:"gotY"`
	Attempts int    `json:"attempts"`
}

func (c *VectorCheck) OK() bool {
	return c.GotX == c.X && c.GotY == c.Y
}

// CheckVectors re-derives every Vector on P-521. A mismatch is reported
// through VectorCheck.OK, only derivation failures are errors.
func CheckVectors(opts ...Option) ([]*VectorCheck, error) {
	out := make([]*VectorCheck, 0, len(Vectors))
	for _, v := range Vectors {
		d, err := New(curves.P521(), v.BufferSize, opts...)
		if err != nil {
			return nil, err
		}
		r, err := d.DeriveBase64(v.Identifier)
		if err != nil {
			return nil, err
		}
		y, err := r.YBase64()
		if err != nil {
			return nil, err
		}
		out = append(out, &VectorCheck{Vector: v, GotX: r.XBase64(), GotY: y, Attempts: r.Attempts})
	}
	return out, nil
}
