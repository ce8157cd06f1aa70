package curves

import (
	"fmt"
	"strings"
	"sync"

	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// Built-in curves. Each is built on first use and shared afterwards.
var presets = []paramsFile{
	{
		Name:   "p521",
		Family: "short",
		P:      "1ff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff",
		A:      "-3",
		B:      "51 953eb961 8e1c9a1f 929a21a0 b68540ee a2da725b 99b315f3 b8b48991 8ef109e1 56193951 ec7e937b 1652c0bd 3bb1bf07 3573df88 3d2c34f1 ef451fd4 6b503f00",
		N:      "1ff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff fffffffa 51868783 bf2f966b 7fcc0148 f709a5d0 3bb5c9b8 899c47ae bb6fb71e 91386409",
		H:      "1",
		G: []string{
			"c6 858e06b7 0404e9cd 9e3ecb66 2395b442 9c648139 053fb521 f828af60 6b4d3dba a14b5e77 efe75928 fe1dc127 a2ffa8de 3348b3c1 856a429b f97e7e31 c2e5bd66",
			"118 39296a78 9a3bc004 5c8a5fb4 2c7d1bd9 98f54449 579b4468 17afbd17 273e662c 97ee7299 5ef42640 c550b901 3fad0761 353c7086 a272c240 88be9476 9fd16650",
		},
	},
	{
		Name:   "p256",
		Family: "short",
		P:      "ffffffff 00000001 00000000 00000000 00000000 ffffffff ffffffff ffffffff",
		A:      "-3",
		B:      "5ac635d8 aa3a93e7 b3ebbd55 769886bc 651d06b0 cc53b0f6 3bce3c3e 27d2604b",
		N:      "ffffffff 00000000 ffffffff ffffffff bce6faad a7179e84 f3b9cac2 fc632551",
		H:      "1",
		G: []string{
			"6b17d1f2 e12c4247 f8bce6e5 63a440f2 77037d81 2deb33a0 f4a13945 d898c296",
			"4fe342e2 fe1a7f9b 8ee7eb4a 7c0f9e16 2bce3357 6b315ece cbb64068 37bf51f5",
		},
	},
	{
		Name:   "secp256k1",
		Family: "short",
		P:      "ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff fffffffe fffffc2f",
		A:      "0",
		B:      "7",
		N:      "ffffffff ffffffff ffffffff fffffffe baaedce6 af48a03b bfd25e8c d0364141",
		H:      "1",
		G: []string{
			"79be667e f9dcbbac 55a06295 ce870b07 029bfcdb 2dce28d9 59f2815b 16f81798",
			"483ada77 26a3c465 5da4fbfc 0e1108a8 fd17b448 a6855419 9c47d08f fb10d4b8",
		},
	},
	{
		Name:   "ed25519",
		Family: "edwards",
		P:      "7fffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffed",
		A:      "-1",
		C:      "1",
		D:      "52036cee 2b6ffe73 8cc74079 7779e898 00700a4d 4141d8ab 75eb4dca 135978a3",
		N:      "10000000 00000000 00000000 00000000 14def9de a2f79cd6 5812631a 5cf5d3ed",
		H:      "8",
		G: []string{
			"216936d3 cd6e53fe c0a4e231 fdd6dc5c 692cc760 9525a7b2 c9562d60 8f25d51a",
			"66666666 66666666 66666666 66666666 66666666 66666666 66666666 66666658",
		},
	},
	{
		Name:   "ed448",
		Family: "edwards",
		P:      "ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff fffffffe ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff",
		A:      "1",
		C:      "1",
		D:      "-98a9",
		N:      "3fffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff 7cca23e9 c44edb49 aed63690 216cc272 8dc58f55 2378c292 ab5844f3",
		H:      "4",
		G: []string{
			"4f1970c6 6bed0ded 221d15a6 22bf36da 9e146570 470f1767 ea6de324 a3d3a464 12ae1af7 2ab66511 433b80e1 8b00938e 2626a82b c70cc05e",
			"693f4671 6eb6bc24 88762037 56c9c762 4bea7373 6ca39840 87789c1e 05a0c2d7 3ad3ff1c e67c39c4 fdbd132c 4ed7c8ad 9808795b f230fa14",
		},
	},
	{
		Name:   "e521",
		Family: "edwards",
		P:      "1ff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff",
		A:      "1",
		C:      "1",
		D:      "-5bcce",
		N:      "7f ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff fffffffd 15b6c647 46fc85f7 36b8af5e 7ec53f04 fbd8c456 9a8f1f45 40ea2435 f5180d6b",
		H:      "4",
		G: []string{
			"75 2cb45c48 648b189d f90cb229 6b2878a3 bfd9f42f c6c818ec 8bf3c9c0 c6203913 f6ecc5cc c72434b1 ae949d56 8fc99c60 59d0fb13 364838aa 302a940a 2f19ba6c",
			"c",
		},
	},
	{
		Name:   "bandersnatch",
		Family: "edwards",
		P:      "73eda753 299d7d48 3339d808 09a1d805 53bda402 fffe5bfe ffffffff 00000001",
		A:      "-5",
		C:      "1",
		D:      "6389c126 33c267cb c66e3bf8 6be3b6d8 cb666771 77e54f92 b369f2f5 188d58e7",
		N:      "1cfb69d4 ca675f52 0cce7602 02687600 ff8f8700 74190471 74fd06b5 2876e7e1",
		H:      "4",
		G: []string{
			"41805fae 2224fac3 14ff0d6a 07713eb4 90d7de3f 01a4c6ec f10e502b d002599d",
			"3cc5e040 9b7814de b8d21795 6f2f64dc 73906ef5 ffc9ac29 1fec2c6c 42dcac7a",
		},
	},
	{
		Name:   "curve25519",
		Family: "mont",
		P:      "7fffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffed",
		A:      "76d06",
		B:      "1",
		N:      "10000000 00000000 00000000 00000000 14def9de a2f79cd6 5812631a 5cf5d3ed",
		H:      "8",
		G: []string{
			"9",
		},
	},
}

var aliases = map[string]string{
	"p-521":      "p521",
	"secp521r1":  "p521",
	"p-256":      "p256",
	"secp256r1":  "p256",
	"prime256v1": "p256",
	"x25519":     "curve25519",
}

type preset struct {
	def   *paramsFile
	once  sync.Once
	curve Curve
	err   error
}

func (p *preset) get() (Curve, error) {
	p.once.Do(func() {
		params, err := p.def.params()
		if err != nil {
			p.err = err
			return
		}
		p.curve, p.err = New(params)
	})
	return p.curve, p.err
}

var registry = func() map[string]*preset {
	m := make(map[string]*preset, len(presets))
	for i := range presets {
		m[presets[i].Name] = &preset{def: &presets[i]}
	}
	return m
}()

// Names lists the built-in curves.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// ByName returns a built-in curve. Names are case-insensitive and accept
// the usual aliases such as "P-521" or "secp256r1".
func ByName(name string) (Curve, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	p, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", pseudoanon.ErrUnknownCurve, name)
	}
	return p.get()
}

// MustByName is like ByName but panics when the curve is unknown.
func MustByName(name string) Curve {
	c, err := ByName(name)
	if err != nil {
		panic(err)
	}
	return c
}

func P521() *ShortCurve           { return MustByName("p521").(*ShortCurve) }
func P256() *ShortCurve           { return MustByName("p256").(*ShortCurve) }
func Secp256k1() *ShortCurve      { return MustByName("secp256k1").(*ShortCurve) }
func Ed25519() *EdwardsCurve      { return MustByName("ed25519").(*EdwardsCurve) }
func Ed448() *EdwardsCurve        { return MustByName("ed448").(*EdwardsCurve) }
func E521() *EdwardsCurve         { return MustByName("e521").(*EdwardsCurve) }
func Bandersnatch() *EdwardsCurve { return MustByName("bandersnatch").(*EdwardsCurve) }
func Curve25519() *MontCurve      { return MustByName("curve25519").(*MontCurve) }
