package curves

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/hashicorp/go-multierror"
	fasthex "github.com/tmthrgd/go-hex"
	"gopkg.in/yaml.v3"

	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

// Params describes a curve. Coefficients that a family does not use are
// ignored: Weierstrass and Montgomery curves read A and B, Edwards curves
// read A, C and D. Montgomery generators carry Gx only.
type Params struct {
	Name   string
	Family pseudoanon.Family

	P *big.Int
	A *big.Int
	B *big.Int
	C *big.Int
	D *big.Int

	// N is the order of the generator and H the cofactor.
	N *big.Int
	H *big.Int

	Gx *big.Int
	Gy *big.Int
}

// Validate checks that every parameter the family needs is present. All
// problems are reported at once.
func (p *Params) Validate() error {
	var errs error
	require := func(name string, v *big.Int) {
		if v == nil {
			errs = multierror.Append(errs, fmt.Errorf("%s is required", name))
		}
	}
	positive := func(name string, v *big.Int) {
		if v == nil || v.Sign() <= 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	if p.Name == "" {
		errs = multierror.Append(errs, errors.New("name is required"))
	}
	positive("p", p.P)
	positive("n", p.N)
	positive("h", p.H)
	require("gx", p.Gx)

	switch p.Family {
	case pseudoanon.Short:
		require("a", p.A)
		require("b", p.B)
		require("gy", p.Gy)
	case pseudoanon.Edwards:
		require("a", p.A)
		require("c", p.C)
		require("d", p.D)
		require("gy", p.Gy)
	case pseudoanon.Mont:
		require("a", p.A)
		require("b", p.B)
	default:
		errs = multierror.Append(errs, fmt.Errorf("unsupported family %s", p.Family))
	}

	if errs != nil {
		return fmt.Errorf("%w: curve %q: %w", pseudoanon.ErrInvalidCurveConfig, p.Name, errs)
	}
	return nil
}

// paramsFile is the YAML layout of a curve definition. Numbers are hex
// strings that may carry a leading '-' and embedded spaces.
type paramsFile struct {
	Name   string   `yaml:"name"`
	Family string   `yaml:"family"`
	P      string   `yaml:"p"`
	A      string   `yaml:"a,omitempty"`
	B      string   `yaml:"b,omitempty"`
	C      string   `yaml:"c,omitempty"`
	D      string   `yaml:"d,omitempty"`
	N      string   `yaml:"n"`
	H      string   `yaml:"h"`
	G      []string `yaml:"g"`
}

// LoadParams reads a YAML curve definition:
//
//	name: e521
//	family: edwards
//	p: 1ff ffffffff ...
//	a: 1
//	c: 1
//	d: -5bcce
//	n: 7ff ffffffff ...
//	h: 4
//	g: [752cb45c ..., c]
//
// Edwards curves default c to 1.
func LoadParams(r io.Reader) (*Params, error) {
	var pf paramsFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("%w: %v", pseudoanon.ErrInvalidCurveConfig, err)
	}
	return pf.params()
}

func (pf *paramsFile) params() (*Params, error) {
	var errs error
	num := func(name, s string) *big.Int {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		v, err := parseHex(s)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return v
	}

	family, err := pseudoanon.ParseFamily(pf.Family)
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	params := &Params{
		Name:   pf.Name,
		Family: family,
		P:      num("p", pf.P),
		A:      num("a", pf.A),
		B:      num("b", pf.B),
		C:      num("c", pf.C),
		D:      num("d", pf.D),
		N:      num("n", pf.N),
		H:      num("h", pf.H),
	}
	if family == pseudoanon.Edwards && params.C == nil {
		params.C = big.NewInt(1)
	}
	switch len(pf.G) {
	case 2:
		params.Gy = num("gy", pf.G[1])
		fallthrough
	case 1:
		params.Gx = num("gx", pf.G[0])
	default:
		errs = multierror.Append(errs, fmt.Errorf("g must have 1 or 2 coordinates, got %d", len(pf.G)))
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: curve %q: %w", pseudoanon.ErrInvalidCurveConfig, pf.Name, errs)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// parseHex reads a hex integer, ignoring spaces and an optional 0x prefix.
func parseHex(s string) (*big.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty number")
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := fasthex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(b)
	if neg {
		v.Neg(v)
	}
	return v, nil
}
