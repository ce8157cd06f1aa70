// Package derive binds identifiers to curve points.
//
// The identifier is laid out as
//
//	lead | identifier | len(identifier) mod 256 | size zero bytes
//
// and read as a big-endian integer. That integer, reduced modulo the field
// prime, is the first candidate x-coordinate. Candidates are tried in
// increasing order until one lies on the curve; the point with the odd
// y-coordinate is returned. The mapping is public and deterministic, it
// offers no hiding.
package derive

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-hclog"

	"github.com/icure/pseudoanon/internal/crypto/curves"
	"github.com/icure/pseudoanon/internal/utils"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

type Option func(*Deriver)

func WithLogger(logger hclog.Logger) Option {
	return func(d *Deriver) {
		d.logger = logger
	}
}

func WithMaxIterations(n int) Option {
	return func(d *Deriver) {
		d.maxIterations = n
	}
}

func WithLeadByte(b byte) Option {
	return func(d *Deriver) {
		d.lead = b
	}
}

// Deriver holds only immutable state and may be shared between goroutines.
type Deriver struct {
	curve         curves.Curve
	size          int
	maxIterations int
	lead          byte
	logger        hclog.Logger
}

// New returns a Deriver padding identifiers with size zero bytes.
func New(curve curves.Curve, size int, opts ...Option) (*Deriver, error) {
	if curve == nil {
		return nil, errors.New("derive: nil curve")
	}
	if size < 0 {
		return nil, fmt.Errorf("derive: buffer size must not be negative, got %d", size)
	}

	d := &Deriver{
		curve:         curve,
		size:          size,
		maxIterations: DefaultMaxIterations,
		logger:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxIterations < 1 {
		return nil, fmt.Errorf("derive: max iterations must be positive, got %d", d.maxIterations)
	}
	d.logger = d.logger.Named("derive").With("curve", curve.Name())
	return d, nil
}

// NewFromConfig resolves the configured curve and applies the config
// before opts.
func NewFromConfig(cfg *Config, opts ...Option) (*Deriver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	curve, err := cfg.LoadCurve()
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithMaxIterations(cfg.MaxIterations),
		WithLeadByte(byte(cfg.LeadByte)),
	}
	return New(curve, cfg.BufferSize, append(base, opts...)...)
}

func (d *Deriver) Curve() curves.Curve { return d.curve }

// Buffer returns the byte layout of the first candidate for identifier.
func (d *Deriver) Buffer(identifier []byte) []byte {
	buf := make([]byte, 1+len(identifier)+1+d.size)
	buf[0] = d.lead
	copy(buf[1:], identifier)
	buf[1+len(identifier)] = byte(len(identifier))
	return buf
}

// Derive maps identifier to a point on the curve. After MaxIterations
// rejected candidates it returns a *pseudoanon.DerivationError wrapping
// pseudoanon.ErrDerivationExhausted.
func (d *Deriver) Derive(identifier []byte) (*Result, error) {
	f := d.curve.Field()
	x := f.Reduce(new(big.Int).SetBytes(d.Buffer(identifier)))
	candidate := new(big.Int).Set(x)

	for attempt := 1; attempt <= d.maxIterations; attempt++ {
		p, err := d.curve.PointFromX(x, true)
		if err == nil && !d.curve.Validate(p) {
			err = fmt.Errorf("%w: candidate point fails validation", pseudoanon.ErrInvalidPoint)
		}
		if err == nil {
			d.logger.Debug("derived point", "identifier", base64.StdEncoding.EncodeToString(identifier), "attempts", attempt)
			return &Result{
				Identifier: append([]byte(nil), identifier...),
				Candidate:  candidate,
				Point:      p,
				Attempts:   attempt,
			}, nil
		}
		if !errors.Is(err, pseudoanon.ErrInvalidPoint) {
			return nil, pseudoanon.NewDerivationError(identifier, attempt, err)
		}

		d.logger.Trace("candidate rejected", "attempt", attempt)
		x = f.Add(x, f.One())
	}

	d.logger.Debug("derivation exhausted", "identifier", base64.StdEncoding.EncodeToString(identifier), "attempts", d.maxIterations)
	return nil, pseudoanon.NewDerivationError(identifier, d.maxIterations, pseudoanon.ErrDerivationExhausted)
}

// DeriveAll derives each identifier in order and stops at the first failure.
func (d *Deriver) DeriveAll(identifiers [][]byte) ([]*Result, error) {
	out := make([]*Result, 0, len(identifiers))
	for _, id := range identifiers {
		r, err := d.Derive(id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DeriveBase64 decodes a standard base64 identifier and derives it.
func (d *Deriver) DeriveBase64(identifier string) (*Result, error) {
	raw, err := base64.StdEncoding.DecodeString(identifier)
	if err != nil {
		return nil, fmt.Errorf("derive: identifier %q: %w", identifier, err)
	}
	return d.Derive(raw)
}

// Result is a derived point together with how it was found.
type Result struct {
	Identifier []byte
	// Candidate is the first x-coordinate tried.
	Candidate *big.Int
	Point     curves.Point
	Attempts  int
}

// XBase64 returns the minimal big-endian bytes of the x-coordinate in
// standard base64.
func (r *Result) XBase64() string {
	return base64.StdEncoding.EncodeToString(r.Point.X().Bytes())
}

// YBase64 is XBase64 for the y-coordinate. It fails on x-only curves.
func (r *Result) YBase64() (string, error) {
	y, err := r.Point.Y()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(y.Bytes()), nil
}

type resultJSON struct {
	Identifier string `json:"identifier"`
	X          string `json:"x"`
	Y          string `json:"y,omitempty"`
	Attempts   int    `json:"attempts"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Identifier: base64.StdEncoding.EncodeToString(r.Identifier),
		X:          r.XBase64(),
		Attempts:   r.Attempts,
	}
	if y, err := r.YBase64(); err == nil {
		out.Y = y
	}
	return utils.MarshalJSON(out)
}
