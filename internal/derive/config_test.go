package derive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icure/pseudoanon/internal/crypto/curves"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(strings.NewReader("lead_byte: 1\nbuffer_size: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, "p521", cfg.Curve)
	assert.Equal(t, 4, cfg.BufferSize)
	assert.Equal(t, 1, cfg.LeadByte)
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("curve: [\n"))
	assert.Error(t, err)

	_, err = LoadConfig(strings.NewReader(`
curve: ""
buffer_size: -1
max_iterations: 0
lead_byte: 300
`))
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 4)
}

func TestNewFromConfig(t *testing.T) {
	d, err := NewFromConfig(DefaultConfig())
	require.NoError(t, err)
	assert.Same(t, curves.P521(), d.Curve())

	r, err := d.DeriveBase64(vectors[0].identifier)
	require.NoError(t, err)
	assert.Equal(t, vectors[0].x, r.XBase64())

	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	d, err = NewFromConfig(cfg)
	require.NoError(t, err)
	_, err = d.DeriveBase64("MTIz")
	assert.ErrorIs(t, err, pseudoanon.ErrDerivationExhausted)

	cfg = DefaultConfig()
	cfg.Curve = "p384"
	_, err = NewFromConfig(cfg)
	assert.ErrorIs(t, err, pseudoanon.ErrUnknownCurve)
}

func TestCurveFile(t *testing.T) {
	const def = `
name: k1
family: short
p: ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff fffffffe fffffc2f
a: 0
b: 7
n: ffffffff ffffffff ffffffff fffffffe baaedce6 af48a03b bfd25e8c d0364141
h: 1
g:
  - 79be667e f9dcbbac 55a06295 ce870b07 029bfcdb 2dce28d9 59f2815b 16f81798
  - 483ada77 26a3c465 5da4fbfc 0e1108a8 fd17b448 a6855419 9c47d08f fb10d4b8
`
	dir := t.TempDir()
	curvePath := filepath.Join(dir, "k1.yaml")
	require.NoError(t, os.WriteFile(curvePath, []byte(def), 0o600))

	cfgPath := filepath.Join(dir, "derive.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("curve_file: "+curvePath+"\n"), 0o600))

	cfg, err := LoadConfigFile(cfgPath)
	require.NoError(t, err)

	d, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "k1", d.Curve().Name())

	// Same equation as the secp256k1 preset, so the same point.
	want, err := New(curves.Secp256k1(), DefaultBufferSize)
	require.NoError(t, err)
	a, err := d.Derive([]byte("abc"))
	require.NoError(t, err)
	b, err := want.Derive([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, b.Point.Encode(false), a.Point.Encode(false))

	_, err = LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	cfg.CurveFile = filepath.Join(dir, "missing.yaml")
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)
}
