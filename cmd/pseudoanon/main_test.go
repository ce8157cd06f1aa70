package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icure/pseudoanon/internal/derive"
	"github.com/icure/pseudoanon/internal/utils"
	"github.com/icure/pseudoanon/pkg/pseudoanon"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDeriveCommand(t *testing.T) {
	stdout, _, err := execute(t, "derive", "MTI=")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[POINT]")
	assert.Contains(t, stdout, "X          = MTICAAAAAAAAAAA=")
	assert.Contains(t, stdout, "Attempts   = 1")
}

func TestDeriveCommandJSON(t *testing.T) {
	stdout, _, err := execute(t, "derive", "--json", "--encoding", "raw", "1", "123")
	require.NoError(t, err)

	var out struct {
		Curve  string `json:"curve"`
		Points []struct {
			Identifier string `json:"identifier"`
			X          string `json:"x"`
			Y          string `json:"y"`
			Attempts   int    `json:"attempts"`
		} `json:"points"`
	}
	require.NoError(t, utils.UnmarshalJSON([]byte(stdout), &out))
	assert.Equal(t, "p521", out.Curve)
	require.Len(t, out.Points, 2)

	for i, v := range []derive.Vector{derive.Vectors[0], derive.Vectors[2]} {
		assert.Equal(t, v.Identifier, out.Points[i].Identifier)
		assert.Equal(t, v.X, out.Points[i].X)
		assert.Equal(t, v.Y, out.Points[i].Y)
	}
	assert.Equal(t, 3, out.Points[1].Attempts)
}

func TestDeriveCommandHexAndFlags(t *testing.T) {
	stdout, _, err := execute(t, "derive", "--json", "--encoding", "hex", "--curve", "curve25519", "313233")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"curve":"curve25519"`)
	assert.NotContains(t, stdout, `"y"`)

	_, stderr, err := execute(t, "derive", "--max-iterations", "2", "MTIz")
	require.Error(t, err)
	assert.ErrorIs(t, err, pseudoanon.ErrDerivationExhausted)
	assert.Contains(t, stderr, "point derivation exhausted")

	_, _, err = execute(t, "derive", "--encoding", "rot13", "abc")
	assert.Error(t, err)

	_, _, err = execute(t, "derive")
	assert.Error(t, err)
	var reported *reportedError
	assert.False(t, errors.As(err, &reported))
}

func TestDeriveCommandConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "derive.yaml")
	require.NoError(t, os.WriteFile(path, []byte("curve: secp256k1\nbuffer_size: 4\n"), 0o600))

	stdout, _, err := execute(t, "derive", "--json", "--config", path, "MTIz")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"curve":"secp256k1"`)

	// Flags win over the file.
	stdout, _, err = execute(t, "derive", "--json", "--config", path, "--curve", "ed25519", "MTIz")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"curve":"ed25519"`)
}

func TestVectorsCommand(t *testing.T) {
	stdout, _, err := execute(t, "vectors")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[VECTORS]")
	assert.Equal(t, len(derive.Vectors), bytes.Count([]byte(stdout), []byte(" ok")))

	stdout, _, err = execute(t, "vectors", "--json")
	require.NoError(t, err)
	var out struct {
		Vectors []derive.VectorCheck `json:"vectors"`
	}
	require.NoError(t, utils.UnmarshalJSON([]byte(stdout), &out))
	require.Len(t, out.Vectors, len(derive.Vectors))
	for _, v := range out.Vectors {
		assert.True(t, v.OK(), v.Identifier)
	}
}

func TestCurvesCommand(t *testing.T) {
	stdout, _, err := execute(t, "curves")
	require.NoError(t, err)
	for _, name := range []string{"p521", "secp256k1", "ed448", "curve25519"} {
		assert.Contains(t, stdout, name)
	}

	const def = `
name: custom
family: montgomery
p: 7fffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffff ffffffed
a: 76d06
b: 1
n: 10000000 00000000 00000000 00000000 14def9de a2f79cd6 5812631a 5cf5d3ed
h: 8
g: [9]
`
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(def), 0o600))

	stdout, _, err = execute(t, "curves", "--json", "--curve-file", path)
	require.NoError(t, err)
	var out struct {
		Curves []curveInfo `json:"curves"`
	}
	require.NoError(t, utils.UnmarshalJSON([]byte(stdout), &out))
	last := out.Curves[len(out.Curves)-1]
	assert.Equal(t, "custom", last.Name)
	assert.Equal(t, "mont", last.Family)
	assert.Equal(t, 255, last.FieldBits)
	assert.Equal(t, "8", last.Cofactor)
}

func TestErrorOutputJSON(t *testing.T) {
	_, stderr, err := execute(t, "derive", "--json", "--curve", "nope", "MQ==")
	require.Error(t, err)
	assert.ErrorIs(t, err, pseudoanon.ErrUnknownCurve)

	var out struct {
		Err string `json:"error"`
	}
	require.NoError(t, utils.UnmarshalJSON(bytes.TrimSpace([]byte(stderr)), &out))
	assert.Contains(t, out.Err, "unknown curve")
}
