//go:build js && wasm

package main

import (
	"fmt"
	"math/big"
	"sync"
	"syscall/js"

	fasthex "github.com/tmthrgd/go-hex"

	"github.com/icure/pseudoanon/internal/crypto/curves"
	"github.com/icure/pseudoanon/internal/derive"
	"github.com/icure/pseudoanon/internal/utils"
)

// Derivers created from JS, keyed by handle.
var (
	mu       sync.Mutex
	derivers = make(map[string]*derive.Deriver)
)

func main() {
	c := make(chan struct{})

	fmt.Println("pseudoanon WASM initialized")

	js.Global().Set("PseudoAnon", map[string]interface{}{
		"NewDeriver": js.FuncOf(NewDeriver),
		"Derive":     js.FuncOf(Derive),
		"Mul":        js.FuncOf(Mul),
		"Curves":     js.FuncOf(Curves),
	})

	<-c
}

// NewDeriver creates a deriver.
// Arguments:
// 0: JSON config {"curve", "bufferSize", "maxIterations", "leadByte"}
// Returns:
// a handle for Derive, or an error string
func NewDeriver(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (jsonConfig)"
	}

	type configInput struct {
		Curve         string `json:"curve"`
		BufferSize    *int   `json:"bufferSize"`
		MaxIterations *int   `json:"maxIterations"`
		LeadByte      int    `json:"leadByte"`
	}

	var input configInput
	if err := utils.UnmarshalJSON([]byte(args[0].String()), &input); err != nil {
		return fmt.Sprintf("error: invalid json: %v", err)
	}

	cfg := derive.DefaultConfig()
	if input.Curve != "" {
		cfg.Curve = input.Curve
	}
	if input.BufferSize != nil {
		cfg.BufferSize = *input.BufferSize
	}
	if input.MaxIterations != nil {
		cfg.MaxIterations = *input.MaxIterations
	}
	cfg.LeadByte = input.LeadByte

	d, err := derive.NewFromConfig(cfg)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	handle := fmt.Sprintf("%s-%d-%d-%d", cfg.Curve, cfg.BufferSize, cfg.MaxIterations, cfg.LeadByte)
	derivers[handle] = d
	return handle
}

// Derive maps an identifier to a point.
// Arguments:
// 0: handle from NewDeriver
// 1: base64 identifier
// Returns:
// JSON {"identifier", "x", "y", "attempts"}
func Derive(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (handle, identifier)"
	}

	mu.Lock()
	d, ok := derivers[args[0].String()]
	mu.Unlock()
	if !ok {
		return "error: deriver not found"
	}

	r, err := d.DeriveBase64(args[1].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	out, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(out)
}

// Mul multiplies a persisted point by a scalar.
// Arguments:
// 0: curve name
// 1: JSON point, or "" for the generator
// 2: hex scalar, big-endian
// Returns:
// JSON point
func Mul(this js.Value, args []js.Value) interface{} {
	if len(args) != 3 {
		return "error: expected 3 arguments (curve, point, scalar)"
	}

	c, err := curves.ByName(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	p := c.Generator()
	if s := args[1].String(); s != "" {
		if p, err = c.PointFromJSON([]byte(s)); err != nil {
			return fmt.Sprintf("error: %v", err)
		}
	}

	k, err := fasthex.DecodeString(args[2].String())
	if err != nil {
		return fmt.Sprintf("error: invalid hex scalar: %v", err)
	}

	out, err := p.Mul(new(big.Int).SetBytes(k)).MarshalJSON()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(out)
}

// Curves lists the built-in curve names as a JSON array.
func Curves(this js.Value, args []js.Value) interface{} {
	out, err := utils.MarshalJSON(curves.Names())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(out)
}
