package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/icure/pseudoanon/internal/derive"
)

const (
	encodingBase64 = "base64"
	encodingHex    = "hex"
	encodingRaw    = "raw"
)

type deriveParams struct {
	curve         string
	bufferSize    int
	maxIterations int
	leadByte      int
	encoding      string
}

func getDeriveCommand(root *rootParams) *cobra.Command {
	params := &deriveParams{}

	cmd := &cobra.Command{
		Use:   "derive IDENTIFIER...",
		Short: "Map identifiers to curve points",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVar(&params.curve, "curve", derive.DefaultCurve, "curve name")
	cmd.Flags().IntVar(&params.bufferSize, "buffer-size", derive.DefaultBufferSize, "zero bytes appended to the identifier")
	cmd.Flags().IntVar(&params.maxIterations, "max-iterations", derive.DefaultMaxIterations, "candidates tried before giving up")
	cmd.Flags().IntVar(&params.leadByte, "lead-byte", 0, "first byte of the candidate buffer")
	cmd.Flags().StringVar(&params.encoding, "encoding", encodingBase64, "identifier encoding (base64, hex, raw)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return root.run(cmd, func() (commandResult, error) {
			cfg, err := root.deriveConfig()
			if err != nil {
				return nil, err
			}
			params.apply(cmd, cfg)
			return runDerive(root, cmd, cfg, params.encoding, args)
		})
	}
	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (p *deriveParams) apply(cmd *cobra.Command, cfg *derive.Config) {
	flags := cmd.Flags()
	if flags.Changed("curve") {
		cfg.Curve = p.curve
		cfg.CurveFile = ""
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize = p.bufferSize
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = p.maxIterations
	}
	if flags.Changed("lead-byte") {
		cfg.LeadByte = p.leadByte
	}
}

func decodeIdentifier(encoding, s string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case encodingBase64:
		return base64.StdEncoding.DecodeString(s)
	case encodingHex:
		return fasthex.DecodeString(s)
	case encodingRaw:
		return []byte(s), nil
	}
	return nil, fmt.Errorf("unknown identifier encoding %q", encoding)
}

func runDerive(root *rootParams, cmd *cobra.Command, cfg *derive.Config, encoding string, args []string) (*deriveResult, error) {
	d, err := derive.NewFromConfig(cfg, derive.WithLogger(root.logger(cmd)))
	if err != nil {
		return nil, err
	}

	ids := make([][]byte, 0, len(args))
	for _, arg := range args {
		id, err := decodeIdentifier(encoding, arg)
		if err != nil {
			return nil, fmt.Errorf("identifier %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	points, err := d.DeriveAll(ids)
	if err != nil {
		return nil, err
	}
	return &deriveResult{Curve: d.Curve().Name(), Points: points}, nil
}

type deriveResult struct {
	Curve  string           `json:"curve"`
	Points []*derive.Result `json:"points"`
}

func (r *deriveResult) GetOutput() string {
	var buffer bytes.Buffer

	for _, p := range r.Points {
		y, err := p.YBase64()
		if err != nil {
			y = ""
		}
		buffer.WriteString("\n[POINT]\n")
		buffer.WriteString(formatKV([]string{
			fmt.Sprintf("Curve|%s", r.Curve),
			fmt.Sprintf("Identifier|%s", base64.StdEncoding.EncodeToString(p.Identifier)),
			fmt.Sprintf("X|%s", p.XBase64()),
			fmt.Sprintf("Y|%s", y),
			fmt.Sprintf("Attempts|%d", p.Attempts),
		}))
		buffer.WriteString("\n")
	}
	return buffer.String()
}
