package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icure/pseudoanon/internal/crypto/curves"
)

func getCurvesCommand(root *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "curves",
		Short: "List the built-in curves, plus the one from --curve-file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func() (commandResult, error) {
				return listCurves(root)
			})
		},
	}
}

func listCurves(root *rootParams) (*curvesResult, error) {
	res := &curvesResult{}
	for _, name := range curves.Names() {
		c, err := curves.ByName(name)
		if err != nil {
			return nil, err
		}
		res.Curves = append(res.Curves, describeCurve(c))
	}

	if root.curveFile != "" {
		cfg, err := root.deriveConfig()
		if err != nil {
			return nil, err
		}
		c, err := cfg.LoadCurve()
		if err != nil {
			return nil, err
		}
		res.Curves = append(res.Curves, describeCurve(c))
	}
	return res, nil
}

type curveInfo struct {
	Name      string `json:"name"`
	Family    string `json:"family"`
	FieldBits int    `json:"fieldBits"`
	OrderBits int    `json:"orderBits"`
	Cofactor  string `json:"cofactor"`
}

func describeCurve(c curves.Curve) curveInfo {
	return curveInfo{
		Name:      c.Name(),
		Family:    c.Family().String(),
		FieldBits: c.Field().BitLen(),
		OrderBits: c.N().BitLen(),
		Cofactor:  c.Params().H.String(),
	}
}

type curvesResult struct {
	Curves []curveInfo `json:"curves"`
}

func (r *curvesResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := []string{"Name|Family|Field bits|Order bits|Cofactor"}
	for _, c := range r.Curves {
		rows = append(rows, fmt.Sprintf("%s|%s|%d|%d|%s", c.Name, c.Family, c.FieldBits, c.OrderBits, c.Cofactor))
	}

	buffer.WriteString("\n[CURVES]\n")
	buffer.WriteString(formatList(rows))
	buffer.WriteString("\n")
	return buffer.String()
}
