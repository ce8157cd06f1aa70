package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icure/pseudoanon/internal/derive"
)

var errVectorMismatch = errors.New("derived points differ from the recorded vectors")

func getVectorsCommand(root *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "vectors",
		Short: "Re-derive the recorded P-521 vectors and compare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func() (commandResult, error) {
				checks, err := derive.CheckVectors(derive.WithLogger(root.logger(cmd)))
				if err != nil {
					return nil, err
				}
				for _, c := range checks {
					if !c.OK() {
						return nil, fmt.Errorf("%w: identifier %s", errVectorMismatch, c.Identifier)
					}
				}
				return &vectorsResult{Checks: checks}, nil
			})
		},
	}
}

type vectorsResult struct {
	Checks []*derive.VectorCheck `json:"vectors"`
}

func (r *vectorsResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := []string{"Identifier|Buffer size|Attempts|Status"}
	for _, c := range r.Checks {
		status := "ok"
		if !c.OK() {
			status = "mismatch"
		}
		rows = append(rows, fmt.Sprintf("%s|%d|%d|%s", c.Identifier, c.BufferSize, c.Attempts, status))
	}

	buffer.WriteString("\n[VECTORS]\n")
	buffer.WriteString(formatList(rows))
	buffer.WriteString("\n")
	return buffer.String()
}
