package main

import (
	"fmt"
	"io"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/icure/pseudoanon/internal/utils"
)

type commandResult interface {
	GetOutput() string
}

type output struct {
	json   bool
	stdout io.Writer
	stderr io.Writer

	err    error
	result commandResult
}

func newOutput(cmd *cobra.Command, json bool) *output {
	return &output{json: json, stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
}

func (o *output) setError(err error)            { o.err = err }
func (o *output) setResult(result commandResult) { o.result = result }

func (o *output) write() {
	if o.err != nil {
		if o.json {
			_, _ = fmt.Fprintln(o.stderr, marshalJSONToString(struct {
				Err string `json:"error"`
			}{Err: o.err.Error()}))
			return
		}
		_, _ = fmt.Fprintln(o.stderr, o.err.Error())
		return
	}

	if o.json {
		_, _ = fmt.Fprintln(o.stdout, marshalJSONToString(o.result))
		return
	}
	_, _ = fmt.Fprintln(o.stdout, o.result.GetOutput())
}

func marshalJSONToString(v interface{}) string {
	data, err := utils.MarshalJSON(v)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// formatList aligns pipe-separated rows into columns.
func formatList(in []string) string {
	conf := columnize.DefaultConfig()
	conf.Empty = "<none>"
	return columnize.Format(in, conf)
}

// formatKV formats key value pairs:
//
// Key = Value
func formatKV(in []string) string {
	conf := columnize.DefaultConfig()
	conf.Empty = "<none>"
	conf.Glue = " = "
	return columnize.Format(in, conf)
}
