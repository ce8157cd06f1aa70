package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/icure/pseudoanon/internal/derive"
)

const (
	jsonOutputFlag = "json"
	logLevelFlag   = "log-level"
	configFlag     = "config"
	curveFileFlag  = "curve-file"
)

type rootParams struct {
	json      bool
	logLevel  string
	config    string
	curveFile string
}

func NewRootCommand() *cobra.Command {
	params := &rootParams{}

	cmd := &cobra.Command{
		Use:           "pseudoanon",
		Short:         "Derive curve points from identifiers and inspect the supported curves",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&params.json, jsonOutputFlag, false, "write output as JSON")
	cmd.PersistentFlags().StringVar(&params.logLevel, logLevelFlag, "info", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&params.config, configFlag, "", "YAML derivation config")
	cmd.PersistentFlags().StringVar(&params.curveFile, curveFileFlag, "", "YAML curve definition overriding the configured curve")

	cmd.AddCommand(
		getDeriveCommand(params),
		getVectorsCommand(params),
		getCurvesCommand(params),
	)
	return cmd
}

func (p *rootParams) logger(cmd *cobra.Command) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pseudoanon",
		Level:  hclog.LevelFromString(p.logLevel),
		Output: cmd.ErrOrStderr(),
	})
}

// deriveConfig loads --config, falling back to the defaults, and applies
// --curve-file on top.
func (p *rootParams) deriveConfig() (*derive.Config, error) {
	cfg := derive.DefaultConfig()
	if p.config != "" {
		loaded, err := derive.LoadConfigFile(p.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if p.curveFile != "" {
		cfg.CurveFile = p.curveFile
	}
	return cfg, nil
}

// run writes result or err through the formatter selected by --json.
func (p *rootParams) run(cmd *cobra.Command, fn func() (commandResult, error)) error {
	out := newOutput(cmd, p.json)
	result, err := fn()
	if err != nil {
		p.logger(cmd).Debug("command failed", "command", cmd.Name(), "error", err)
		out.setError(err)
		out.write()
		return &reportedError{err: fmt.Errorf("%s: %w", cmd.Name(), err)}
	}
	out.setResult(result)
	out.write()
	return nil
}

// reportedError marks an error the output formatter has already written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }
