package derive

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/icure/pseudoanon/internal/crypto/curves"
)

const (
	DefaultCurve         = "p521"
	DefaultBufferSize    = 8
	DefaultMaxIterations = 32000
)

// Config selects the curve and the candidate layout. CurveFile, when set,
// points to a YAML curve definition and takes precedence over Curve.
type Config struct {
	Curve         string `yaml:"curve"`
	CurveFile     string `yaml:"curve_file,omitempty"`
	BufferSize    int    `yaml:"buffer_size"`
	MaxIterations int    `yaml:"max_iterations"`
	LeadByte      int    `yaml:"lead_byte"`
}

func DefaultConfig() *Config {
	return &Config{
		Curve:         DefaultCurve,
		BufferSize:    DefaultBufferSize,
		MaxIterations: DefaultMaxIterations,
	}
}

// LoadConfig reads a YAML config. Missing keys keep their defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("derive: config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("derive: config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c *Config) Validate() error {
	var errs error
	if c.Curve == "" && c.CurveFile == "" {
		errs = multierror.Append(errs, errors.New("curve or curve_file is required"))
	}
	if c.BufferSize < 0 {
		errs = multierror.Append(errs, fmt.Errorf("buffer_size must not be negative, got %d", c.BufferSize))
	}
	if c.MaxIterations < 1 {
		errs = multierror.Append(errs, fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations))
	}
	if c.LeadByte < 0 || c.LeadByte > 0xff {
		errs = multierror.Append(errs, fmt.Errorf("lead_byte must fit in a byte, got %d", c.LeadByte))
	}
	if errs != nil {
		return fmt.Errorf("derive: invalid config: %w", errs)
	}
	return nil
}

// LoadCurve resolves the configured curve.
func (c *Config) LoadCurve() (curves.Curve, error) {
	if c.CurveFile == "" {
		return curves.ByName(c.Curve)
	}

	f, err := os.Open(c.CurveFile)
	if err != nil {
		return nil, fmt.Errorf("derive: curve file: %w", err)
	}
	defer f.Close()

	params, err := curves.LoadParams(f)
	if err != nil {
		return nil, err
	}
	return curves.New(params)
}
