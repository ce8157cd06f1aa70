package pseudoanon

import (
	"fmt"
	"strings"
)

// Family identifies the algebraic form of a curve. Each family owns its
// coordinate layout, group law and validation rule.
type Family int

const (
	// Short is the short Weierstrass form y² = x³ + a·x + b.
	Short Family = iota + 1

	// Edwards is the twisted Edwards form a·x² + y² = c²·(1 + d·x²·y²).
	Edwards

	// Mont is the Montgomery form b·y² = x³ + a·x² + x, handled x-only.
	Mont
)

func (f Family) String() string {
	switch f {
	case Short:
		return "short"
	case Edwards:
		return "edwards"
	case Mont:
		return "mont"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily accepts the family names used in curve parameter files.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "weierstrass":
		return Short, nil
	case "edwards", "twisted-edwards":
		return Edwards, nil
	case "mont", "montgomery":
		return Mont, nil
	}
	return 0, fmt.Errorf("%w: unknown curve family %q", ErrInvalidCurveConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	v, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
