package scene

import (
	"fmt"
	"strings"
)

// Axis selects the per-frame rotation applied to the model transform.
type Axis int

const (
	// AxisX tumbles the model: rotate about X, then Z, then Y.
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "x", "y", "z" and the "rotx" style names.
func ParseAxis(s string) (Axis, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "rot") {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", s)
}

func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Axis) UnmarshalText(text []byte) error {
	v, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
