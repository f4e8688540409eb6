package jacobian

import "fmt"

// Scheme selects how df/dx is computed.
type Scheme int

const (
	// ForwardDifference perturbs each state coordinate once. Cheapest and
	// the default.
	ForwardDifference Scheme = iota

	// CentralDifference perturbs each coordinate in both directions for
	// higher accuracy at twice the cost.
	CentralDifference

	// Automatic reads exact derivatives out of a single dual-arithmetic
	// evaluation. Requires the system to implement dynamo.DualSystem and a
	// plain kernel scalar.
	Automatic
)

func (s Scheme) String() string {
	switch s {
	case ForwardDifference:
		return "forward"
	case CentralDifference:
		return "central"
	case Automatic:
		return "automatic"
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme maps a config/CLI name to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "forward", "":
		return ForwardDifference, nil
	case "central":
		return CentralDifference, nil
	case "automatic", "auto":
		return Automatic, nil
	}
	return ForwardDifference, fmt.Errorf("unknown jacobian scheme: %s", name)
}
