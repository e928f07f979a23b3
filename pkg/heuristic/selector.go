package heuristic

import "fmt"

// Backend identifies one of the two delegate engines.
type Backend int

const (
	// BackendA is the engine configured as engine1.
	BackendA Backend = iota
	// BackendB is the engine configured as engine2.
	BackendB
)

// String returns the configuration label of the backend.
func (b Backend) String() string {
	switch b {
	case BackendA:
		return "engine1"
	case BackendB:
		return "engine2"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// Default switch values.
const (
	DefaultPieceValueSwitch = 62
	DefaultMoveNumberSwitch = 0
)

// Thresholds holds the two switch values of the selection rule.
type Thresholds struct {
	// PieceValue is piece_value_switch: backend A needs strictly more material.
	PieceValue int

	// MoveNumber is move_number_switch: backend A needs a strictly lower
	// full-move number.
	MoveNumber int
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PieceValue: DefaultPieceValueSwitch,
		MoveNumber: DefaultMoveNumberSwitch,
	}
}

// Select applies the selection rule to a position summary.
func Select(fullmove, material int, t Thresholds) Backend {
	if fullmove < t.MoveNumber && material > t.PieceValue {
		return BackendA
	}
	return BackendB
}

// SelectPlacement computes the material of placement and applies Select.
// It returns the chosen backend together with the material value.
func SelectPlacement(placement string, fullmove int, t Thresholds) (Backend, int) {
	material := Material(placement)
	return Select(fullmove, material, t), material
}
