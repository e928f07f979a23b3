package heuristic

import "testing"

func TestSelect(t *testing.T) {
	tests := []struct {
		name       string
		fullmove   int
		material   int
		thresholds Thresholds
		want       Backend
	}{
		{
			name:       "start position with default thresholds",
			fullmove:   1,
			material:   62,
			thresholds: DefaultThresholds(),
			want:       BackendB,
		},
		{
			name:       "queens and rooks, move limit passes but material does not",
			fullmove:   5,
			material:   28,
			thresholds: Thresholds{PieceValue: 62, MoveNumber: 10},
			want:       BackendB,
		},
		{
			name:       "both conditions hold",
			fullmove:   1,
			material:   62,
			thresholds: Thresholds{PieceValue: 30, MoveNumber: 40},
			want:       BackendA,
		},
		{
			name:       "move number equal to switch is not lower",
			fullmove:   40,
			material:   62,
			thresholds: Thresholds{PieceValue: 30, MoveNumber: 40},
			want:       BackendB,
		},
		{
			name:       "material equal to switch is not greater",
			fullmove:   1,
			material:   30,
			thresholds: Thresholds{PieceValue: 30, MoveNumber: 40},
			want:       BackendB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.fullmove, tt.material, tt.thresholds); got != tt.want {
				t.Errorf("Select(%d, %d, %+v) = %v, want %v",
					tt.fullmove, tt.material, tt.thresholds, got, tt.want)
			}
		})
	}
}

func TestSelectPlacement(t *testing.T) {
	backend, material := SelectPlacement("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", 1,
		Thresholds{PieceValue: 30, MoveNumber: 40})
	if backend != BackendA {
		t.Errorf("backend = %v, want %v", backend, BackendA)
	}
	if material != 62 {
		t.Errorf("material = %d, want 62", material)
	}
}

func TestBackendString(t *testing.T) {
	if BackendA.String() != "engine1" {
		t.Errorf("BackendA.String() = %q", BackendA.String())
	}
	if BackendB.String() != "engine2" {
		t.Errorf("BackendB.String() = %q", BackendB.String())
	}
	if Backend(7).String() != "backend(7)" {
		t.Errorf("Backend(7).String() = %q", Backend(7).String())
	}
}
