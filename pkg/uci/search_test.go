package uci

import "testing"

func TestSearchParamsString(t *testing.T) {
	tests := []struct {
		params   SearchParams
		wantLine string
		wantMode string
	}{
		{MoveTime{Millis: 250}, "go movetime 250", "movetime"},
		{Clock{WTime: 60000, BTime: 59000, WInc: 1000, BInc: 1000}, "go wtime 60000 btime 59000 winc 1000 binc 1000", "clock"},
		{Clock{WTime: 1, BTime: 2, MovesToGo: 40}, "go wtime 1 btime 2 winc 0 binc 0 movestogo 40", "clock"},
		{Infinite{}, "go infinite", "infinite"},
		{Ponder{}, "go ponder", "ponder"},
		{Ponder{Inner: Infinite{}}, "go ponder infinite", "ponder"},
		{Ponder{Inner: MoveTime{Millis: 10}}, "go ponder movetime 10", "ponder"},
	}

	for _, tt := range tests {
		t.Run(tt.wantLine, func(t *testing.T) {
			if got := tt.params.String(); got != tt.wantLine {
				t.Errorf("String() = %q, want %q", got, tt.wantLine)
			}
			if got := tt.params.Mode(); got != tt.wantMode {
				t.Errorf("Mode() = %q, want %q", got, tt.wantMode)
			}
		})
	}
}

func TestIsPonder(t *testing.T) {
	if !IsPonder(Ponder{}) {
		t.Error("IsPonder(Ponder{}) = false")
	}
	if IsPonder(Infinite{}) {
		t.Error("IsPonder(Infinite{}) = true")
	}
}
