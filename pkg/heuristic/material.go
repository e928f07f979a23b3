package heuristic

import "strings"

// Piece values used by the material count.
const (
	MinorValue = 3
	RookValue  = 5
	QueenValue = 9
)

// Material returns the material value of a FEN piece-placement field, for
// example "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR". A full FEN string is
// accepted too; only its first field is read.
func Material(placement string) int {
	if i := strings.IndexByte(placement, ' '); i >= 0 {
		placement = placement[:i]
	}

	total := 0
	for _, c := range placement {
		total += pieceValue(c)
	}
	return total
}

// pieceValue returns the material contribution of a single placement rune.
func pieceValue(c rune) int {
	switch c {
	case 'N', 'n', 'B', 'b':
		return MinorValue
	case 'R', 'r':
		return RookValue
	case 'Q', 'q':
		return QueenValue
	default:
		return 0
	}
}
