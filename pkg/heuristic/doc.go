// Package heuristic decides which backend engine should search a position.
//
// The decision is driven by two numbers taken from the current position: the
// full-move number and the material value, the sum of 3 per knight or bishop,
// 5 per rook and 9 per queen over both colors. Pawns and kings do not count.
//
// Backend A (engine1) is chosen while the game is young and rich in material:
//
//	fullmove < MoveNumber && material > PieceValue
//
// Every other position goes to backend B (engine2). With the default
// thresholds (PieceValue 62, MoveNumber 0) backend B always plays.
//
// All functions in this package are pure and safe for concurrent use.
package heuristic
