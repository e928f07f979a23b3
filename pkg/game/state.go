// Package game holds the position the adapter is currently playing.
//
// A State is built from a `position` command: a base position (the standard
// start position or a FEN) followed by moves in UCI notation. Rules, move
// legality and FEN handling are delegated to github.com/notnil/chess.
package game

import (
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"headsup-hq/headsup/pkg/heuristic"
)

// StartFEN is the FEN of the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// State is the board position plus the history needed to describe it to a
// backend engine. A State is not safe for concurrent use; the router owns it.
type State struct {
	game *chess.Game

	// fen is the base FEN, empty for the start position.
	fen string

	// moves are the moves applied on top of the base position.
	moves []string
}

// New returns a State at the standard starting position.
func New() *State {
	return &State{
		game: chess.NewGame(chess.UseNotation(chess.UCINotation{})),
	}
}

// FromFEN returns a State whose base position is fen.
func FromFEN(fen string) (*State, error) {
	fen = strings.TrimSpace(fen)
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, &InvalidFENError{FEN: fen, Cause: err}
	}

	return &State{
		game: chess.NewGame(opt, chess.UseNotation(chess.UCINotation{})),
		fen:  fen,
	}, nil
}

// Apply plays moves in order. It stops at the first illegal move and returns
// an *IllegalMoveError; the moves before it stay applied.
func (s *State) Apply(moves []string) error {
	for i, m := range moves {
		if err := s.game.MoveStr(m); err != nil {
			return &IllegalMoveError{Move: m, Index: i, Cause: err}
		}
		s.moves = append(s.moves, m)
	}
	return nil
}

// FEN returns the FEN of the current position.
func (s *State) FEN() string {
	return s.game.Position().String()
}

// Placement returns the piece-placement field of the current FEN.
func (s *State) Placement() string {
	fields := strings.Fields(s.FEN())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// FullMoveNumber returns the full-move counter of the current position.
// notnil/chess does not export it, so it is read from the FEN.
func (s *State) FullMoveNumber() int {
	fields := strings.Fields(s.FEN())
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil {
		return 1
	}
	return n
}

// SideToMove returns the color to move.
func (s *State) SideToMove() chess.Color {
	return s.game.Position().Turn()
}

// Material returns the material value of the current position.
func (s *State) Material() int {
	return heuristic.Material(s.Placement())
}

// Moves returns a copy of the applied moves.
func (s *State) Moves() []string {
	out := make([]string, len(s.moves))
	copy(out, s.moves)
	return out
}

// PositionCommand returns the UCI `position` line describing this State,
// keeping the move history so backends can detect repetitions.
func (s *State) PositionCommand() string {
	var b strings.Builder
	if s.fen == "" {
		b.WriteString("position startpos")
	} else {
		b.WriteString("position fen ")
		b.WriteString(s.fen)
	}
	if len(s.moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(s.moves, " "))
	}
	return b.String()
}
