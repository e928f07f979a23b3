// Package uci implements the subset of the Universal Chess Interface spoken
// between the adapter, the GUI in front of it and the engines behind it.
//
// Inbound lines are split into tokens and matched against a closed grammar:
//
//	uci
//	isready
//	ucinewgame
//	position (startpos | fen <6 fields>) [moves <move>...]
//	go (movetime <ms> | wtime <ms> btime <ms> [winc <ms>] [binc <ms>] [movestogo <n>] | infinite) [ponder]
//	stop
//	ponderhit
//	setoption name <name> [value <value>]
//	quit
//
// Matching is on whole tokens, so a line such as "info string stop" is not a
// stop command. Search limits are represented by the SearchParams union:
// MoveTime, Clock, Infinite and Ponder.
package uci
