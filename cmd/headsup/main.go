// HeadsUp is a UCI chess engine that delegates every search to one of two
// backend engines.
//
// A chess GUI starts headsup like any other engine. HeadsUp answers the
// handshake itself, tracks the game and, on every position, picks a backend:
//   - engine1 while the full-move number is below the move switch and the
//     material on the board is above the piece-value switch
//   - engine2 everywhere else
//
// Usage:
//
//	# Run as a UCI engine (what the GUI does)
//	headsup --config /path/to/headsup.yaml
//
//	# Check the configuration and the engine executables
//	headsup validate --handshake
//
//	# Show recorded searches
//	headsup journal list --engine engine2 --limit 50
//
//	# Show version information
//	headsup version
//
// Standard output belongs to the UCI protocol. Diagnostics go to the log
// file named in the configuration, or nowhere.
package main

func main() {
	Execute()
}
