// Package router implements the GUI-facing side of HeadsUp.
//
// The Router reads UCI commands line by line, keeps the game position, picks
// the active backend with the material heuristic after every position
// command and forwards each command to the backend it concerns. Output from
// the router and both backends is funneled through a single Output.
//
// # Dispatch
//
//   - uci is answered locally with HeadsUp's identity and both backend names.
//   - isready, ucinewgame, go, stop and ponderhit go to the active backend.
//   - setoption and quit go to both backends.
//   - position is evaluated locally and re-selects the active backend.
//
// Lines outside the grammar produce an informational line and are otherwise
// ignored. End of input is handled as quit.
package router
