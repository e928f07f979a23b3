package uci

import (
	"fmt"
	"strings"
)

// NullMove is sent as bestmove when a search ends without a result.
const NullMove = "0000"

// Protocol lines.
const (
	UCIOK   = "uciok"
	ReadyOK = "readyok"
)

// Backend-bound commands without arguments.
const (
	CmdUCI       = "uci"
	CmdIsReady   = "isready"
	CmdNewGame   = "ucinewgame"
	CmdStop      = "stop"
	CmdPonderHit = "ponderhit"
	CmdQuit      = "quit"
)

const bestMovePrefix = "bestmove"

// LineKind classifies lines read from a backend engine.
type LineKind int

const (
	LineOther LineKind = iota
	LineInfo
	LineBestMove
	LineID
	LineOption
	LineUCIOK
	LineReadyOK
)

// Classify returns the kind of a backend output line, by its first token.
func Classify(line string) LineKind {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return LineOther
	}
	switch tokens[0] {
	case "info":
		return LineInfo
	case bestMovePrefix:
		return LineBestMove
	case "id":
		return LineID
	case "option":
		return LineOption
	case UCIOK:
		return LineUCIOK
	case ReadyOK:
		return LineReadyOK
	default:
		return LineOther
	}
}

// ParseBestMove extracts the move and optional ponder move from a bestmove
// line. ok is false if line is not a bestmove line.
func ParseBestMove(line string) (move, ponder string, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 || tokens[0] != bestMovePrefix {
		return "", "", false
	}
	move = tokens[1]
	if len(tokens) >= 4 && tokens[2] == "ponder" {
		ponder = tokens[3]
	}
	return move, ponder, true
}

// ParseID parses "id name <...>" or "id author <...>".
func ParseID(line string) (field, value string, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 || tokens[0] != "id" {
		return "", "", false
	}
	return tokens[1], strings.Join(tokens[2:], " "), true
}

// ParseOptionName returns the name of an "option name <...> type <...>" line.
func ParseOptionName(line string) (string, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 || tokens[0] != "option" || tokens[1] != "name" {
		return "", false
	}
	end := len(tokens)
	for i := 2; i < len(tokens); i++ {
		if tokens[i] == "type" {
			end = i
			break
		}
	}
	if end == 2 {
		return "", false
	}
	return strings.Join(tokens[2:end], " "), true
}

// SetOption returns the setoption line for name and value. An empty value
// produces the button form without a value clause.
func SetOption(name, value string) string {
	if value == "" {
		return "setoption name " + name
	}
	return "setoption name " + name + " value " + value
}

// IDName returns an "id name" line.
func IDName(name string) string { return "id name " + name }

// IDAuthor returns an "id author" line.
func IDAuthor(author string) string { return "id author " + author }

// InfoString returns an "info string" line.
func InfoString(format string, args ...any) string {
	return "info string " + fmt.Sprintf(format, args...)
}

// BestMove returns a bestmove line.
func BestMove(move string) string { return bestMovePrefix + " " + move }

// OptionCheck returns a check option declaration.
func OptionCheck(name string, def bool) string {
	return fmt.Sprintf("option name %s type check default %t", name, def)
}

// OptionSpin returns a spin option declaration.
func OptionSpin(name string, def, min, max int) string {
	return fmt.Sprintf("option name %s type spin default %d min %d max %d", name, def, min, max)
}
