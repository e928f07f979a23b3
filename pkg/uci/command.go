package uci

import (
	"strings"
)

// Kind is the verb of an inbound command.
type Kind int

const (
	KindUCI Kind = iota + 1
	KindIsReady
	KindNewGame
	KindPosition
	KindGo
	KindStop
	KindPonderHit
	KindSetOption
	KindQuit
)

var kindNames = map[Kind]string{
	KindUCI:       "uci",
	KindIsReady:   "isready",
	KindNewGame:   "ucinewgame",
	KindPosition:  "position",
	KindGo:        "go",
	KindStop:      "stop",
	KindPonderHit: "ponderhit",
	KindSetOption: "setoption",
	KindQuit:      "quit",
}

// String returns the protocol verb.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a parsed inbound line. Only the fields of its Kind are set.
type Command struct {
	Kind Kind

	// Raw is the trimmed input line.
	Raw string

	// FEN is the base position of a position command; empty means startpos.
	FEN string

	// Moves are the moves of a position command in UCI notation.
	Moves []string

	// Search is the limit of a go command.
	Search SearchParams

	// OptionName and OptionValue belong to setoption.
	OptionName  string
	OptionValue string
}

// Parse tokenizes line and matches it against the command grammar. It returns
// a *SyntaxError matching ErrUnsupported or ErrMalformed on failure.
func Parse(line string) (Command, error) {
	raw := strings.TrimSpace(line)
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Command{}, unsupported(raw)
	}

	verb, args := tokens[0], tokens[1:]
	cmd := Command{Raw: raw}

	switch verb {
	case "uci":
		cmd.Kind = KindUCI
	case "isready":
		cmd.Kind = KindIsReady
	case "ucinewgame":
		cmd.Kind = KindNewGame
	case "stop":
		cmd.Kind = KindStop
	case "ponderhit":
		cmd.Kind = KindPonderHit
	case "quit":
		cmd.Kind = KindQuit
	case "position":
		cmd.Kind = KindPosition
		fen, moves, err := parsePosition(raw, args)
		if err != nil {
			return Command{}, err
		}
		cmd.FEN, cmd.Moves = fen, moves
		return cmd, nil
	case "go":
		cmd.Kind = KindGo
		params, err := parseGo(raw, args)
		if err != nil {
			return Command{}, err
		}
		cmd.Search = params
		return cmd, nil
	case "setoption":
		cmd.Kind = KindSetOption
		name, value, err := parseSetOption(raw, args)
		if err != nil {
			return Command{}, err
		}
		cmd.OptionName, cmd.OptionValue = name, value
		return cmd, nil
	default:
		return Command{}, unsupported(raw)
	}

	if len(args) > 0 {
		return Command{}, malformed(raw, "%s takes no arguments", verb)
	}
	return cmd, nil
}

// parsePosition parses "startpos|fen <6 fields>" followed by optional moves.
func parsePosition(line string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, malformed(line, "missing startpos or fen")
	}

	var (
		fen  string
		rest []string
	)
	switch args[0] {
	case "startpos":
		rest = args[1:]
	case "fen":
		end := 1
		for end < len(args) && args[end] != "moves" {
			end++
		}
		fields := args[1:end]
		if len(fields) != 6 {
			return "", nil, malformed(line, "fen needs 6 fields, got %d", len(fields))
		}
		fen = strings.Join(fields, " ")
		rest = args[end:]
	default:
		return "", nil, malformed(line, "expected startpos or fen, got %q", args[0])
	}

	if len(rest) == 0 {
		return fen, nil, nil
	}
	if rest[0] != "moves" {
		return "", nil, malformed(line, "unexpected token %q", rest[0])
	}
	moves := make([]string, len(rest)-1)
	copy(moves, rest[1:])
	return fen, moves, nil
}

// parseSetOption parses "name <words...> [value <words...>]".
func parseSetOption(line string, args []string) (string, string, error) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", malformed(line, "expected name <option>")
	}

	valueAt := -1
	for i := 1; i < len(args); i++ {
		if args[i] == "value" {
			valueAt = i
			break
		}
	}

	if valueAt == -1 {
		return strings.Join(args[1:], " "), "", nil
	}
	if valueAt == 1 {
		return "", "", malformed(line, "empty option name")
	}
	return strings.Join(args[1:valueAt], " "), strings.Join(args[valueAt+1:], " "), nil
}
