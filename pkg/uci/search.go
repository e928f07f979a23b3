package uci

import (
	"strconv"
	"strings"
)

// SearchParams is the limit of a search. It is one of MoveTime, Clock,
// Infinite or Ponder.
type SearchParams interface {
	// String returns the `go` line sent to a backend engine.
	String() string

	// Mode returns a short name for logs and metrics.
	Mode() string

	isSearchParams()
}

// MoveTime searches for a fixed number of milliseconds.
type MoveTime struct {
	Millis int
}

// Clock searches under a game clock.
type Clock struct {
	WTime, BTime int
	WInc, BInc   int

	// MovesToGo is optional; zero means sudden death.
	MovesToGo int
}

// Infinite searches until stopped.
type Infinite struct{}

// Ponder searches speculatively until ponderhit or stop. Inner holds the
// limit that applies once the ponder move is played; nil means none.
type Ponder struct {
	Inner SearchParams
}

func (MoveTime) isSearchParams() {}
func (Clock) isSearchParams()    {}
func (Infinite) isSearchParams() {}
func (Ponder) isSearchParams()   {}

func (p MoveTime) String() string {
	return "go movetime " + strconv.Itoa(p.Millis)
}

func (p Clock) String() string {
	return "go " + p.args()
}

func (p Clock) args() string {
	var b strings.Builder
	b.WriteString("wtime ")
	b.WriteString(strconv.Itoa(p.WTime))
	b.WriteString(" btime ")
	b.WriteString(strconv.Itoa(p.BTime))
	b.WriteString(" winc ")
	b.WriteString(strconv.Itoa(p.WInc))
	b.WriteString(" binc ")
	b.WriteString(strconv.Itoa(p.BInc))
	if p.MovesToGo > 0 {
		b.WriteString(" movestogo ")
		b.WriteString(strconv.Itoa(p.MovesToGo))
	}
	return b.String()
}

func (Infinite) String() string { return "go infinite" }

func (p Ponder) String() string {
	if p.Inner == nil {
		return "go ponder"
	}
	return "go ponder" + strings.TrimPrefix(p.Inner.String(), "go")
}

func (MoveTime) Mode() string { return "movetime" }
func (Clock) Mode() string    { return "clock" }
func (Infinite) Mode() string { return "infinite" }
func (Ponder) Mode() string   { return "ponder" }

// IsPonder reports whether p starts a ponder search.
func IsPonder(p SearchParams) bool {
	_, ok := p.(Ponder)
	return ok
}

// parseGo parses the arguments of a go command.
func parseGo(line string, args []string) (SearchParams, error) {
	var (
		ponder   bool
		infinite bool
		moveTime = -1
		clock    Clock
		hasClock bool
	)

	for i := 0; i < len(args); i++ {
		key := args[i]
		switch key {
		case "ponder":
			ponder = true
			continue
		case "infinite":
			infinite = true
			continue
		case "movetime", "wtime", "btime", "winc", "binc", "movestogo":
		default:
			return nil, malformed(line, "unknown go parameter %q", key)
		}

		if i+1 >= len(args) {
			return nil, malformed(line, "missing value for %s", key)
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n < 0 {
			return nil, malformed(line, "invalid value %q for %s", args[i+1], key)
		}
		i++

		switch key {
		case "movetime":
			moveTime = n
		case "wtime":
			clock.WTime = n
			hasClock = true
		case "btime":
			clock.BTime = n
			hasClock = true
		case "winc":
			clock.WInc = n
		case "binc":
			clock.BInc = n
		case "movestogo":
			clock.MovesToGo = n
		}
	}

	var inner SearchParams
	switch {
	case moveTime >= 0 && (hasClock || infinite):
		return nil, malformed(line, "movetime cannot be combined with other limits")
	case hasClock && infinite:
		return nil, malformed(line, "clock cannot be combined with infinite")
	case moveTime >= 0:
		inner = MoveTime{Millis: moveTime}
	case hasClock:
		inner = clock
	case infinite:
		inner = Infinite{}
	case clock.WInc > 0 || clock.BInc > 0 || clock.MovesToGo > 0:
		return nil, malformed(line, "increments given without wtime/btime")
	}

	if ponder {
		return Ponder{Inner: inner}, nil
	}
	if inner == nil {
		// A bare "go" searches until stopped.
		return Infinite{}, nil
	}
	return inner, nil
}
