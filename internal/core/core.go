package core

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

func (c Color) Name() string {
	if c == ColorBlack {
		return "black"
	}
	return "white"
}

// Opposite returns the other side
func (c Color) Opposite() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts the record notation "w" or "b"
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w":
		return ColorWhite, true
	case "b":
		return ColorBlack, true
	default:
		return 0, false
	}
}

// Outcome is the result of a finished game, or OutcomeNone while it is ongoing
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWhite
	OutcomeBlack
	OutcomeDraw
)

// String returns the short notation used in records and reports: "w", "b", "d"
func (o Outcome) String() string {
	switch o {
	case OutcomeWhite:
		return "w"
	case OutcomeBlack:
		return "b"
	case OutcomeDraw:
		return "d"
	default:
		return ""
	}
}

// Describe returns a human readable outcome
func (o Outcome) Describe() string {
	switch o {
	case OutcomeWhite:
		return "white wins"
	case OutcomeBlack:
		return "black wins"
	case OutcomeDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Winner converts a color into the outcome where that color won
func Winner(c Color) Outcome {
	if c == ColorWhite {
		return OutcomeWhite
	}
	return OutcomeBlack
}

// Reason explains why a game ended
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonCheckmate     Reason = "checkmate"
	ReasonStalemate     Reason = "stalemate"
	ReasonFiftyMove     Reason = "50-move rule"
	ReasonInsufficient  Reason = "insufficient material"
	ReasonFullmoveLimit Reason = "fullmove limit"
	ReasonRepetition    Reason = "threefold repetition"
	ReasonIllegalMove   Reason = "illegal move"
)
