package board

import (
	"fmt"
	"strconv"
	"strings"

	"stripchess/internal/core"
)

const (
	Size = 16

	StartingRecord = "KQRBNP....pnbrqk w 0 1"

	// Pawns may advance two squares from these cells
	PawnStartWhite = 5
	PawnStartBlack = 10
)

// OnBoard reports whether i is a valid cell index
func OnBoard(i int) bool {
	return i >= 0 && i < Size
}

// Board is the strip of cells, white's home at index 0
type Board [Size]Piece

// Find returns the index of the first cell holding p, or -1
func (b Board) Find(p Piece) int {
	for i, q := range b {
		if q == p {
			return i
		}
	}
	return -1
}

// String returns the sixteen-character board field of a record
func (b Board) String() string {
	var buf [Size]byte
	for i, p := range b {
		buf[i] = p.Char()
	}
	return string(buf[:])
}

// ParseBoard decodes the board field of a record
func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != Size {
		return b, fmt.Errorf("board has %d cells, expected %d", len(s), Size)
	}
	for i := 0; i < Size; i++ {
		p, ok := PieceFromChar(s[i])
		if !ok {
			return b, fmt.Errorf("invalid character %q at cell %d", s[i], i)
		}
		b[i] = p
	}
	return b, nil
}

// Move is an (origin, destination) pair of cell indices
type Move struct {
	From int
	To   int
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.From, m.To)
}

// ParseMove accepts "5,7", "(5,7)" or "5-7"
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	sep := strings.IndexAny(s, ",-")
	if sep < 0 {
		return Move{}, fmt.Errorf("invalid move %q: expected origin,destination", s)
	}
	from, err := strconv.Atoi(strings.TrimSpace(s[:sep]))
	if err != nil {
		return Move{}, fmt.Errorf("invalid move origin: %w", err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if err != nil {
		return Move{}, fmt.Errorf("invalid move destination: %w", err)
	}
	if !OnBoard(from) || !OnBoard(to) {
		return Move{}, fmt.Errorf("invalid move %q: squares must be in [0,%d)", s, Size)
	}
	return Move{From: from, To: to}, nil
}

// FormatLine joins moves as "5-7 10-8"
func FormatLine(line []Move) string {
	parts := make([]string, len(line))
	for i, m := range line {
		parts[i] = fmt.Sprintf("%d-%d", m.From, m.To)
	}
	return strings.Join(parts, " ")
}

// ParseLine is the inverse of FormatLine
func ParseLine(s string) ([]Move, error) {
	fields := strings.Fields(s)
	line := make([]Move, 0, len(fields))
	for _, f := range fields {
		m, err := ParseMove(f)
		if err != nil {
			return nil, err
		}
		line = append(line, m)
	}
	return line, nil
}

// Key identifies a position for repetition purposes: clocks are ignored
type Key struct {
	Board Board
	Turn  core.Color
}

// Position is an immutable game state. All transitions return a new value.
type Position struct {
	Board    Board
	Turn     core.Color
	Halfmove int
	Fullmove int
}

// Start returns the initial position
func Start() Position {
	p, _ := ParseRecord(StartingRecord)
	return p
}

func (p Position) Key() Key {
	return Key{Board: p.Board, Turn: p.Turn}
}

// ParseRecord decodes "<board> <w|b> <halfmove> <fullmove>"
func ParseRecord(record string) (Position, error) {
	var p Position
	malformed := func(reason string) (Position, error) {
		return Position{}, &core.MalformedPositionError{Record: record, Reason: reason}
	}

	parts := strings.Fields(record)
	if len(parts) != 4 {
		return malformed(fmt.Sprintf("expected 4 fields, got %d", len(parts)))
	}

	b, err := ParseBoard(parts[0])
	if err != nil {
		return malformed(err.Error())
	}
	p.Board = b

	turn, ok := core.ParseColor(parts[1])
	if !ok {
		return malformed("active color must be 'w' or 'b'")
	}
	p.Turn = turn

	if p.Halfmove, err = strconv.Atoi(parts[2]); err != nil || p.Halfmove < 0 {
		return malformed("halfmove clock must be a non-negative integer")
	}
	if p.Fullmove, err = strconv.Atoi(parts[3]); err != nil || p.Fullmove < 0 {
		return malformed("fullmove number must be a non-negative integer")
	}

	return p, nil
}

// String serializes the position back to a record
func (p Position) String() string {
	return fmt.Sprintf("%s %s %d %d", p.Board, p.Turn, p.Halfmove, p.Fullmove)
}

// ApplyBoard moves the piece on m.From to m.To, leaving the origin empty.
// No legality checks are made.
func ApplyBoard(b Board, m Move) Board {
	b[m.To] = b[m.From]
	b[m.From] = Empty
	return b
}

// Apply plays a move assumed to be legal and returns the successor position
func Apply(p Position, m Move) Position {
	next := p
	if p.Board[m.From].Kind() == Pawn || !p.Board[m.To].IsEmpty() {
		next.Halfmove = 0
	} else {
		next.Halfmove = p.Halfmove + 1
	}
	if p.Turn == core.ColorBlack {
		next.Fullmove = p.Fullmove + 1
	}
	next.Board = ApplyBoard(p.Board, m)
	next.Turn = p.Turn.Opposite()
	return next
}

// ToASCII renders the board under an index ruler
func (b Board) ToASCII() string {
	var sb strings.Builder
	for i := 0; i < Size; i++ {
		sb.WriteString(fmt.Sprintf("%x ", i))
	}
	sb.WriteString("\n")
	for _, p := range b {
		sb.WriteByte(p.Char())
		sb.WriteByte(' ')
	}
	return sb.String()
}
