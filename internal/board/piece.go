package board

import "stripchess/internal/core"

// Kind is the type of a piece irrespective of color
type Kind uint8

const (
	KindNone Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// Kinds lists every piece kind in notation order
var Kinds = [...]Kind{King, Queen, Rook, Bishop, Knight, Pawn}

var kindLetters = [...]byte{KindNone: '.', King: 'K', Queen: 'Q', Rook: 'R', Bishop: 'B', Knight: 'N', Pawn: 'P'}

func (k Kind) String() string {
	switch k {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return "none"
	}
}

// Piece packs a kind and a color into one byte. The zero value is an empty cell.
type Piece uint8

const (
	Empty Piece = 0

	blackBit Piece = 0x08
	kindMask Piece = 0x07
)

// EmptyChar is the record notation for an empty cell
const EmptyChar = '.'

// NewPiece builds a piece of the given kind and color
func NewPiece(k Kind, c core.Color) Piece {
	if k == KindNone {
		return Empty
	}
	p := Piece(k)
	if c == core.ColorBlack {
		p |= blackBit
	}
	return p
}

func (p Piece) IsEmpty() bool { return p == Empty }

func (p Piece) Kind() Kind { return Kind(p & kindMask) }

// Color of the piece; meaningless for Empty
func (p Piece) Color() core.Color {
	if p&blackBit != 0 {
		return core.ColorBlack
	}
	return core.ColorWhite
}

// Is reports whether p is a piece belonging to c
func (p Piece) Is(c core.Color) bool {
	return p != Empty && p.Color() == c
}

// Char returns the record letter: uppercase white, lowercase black, '.' empty
func (p Piece) Char() byte {
	if p == Empty {
		return EmptyChar
	}
	ch := kindLetters[p.Kind()]
	if p.Color() == core.ColorBlack {
		ch += 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string { return string(p.Char()) }

// PieceFromChar decodes a record letter. ok is false outside the alphabet.
func PieceFromChar(ch byte) (Piece, bool) {
	if ch == EmptyChar {
		return Empty, true
	}
	color := core.ColorWhite
	upper := ch
	if ch >= 'a' && ch <= 'z' {
		color = core.ColorBlack
		upper = ch - ('a' - 'A')
	}
	for _, k := range Kinds {
		if kindLetters[k] == upper {
			return NewPiece(k, color), true
		}
	}
	return Empty, false
}
