// FILE: stripchess/internal/rules/attack.go
// Package rules implements the strip variant's movement rules: attack maps,
// legal move generation and terminal position classification.
package rules

import (
	"math/bits"

	"stripchess/internal/board"
	"stripchess/internal/core"
)

// SquareSet is a bitset over the sixteen cells
type SquareSet uint16

func (s SquareSet) Has(i int) bool {
	return board.OnBoard(i) && s&(1<<uint(i)) != 0
}

// add ignores off-board indices so callers can emit raw offsets
func (s *SquareSet) add(i int) {
	if board.OnBoard(i) {
		*s |= 1 << uint(i)
	}
}

func (s SquareSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Squares lists the members in ascending order
func (s SquareSet) Squares() []int {
	out := make([]int, 0, s.Len())
	for i := 0; i < board.Size; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

var (
	kingOffsets   = []int{-1, 1}
	knightOffsets = []int{-3, -2, 2, 3}
	rookSteps     = []int{-1, 1}
	bishopSteps   = []int{-2, 2}
)

// slideSteps returns the sliding increments of a piece kind
func slideSteps(k board.Kind) []int {
	switch k {
	case board.Rook:
		return rookSteps
	case board.Bishop:
		return bishopSteps
	case board.Queen:
		return []int{-1, 1, -2, 2}
	default:
		return nil
	}
}

// pawnDirection is +1 for white, -1 for black
func pawnDirection(c core.Color) int {
	if c == core.ColorWhite {
		return 1
	}
	return -1
}

// AttackedSquares returns every cell threatened by color's pieces. Cells holding
// pieces of either side are included; a piece never attacks its own cell.
func AttackedSquares(b board.Board, color core.Color) SquareSet {
	var attacked SquareSet
	for i, p := range b {
		if !p.Is(color) {
			continue
		}
		switch k := p.Kind(); k {
		case board.King:
			for _, off := range kingOffsets {
				attacked.add(i + off)
			}
		case board.Queen, board.Rook, board.Bishop:
			for _, step := range slideSteps(k) {
				for j := i + step; board.OnBoard(j); j += step {
					attacked.add(j)
					if !b[j].IsEmpty() {
						break
					}
				}
			}
		case board.Knight:
			for _, off := range knightOffsets {
				attacked.add(i + off)
			}
		case board.Pawn:
			attacked.add(i + pawnDirection(color))
		}
	}
	return attacked
}

// InCheck reports whether color's king is attacked. A board without that
// king is never in check.
func InCheck(b board.Board, color core.Color) bool {
	k := b.Find(board.NewPiece(board.King, color))
	if k < 0 {
		return false
	}
	return AttackedSquares(b, color.Opposite()).Has(k)
}
