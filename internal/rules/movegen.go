// FILE: stripchess/internal/rules/movegen.go
package rules

import (
	"stripchess/internal/board"
	"stripchess/internal/core"
)

// PseudoLegalMoves generates moves that follow piece movement rules without
// testing whether the mover's king is left in check. Kings still avoid cells
// in the opponent's current attack set.
func PseudoLegalMoves(b board.Board, color core.Color) []board.Move {
	opponentAttacks := AttackedSquares(b, color.Opposite())
	moves := make([]board.Move, 0, 24)

	// empty or enemy-occupied cells are valid landing squares
	canLand := func(j int) bool {
		return board.OnBoard(j) && !b[j].Is(color)
	}

	for i, p := range b {
		if !p.Is(color) {
			continue
		}
		switch k := p.Kind(); k {
		case board.King:
			for _, off := range kingOffsets {
				j := i + off
				if canLand(j) && !opponentAttacks.Has(j) {
					moves = append(moves, board.Move{From: i, To: j})
				}
			}
		case board.Queen, board.Rook, board.Bishop:
			for _, step := range slideSteps(k) {
				for j := i + step; board.OnBoard(j); j += step {
					if b[j].IsEmpty() {
						moves = append(moves, board.Move{From: i, To: j})
						continue
					}
					if !b[j].Is(color) {
						moves = append(moves, board.Move{From: i, To: j})
					}
					break
				}
			}
		case board.Knight:
			for _, off := range knightOffsets {
				if j := i + off; canLand(j) {
					moves = append(moves, board.Move{From: i, To: j})
				}
			}
		case board.Pawn:
			dir := pawnDirection(color)
			// single file: a pawn captures on the cell it would advance to
			if j := i + dir; canLand(j) {
				moves = append(moves, board.Move{From: i, To: j})
			}
			start := board.PawnStartWhite
			if color == core.ColorBlack {
				start = board.PawnStartBlack
			}
			if i == start && b[i+dir].IsEmpty() && board.OnBoard(i+2*dir) && b[i+2*dir].IsEmpty() {
				moves = append(moves, board.Move{From: i, To: i + 2*dir})
			}
		}
	}
	return moves
}

// LegalMoves filters pseudo-legal moves down to those that do not leave the
// mover's king in check. Ordering follows cell index, then piece rule order.
func LegalMoves(b board.Board, color core.Color) []board.Move {
	pseudo := PseudoLegalMoves(b, color)
	legal := pseudo[:0]
	for _, m := range pseudo {
		if !InCheck(board.ApplyBoard(b, m), color) {
			legal = append(legal, m)
		}
	}
	return legal
}

// CurrentMoves returns the legal moves for the side to move
func CurrentMoves(p board.Position) []board.Move {
	return LegalMoves(p.Board, p.Turn)
}

// IsLegal reports whether m is among the legal moves of p
func IsLegal(p board.Position, m board.Move) bool {
	for _, lm := range CurrentMoves(p) {
		if lm == m {
			return true
		}
	}
	return false
}

// ValidateMove returns an IllegalMoveError when m is not legal in p
func ValidateMove(p board.Position, m board.Move) error {
	if !IsLegal(p, m) {
		return &core.IllegalMoveError{From: m.From, To: m.To, Record: p.String()}
	}
	return nil
}

// ApplyStrict validates m before applying it
func ApplyStrict(p board.Position, m board.Move) (board.Position, error) {
	if err := ValidateMove(p, m); err != nil {
		return p, err
	}
	return board.Apply(p, m), nil
}
