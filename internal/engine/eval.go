// FILE: stripchess/internal/engine/eval.go
package engine

import (
	"slices"

	"stripchess/internal/board"
	"stripchess/internal/core"
)

// Fixed scores for finished games. Their magnitude exceeds any material
// difference, so a forced result always dominates a static estimate.
const (
	ScoreWin  = 1000
	ScoreLoss = -1000
	ScoreDraw = 0
)

var pieceValues = [...]int{
	board.KindNone: 0,
	board.King:     50,
	board.Queen:    9,
	board.Rook:     5,
	board.Bishop:   3,
	board.Knight:   3,
	board.Pawn:     1,
}

// PieceValue returns the material value of a piece kind
func PieceValue(k board.Kind) int {
	if int(k) >= len(pieceValues) {
		return 0
	}
	return pieceValues[k]
}

// Evaluator scores a board from the perspective of the given side
type Evaluator func(b board.Board, perspective core.Color) int

// Material is the signed material sum: own pieces minus the opponent's
func Material(b board.Board, perspective core.Color) int {
	score := 0
	for _, p := range b {
		if p.IsEmpty() {
			continue
		}
		if p.Color() == perspective {
			score += PieceValue(p.Kind())
		} else {
			score -= PieceValue(p.Kind())
		}
	}
	return score
}

// OrderByEvaluation returns a copy of moves sorted by the evaluation of the
// board after each move, best for the mover first. Equal moves keep their
// generation order.
func OrderByEvaluation(b board.Board, moves []board.Move, mover core.Color, eval Evaluator) []board.Move {
	if eval == nil {
		eval = Material
	}
	type scored struct {
		move  board.Move
		score int
	}
	buf := make([]scored, len(moves))
	for i, m := range moves {
		buf[i] = scored{move: m, score: eval(board.ApplyBoard(b, m), mover)}
	}
	slices.SortStableFunc(buf, func(x, y scored) int {
		return y.score - x.score
	})

	ordered := make([]board.Move, len(buf))
	for i, s := range buf {
		ordered[i] = s.move
	}
	return ordered
}
