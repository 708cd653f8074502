// FILE: stripchess/internal/rules/terminal.go
package rules

import (
	"stripchess/internal/board"
	"stripchess/internal/core"
)

// Rules holds the configurable draw thresholds. A limit of zero or below
// disables its rule. Callers that substitute Default for the zero value
// (engine.Search, game.New) still honor negative limits, so use NoLimits
// rather than Rules{} to turn both rules off.
type Rules struct {
	// HalfmoveLimit draws the game once the halfmove clock reaches it.
	// The clock is compared after the deciding move, hence 51.
	HalfmoveLimit int
	// FullmoveLimit draws the game at this fullmove number.
	FullmoveLimit int
}

// Default matches the classic rule set: 50-move rule on, no fullmove cap
var Default = Rules{HalfmoveLimit: 51}

// NoLimits disables both the 50-move rule and the fullmove cap
var NoLimits = Rules{HalfmoveLimit: -1}

// PieceSet is a bitset of the distinct pieces present on a board
type PieceSet uint16

func pieceBit(p board.Piece) PieceSet {
	return 1 << uint(p)
}

// PieceSetOf builds a PieceSet from piece letters, e.g. "KkB"
func PieceSetOf(letters string) PieceSet {
	var s PieceSet
	for i := 0; i < len(letters); i++ {
		if p, ok := board.PieceFromChar(letters[i]); ok && !p.IsEmpty() {
			s |= pieceBit(p)
		}
	}
	return s
}

// Pieces returns the set of distinct pieces on b
func Pieces(b board.Board) PieceSet {
	var s PieceSet
	for _, p := range b {
		if !p.IsEmpty() {
			s |= pieceBit(p)
		}
	}
	return s
}

// Has reports whether p is in the set
func (s PieceSet) Has(p board.Piece) bool {
	return !p.IsEmpty() && s&pieceBit(p) != 0
}

// material sets with no mating potential
var insufficientSets = []PieceSet{
	PieceSetOf("Kk"),
	PieceSetOf("KkB"),
	PieceSetOf("Kkb"),
}

// InsufficientMaterial reports whether the pieces on b match a known dead set
func InsufficientMaterial(b board.Board) bool {
	set := Pieces(b)
	for _, dead := range insufficientSets {
		if set == dead {
			return true
		}
	}
	return false
}

// Classify applies the default rules
func Classify(p board.Position) (core.Outcome, core.Reason) {
	return Default.Classify(p)
}

// Classify determines whether p is terminal. The position is assumed to be
// reachable: only the side to move is tested for checkmate.
func (r Rules) Classify(p board.Position) (core.Outcome, core.Reason) {
	return r.ClassifyWithMoves(p, CurrentMoves(p))
}

// ClassifyWithMoves classifies p given its precomputed legal moves
func (r Rules) ClassifyWithMoves(p board.Position, legal []board.Move) (core.Outcome, core.Reason) {
	if len(legal) == 0 {
		if InCheck(p.Board, p.Turn) {
			return core.Winner(p.Turn.Opposite()), core.ReasonCheckmate
		}
		return core.OutcomeDraw, core.ReasonStalemate
	}
	if r.HalfmoveLimit > 0 && p.Halfmove >= r.HalfmoveLimit {
		return core.OutcomeDraw, core.ReasonFiftyMove
	}
	if r.FullmoveLimit > 0 && p.Fullmove >= r.FullmoveLimit {
		return core.OutcomeDraw, core.ReasonFullmoveLimit
	}
	if InsufficientMaterial(p.Board) {
		return core.OutcomeDraw, core.ReasonInsufficient
	}
	return core.OutcomeNone, core.ReasonNone
}
