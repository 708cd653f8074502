// FILE: stripchess/internal/game/game.go
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/engine"
	"stripchess/internal/rules"
)

var ErrGameOver = errors.New("game is over")

// RepetitionLimit draws a game on the third occurrence of a position
const RepetitionLimit = 3

type Snapshot struct {
	Record        string      `json:"record"`
	PreviousMove  *board.Move `json:"previousMove,omitempty"`
	NextTurnColor core.Color  `json:"nextTurnColor"`

	position board.Position
}

type Game struct {
	id        string
	snapshots []Snapshot
	rules     rules.Rules
	outcome   core.Outcome
	reason    core.Reason
}

// New starts a game from initial. Zero rules select rules.Default; use
// rules.NoLimits for a game without draw thresholds.
func New(initial board.Position, r rules.Rules) *Game {
	if r == (rules.Rules{}) {
		r = rules.Default
	}
	g := &Game{
		id:    uuid.New().String(),
		rules: r,
		snapshots: []Snapshot{
			{
				Record:        initial.String(),
				NextTurnColor: initial.Turn,
				position:      initial,
			},
		},
	}
	g.updateOutcome()
	return g
}

func (g *Game) ID() string {
	return g.id
}

// CurrentSnapshot returns the latest game snapshot
func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

func (g *Game) Current() board.Position {
	return g.CurrentSnapshot().position
}

func (g *Game) NextTurnColor() core.Color {
	return g.CurrentSnapshot().NextTurnColor
}

func (g *Game) InitialRecord() string {
	return g.snapshots[0].Record
}

func (g *Game) Snapshots() []Snapshot {
	out := make([]Snapshot, len(g.snapshots))
	copy(out, g.snapshots)
	return out
}

func (g *Game) Moves() []board.Move {
	moves := make([]board.Move, 0, len(g.snapshots)-1)
	for _, s := range g.snapshots[1:] {
		if s.PreviousMove != nil {
			moves = append(moves, *s.PreviousMove)
		}
	}
	return moves
}

func (g *Game) Outcome() (core.Outcome, core.Reason) {
	return g.outcome, g.reason
}

func (g *Game) IsOver() bool {
	return g.outcome != core.OutcomeNone
}

// Apply plays m for the side to move. In strict mode an illegal move is
// rejected with an IllegalMoveError; otherwise it forfeits the game.
func (g *Game) Apply(m board.Move, strict bool) error {
	if g.IsOver() {
		return ErrGameOver
	}
	current := g.Current()
	if err := rules.ValidateMove(current, m); err != nil {
		if strict {
			return err
		}
		g.outcome = core.Winner(current.Turn.Opposite())
		g.reason = core.ReasonIllegalMove
		return nil
	}

	next := board.Apply(current, m)
	g.snapshots = append(g.snapshots, Snapshot{
		Record:        next.String(),
		PreviousMove:  &m,
		NextTurnColor: next.Turn,
		position:      next,
	})
	g.updateOutcome()
	return nil
}

func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.updateOutcome()
	return nil
}

// Repetitions returns the positions played before the current one
func (g *Game) Repetitions() engine.Repetitions {
	var r engine.Repetitions
	for _, s := range g.snapshots[:len(g.snapshots)-1] {
		r = r.Push(s.position.Key())
	}
	return r
}

func (g *Game) occurrences(k board.Key) int {
	n := 0
	for _, s := range g.snapshots {
		if s.position.Key() == k {
			n++
		}
	}
	return n
}

func (g *Game) updateOutcome() {
	current := g.Current()
	g.outcome, g.reason = g.rules.Classify(current)
	if g.outcome == core.OutcomeNone && g.occurrences(current.Key()) >= RepetitionLimit {
		g.outcome, g.reason = core.OutcomeDraw, core.ReasonRepetition
	}
}
