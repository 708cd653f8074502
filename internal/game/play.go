// FILE: stripchess/internal/game/play.go
package game

import (
	"context"
	"fmt"
	"strings"

	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/policy"
	"stripchess/internal/rules"
)

// Result summarizes a finished game
type Result struct {
	GameID  string       `json:"gameId"`
	Outcome core.Outcome `json:"outcome"`
	Reason  core.Reason  `json:"reason"`
	Plies   int          `json:"plies"`
	Final   string       `json:"final"`
}

// Play alternates the two policies until the game ends. Illegal moves forfeit.
func Play(ctx context.Context, g *Game, white, black policy.Policy) (Result, error) {
	for !g.IsOver() {
		if err := ctx.Err(); err != nil {
			return g.result(), err
		}

		mover := white
		if g.NextTurnColor() == core.ColorBlack {
			mover = black
		}
		m, err := mover.Move(g.Current(), g.Repetitions())
		if err != nil {
			return g.result(), fmt.Errorf("%s policy failed on %s: %w", mover.Name(), g.Current(), err)
		}
		if err := g.Apply(m, false); err != nil {
			return g.result(), err
		}
	}
	return g.result(), nil
}

func (g *Game) result() Result {
	return Result{
		GameID:  g.id,
		Outcome: g.outcome,
		Reason:  g.reason,
		Plies:   len(g.snapshots) - 1,
		Final:   g.Current().String(),
	}
}

// Tally aggregates outcomes over a match
type Tally struct {
	White   int                 `json:"white"`
	Black   int                 `json:"black"`
	Draw    int                 `json:"draw"`
	Plies   int                 `json:"plies"`
	Reasons map[core.Reason]int `json:"reasons"`
}

func (t *Tally) Add(r Result) {
	switch r.Outcome {
	case core.OutcomeWhite:
		t.White++
	case core.OutcomeBlack:
		t.Black++
	case core.OutcomeDraw:
		t.Draw++
	default:
		return
	}
	if t.Reasons == nil {
		t.Reasons = make(map[core.Reason]int)
	}
	t.Reasons[r.Reason]++
	t.Plies += r.Plies
}

func (t Tally) Games() int {
	return t.White + t.Black + t.Draw
}

// Record formats the tally as white-black-draw
func (t Tally) Record() string {
	return fmt.Sprintf("%d-%d-%d", t.White, t.Black, t.Draw)
}

func (t Tally) String() string {
	var sb strings.Builder
	sb.WriteString(t.Record())
	for _, reason := range []core.Reason{
		core.ReasonCheckmate, core.ReasonStalemate, core.ReasonFiftyMove,
		core.ReasonInsufficient, core.ReasonFullmoveLimit, core.ReasonRepetition,
		core.ReasonIllegalMove,
	} {
		if n := t.Reasons[reason]; n > 0 {
			fmt.Fprintf(&sb, " %s=%d", reason, n)
		}
	}
	return sb.String()
}

// Match plays a series of games from start. onGame, when set, observes each
// finished game in order.
func Match(ctx context.Context, games int, start board.Position, r rules.Rules,
	white, black policy.Policy, onGame func(i int, res Result)) (Tally, error) {
	var tally Tally
	for i := 0; i < games; i++ {
		res, err := Play(ctx, New(start, r), white, black)
		if err != nil {
			return tally, err
		}
		tally.Add(res)
		if onGame != nil {
			onGame(i, res)
		}
	}
	return tally, nil
}
