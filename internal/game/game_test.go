package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/engine"
	"stripchess/internal/policy"
	"stripchess/internal/rules"
)

// knight shuffle returning to the start position every four plies
var shuffle = []board.Move{{From: 4, To: 6}, {From: 11, To: 9}, {From: 6, To: 4}, {From: 9, To: 11}}

func TestApplyStrict(t *testing.T) {
	g := New(board.Start(), rules.Rules{})
	err := g.Apply(board.Move{From: 0, To: 1}, true)
	if !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if g.IsOver() || len(g.Moves()) != 0 {
		t.Fatal("rejected move must not change the game")
	}

	if err := g.Apply(board.Move{From: 5, To: 7}, true); err != nil {
		t.Fatal(err)
	}
	if got := g.Current().String(); got != "KQRBN..P..pnbrqk b 0 1" {
		t.Errorf("current = %q", got)
	}
	if g.NextTurnColor() != core.ColorBlack {
		t.Errorf("next turn = %s", g.NextTurnColor())
	}
	if g.InitialRecord() != board.StartingRecord {
		t.Errorf("initial = %q", g.InitialRecord())
	}
}

func TestApplyForfeit(t *testing.T) {
	g := New(board.Start(), rules.Rules{})
	if err := g.Apply(board.Move{From: 0, To: 1}, false); err != nil {
		t.Fatal(err)
	}
	outcome, reason := g.Outcome()
	if outcome != core.OutcomeBlack || reason != core.ReasonIllegalMove {
		t.Errorf("outcome = (%q, %q), want black by illegal move", outcome, reason)
	}
	if err := g.Apply(board.Move{From: 5, To: 7}, false); !errors.Is(err, ErrGameOver) {
		t.Errorf("err = %v, want ErrGameOver", err)
	}
}

func TestThreefoldRepetition(t *testing.T) {
	g := New(board.Start(), rules.Rules{})
	for i := 0; i < 8; i++ {
		if g.IsOver() {
			t.Fatalf("game ended early after %d plies", i)
		}
		if err := g.Apply(shuffle[i%4], true); err != nil {
			t.Fatalf("ply %d: %v", i, err)
		}
		if i == 3 {
			if n := g.Repetitions().Count(board.Start().Key()); n != 1 {
				t.Errorf("history count = %d, want 1", n)
			}
		}
	}
	outcome, reason := g.Outcome()
	if outcome != core.OutcomeDraw || reason != core.ReasonRepetition {
		t.Errorf("outcome = (%q, %q), want repetition draw", outcome, reason)
	}

	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if g.IsOver() {
		t.Error("undo should reopen the game")
	}
}

func TestUndoMoves(t *testing.T) {
	g := New(board.Start(), rules.Rules{})
	for _, m := range shuffle[:2] {
		if err := g.Apply(m, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.UndoMoves(0); err == nil {
		t.Error("undo 0 should fail")
	}
	if err := g.UndoMoves(3); err == nil {
		t.Error("undo beyond history should fail")
	}
	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if got := g.Current().String(); got != "KQRB.PN...pnbrqk b 1 1" {
		t.Errorf("after undo = %q", got)
	}
	if moves := g.Moves(); len(moves) != 1 || moves[0] != shuffle[0] {
		t.Errorf("moves = %v", moves)
	}
}

func TestNewTerminal(t *testing.T) {
	p, _ := board.ParseRecord("K.kn............ w 39 20")
	g := New(p, rules.Rules{})
	outcome, reason := g.Outcome()
	if outcome != core.OutcomeBlack || reason != core.ReasonCheckmate {
		t.Errorf("outcome = (%q, %q)", outcome, reason)
	}
}

func TestNewRules(t *testing.T) {
	p, _ := board.ParseRecord("KQRBNP....pnbrqk w 60 200")
	tests := []struct {
		name  string
		rules rules.Rules
		over  bool
	}{
		{"zero selects default", rules.Rules{}, true},
		{"no limits", rules.NoLimits, false},
		{"fullmove cap", rules.Rules{HalfmoveLimit: -1, FullmoveLimit: 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g := New(p, tt.rules); g.IsOver() != tt.over {
				outcome, reason := g.Outcome()
				t.Errorf("IsOver = %v (%q, %q), want %v", g.IsOver(), outcome, reason, tt.over)
			}
		})
	}
}

type fixedPolicy struct{ move board.Move }

func (f fixedPolicy) Name() string { return "fixed" }

func (f fixedPolicy) Move(board.Position, engine.Repetitions) (board.Move, error) {
	return f.move, nil
}

func TestPlayIllegalPolicyForfeits(t *testing.T) {
	res, err := Play(context.Background(), New(board.Start(), rules.Rules{}),
		fixedPolicy{board.Move{From: 0, To: 0}}, policy.NewRandom(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != core.OutcomeBlack || res.Reason != core.ReasonIllegalMove || res.Plies != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestPlayFinishes(t *testing.T) {
	g := New(board.Start(), rules.Rules{HalfmoveLimit: 51, FullmoveLimit: 150})
	res, err := Play(context.Background(), g, policy.NewRandom(7), policy.NewGreedy(7))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome == core.OutcomeNone || res.Plies == 0 {
		t.Errorf("unfinished result %+v", res)
	}
	if res.GameID != g.ID() || res.Final != g.Current().String() {
		t.Errorf("result does not describe the game: %+v", res)
	}
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Play(ctx, New(board.Start(), rules.Rules{}), policy.NewRandom(1), policy.NewRandom(2))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Outcome != core.OutcomeNone {
		t.Errorf("cancelled game has outcome %q", res.Outcome)
	}
}

func TestMatch(t *testing.T) {
	seen := 0
	tally, err := Match(context.Background(), 5, board.Start(), rules.Rules{},
		policy.NewRandom(3), policy.NewRandom(4), func(i int, res Result) {
			if i != seen {
				t.Errorf("game %d reported out of order", i)
			}
			seen++
		})
	if err != nil {
		t.Fatal(err)
	}
	if tally.Games() != 5 || seen != 5 {
		t.Errorf("tally %s over %d reported games", tally.Record(), seen)
	}
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Add(Result{Outcome: core.OutcomeWhite, Reason: core.ReasonCheckmate, Plies: 10})
	tally.Add(Result{Outcome: core.OutcomeDraw, Reason: core.ReasonStalemate, Plies: 20})
	tally.Add(Result{})
	if tally.Record() != "1-0-1" || tally.Plies != 30 {
		t.Errorf("tally = %+v", tally)
	}
	if s := tally.String(); !strings.Contains(s, "checkmate=1") || !strings.Contains(s, "stalemate=1") {
		t.Errorf("String() = %q", s)
	}
}
