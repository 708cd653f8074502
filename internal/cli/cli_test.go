package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stripchess/internal/board"
	"stripchess/internal/core"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &App{Out: &out, Log: zerolog.Nop()}
	err := app.Run(args)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestBoardView(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, ThemeOff).Board(board.Start().Board)
	want := "0 1 2 3 4 5 6 7 8 9 a b c d e f\nK Q R B N P . . . . p n b r q k\n"
	if out.String() != want {
		t.Errorf("Board =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestParseTheme(t *testing.T) {
	for _, s := range []string{"off", "brown", "Green", "gray"} {
		if _, err := ParseTheme(s); err != nil {
			t.Errorf("ParseTheme(%q): %v", s, err)
		}
	}
	if _, err := ParseTheme("purple"); err == nil {
		t.Error("ParseTheme(purple) should fail")
	}
}

func TestMoves(t *testing.T) {
	out := mustRun(t, "moves")
	if !strings.Contains(out, "4 legal: (4,6) (4,7) (5,6) (5,7)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out = mustRun(t, "moves", "-record", "K..b...........k w 0 1")
	if !strings.Contains(out, "no legal moves") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		record string
		want   string
	}{
		{board.StartingRecord, "ongoing"},
		{"K..b...........k w 0 1", "draw (stalemate)"},
		{"K.......b......k w 0 1", "draw (insufficient material)"},
		{"K.R.....b......k w 51 40", "draw (50-move rule)"},
	}
	for _, tt := range tests {
		out := mustRun(t, "classify", "-record", tt.record)
		if !strings.Contains(out, tt.want) {
			t.Errorf("classify %q:\n%s\nwant %q", tt.record, out, tt.want)
		}
	}

	out := mustRun(t, "classify", "-record", "K.R.....b......k w 51 40", "-halfmove-limit", "-1")
	if !strings.Contains(out, "ongoing") {
		t.Errorf("disabled halfmove limit:\n%s", out)
	}
}

func TestApply(t *testing.T) {
	out := mustRun(t, "apply", "-moves", "4-7")
	if !strings.Contains(out, "KQRB.P.N..pnbrqk b 1 1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	_, err := run(t, "apply", "-moves", "0-1")
	if !errors.Is(err, core.ErrIllegalMove) {
		t.Errorf("illegal move err = %v", err)
	}

	out = mustRun(t, "apply", "-moves", "4-7 11-8", "-undo", "1", "-history")
	for _, want := range []string{"  0 start   " + board.StartingRecord, "  1 (4,7)   KQRB.P.N..pnbrqk b 1 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(11,8)") {
		t.Errorf("undone move still listed:\n%s", out)
	}

	if _, err := run(t, "apply"); err == nil {
		t.Error("apply without moves should fail")
	}
}

func TestAnalyzeFindsMate(t *testing.T) {
	for _, depth := range []string{"1", "3"} {
		out := mustRun(t, "analyze", "-record", "K..........N.P.k w 0 1", "-depth", depth)
		if !strings.Contains(out, "1000 (win)") || !strings.Contains(out, "line 13-14") {
			t.Errorf("depth %s:\n%s", depth, out)
		}
	}

	out := mustRun(t, "analyze", "-record", "K..........N.P.k w 0 1", "-depth", "2", "-no-pruning", "-no-ordering")
	if !strings.Contains(out, "line 13-14") {
		t.Errorf("minimax:\n%s", out)
	}
}

func TestAnalyzeSaveAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")

	mustRun(t, "db", "init", "-path", path)
	out := mustRun(t, "analyze", "-depth", "2", "-save", path)
	if !strings.Contains(out, "saved to "+path) {
		t.Errorf("analyze -save:\n%s", out)
	}

	out = mustRun(t, "db", "query", "-path", path)
	if !strings.Contains(out, board.StartingRecord) || !strings.Contains(out, "Found 1 analysis(es)") {
		t.Errorf("db query:\n%s", out)
	}

	out = mustRun(t, "db", "query", "-path", path, "-record", "K..b...........k w 0 1")
	if !strings.Contains(out, "No analyses found") {
		t.Errorf("filtered query:\n%s", out)
	}

	mustRun(t, "db", "delete", "-path", path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("database file still present: %v", err)
	}
}

func TestSelfplay(t *testing.T) {
	out := mustRun(t, "selfplay", "-games", "3", "-white", "random", "-black", "greedy", "-seed", "7", "-v")
	if !strings.Contains(out, "random vs greedy: ") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if n := strings.Count(out, "game "); n != 3 {
		t.Errorf("got %d game lines:\n%s", n, out)
	}

	if _, err := run(t, "selfplay", "-white", "nobody"); err == nil {
		t.Error("unknown policy should fail")
	}
}

func TestRunErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"bogus"},
		{"db"},
		{"db", "bogus"},
		{"db", "init"},
		{"moves", "-record", "not a record"},
		{"moves", "-theme", "purple"},
		{"analyze", "-depth", "-1"},
		{"classify", "-halfmove-limit", "0"},
	}
	for _, args := range tests {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v should fail", args)
		}
	}
}
