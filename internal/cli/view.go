// FILE: stripchess/internal/cli/view.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/engine"

	"github.com/fatih/color"
)

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg color.Attribute
	darkBg  color.Attribute
	white   color.Attribute
	black   color.Attribute
}

var themes = map[ColorTheme]themeColors{
	ThemeBrown: {
		lightBg: color.BgHiYellow,
		darkBg:  color.BgYellow,
		white:   color.FgHiWhite,
		black:   color.FgBlack,
	},
	ThemeGreen: {
		lightBg: color.BgHiGreen,
		darkBg:  color.BgGreen,
		white:   color.FgHiWhite,
		black:   color.FgBlack,
	},
	ThemeGray: {
		lightBg: color.BgWhite,
		darkBg:  color.BgHiBlack,
		white:   color.FgHiWhite,
		black:   color.FgBlack,
	},
}

// ParseTheme accepts off, brown, green or gray
func ParseTheme(s string) (ColorTheme, error) {
	t := ColorTheme(strings.ToLower(s))
	if t == ThemeOff {
		return t, nil
	}
	if _, ok := themes[t]; !ok {
		return ThemeOff, fmt.Errorf("unknown theme %q: use off, brown, green or gray", s)
	}
	return t, nil
}

// View renders positions and results to a writer
type View struct {
	out   io.Writer
	theme ColorTheme

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

func NewView(out io.Writer, theme ColorTheme) *View {
	return &View{
		out:   out,
		theme: theme,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed, color.Bold),
		dim:   color.New(color.Faint),
	}
}

func (v *View) Printf(format string, args ...any) {
	fmt.Fprintf(v.out, format, args...)
}

// Board draws the strip under a hex index ruler
func (v *View) Board(b board.Board) {
	var sb strings.Builder
	for i := 0; i < board.Size; i++ {
		sb.WriteString(fmt.Sprintf("%x ", i))
	}
	v.Printf("%s\n", v.dim.Sprint(strings.TrimRight(sb.String(), " ")))
	sb.Reset()

	theme, colored := themes[v.theme]
	for i, p := range b {
		cell := string(p.Char()) + " "
		if p.IsEmpty() {
			cell = "  "
		}
		if !colored {
			if p.IsEmpty() {
				cell = ". "
			}
			sb.WriteString(cell)
			continue
		}

		bg := theme.darkBg
		if i%2 == 0 {
			bg = theme.lightBg
		}
		fg := theme.white
		if p.Is(core.ColorBlack) {
			fg = theme.black
		}
		sb.WriteString(color.New(bg, fg).Sprint(cell))
	}
	v.Printf("%s\n", strings.TrimRight(sb.String(), " "))
}

// Position draws the board followed by its record
func (v *View) Position(p board.Position) {
	v.Board(p.Board)
	v.Printf("%s (%s to move)\n", p, p.Turn.Name())
}

// Moves lists moves, one line
func (v *View) Moves(moves []board.Move) {
	if len(moves) == 0 {
		v.Printf("%s\n", v.warn.Sprint("no legal moves"))
		return
	}
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	v.Printf("%d legal: %s\n", len(moves), strings.Join(parts, " "))
}

// Outcome prints the classification of a position
func (v *View) Outcome(outcome core.Outcome, reason core.Reason) {
	switch outcome {
	case core.OutcomeNone:
		v.Printf("%s\n", v.ok.Sprint("ongoing"))
	case core.OutcomeDraw:
		v.Printf("%s (%s)\n", v.warn.Sprint(outcome.Describe()), reason)
	default:
		v.Printf("%s (%s)\n", v.bad.Sprint(outcome.Describe()), reason)
	}
}

// Score formats a search score relative to the side to move
func (v *View) Score(score int) string {
	switch {
	case score >= engine.ScoreWin:
		return v.ok.Sprintf("%d (win)", score)
	case score <= engine.ScoreLoss:
		return v.bad.Sprintf("%d (loss)", score)
	default:
		return fmt.Sprintf("%d", score)
	}
}

func (v *View) Error(err error) {
	v.Printf("%s %v\n", v.bad.Sprint("error:"), err)
}
