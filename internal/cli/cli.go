// FILE: stripchess/internal/cli/cli.go
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"stripchess/internal/board"
	"stripchess/internal/engine"
	"stripchess/internal/game"
	"stripchess/internal/policy"
	"stripchess/internal/rules"
	"stripchess/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const usage = "subcommand required: analyze, moves, classify, apply, selfplay, remote, db"

// App carries the output and logger shared by all subcommands
type App struct {
	Out io.Writer
	Log zerolog.Logger
}

// Run is the entry point for the command line tool
func Run(args []string, out io.Writer) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
	return (&App{Out: out, Log: log}).Run(args)
}

func (a *App) Run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "analyze":
		return a.runAnalyze(args[1:])
	case "moves":
		return a.runMoves(args[1:])
	case "classify":
		return a.runClassify(args[1:])
	case "apply":
		return a.runApply(args[1:])
	case "selfplay":
		return a.runSelfplay(args[1:])
	case "remote":
		return a.runRemote(args[1:])
	case "db":
		return a.RunDB(args[1:])
	case "help", "-h", "--help":
		fmt.Fprintln(a.Out, usage)
		return nil
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// positionFlags registers the flags every position subcommand shares
type positionFlags struct {
	record        *string
	theme         *string
	halfmoveLimit *int
	fullmoveLimit *int
}

func addPositionFlags(fs *flag.FlagSet) positionFlags {
	return positionFlags{
		record:        fs.String("record", board.StartingRecord, "Position record"),
		theme:         fs.String("theme", string(ThemeOff), "Board colors: off, brown, green, gray"),
		halfmoveLimit: fs.Int("halfmove-limit", rules.Default.HalfmoveLimit, "Halfmove clock value that draws the game (negative disables)"),
		fullmoveLimit: fs.Int("fullmove-limit", 0, "Fullmove number that draws the game (0 disables)"),
	}
}

func (pf positionFlags) parse() (board.Position, rules.Rules, error) {
	p, err := board.ParseRecord(*pf.record)
	if err != nil {
		return p, rules.Rules{}, err
	}
	if *pf.halfmoveLimit == 0 {
		return p, rules.Rules{}, fmt.Errorf("halfmove limit must be non-zero, use a negative value to disable it")
	}
	return p, rules.Rules{HalfmoveLimit: *pf.halfmoveLimit, FullmoveLimit: *pf.fullmoveLimit}, nil
}

func (a *App) view(theme string) (*View, error) {
	t, err := ParseTheme(theme)
	if err != nil {
		return nil, err
	}
	return NewView(a.Out, t), nil
}

func (a *App) runMoves(args []string) error {
	fs := flag.NewFlagSet("moves", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	pf := addPositionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, _, err := pf.parse()
	if err != nil {
		return err
	}
	v, err := a.view(*pf.theme)
	if err != nil {
		return err
	}

	v.Position(p)
	v.Moves(rules.CurrentMoves(p))
	return nil
}

func (a *App) runClassify(args []string) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	pf := addPositionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, r, err := pf.parse()
	if err != nil {
		return err
	}
	v, err := a.view(*pf.theme)
	if err != nil {
		return err
	}

	v.Position(p)
	if rules.InCheck(p.Board, p.Turn) {
		v.Printf("%s is in check\n", p.Turn.Name())
	}
	v.Outcome(r.Classify(p))
	return nil
}

func (a *App) runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	pf := addPositionFlags(fs)
	moveList := fs.String("moves", "", "Moves to play in order, e.g. \"4-7 11-8\" (required)")
	undo := fs.Int("undo", 0, "Plies to take back after playing")
	history := fs.Bool("history", false, "Print every position of the game")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *moveList == "" {
		return fmt.Errorf("at least one move required")
	}
	line, err := board.ParseLine(*moveList)
	if err != nil {
		return err
	}
	p, r, err := pf.parse()
	if err != nil {
		return err
	}
	v, err := a.view(*pf.theme)
	if err != nil {
		return err
	}

	g := game.New(p, r)
	for _, m := range line {
		if err := g.Apply(m, true); err != nil {
			return err
		}
	}
	if *undo > 0 {
		if err := g.UndoMoves(*undo); err != nil {
			return err
		}
	}

	if *history {
		for i, snap := range g.Snapshots() {
			move := "start"
			if snap.PreviousMove != nil {
				move = snap.PreviousMove.String()
			}
			v.Printf("%3d %-7s %s\n", i, move, snap.Record)
		}
	}
	v.Position(g.Current())
	outcome, reason := g.Outcome()
	v.Outcome(outcome, reason)
	return nil
}

func (a *App) runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	pf := addPositionFlags(fs)
	depth := fs.Int("depth", 4, "Search depth in plies")
	noPruning := fs.Bool("no-pruning", false, "Disable alpha-beta pruning")
	noOrdering := fs.Bool("no-ordering", false, "Disable move ordering")
	save := fs.String("save", "", "Database file path to store the result (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *depth < 0 {
		return fmt.Errorf("depth must be non-negative")
	}
	p, r, err := pf.parse()
	if err != nil {
		return err
	}
	v, err := a.view(*pf.theme)
	if err != nil {
		return err
	}

	cache, err := engine.NewCache(engine.DefaultCacheSize)
	if err != nil {
		return err
	}
	opts := engine.DefaultOptions(*depth)
	opts.Pruning = !*noPruning
	opts.Ordering = !*noOrdering
	opts.Rules = r
	opts.Cache = cache

	start := time.Now()
	res := engine.Search(p, opts)
	elapsed := time.Since(start)

	v.Position(p)
	v.Printf("depth %d score %s nodes %d time %s\n", *depth, v.Score(res.Score), res.Nodes, elapsed.Round(time.Millisecond))
	if len(res.Line) > 0 {
		v.Printf("line %s\n", board.FormatLine(res.Line))
	}
	hits, misses := cache.Stats()
	a.Log.Debug().Uint64("hits", hits).Uint64("misses", misses).Int("entries", cache.Len()).Msg("move cache")

	if *save == "" {
		return nil
	}
	return a.saveAnalysis(*save, storage.AnalysisRecord{
		AnalysisID: uuid.New().String(),
		Record:     p.String(),
		Depth:      *depth,
		Score:      res.Score,
		Line:       board.FormatLine(res.Line),
		Nodes:      res.Nodes,
		CreatedUTC: time.Now().UTC(),
	})
}

func (a *App) saveAnalysis(path string, rec storage.AnalysisRecord) error {
	store, err := storage.NewStore(path, false, a.Log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.RecordAnalysis(rec); err != nil {
		return fmt.Errorf("failed to queue analysis: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Sync(ctx); err != nil {
		return fmt.Errorf("failed to write analysis: %w", err)
	}
	if !store.IsHealthy() {
		return fmt.Errorf("failed to write analysis: store degraded")
	}

	fmt.Fprintf(a.Out, "Analysis %s saved to %s\n", rec.AnalysisID, path)
	return nil
}

func (a *App) runSelfplay(args []string) error {
	fs := flag.NewFlagSet("selfplay", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	pf := addPositionFlags(fs)
	games := fs.Int("games", 10, "Number of games")
	white := fs.String("white", "greedy", "White policy: random, greedy, search")
	black := fs.String("black", "random", "Black policy: random, greedy, search")
	seed := fs.Uint64("seed", 1, "Random seed")
	depth := fs.Int("depth", 3, "Search depth for the search policy")
	verbose := fs.Bool("v", false, "Print every game")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *games <= 0 {
		return fmt.Errorf("games must be positive")
	}
	p, r, err := pf.parse()
	if err != nil {
		return err
	}
	v, err := a.view(*pf.theme)
	if err != nil {
		return err
	}

	cache, err := engine.NewCache(engine.DefaultCacheSize)
	if err != nil {
		return err
	}
	wp, err := policy.ByName(*white, *seed, *depth, cache)
	if err != nil {
		return err
	}
	bp, err := policy.ByName(*black, *seed+1, *depth, cache)
	if err != nil {
		return err
	}

	onGame := func(i int, res game.Result) {
		a.Log.Debug().Str("game", res.GameID).Int("plies", res.Plies).Msg("game finished")
		if *verbose {
			v.Printf("game %d: %s after %d plies (%s) %s\n",
				i+1, res.Outcome.Describe(), res.Plies, res.Reason, res.Final)
		}
	}

	start := time.Now()
	tally, err := game.Match(context.Background(), *games, p, r, wp, bp, onGame)
	if err != nil {
		return err
	}

	v.Printf("%s vs %s: %s\n", wp.Name(), bp.Name(), tally)
	if n := tally.Games(); n > 0 {
		v.Printf("avg plies %.1f time %s\n", float64(tally.Plies)/float64(n), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// RunDB is the database mini-app: init, delete, query
func (a *App) RunDB(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("db subcommand required: init, delete, query")
	}

	switch args[0] {
	case "init":
		return a.runInit(args[1:])
	case "delete":
		return a.runDelete(args[1:])
	case "query":
		return a.runQuery(args[1:])
	default:
		return fmt.Errorf("unknown db subcommand: %s", args[0])
	}
}

func (a *App) runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, a.Log)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(a.Out, "Database initialized at: %s\n", *path)
	return nil
}

func (a *App) runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, a.Log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(a.Out, "Database deleted: %s\n", *path)
	return nil
}

func (a *App) runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	path := fs.String("path", "", "Database file path (required)")
	record := fs.String("record", "*", "Record to filter (* for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, a.Log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	analyses, err := store.QueryAnalyses(*record)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(analyses) == 0 {
		fmt.Fprintln(a.Out, "No analyses found")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Analysis ID\tRecord\tDepth\tScore\tNodes\tLine\tCreated")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, an := range analyses {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			an.AnalysisID[:8]+"...",
			an.Record,
			an.Depth,
			an.Score,
			an.Nodes,
			an.Line,
			an.CreatedUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(a.Out, "\nFound %d analysis(es)\n", len(analyses))
	return nil
}
