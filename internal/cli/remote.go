// FILE: stripchess/internal/cli/remote.go
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"stripchess/internal/board"
	"stripchess/internal/client"
	"stripchess/internal/core"
)

const remoteUsage = "remote operation required: health, moves, classify, apply, analyze, submit"

// runRemote sends one request to a running analysis server
func (a *App) runRemote(args []string) error {
	if len(args) == 0 {
		return errors.New(remoteUsage)
	}
	op := args[0]

	fs := flag.NewFlagSet("remote "+op, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	baseURL := fs.String("url", "http://localhost:8080", "Analysis server base URL")
	record := fs.String("record", board.StartingRecord, "Position record")
	move := fs.String("move", "", "Move for apply, e.g. 4-7")
	depth := fs.Int("depth", 4, "Search depth for analyze and submit")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall request timeout")
	verbose := fs.Bool("v", false, "Trace requests")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	c := client.New(*baseURL)
	if *verbose {
		c.Trace = a.Out
	}
	v := NewView(a.Out, ThemeOff)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch op {
	case "health":
		h, err := c.Health(ctx)
		if err != nil {
			return err
		}
		v.Printf("%s storage=%s searches=%d\n", h.Status, h.Storage, h.Searches)

	case "moves":
		resp, err := c.LegalMoves(ctx, *record)
		if err != nil {
			return err
		}
		v.Moves(payloadMoves(resp.Moves))

	case "classify":
		resp, err := c.Classify(ctx, *record)
		if err != nil {
			return err
		}
		v.Printf("%s\n", resp.Record)
		v.Outcome(remoteOutcome(resp.Outcome), core.Reason(resp.Reason))

	case "apply":
		m, err := board.ParseMove(*move)
		if err != nil {
			return err
		}
		resp, err := c.Apply(ctx, *record, m.From, m.To)
		if err != nil {
			return err
		}
		v.Printf("%s\n", resp.Record)
		v.Outcome(remoteOutcome(resp.Outcome), core.Reason(resp.Reason))

	case "analyze":
		resp, err := c.Analyze(ctx, *record, *depth)
		if err != nil {
			return err
		}
		a.printRemoteAnalysis(v, resp)

	case "submit":
		job, err := c.SubmitAnalysis(ctx, *record, *depth)
		if err != nil {
			return err
		}
		v.Printf("job %s %s\n", job.JobID, job.Status)
		job, err = c.AwaitAnalysis(ctx, job.JobID)
		if err != nil {
			return err
		}
		if job.Analysis == nil {
			return fmt.Errorf("job %s %s: %s", job.JobID, job.Status, job.Error)
		}
		a.printRemoteAnalysis(v, job.Analysis)

	default:
		return fmt.Errorf("unknown remote operation: %s", op)
	}
	return nil
}

func (a *App) printRemoteAnalysis(v *View, resp *core.AnalysisResponse) {
	v.Printf("depth %d score %s nodes %d source %s\n", resp.Depth, v.Score(resp.Score), resp.Nodes, resp.Source)
	if len(resp.Line) > 0 {
		v.Printf("line %s\n", board.FormatLine(payloadMoves(resp.Line)))
	}
}

func payloadMoves(payload []core.MovePayload) []board.Move {
	moves := make([]board.Move, len(payload))
	for i, m := range payload {
		moves[i] = board.Move{From: m.From, To: m.To}
	}
	return moves
}

func remoteOutcome(s string) core.Outcome {
	switch s {
	case "w":
		return core.OutcomeWhite
	case "b":
		return core.OutcomeBlack
	case "d":
		return core.OutcomeDraw
	default:
		return core.OutcomeNone
	}
}
