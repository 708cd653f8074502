package client

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stripchess/internal/board"
	"stripchess/internal/core"
	apihttp "stripchess/internal/http"
	"stripchess/internal/processor"
	"stripchess/internal/service"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	svc, err := service.New(service.Config{MaxDepth: 4, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	proc, err := processor.New(svc, 2, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	app := apihttp.NewFiberApp(proc, svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		app.Shutdown()
		proc.Close()
	})

	return New("http://" + ln.Addr().String() + "/")
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClientPositions(t *testing.T) {
	c := newTestServer(t)
	ctx := testCtx(t)

	health, err := c.Health(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" || health.Storage != "disabled" {
		t.Errorf("health = %+v", health)
	}

	moves, err := c.LegalMoves(ctx, board.StartingRecord)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves.Moves) != 4 || moves.InCheck {
		t.Errorf("moves = %+v", moves)
	}

	cls, err := c.Classify(ctx, "K..b...........k w 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !cls.Terminal || cls.Outcome != "d" {
		t.Errorf("classify = %+v", cls)
	}

	applied, err := c.Apply(ctx, board.StartingRecord, 4, 7)
	if err != nil {
		t.Fatal(err)
	}
	if applied.Record != "KQRB.P.N..pnbrqk b 1 1" {
		t.Errorf("apply record = %q", applied.Record)
	}
}

func TestClientErrors(t *testing.T) {
	c := newTestServer(t)
	ctx := testCtx(t)

	_, err := c.Apply(ctx, board.StartingRecord, 0, 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != 400 || apiErr.Code != core.ErrCodeInvalidMove {
		t.Errorf("apiErr = %+v", apiErr)
	}

	_, err = c.LegalMoves(ctx, "not a record")
	if !errors.As(err, &apiErr) || apiErr.Code == "" {
		t.Errorf("malformed record err = %v", err)
	}
}

func TestClientAnalysis(t *testing.T) {
	c := newTestServer(t)
	ctx := testCtx(t)

	res, err := c.Analyze(ctx, "K..........N.P.k w 0 1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 1000 || len(res.Line) != 1 || res.Line[0] != (core.MovePayload{From: 13, To: 14}) {
		t.Errorf("analyze = %+v", res)
	}

	job, err := c.SubmitAnalysis(ctx, board.StartingRecord, 2)
	if err != nil {
		t.Fatal(err)
	}
	if job.JobID == "" {
		t.Fatal("empty job ID")
	}

	var trace bytes.Buffer
	c.Trace = &trace
	done, err := c.AwaitAnalysis(ctx, job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != "done" || done.Analysis == nil || done.Analysis.Depth != 2 {
		t.Errorf("job = %+v", done)
	}
	if !strings.Contains(trace.String(), "GET /api/v1/analyses/"+job.JobID) {
		t.Errorf("trace = %q", trace.String())
	}
}
