package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"stripchess/internal/core"
	"stripchess/internal/processor"
	"stripchess/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc, err := service.New(service.Config{MaxDepth: 4, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	proc, err := processor.New(svc, 2, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { proc.Close() })
	return NewFiberApp(proc, svc, true)
}

func do(t *testing.T, app *fiber.App, method, path, body, contentType string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, "GET", "/health", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("status %d", status)
	}
	health := decode[map[string]any](t, body)
	if health["status"] != "healthy" || health["storage"] != "disabled" {
		t.Errorf("health = %v", health)
	}
}

func TestPositionRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, "POST", "/api/v1/positions/moves",
		`{"record":"KQRBNP....pnbrqk w 0 1"}`, fiber.MIMEApplicationJSON)
	moves := decode[core.MovesResponse](t, body)
	if status != fiber.StatusOK || len(moves.Moves) != 4 || moves.Turn != "w" {
		t.Errorf("moves: %d %s", status, body)
	}

	status, body = do(t, app, "POST", "/api/v1/positions/classify",
		`{"record":"K.kn............ w 39 20"}`, fiber.MIMEApplicationJSON)
	class := decode[core.ClassifyResponse](t, body)
	if status != fiber.StatusOK || !class.Terminal || class.Outcome != "b" || class.Reason != "checkmate" {
		t.Errorf("classify: %d %s", status, body)
	}

	status, body = do(t, app, "POST", "/api/v1/positions/apply",
		`{"record":"KQRBNP....pnbrqk w 0 1","move":{"from":5,"to":7}}`, fiber.MIMEApplicationJSON)
	applied := decode[core.ApplyResponse](t, body)
	if status != fiber.StatusOK || applied.Record != "KQRBN..P..pnbrqk b 0 1" {
		t.Errorf("apply: %d %s", status, body)
	}

	status, body = do(t, app, "POST", "/api/v1/positions/analyze",
		`{"record":"K..........N.P.k w 0 1","depth":2}`, fiber.MIMEApplicationJSON)
	analysis := decode[core.AnalysisResponse](t, body)
	if status != fiber.StatusOK || analysis.Score != 1000 || len(analysis.Line) != 1 || analysis.Line[0] != (core.MovePayload{From: 13, To: 14}) {
		t.Errorf("analyze: %d %s", status, body)
	}
}

func TestRequestErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name        string
		path        string
		body        string
		contentType string
		status      int
		code        string
	}{
		{"missing record", "/api/v1/positions/moves", `{}`, fiber.MIMEApplicationJSON, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"bad json", "/api/v1/positions/moves", `{"record":`, fiber.MIMEApplicationJSON, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"wrong content type", "/api/v1/positions/moves", `record`, "text/plain", fiber.StatusUnsupportedMediaType, core.ErrCodeInvalidContent},
		{"malformed record", "/api/v1/positions/classify", `{"record":"KQRBNP w 0 1"}`, fiber.MIMEApplicationJSON, fiber.StatusBadRequest, core.ErrCodeInvalidPosition},
		{"illegal move", "/api/v1/positions/apply", `{"record":"KQRBNP....pnbrqk w 0 1","move":{"from":0,"to":1}}`, fiber.MIMEApplicationJSON, fiber.StatusBadRequest, core.ErrCodeInvalidMove},
		{"move off board", "/api/v1/positions/apply", `{"record":"KQRBNP....pnbrqk w 0 1","move":{"from":0,"to":16}}`, fiber.MIMEApplicationJSON, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
		{"depth too large", "/api/v1/positions/analyze", `{"record":"KQRBNP....pnbrqk w 0 1","depth":40}`, fiber.MIMEApplicationJSON, fiber.StatusBadRequest, core.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "POST", tt.path, tt.body, tt.contentType)
			errResp := decode[core.ErrorResponse](t, body)
			if status != tt.status || errResp.Code != tt.code {
				t.Errorf("got %d %s, want %d %s", status, body, tt.status, tt.code)
			}
		})
	}
}

func TestAnalysisJobs(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, "POST", "/api/v1/analyses",
		`{"record":"KQRBNP....pnbrqk w 0 1","depth":3}`, fiber.MIMEApplicationJSON)
	job := decode[core.JobResponse](t, body)
	if status != fiber.StatusAccepted || job.JobID == "" {
		t.Fatalf("submit: %d %s", status, body)
	}

	status, body = do(t, app, "GET", "/api/v1/analyses/"+job.JobID+"?wait=true", "", "")
	done := decode[core.JobResponse](t, body)
	if status != fiber.StatusOK || done.Status != "done" || done.Analysis == nil || done.Analysis.Depth != 3 {
		t.Errorf("wait: %d %s", status, body)
	}

	status, body = do(t, app, "GET", "/api/v1/analyses/"+job.JobID, "", "")
	if got := decode[core.JobResponse](t, body); status != fiber.StatusOK || got.Status != "done" {
		t.Errorf("get: %d %s", status, body)
	}

	status, _ = do(t, app, "GET", "/api/v1/analyses/not-a-uuid", "", "")
	if status != fiber.StatusBadRequest {
		t.Errorf("invalid id status %d", status)
	}

	status, body = do(t, app, "GET", "/api/v1/analyses/00000000-0000-0000-0000-000000000000", "", "")
	if errResp := decode[core.ErrorResponse](t, body); status != fiber.StatusNotFound || errResp.Code != core.ErrCodeJobNotFound {
		t.Errorf("unknown job: %d %s", status, body)
	}
}
