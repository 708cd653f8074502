// FILE: stripchess/internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stripchess/internal/core"

	"github.com/fatih/color"
)

// APIError is a non-2xx response from the analysis server
type APIError struct {
	Status int
	core.ErrorResponse
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("request failed with status %d", e.Status)
	if e.ErrorResponse.Error != "" {
		msg += ": " + e.ErrorResponse.Error
	}
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	return msg
}

// Client talks to the analysis API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Trace, when set, receives one line per request and response
	Trace io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// long-polls wait up to 25s server side
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) tracef(attr color.Attribute, format string, args ...any) {
	if c.Trace == nil {
		return
	}
	fmt.Fprintln(c.Trace, color.New(attr).Sprintf(format, args...))
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		c.tracef(color.FgBlue, "[API] %s %s %s", method, path, jsonData)
	} else {
		c.tracef(color.FgBlue, "[API] %s %s", method, path)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.tracef(color.FgRed, "[ERROR] %v", err)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		c.tracef(color.FgRed, "[%d %s] %s", resp.StatusCode, http.StatusText(resp.StatusCode), respBody)
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.ErrorResponse); err != nil {
			apiErr.ErrorResponse.Error = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}
	c.tracef(color.FgGreen, "[%d %s]", resp.StatusCode, http.StatusText(resp.StatusCode))

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (*core.HealthResponse, error) {
	var resp core.HealthResponse
	err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(ctx context.Context, record string) (*core.MovesResponse, error) {
	var resp core.MovesResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/positions/moves", core.PositionRequest{Record: record}, &resp)
	return &resp, err
}

func (c *Client) Classify(ctx context.Context, record string) (*core.ClassifyResponse, error) {
	var resp core.ClassifyResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/positions/classify", core.PositionRequest{Record: record}, &resp)
	return &resp, err
}

func (c *Client) Apply(ctx context.Context, record string, from, to int) (*core.ApplyResponse, error) {
	req := core.ApplyRequest{Record: record, Move: core.MovePayload{From: from, To: to}}
	var resp core.ApplyResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/positions/apply", req, &resp)
	return &resp, err
}

// Analyze runs a synchronous search on the server
func (c *Client) Analyze(ctx context.Context, record string, depth int) (*core.AnalysisResponse, error) {
	var resp core.AnalysisResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/positions/analyze", core.AnalyzeRequest{Record: record, Depth: depth}, &resp)
	return &resp, err
}

// SubmitAnalysis queues a search and returns the pending job
func (c *Client) SubmitAnalysis(ctx context.Context, record string, depth int) (*core.JobResponse, error) {
	var resp core.JobResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/analyses", core.AnalyzeRequest{Record: record, Depth: depth}, &resp)
	return &resp, err
}

// GetAnalysis fetches a job; with wait the server holds the request until
// the job finishes or its poll timeout elapses
func (c *Client) GetAnalysis(ctx context.Context, jobID string, wait bool) (*core.JobResponse, error) {
	path := "/api/v1/analyses/" + url.PathEscape(jobID)
	if wait {
		path += "?wait=true"
	}
	var resp core.JobResponse
	err := c.doRequest(ctx, http.MethodGet, path, nil, &resp)
	return &resp, err
}

// AwaitAnalysis long-polls a job until it leaves the pending and running states
func (c *Client) AwaitAnalysis(ctx context.Context, jobID string) (*core.JobResponse, error) {
	for {
		job, err := c.GetAnalysis(ctx, jobID, true)
		if err != nil {
			return job, err
		}
		if job.Status != "pending" && job.Status != "running" {
			return job, nil
		}
		if err := ctx.Err(); err != nil {
			return job, err
		}
	}
}
