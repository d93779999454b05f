package app

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

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Backend is what the conversation flow needs from the analysis server.
// Client talks to a real DiagnosticAI deployment; MockBackend replays canned
// replies for offline use and tests.
type Backend interface {
	Analyze(ctx context.Context, symptoms, threadID string) (*AnalysisResponse, error)
	WebResearch(ctx context.Context, threadID string) (*WebResearchResponse, error)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// APIError is a non-2xx reply, carrying whatever detail the backend included
// in its error body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

func (c *Client) Analyze(ctx context.Context, symptoms, threadID string) (*AnalysisResponse, error) {
	var out AnalysisResponse
	req := AnalyzeRequest{Symptoms: symptoms, ThreadID: threadID}
	if err := c.post(ctx, "/api/analyze", req, &out); err != nil {
		return nil, err
	}
	c.log.Info().
		Str("thread_id", threadID).
		Str("status", out.Status).
		Bool("is_complete", out.IsComplete).
		Int("follow_ups", len(out.FollowUpQuestions)).
		Msg("analyze reply")
	return &out, nil
}

func (c *Client) WebResearch(ctx context.Context, threadID string) (*WebResearchResponse, error) {
	var out WebResearchResponse
	req := WebResearchRequest{ThreadID: threadID}
	if err := c.post(ctx, "/api/web-research", req, &out); err != nil {
		return nil, err
	}
	c.log.Info().
		Str("thread_id", threadID).
		Str("status", out.Status).
		Bool("has_results", out.WebResearchResults != nil).
		Msg("web research reply")
	return &out, nil
}

// ResearchDebug hits the development-only single-symptom research endpoint.
// Nothing in the interactive flow calls this; it backs the hidden
// research-debug subcommand.
func (c *Client) ResearchDebug(ctx context.Context, symptom string) (*ResearchDebugResponse, error) {
	var out ResearchDebugResponse
	if err := c.post(ctx, "/api/research-debug", ResearchDebugRequest{Symptom: symptom}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "health check failed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	var out HealthResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "invalid health response")
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "invalid response from %s", path)
	}
	return nil
}

// newAPIError pulls the FastAPI-style {"detail": "..."} message out of an
// error body when there is one.
func newAPIError(status int, body []byte) *APIError {
	var errBody struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &errBody)
	return &APIError{StatusCode: status, Detail: errBody.Detail}
}

// UserMessage maps any error from a backend call to the message shown in the
// UI: the server's own detail when it sent one, a connectivity hint for
// transport failures, and a generic retry prompt otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return "The analysis server reported an error. Please try again."
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Could not reach the analysis server. Check that it is running and try again."
	}
	return "Something went wrong. Please try again."
}
