package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestAnalyze_SendsContractFields(t *testing.T) {
	var got AnalyzeRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(AnalysisResponse{
			Status:            "needs_info",
			FollowUpQuestions: []string{"How severe is the fever?"},
			ExtractedData:     &ExtractedData{},
		})
	})

	resp, err := client.Analyze(context.Background(), "I have a headache and mild fever since yesterday", "thread-1")
	require.NoError(t, err)

	assert.Equal(t, "I have a headache and mild fever since yesterday", got.Symptoms)
	assert.Equal(t, "thread-1", got.ThreadID)
	assert.False(t, resp.IsComplete)
	assert.Equal(t, []string{"How severe is the fever?"}, resp.FollowUpQuestions)
}

func TestWebResearch_SendsOnlyThreadID(t *testing.T) {
	var raw map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/web-research", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		_ = json.NewEncoder(w).Encode(WebResearchResponse{
			Status:     "success",
			IsComplete: true,
			WebResearchResults: &WebResearchResults{
				PossibleConditions: []string{"tension headache"},
				ConfidenceLevel:    "high",
			},
		})
	})

	resp, err := client.WebResearch(context.Background(), "thread-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"thread_id": "thread-1"}, raw)
	require.NotNil(t, resp.WebResearchResults)
	assert.Equal(t, "high", resp.WebResearchResults.ConfidenceLevel)
}

func TestPost_ServerErrorCarriesDetail(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "Analysis failed: model overloaded"}`))
	})

	_, err := client.Analyze(context.Background(), "headache", "thread-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Analysis failed: model overloaded", apiErr.Detail)
	assert.Equal(t, "Analysis failed: model overloaded", UserMessage(err))
}

func TestPost_ServerErrorWithoutDetail(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream gone"))
	})

	_, err := client.Analyze(context.Background(), "headache", "thread-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Detail)
	assert.Contains(t, UserMessage(err), "reported an error")
}

func TestPost_ConnectionRefusedIsConnectivityMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, zerolog.Nop())
	_, err := client.Analyze(context.Background(), "headache", "thread-1")
	require.Error(t, err)
	assert.Contains(t, UserMessage(err), "Could not reach")
}

func TestUserMessage_FallsBackToGenericRetry(t *testing.T) {
	assert.Contains(t, UserMessage(errors.New("boom")), "try again")
	assert.Empty(t, UserMessage(nil))
}

func TestHealth(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Service: "DiagnosticAI"})
	})

	resp, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "DiagnosticAI", resp.Service)
}

func TestResearchDebug_HitsDebugEndpoint(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/research-debug", r.URL.Path)
		var req ResearchDebugRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "migraine", req.Symptom)
		_ = json.NewEncoder(w).Encode(ResearchDebugResponse{Status: "success", Result: "ok"})
	})

	resp, err := client.ResearchDebug(context.Background(), "migraine")
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0, zerolog.Nop())
	assert.Equal(t, "http://localhost:8000", c.BaseURL)
	assert.Equal(t, 300*time.Second, c.HTTP.Timeout)

	c = NewClient("http://example.com/", time.Minute, zerolog.Nop())
	assert.Equal(t, "http://example.com", c.BaseURL, "trailing slash trimmed")
}
