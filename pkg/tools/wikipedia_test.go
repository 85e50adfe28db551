package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	agent "github.com/quantbrief/go-insight-agent"
)

func TestWikipediaReturnsSummaryExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Alan Turing", r.URL.Query().Get("gsrsearch"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{
				"pages": map[string]any{
					"123": map[string]string{
						"title":   "Alan Turing",
						"extract": "Alan Turing was an English mathematician and computer scientist.",
					},
				},
			},
		})
	}))
	defer server.Close()

	tool := &WikipediaTool{BaseURL: server.URL, HTTPClient: http.DefaultClient}
	resp, err := tool.Invoke(context.Background(), agent.ToolRequest{Arguments: map[string]any{"query": "Alan Turing"}})
	require.NoError(t, err)
	require.Contains(t, resp.Content, "Alan Turing was an English mathematician")
	require.Equal(t, "Alan Turing", resp.Metadata["title"])
}

func TestWikipediaNoArticleFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"pages": map[string]any{}}})
	}))
	defer server.Close()

	tool := &WikipediaTool{BaseURL: server.URL, HTTPClient: http.DefaultClient}
	resp, err := tool.Invoke(context.Background(), agent.ToolRequest{Arguments: map[string]any{"query": "qqqqzzzz"}})
	require.NoError(t, err)
	require.Contains(t, resp.Content, "No Wikipedia article found")
}

func TestWikipediaNetworkFailureBecomesErrorText(t *testing.T) {
	// Closed server: the request fails at the network level.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	tool := &WikipediaTool{BaseURL: server.URL, HTTPClient: http.DefaultClient}
	resp, err := tool.Invoke(context.Background(), agent.ToolRequest{Arguments: map[string]any{"query": "Go"}})
	require.NoError(t, err, "network failures must never propagate as errors")
	require.True(t, strings.HasPrefix(resp.Content, "Error fetching from Wikipedia:"), resp.Content)
	require.Contains(t, resp.Content, "try a different query or tool")
}

func TestWikipediaTruncatesLongExtracts(t *testing.T) {
	long := strings.Repeat("history ", 400)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{
				"pages": map[string]any{
					"1": map[string]string{"title": "Rome", "extract": long},
				},
			},
		})
	}))
	defer server.Close()

	tool := &WikipediaTool{BaseURL: server.URL, HTTPClient: http.DefaultClient}
	resp, err := tool.Invoke(context.Background(), agent.ToolRequest{Arguments: map[string]any{"query": "Rome"}})
	require.NoError(t, err)
	require.LessOrEqual(t, len(resp.Content), maxExtractLen+len("Rome: ")+len("..."))
	require.True(t, strings.HasSuffix(resp.Content, "..."))
}
