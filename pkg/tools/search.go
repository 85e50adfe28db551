package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	agent "github.com/quantbrief/go-insight-agent"
)

const defaultSearchURL = "https://api.tavily.com"

// WebSearchTool queries a web search provider and returns the top ranked
// result snippets as text. The tool is credential-gated: without an API key
// it reports the missing credential on invocation instead of failing at
// startup.
type WebSearchTool struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	MaxResults int
}

// NewWebSearchTool reads TAVILY_API_KEY from the environment.
func NewWebSearchTool() *WebSearchTool {
	return &WebSearchTool{
		APIKey:     os.Getenv("TAVILY_API_KEY"),
		BaseURL:    defaultSearchURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxResults: 5,
	}
}

func (t *WebSearchTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: "web_search",
		Description: "A search engine for current events and recent information from the web. " +
			"Input should be a search query.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *WebSearchTool) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	query := strings.TrimSpace(fmt.Sprint(req.Arguments["query"]))
	if query == "" || query == "<nil>" {
		return agent.ToolResponse{Content: "Error: web search needs a non-empty query."}, nil
	}
	if strings.TrimSpace(t.APIKey) == "" {
		return agent.ToolResponse{Content: "Error: web search is unavailable because TAVILY_API_KEY is not set."}, nil
	}

	maxResults := t.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(map[string]any{
		"api_key":     t.APIKey,
		"query":       query,
		"max_results": maxResults,
	})
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error running web search for %q: %v", query, err)}, nil
	}

	endpoint := strings.TrimRight(t.BaseURL, "/") + "/search"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error running web search for %q: %v", query, err)}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient().Do(httpReq)
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error running web search for %q: %v", query, err)}, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return agent.ToolResponse{Content: fmt.Sprintf("Error running web search for %q: provider returned status %d", query, resp.StatusCode)}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error running web search for %q: %v", query, err)}, nil
	}

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error running web search for %q: %v", query, err)}, nil
	}
	if len(payload.Results) == 0 {
		return agent.ToolResponse{Content: fmt.Sprintf("No web search results found for %q.", query)}, nil
	}

	var sb strings.Builder
	for i, result := range payload.Results {
		fmt.Fprintf(&sb, "%d. %s: %s (%s)\n", i+1, result.Title, strings.TrimSpace(result.Content), result.URL)
	}
	return agent.ToolResponse{Content: strings.TrimRight(sb.String(), "\n")}, nil
}

func (t *WebSearchTool) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return http.DefaultClient
}

var _ agent.Tool = (*WebSearchTool)(nil)
