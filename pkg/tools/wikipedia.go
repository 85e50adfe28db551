package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	agent "github.com/quantbrief/go-insight-agent"
)

const defaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

// maxExtractLen keeps encyclopedia observations token-friendly.
const maxExtractLen = 1500

// WikipediaTool answers general-knowledge questions with a plain-text
// summary extract of the best matching article. It needs no credential.
type WikipediaTool struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewWikipediaTool() *WikipediaTool {
	return &WikipediaTool{
		BaseURL:    defaultWikipediaURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *WikipediaTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: "wikipedia",
		Description: "A wrapper around Wikipedia. Useful for when you need to answer general questions about " +
			"people, places, companies, facts, historical events, or other subjects. Input should be a search query.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query for Wikipedia.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *WikipediaTool) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	query := strings.TrimSpace(fmt.Sprint(req.Arguments["query"]))
	if query == "" || query == "<nil>" {
		return agent.ToolResponse{Content: "Error: the wikipedia tool needs a non-empty query."}, nil
	}

	extract, title, err := t.lookup(ctx, query)
	if err != nil {
		return agent.ToolResponse{
			Content: fmt.Sprintf("Error fetching from Wikipedia: %v. Please try a different query or tool.", err),
		}, nil
	}
	if extract == "" {
		return agent.ToolResponse{Content: fmt.Sprintf("No Wikipedia article found for %q. Please try a different query or tool.", query)}, nil
	}

	if len(extract) > maxExtractLen {
		extract = extract[:maxExtractLen] + "..."
	}
	return agent.ToolResponse{
		Content:  fmt.Sprintf("%s: %s", title, extract),
		Metadata: map[string]string{"title": title},
	}, nil
}

func (t *WikipediaTool) lookup(ctx context.Context, query string) (extract, title string, err error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"generator":   {"search"},
		"gsrsearch":   {query},
		"gsrlimit":    {"1"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", "", err
	}
	resp, err := t.httpClient().Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "", err
	}

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}

	for _, page := range payload.Query.Pages {
		return strings.TrimSpace(page.Extract), page.Title, nil
	}
	return "", "", nil
}

func (t *WikipediaTool) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return http.DefaultClient
}

var _ agent.Tool = (*WikipediaTool)(nil)
