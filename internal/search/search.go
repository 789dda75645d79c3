// Package search queries SerpAPI for organic web results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/relaybot/internal/config"
)

// Sentinel errors returned by Search.
var (
	ErrEmptyQuery   = errors.New("search query is empty")
	ErrInvalidCount = errors.New("result count must be at least 1")
	ErrNoResults    = errors.New("no search results")
	ErrTransport    = errors.New("search transport failure")
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// TransportError reports a failed round trip to the provider.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("search %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher returns up to topN results for query.
type Searcher interface {
	Search(ctx context.Context, query string, topN int) ([]Result, error)
}

// Client is a SerpAPI Searcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	engine     string
	log        *slog.Logger
}

type serpResponse struct {
	OrganicResults []Result `json:"organic_results"`
	Error          string   `json:"error"`
}

// NewClient creates a SerpAPI client. A nil httpClient gets one bounded by
// cfg.Timeout.
func NewClient(cfg config.SearchConfig, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = config.DefaultSearchTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = slog.Default()
	}
	engine := cfg.Engine
	if engine == "" {
		engine = config.DefaultSearchEngine
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		engine:     engine,
		log:        log.With("component", "search_client"),
	}
}

// Search runs one GET against the provider and returns the first topN
// organic results in provider order.
func (c *Client) Search(ctx context.Context, query string, topN int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topN < 1 {
		return nil, ErrInvalidCount
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", c.engine)
	params.Set("num", strconv.Itoa(topN))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, including api_key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		c.log.ErrorContext(ctx, "Search request failed", "error", err, "duration", time.Since(start))
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: "read body", Err: err}
	}

	var payload serpResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		if decodeErr == nil && payload.Error != "" {
			msg = payload.Error
		}
		c.log.ErrorContext(ctx, "Search provider returned error status", "status", resp.StatusCode, "message", msg)
		return nil, &TransportError{Op: "request", Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)}
	}
	if decodeErr != nil {
		return nil, &TransportError{Op: "decode", Err: decodeErr}
	}
	if payload.Error != "" {
		if len(payload.OrganicResults) == 0 && strings.Contains(strings.ToLower(payload.Error), "hasn't returned any results") {
			return nil, ErrNoResults
		}
		return nil, &TransportError{Op: "provider", Err: errors.New(payload.Error)}
	}
	if len(payload.OrganicResults) == 0 {
		return nil, ErrNoResults
	}

	results := payload.OrganicResults
	if len(results) > topN {
		results = results[:topN]
	}
	c.log.DebugContext(ctx, "Search completed", "results", len(results), "duration", time.Since(start))
	return results, nil
}

// FormatResults renders results as the numbered block embedded in the
// summary prompt.
func FormatResults(results []Result) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s", i+1, r.Title, r.Link, r.Snippet)
	}
	return sb.String()
}
