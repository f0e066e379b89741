package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/nearby-assistant/internal/entity"
)

const defaultTimeout = 10 * time.Second

// Input is what the agent hands to the nearby search tool.
type Input struct {
	Query     string  `json:"query"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ClientID  string  `json:"client_id"`
}

// Result is the decoded body of a successful search call.
type Result struct {
	Status  string
	Total   int
	Results []entity.SearchResult
	Raw     map[string]any
}

// Searcher runs one nearby search.
type Searcher interface {
	Search(ctx context.Context, in Input) (*Result, error)
}

// Client calls the nearby search service over HTTP.
type Client struct {
	client   *http.Client
	endpoint string
	method   string
}

// NewClient builds a search client for endpoint. When client is nil and the endpoint is
// served over https, an ID token client for the endpoint's audience is tried first so
// that service-to-service calls on Cloud Run are authenticated.
func NewClient(client *http.Client, endpoint, method string, timeout time.Duration) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("search endpoint must not be empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid search endpoint %q", endpoint)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported search method %q", method)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
		if parsed.Scheme == "https" {
			audience := parsed.Scheme + "://" + parsed.Host
			if idc, err := idtoken.NewClient(context.Background(), audience); err == nil {
				idc.Timeout = timeout
				client = idc
			}
		}
	}

	return &Client{client: client, endpoint: endpoint, method: method}, nil
}

// Search validates the input and issues exactly one request to the search service.
// Every failure is reported as a *ToolError.
func (c *Client) Search(ctx context.Context, in Input) (*Result, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, &ToolError{Detail: "query is required"}
	}
	if !finite(in.Latitude) || !finite(in.Longitude) {
		return nil, &ToolError{Detail: "latitude and longitude must be finite numbers"}
	}

	req, err := c.newRequest(ctx, in)
	if err != nil {
		return nil, &ToolError{Detail: "failed to create search request", Err: err}
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ToolError{Detail: "search request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ToolError{Status: resp.StatusCode, Detail: "could not read search response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ToolError{Status: resp.StatusCode, Detail: extractDetail(resp.StatusCode, body)}
	}

	result, err := decodeResult(body)
	if err != nil {
		return nil, &ToolError{Status: resp.StatusCode, Detail: "could not decode search response", Err: err}
	}
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, in Input) (*http.Request, error) {
	if c.method == http.MethodGet {
		target, err := url.Parse(c.endpoint)
		if err != nil {
			return nil, err
		}
		q := target.Query()
		q.Set("query", in.Query)
		q.Set("latitude", strconv.FormatFloat(in.Latitude, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(in.Longitude, 'f', -1, 64))
		q.Set("client_id", in.ClientID)
		target.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func decodeResult(body []byte) (*Result, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}

	var envelope struct {
		Results []entity.SearchResult `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	result := &Result{
		Results: envelope.Results,
		Raw:     raw,
		Total:   len(envelope.Results),
	}
	if status, ok := raw["status"].(string); ok {
		result.Status = status
	}
	if total, ok := raw["total"].(float64); ok && total >= 0 {
		result.Total = int(total)
	}
	return result, nil
}

func extractDetail(status int, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return http.StatusText(status)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			switch v := payload[key].(type) {
			case nil:
			case string:
				if v != "" {
					return v
				}
			default:
				if encoded, err := json.Marshal(v); err == nil {
					return string(encoded)
				}
			}
		}
	}
	return strings.TrimSpace(string(body))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var _ Searcher = (*Client)(nil)
