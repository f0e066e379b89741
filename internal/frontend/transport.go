package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/nearby-assistant/internal/dto"
)

const chatPath = "/agent/chat"

// Transport delivers a chat request and returns the raw response body.
type Transport interface {
	PostChat(ctx context.Context, req dto.ChatRequest) ([]byte, error)
}

// HTTPError is a non-2xx reply from the chat endpoint.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

// HTTPTransport posts to the chat endpoint of a running API.
type HTTPTransport struct {
	client   *http.Client
	endpoint string
	clientID string
}

// NewHTTPTransport builds a transport for baseURL. An empty baseURL targets the
// local development server.
func NewHTTPTransport(client *http.Client, baseURL, clientID string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	return &HTTPTransport{client: client, endpoint: baseURL + chatPath, clientID: clientID}
}

// PostChat sends req with a fresh request id.
func (t *HTTPTransport) PostChat(ctx context.Context, req dto.ChatRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if t.clientID != "" {
		httpReq.Header.Set("X-Client-ID", t.clientID)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}
	return body, nil
}

func errorDetail(body []byte) string {
	var envelope struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if text, ok := envelope.Detail.(string); ok && text != "" {
			return text
		}
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Detail != nil {
			encoded, _ := json.Marshal(envelope.Detail)
			return string(encoded)
		}
	}
	return strings.TrimSpace(string(body))
}

// failureDetail is the text shown in parentheses after the apology.
func failureDetail(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Detail != "" {
			return httpErr.Detail
		}
		return httpErr.Error()
	}
	return err.Error()
}
