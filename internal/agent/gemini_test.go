package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/octobees/nearby-assistant/internal/entity"
	"github.com/octobees/nearby-assistant/internal/search"
)

type fakeModel struct {
	mu        sync.Mutex
	responses []string
	status    int
	requests  []generateRequest
	apiKeys   []string
}

func (f *fakeModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.requests = append(f.requests, req)
	f.apiKeys = append(f.apiKeys, r.Header.Get("x-goog-api-key"))

	if f.status != 0 {
		w.WriteHeader(f.status)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
		return
	}
	if len(f.responses) == 0 {
		http.Error(w, "no scripted response", http.StatusInternalServerError)
		return
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	w.Write([]byte(next))
}

func textResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(body)
}

func callResponse(args string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"` + ToolName + `","args":` + args + `}}]}}]}`
}

type toolStub struct {
	calls  []search.Input
	result *search.Result
	err    error
}

func (s *toolStub) Search(ctx context.Context, in search.Input) (*search.Result, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestAgent(t *testing.T, model *fakeModel) *GeminiAgent {
	t.Helper()
	server := httptest.NewServer(model)
	t.Cleanup(server.Close)
	return NewGeminiAgent(GeminiConfig{
		APIKey:      "test-key",
		Model:       "models/gemini-test",
		BaseURL:     server.URL + "/",
		Temperature: 0.3,
		TopP:        0.9,
		PhoneRegion: "IN",
	}, WithHTTPClient(server.Client()))
}

func sampleRequest() Request {
	return Request{
		Query:     "best restaurants nearby",
		Latitude:  19.5678,
		Longitude: 74.2121,
		ClientID:  "rahul_001",
		History: []Turn{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "Hi! How can I help?"},
		},
	}
}

func TestGeminiAgent_ConversationalReply(t *testing.T) {
	model := &fakeModel{responses: []string{textResponse("Nice to meet you, Rahul!")}}
	agent := newTestAgent(t, model)
	tool := &toolStub{}

	req := sampleRequest()
	req.Query = "i am rahul"
	outcome, err := agent.Respond(context.Background(), req, tool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Reply != "Nice to meet you, Rahul!" || outcome.ToolInvoked {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(tool.calls) != 0 {
		t.Fatalf("tool must not be called for conversational replies")
	}

	if len(model.requests) != 1 {
		t.Fatalf("expected one model call, got %d", len(model.requests))
	}
	sent := model.requests[0]
	if model.apiKeys[0] != "test-key" {
		t.Fatalf("expected api key header")
	}
	if len(sent.Contents) != 3 {
		t.Fatalf("expected history plus current message, got %d contents", len(sent.Contents))
	}
	if sent.Contents[1].Role != RoleModel {
		t.Fatalf("expected assistant turn mapped to model role, got %q", sent.Contents[1].Role)
	}
	last := sent.Contents[2].Parts[0].Text
	if !strings.Contains(last, "User Query: i am rahul") || !strings.Contains(last, "Latitude: 19.5678") {
		t.Fatalf("unexpected user message: %q", last)
	}
	if sent.ToolConfig == nil || sent.ToolConfig.FunctionCallingConfig.Mode != modeAuto {
		t.Fatalf("expected AUTO function calling on first turn")
	}
	if sent.SystemInstruction == nil || !strings.Contains(sent.SystemInstruction.Parts[0].Text, ToolName) {
		t.Fatalf("expected system prompt naming the tool")
	}
}

func TestGeminiAgent_ToolCall(t *testing.T) {
	distance := 1.2
	tool := &toolStub{result: &search.Result{
		Status: "success",
		Total:  1,
		Results: []entity.SearchResult{{
			EntityID:   "b-1",
			DistanceKM: &distance,
			Payload:    entity.BusinessPayload{BusinessName: "Sai Palace", Phone: "8123456789", Description: "secret menu"},
		}},
	}}
	model := &fakeModel{responses: []string{
		callResponse(`{"query":"restaurant","latitude":0,"longitude":0,"client_id":"someone-else"}`),
		textResponse("Try Sai Palace (+91 81234 56789), 1.2 km away."),
	}}
	agent := newTestAgent(t, model)

	outcome, err := agent.Respond(context.Background(), sampleRequest(), tool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.ToolInvoked || outcome.ToolResult == nil || outcome.ToolErr != nil {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if !strings.Contains(outcome.Reply, "Sai Palace") {
		t.Fatalf("unexpected reply: %q", outcome.Reply)
	}

	if len(tool.calls) != 1 {
		t.Fatalf("expected exactly one tool call, got %d", len(tool.calls))
	}
	call := tool.calls[0]
	if call.Query != "restaurant" || call.ClientID != "rahul_001" || call.Latitude != 19.5678 || call.Longitude != 74.2121 {
		t.Fatalf("expected request coordinates with model query, got %+v", call)
	}

	if len(model.requests) != 2 {
		t.Fatalf("expected two model calls, got %d", len(model.requests))
	}
	followUp := model.requests[1]
	if followUp.ToolConfig.FunctionCallingConfig.Mode != modeNone {
		t.Fatalf("expected function calling disabled on follow-up")
	}
	lastTurn := followUp.Contents[len(followUp.Contents)-1]
	fr := lastTurn.Parts[0].FunctionResponse
	if fr == nil || fr.Name != ToolName {
		t.Fatalf("expected function response as last turn, got %+v", lastTurn)
	}
	encoded, _ := json.Marshal(fr.Response)
	if !strings.Contains(string(encoded), "+91 81234 56789") || strings.Contains(string(encoded), "secret menu") {
		t.Fatalf("expected simplified results only, got %s", encoded)
	}
	if followUp.Contents[len(followUp.Contents)-2].Parts[0].FunctionCall == nil {
		t.Fatalf("expected the model's function call to be echoed back")
	}
}

func TestGeminiAgent_RepeatedCallIgnored(t *testing.T) {
	tool := &toolStub{result: &search.Result{Status: "success"}}
	model := &fakeModel{responses: []string{
		callResponse(`{"query":"tea"}`),
		callResponse(`{"query":"coffee"}`),
	}}
	agent := newTestAgent(t, model)

	outcome, err := agent.Respond(context.Background(), sampleRequest(), tool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tool.calls) != 1 {
		t.Fatalf("expected tool to run once, got %d", len(tool.calls))
	}
	if !strings.Contains(outcome.Reply, "couldn't find") {
		t.Fatalf("expected deterministic summary for empty results, got %q", outcome.Reply)
	}
}

func TestGeminiAgent_ToolFailure(t *testing.T) {
	tool := &toolStub{err: &search.ToolError{Detail: "search request failed", Err: errors.New("connection refused")}}
	model := &fakeModel{responses: []string{
		callResponse(`"{\"query\": \"pharmacy\"}"`),
		textResponse(""),
	}}
	agent := newTestAgent(t, model)

	outcome, err := agent.Respond(context.Background(), sampleRequest(), tool)
	if err != nil {
		t.Fatalf("tool failures must not fail the round: %v", err)
	}
	if !outcome.ToolInvoked || outcome.ToolResult != nil || outcome.ToolErr == nil {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Reply != ToolFailureReply {
		t.Fatalf("expected fallback reply, got %q", outcome.Reply)
	}
	if tool.calls[0].Query != "pharmacy" {
		t.Fatalf("expected string-encoded args to be decoded, got %+v", tool.calls[0])
	}

	encoded, _ := json.Marshal(model.requests[1].Contents[len(model.requests[1].Contents)-1])
	if !strings.Contains(string(encoded), "connection refused") {
		t.Fatalf("expected error forwarded to the model, got %s", encoded)
	}
}

func TestGeminiAgent_FollowUpFailureUsesSummary(t *testing.T) {
	distance := 0.4
	tool := &toolStub{result: &search.Result{Results: []entity.SearchResult{{DistanceKM: &distance, Payload: entity.BusinessPayload{BusinessName: "Chai Point"}}}}}
	model := &fakeModel{responses: []string{callResponse(`{"query":"tea"}`)}}
	agent := newTestAgent(t, model)

	outcome, err := agent.Respond(context.Background(), sampleRequest(), tool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(outcome.Reply, "Chai Point") {
		t.Fatalf("expected summary reply, got %q", outcome.Reply)
	}
}

func TestGeminiAgent_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		agent := NewGeminiAgent(GeminiConfig{})
		if _, err := agent.Respond(context.Background(), sampleRequest(), &toolStub{}); err == nil {
			t.Fatalf("expected error without api key")
		}
	})

	t.Run("model status", func(t *testing.T) {
		agent := newTestAgent(t, &fakeModel{status: http.StatusTooManyRequests})
		_, err := agent.Respond(context.Background(), sampleRequest(), &toolStub{})
		if err == nil || !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED: quota exhausted") {
			t.Fatalf("expected model error, got %v", err)
		}
	})

	t.Run("blocked prompt", func(t *testing.T) {
		agent := newTestAgent(t, &fakeModel{responses: []string{`{"promptFeedback":{"blockReason":"SAFETY"}}`}})
		_, err := agent.Respond(context.Background(), sampleRequest(), &toolStub{})
		if err == nil || !strings.Contains(err.Error(), "SAFETY") {
			t.Fatalf("expected block reason, got %v", err)
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		agent := newTestAgent(t, &fakeModel{responses: []string{textResponse("  ")}})
		if _, err := agent.Respond(context.Background(), sampleRequest(), &toolStub{}); !errors.Is(err, ErrEmptyReply) {
			t.Fatalf("expected ErrEmptyReply, got %v", err)
		}
	})
}
