package agent

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

	"go.uber.org/zap"

	"github.com/octobees/nearby-assistant/internal/search"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultModelTimeout  = 30 * time.Second

	// ToolFailureReply is used when the search failed and the model had nothing to say.
	ToolFailureReply = "I couldn't complete that search just now, but you can try again shortly."
)

// ErrEmptyReply is returned when the model answered without text or tool call.
var ErrEmptyReply = errors.New("model returned an empty reply")

// GeminiConfig holds the model parameters.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
	PhoneRegion string
}

// GeminiAgent implements Responder on top of the Gemini generateContent REST API with
// function calling.
type GeminiAgent struct {
	cfg    GeminiConfig
	client *http.Client
	logger *zap.Logger
}

// GeminiOption configures optional dependencies.
type GeminiOption func(*GeminiAgent)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(a *GeminiAgent) {
		if client != nil {
			a.client = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) GeminiOption {
	return func(a *GeminiAgent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewGeminiAgent builds an agent with sensible defaults.
func NewGeminiAgent(cfg GeminiConfig, opts ...GeminiOption) *GeminiAgent {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	cfg.Model = strings.TrimPrefix(cfg.Model, "models/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultModelTimeout
	}

	a := &GeminiAgent{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond runs one round: the model either answers directly or asks for a single nearby
// search, whose simplified results are fed back before the final answer.
func (a *GeminiAgent) Respond(ctx context.Context, req Request, tool search.Searcher) (Outcome, error) {
	if strings.TrimSpace(a.cfg.APIKey) == "" {
		return Outcome{}, errors.New("gemini api key is not configured")
	}

	contents := make([]content, 0, HistoryLimit+3)
	for _, turn := range Window(req.History, HistoryLimit) {
		contents = append(contents, content{Role: turn.Role, Parts: []part{{Text: turn.Content}}})
	}
	contents = append(contents, content{Role: RoleUser, Parts: []part{{Text: userMessage(req)}}})

	first, err := a.generate(ctx, contents, modeAuto)
	if err != nil {
		return Outcome{}, err
	}

	call := first.functionCall(ToolName)
	if call == nil || tool == nil {
		reply := first.text()
		if reply == "" {
			return Outcome{}, ErrEmptyReply
		}
		return Outcome{Reply: reply}, nil
	}

	outcome := Outcome{ToolInvoked: true}
	input := a.toolInput(req, call.Args)
	result, toolErr := tool.Search(ctx, input)
	if toolErr == nil && result == nil {
		result = &search.Result{}
	}

	var summaries []search.Summary
	var response map[string]any
	if toolErr != nil {
		outcome.ToolErr = toolErr
		response = map[string]any{"error": toolErr.Error()}
		a.logger.Warn("nearby search failed", zap.String("query", input.Query), zap.Error(toolErr))
	} else {
		outcome.ToolResult = result
		summaries = search.Simplify(result.Results, a.cfg.PhoneRegion)
		response = map[string]any{
			"status":  result.Status,
			"total":   result.Total,
			"results": summaries,
		}
	}

	modelTurn := first.Content
	if modelTurn.Role == "" {
		modelTurn.Role = RoleModel
	}
	contents = append(contents,
		modelTurn,
		content{Role: RoleUser, Parts: []part{{FunctionResponse: &functionResponse{Name: ToolName, Response: response}}}},
	)

	// The tool may run once per request, so the follow-up turn cannot call it again.
	second, err := a.generate(ctx, contents, modeNone)
	if err != nil {
		a.logger.Warn("model follow-up failed, using fallback reply", zap.Error(err))
	} else {
		outcome.Reply = second.text()
	}

	if outcome.Reply == "" {
		if toolErr != nil {
			outcome.Reply = ToolFailureReply
		} else {
			outcome.Reply = search.Describe(summaries)
		}
	}
	return outcome, nil
}

func (a *GeminiAgent) toolInput(req Request, rawArgs json.RawMessage) search.Input {
	input := search.Input{
		Query:     req.Query,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		ClientID:  req.ClientID,
	}
	if len(rawArgs) == 0 {
		return input
	}
	args, err := search.ParseArguments(rawArgs)
	if err != nil {
		a.logger.Debug("could not parse tool arguments, using user query", zap.Error(err))
		return input
	}
	if args.Query != "" {
		input.Query = args.Query
	}
	return input
}

func (a *GeminiAgent) generate(ctx context.Context, contents []content, mode string) (*candidate, error) {
	body := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          contents,
		Tools:             []toolSet{{FunctionDeclarations: []functionDeclaration{toolDeclaration()}}},
		ToolConfig:        &toolConfig{FunctionCallingConfig: functionCallingConfig{Mode: mode}},
		GenerationConfig: generationConfig{
			Temperature: a.cfg.Temperature,
			TopP:        a.cfg.TopP,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling model request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", a.cfg.BaseURL, a.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model returned status %d: %s", resp.StatusCode, modelErrorMessage(data))
	}

	var decoded generateResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("model blocked the prompt: %s", decoded.PromptFeedback.BlockReason)
		}
		return nil, errors.New("model returned no candidates")
	}
	return &decoded.Candidates[0], nil
}

func modelErrorMessage(data []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		if body.Error.Status != "" {
			return body.Error.Status + ": " + body.Error.Message
		}
		return body.Error.Message
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 300 {
		text = text[:300]
	}
	return text
}

var _ Responder = (*GeminiAgent)(nil)
