package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/nearby-assistant/internal/agent"
	"github.com/octobees/nearby-assistant/internal/dto"
	"github.com/octobees/nearby-assistant/internal/entity"
	"github.com/octobees/nearby-assistant/internal/search"
)

const (
	// AgentFailureReply is returned when the agent could not produce an answer.
	AgentFailureReply = "I couldn't complete that search just now, but you can try again shortly."

	maxErrorLength = 500
	recordTimeout  = 3 * time.Second
)

// ErrMissingAPIKey is returned when the model credentials are not configured.
var ErrMissingAPIKey = errors.New("Missing GOOGLE_API_KEY in environment or .env")

// ValidationError describes a malformed chat request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err describes a malformed request.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// ExchangeRecorder persists completed exchanges. Recorded exchanges are never fed back
// into the agent.
type ExchangeRecorder interface {
	Record(ctx context.Context, exchange *entity.Exchange) error
}

// ChatInput is a validated chat request.
type ChatInput struct {
	Latitude  float64
	Longitude float64
	ClientID  string
	Query     string
	History   []dto.ChatTurn
	RequestID string
}

// ChatService runs one stateless chat round and fuses the agent reply with tool output.
type ChatService struct {
	responder agent.Responder
	tool      search.Searcher
	recorder  ExchangeRecorder
	apiKeySet bool
	logger    *zap.Logger
}

// ChatOption configures optional dependencies.
type ChatOption func(*ChatService)

// WithRecorder enables the exchange audit log.
func WithRecorder(recorder ExchangeRecorder) ChatOption {
	return func(s *ChatService) {
		s.recorder = recorder
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) ChatOption {
	return func(s *ChatService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewChatService wires the chat service. Without model credentials every chat fails
// with ErrMissingAPIKey.
func NewChatService(responder agent.Responder, tool search.Searcher, apiKeySet bool, opts ...ChatOption) *ChatService {
	s := &ChatService{
		responder: responder,
		tool:      tool,
		apiKeySet: apiKeySet,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateChatRequest checks required fields and coordinate ranges.
func ValidateChatRequest(req dto.ChatRequest) (ChatInput, error) {
	switch {
	case req.Latitude == nil:
		return ChatInput{}, &ValidationError{Message: "latitude is required"}
	case req.Longitude == nil:
		return ChatInput{}, &ValidationError{Message: "longitude is required"}
	case req.ClientID == nil || strings.TrimSpace(*req.ClientID) == "":
		return ChatInput{}, &ValidationError{Message: "client_id is required"}
	case req.Query == nil || strings.TrimSpace(*req.Query) == "":
		return ChatInput{}, &ValidationError{Message: "query is required"}
	}

	lat, lng := *req.Latitude, *req.Longitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return ChatInput{}, &ValidationError{Message: "latitude must be between -90 and 90"}
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return ChatInput{}, &ValidationError{Message: "longitude must be between -180 and 180"}
	}

	history := req.ConversationHistory
	if history == nil {
		history = []dto.ChatTurn{}
	}

	return ChatInput{
		Latitude:  lat,
		Longitude: lng,
		ClientID:  strings.TrimSpace(*req.ClientID),
		Query:     strings.TrimSpace(*req.Query),
		History:   history,
	}, nil
}

// Chat delegates to the agent and assembles the response envelope. Agent and tool
// failures are folded into a conversational reply; only missing credentials are fatal.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (dto.ChatResponse, error) {
	if !s.apiKeySet {
		return dto.ChatResponse{}, ErrMissingAPIKey
	}

	s.logger.Info("incoming chat",
		zap.String("request_id", in.RequestID),
		zap.String("client_id", in.ClientID),
		zap.Float64("lat", in.Latitude),
		zap.Float64("lon", in.Longitude),
		zap.Int("history_turns", len(in.History)),
		zap.Int("query_len", len(in.Query)),
	)

	turns := make([]agent.Turn, 0, len(in.History))
	for _, t := range in.History {
		turns = append(turns, agent.Turn{Role: t.Role, Content: t.Content})
	}

	ctx = search.WithRequestID(ctx, in.RequestID)
	outcome, err := s.responder.Respond(ctx, agent.Request{
		Query:     in.Query,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		ClientID:  in.ClientID,
		History:   turns,
	}, s.tool)

	var resp dto.ChatResponse
	switch {
	case err != nil:
		s.logger.Warn("agent execution reported error", zap.String("request_id", in.RequestID), zap.Error(err))
		resp = dto.ChatResponse{
			AIResponse: AgentFailureReply,
			Error:      cleanError(err),
		}
	case outcome.ToolResult != nil:
		resp = dto.ChatResponse{
			AIResponse: strings.TrimSpace(outcome.Reply),
			Search: &dto.SearchEnvelope{
				Status: "success",
				SearchParams: dto.SearchParams{
					Latitude:  in.Latitude,
					Longitude: in.Longitude,
					ClientID:  in.ClientID,
					Query:     in.Query,
				},
				Results: outcome.ToolResult.Results,
			},
		}
		s.logger.Info("model responded with search data",
			zap.String("request_id", in.RequestID),
			zap.Int("total", resp.Total()),
			zap.Int("reply_len", len(resp.AIResponse)),
		)
	default:
		resp = dto.ChatResponse{AIResponse: strings.TrimSpace(outcome.Reply)}
		if outcome.ToolErr != nil {
			resp.Error = cleanError(outcome.ToolErr)
		}
		if resp.AIResponse == "" {
			resp.AIResponse = AgentFailureReply
		}
		s.logger.Info("model responded without search data",
			zap.String("request_id", in.RequestID),
			zap.Bool("tool_invoked", outcome.ToolInvoked),
			zap.Int("reply_len", len(resp.AIResponse)),
		)
	}

	s.record(ctx, in, outcome.ToolInvoked, resp)
	return resp, nil
}

// record writes the exchange to the audit log. Failures are logged and otherwise ignored.
func (s *ChatService) record(ctx context.Context, in ChatInput, toolInvoked bool, resp dto.ChatResponse) {
	if s.recorder == nil {
		return
	}
	exchange := &entity.Exchange{
		ID:           uuid.New(),
		RequestID:    in.RequestID,
		ClientID:     in.ClientID,
		Query:        in.Query,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		HistoryTurns: len(in.History),
		ToolInvoked:  toolInvoked,
		Total:        resp.Total(),
		AIResponse:   resp.AIResponse,
		CreatedAt:    time.Now().UTC(),
	}
	if resp.Error != "" {
		msg := resp.Error
		exchange.Error = &msg
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(recordCtx, exchange); err != nil {
		s.logger.Warn("failed to record exchange", zap.String("request_id", in.RequestID), zap.Error(err))
	}
}

// cleanError collapses whitespace and caps the message length.
func cleanError(err error) string {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if len(msg) > maxErrorLength {
		cut := maxErrorLength
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}
