package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/octobees/nearby-assistant/internal/dto"
	"github.com/octobees/nearby-assistant/internal/entity"
)

// State is the lifecycle of one send.
type State int

const (
	StateIdle State = iota
	StateSending
	StateRendered
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateRendered:
		return "rendered"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

const (
	placesFoundReply = "Here are a few places I found nearby."
	noPlacesReply    = "I couldn't find any matching places nearby right now."
	emptyReply       = "I don't have an answer for that yet. Could you rephrase?"
	failureWarning   = "Something went wrong. Please try again."
)

var (
	// ErrBusy is returned when Send is called while another send is in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// Exchange is what the user sees after one send.
type Exchange struct {
	State   State
	Reply   string
	Search  bool
	Results []entity.SearchResult
	Warning string
}

// Location is the caller's position, sent with every message.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Session runs send actions against the chat endpoint one at a time.
type Session struct {
	transport Transport
	history   HistoryStore
	clientID  string
	location  Location

	mu    sync.Mutex
	state State
}

// NewSession wires a session. A nil history gets a fresh buffer.
func NewSession(transport Transport, history HistoryStore, clientID string, location Location) *Session {
	if history == nil {
		history = NewHistoryBuffer(HistoryCapacity)
	}
	return &Session{
		transport: transport,
		history:   history,
		clientID:  clientID,
		location:  location,
	}
}

// State reports whether a send is in flight.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetLocation updates the position used by later sends.
func (s *Session) SetLocation(loc Location) {
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()
}

// Send posts message with the recent history and returns the exchange to render.
// Transport and HTTP failures become an apology reply; the only errors returned are
// ErrBusy and ErrEmptyMessage.
func (s *Session) Send(ctx context.Context, message string) (Exchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Exchange{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return Exchange{}, ErrBusy
	}
	s.state = StateSending
	loc := s.location
	s.mu.Unlock()

	query := message
	clientID := s.clientID
	req := dto.ChatRequest{
		Latitude:            &loc.Latitude,
		Longitude:           &loc.Longitude,
		ClientID:            &clientID,
		Query:               &query,
		ConversationHistory: s.history.Window(HistoryWindow),
	}

	var exchange Exchange
	body, err := s.transport.PostChat(ctx, req)
	if err == nil {
		exchange, err = parseReply(body)
	}
	if err != nil {
		exchange = Exchange{
			State:   StateErrored,
			Reply:   fmt.Sprintf("Sorry, I ran into a problem reaching the assistant. (%s)", failureDetail(err)),
			Warning: failureWarning,
		}
	}

	s.history.Append(
		dto.ChatTurn{Role: "user", Content: message},
		dto.ChatTurn{Role: "assistant", Content: exchange.Reply},
	)

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()

	return exchange, nil
}

func parseReply(body []byte) (Exchange, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Exchange{}, fmt.Errorf("unreadable reply: %w", err)
	}

	exchange := Exchange{State: StateRendered}
	exchange.Reply = stringField(fields, "ai_response")
	if exchange.Reply == "" {
		exchange.Reply = stringField(fields, "response")
	}

	if raw, ok := fields["results"]; ok {
		exchange.Search = true
		if err := json.Unmarshal(raw, &exchange.Results); err != nil {
			return Exchange{}, fmt.Errorf("unreadable results: %w", err)
		}
		if exchange.Results == nil {
			exchange.Results = []entity.SearchResult{}
		}
		if exchange.Reply == "" {
			if len(exchange.Results) > 0 {
				exchange.Reply = placesFoundReply
			} else {
				exchange.Reply = noPlacesReply
			}
		}
	}

	if exchange.Reply == "" {
		exchange.Reply = emptyReply
	}
	return exchange, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
