package dto

import (
	"encoding/json"

	"github.com/octobees/nearby-assistant/internal/entity"
)

// ChatTurn is one message of the caller-managed conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload of POST /agent/chat. Required scalars are pointers so that
// an explicit zero can be told apart from a missing field.
type ChatRequest struct {
	Latitude            *float64   `json:"latitude"`
	Longitude           *float64   `json:"longitude"`
	ClientID            *string    `json:"client_id"`
	Query               *string    `json:"query"`
	ConversationHistory []ChatTurn `json:"conversation_history,omitempty"`
}

// SearchParams echoes the request scalars on the search branch of a response.
type SearchParams struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ClientID  string  `json:"client_id"`
	Query     string  `json:"query"`
}

// SearchEnvelope holds the fused tool output. It is only set when the agent invoked the
// search tool.
type SearchEnvelope struct {
	Status       string
	SearchParams SearchParams
	Results      []entity.SearchResult
}

// ChatResponse is the reply of POST /agent/chat. The results key is written only when
// Search is set, which is what clients use to tell the two branches apart.
type ChatResponse struct {
	AIResponse string
	Error      string
	Search     *SearchEnvelope
}

// HasResults reports whether the response belongs to the search branch.
func (r ChatResponse) HasResults() bool {
	return r.Search != nil
}

// Total returns the number of fused results.
func (r ChatResponse) Total() int {
	if r.Search == nil {
		return 0
	}
	return len(r.Search.Results)
}

type plainChatResponse struct {
	AIResponse string `json:"ai_response"`
	Error      string `json:"error,omitempty"`
}

type searchChatResponse struct {
	Status       string                `json:"status"`
	SearchParams SearchParams          `json:"search_params"`
	Results      []entity.SearchResult `json:"results"`
	Total        int                   `json:"total"`
	AIResponse   string                `json:"ai_response"`
}

// MarshalJSON writes either the conversational or the search envelope.
func (r ChatResponse) MarshalJSON() ([]byte, error) {
	if r.Search == nil {
		return json.Marshal(plainChatResponse{AIResponse: r.AIResponse, Error: r.Error})
	}

	results := r.Search.Results
	if results == nil {
		results = []entity.SearchResult{}
	}
	status := r.Search.Status
	if status == "" {
		status = "success"
	}
	return json.Marshal(searchChatResponse{
		Status:       status,
		SearchParams: r.Search.SearchParams,
		Results:      results,
		Total:        len(results),
		AIResponse:   r.AIResponse,
	})
}
