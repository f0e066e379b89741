package entity

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is one completed chat round as recorded in the audit log.
type Exchange struct {
	ID           uuid.UUID `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	ClientID     string    `json:"client_id"`
	Query        string    `json:"query"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	HistoryTurns int       `json:"history_turns"`
	ToolInvoked  bool      `json:"tool_invoked"`
	Total        int       `json:"total"`
	AIResponse   string    `json:"ai_response"`
	Error        *string   `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
