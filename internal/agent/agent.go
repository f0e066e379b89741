// Package agent wraps the hosted language model that decides whether a chat message is a
// business lookup and, if so, calls the nearby search tool before replying.
package agent

import (
	"context"

	"github.com/octobees/nearby-assistant/internal/search"
)

// ToolName is the name under which the nearby search is offered to the model.
const ToolName = "NearbySearchTool"

// Request carries everything the agent needs for one chat round.
type Request struct {
	Query     string
	Latitude  float64
	Longitude float64
	ClientID  string
	History   []Turn
}

// Outcome is the result of one chat round. ToolInvoked is true whenever the search tool
// was called; ToolResult is nil when that call failed, in which case ToolErr is set.
type Outcome struct {
	Reply       string
	ToolInvoked bool
	ToolResult  *search.Result
	ToolErr     error
}

// Responder decides how to answer a chat message. The classification of business versus
// conversational queries belongs to the implementation; callers only see the outcome.
type Responder interface {
	Respond(ctx context.Context, req Request, tool search.Searcher) (Outcome, error)
}
