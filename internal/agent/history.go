package agent

import "strings"

// HistoryLimit is the number of past turns forwarded to the model.
const HistoryLimit = 5

// Turn is one message of the conversation as supplied by the caller.
type Turn struct {
	Role    string
	Content string
}

// Model-facing roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Window keeps the last limit turns, drops empty ones and maps caller roles onto the
// model's vocabulary. Unknown roles are treated as user messages.
func Window(turns []Turn, limit int) []Turn {
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]Turn, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		out = append(out, Turn{Role: normalizeRole(t.Role), Content: content})
	}
	return out
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "ai", "bot", "model":
		return RoleModel
	default:
		return RoleUser
	}
}
