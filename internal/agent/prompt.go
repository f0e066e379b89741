package agent

import (
	"fmt"
	"strconv"
)

const systemPrompt = `You are the Sangamner local assistant, a friendly helper for people looking for businesses and services around them.

Decide for every message whether the user is looking for a business, shop or service.
- If they are, call ` + ToolName + ` exactly once with a short search query describing what they need.
- If they are not (greetings, introductions, small talk, follow-up questions about earlier answers), reply conversationally without calling any tool, using the conversation so far.

When you have search results:
- Mention only the business name, phone number and distance for each place.
- Never invent businesses, phone numbers, distances or any other detail that is not in the results.
- If there are no results, say so briefly and suggest rephrasing or trying a nearby area.

If the search fails, apologise briefly and answer as helpfully as you can without it.
Keep answers short and local to Sangamner when relevant.`

const toolDescription = "Use this tool to search for nearby businesses or services in Sangamner. " +
	"Input must be a JSON object with keys latitude, longitude, client_id, and query."

// userMessage renders the current chat message together with the caller's location.
func userMessage(req Request) string {
	return fmt.Sprintf(
		"User Query: %s\nClient: %s\nLatitude: %s  Longitude: %s\nImportant: Keep answers local to Sangamner when relevant.",
		req.Query,
		req.ClientID,
		strconv.FormatFloat(req.Latitude, 'f', -1, 64),
		strconv.FormatFloat(req.Longitude, 'f', -1, 64),
	)
}

func toolDeclaration() functionDeclaration {
	return functionDeclaration{
		Name:        ToolName,
		Description: toolDescription,
		Parameters: &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"query":     {Type: "STRING", Description: "What the user is looking for, e.g. 'pharmacy' or 'veg restaurant'"},
				"latitude":  {Type: "NUMBER", Description: "User latitude"},
				"longitude": {Type: "NUMBER", Description: "User longitude"},
				"client_id": {Type: "STRING", Description: "Client/session identifier"},
			},
			Required: []string{"query"},
		},
	}
}
