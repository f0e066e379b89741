package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var expectedArgKeys = map[string]struct{}{
	"latitude":  {},
	"longitude": {},
	"client_id": {},
	"query":     {},
}

// maxArgDepth bounds how many layers of nested encoding are unwrapped.
const maxArgDepth = 8

// Arguments are the tool call arguments as the model sent them. Coordinates and client
// id are optional because callers prefer the values of the inbound request.
type Arguments struct {
	Query     string
	Latitude  *float64
	Longitude *float64
	ClientID  string
}

// ParseArguments decodes tool call arguments. Models do not always send a clean object:
// the arguments may arrive as a JSON string, wrapped in a markdown code fence, nested
// under a single unexpected key, or stuffed as a JSON document into one of the expected
// keys. All of those shapes are unwrapped here.
func ParseArguments(raw []byte) (Arguments, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Arguments{}, errors.New("tool arguments are empty")
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		value = decodeLoose(string(raw))
	}
	value = decodeLoose(value)

	obj, ok := value.(map[string]any)
	if !ok {
		if text, isText := value.(string); isText && strings.TrimSpace(text) != "" {
			return Arguments{Query: strings.TrimSpace(text)}, nil
		}
		return Arguments{}, fmt.Errorf("tool arguments must be an object, got %T", value)
	}
	obj = unwrapArguments(obj)

	var args Arguments
	args.Query = strings.TrimSpace(stringArg(obj["query"]))
	args.ClientID = strings.TrimSpace(stringArg(obj["client_id"]))
	if v, ok := floatArg(obj["latitude"]); ok {
		args.Latitude = &v
	}
	if v, ok := floatArg(obj["longitude"]); ok {
		args.Longitude = &v
	}
	return args, nil
}

func unwrapArguments(obj map[string]any) map[string]any {
	for depth := 0; depth < maxArgDepth; depth++ {
		next, changed := unwrapOnce(obj)
		if !changed {
			return obj
		}
		obj = next
	}
	return obj
}

func unwrapOnce(obj map[string]any) (map[string]any, bool) {
	for key, item := range obj {
		if _, expected := expectedArgKeys[key]; !expected && len(obj) == 1 {
			if nested, ok := decodeLoose(item).(map[string]any); ok {
				return nested, true
			}
			continue
		}
		if text, ok := item.(string); ok {
			if nested, ok := decodeLoose(text).(map[string]any); ok {
				return nested, true
			}
		}
	}
	return obj, false
}

// decodeLoose turns strings holding JSON (possibly fenced or surrounded by prose) into
// decoded values. Anything else is returned unchanged.
func decodeLoose(value any) any {
	text, ok := value.(string)
	if !ok {
		return value
	}
	cleaned := stripCodeFences(text)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err == nil {
		return decoded
	}
	if segment := extractJSONSegment(cleaned); segment != "" {
		if err := json.Unmarshal([]byte(segment), &decoded); err == nil {
			return decoded
		}
	}
	return cleaned
}

func stripCodeFences(text string) string {
	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "```") {
		return stripped
	}
	stripped = strings.TrimPrefix(stripped, "```")
	for _, lang := range []string{"tool_code", "json"} {
		if strings.HasPrefix(stripped, lang) {
			stripped = strings.TrimLeft(stripped[len(lang):], " \t\r\n")
		}
	}
	stripped = strings.TrimRight(stripped, " \t\r\n")
	stripped = strings.TrimSuffix(stripped, "```")
	return strings.TrimSpace(stripped)
}

// extractJSONSegment returns the first balanced {...} block of text.
func extractJSONSegment(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func stringArg(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func floatArg(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, finite(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || !finite(parsed) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
