package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var knownResultKeys = map[string]struct{}{
	"entity_id":   {},
	"entity_type": {},
	"score":       {},
	"distance_km": {},
	"payload":     {},
}

// UnmarshalJSON decodes a search hit without failing on loosely typed scalars:
// ids are stringified, score and distance accept numeric strings, and a payload
// that is not an object is kept in Extra.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = SearchResult{
		EntityID:   stringField(decodeAny(raw["entity_id"])),
		EntityType: stringField(decodeAny(raw["entity_type"])),
		DistanceKM: numberField(decodeAny(raw["distance_km"])),
	}
	if score := numberField(decodeAny(raw["score"])); score != nil {
		r.Score = *score
	}
	if body, ok := raw["payload"]; ok {
		if err := json.Unmarshal(body, &r.Payload); err != nil {
			r.setExtra("payload", decodeAny(body))
		}
	}
	for key, value := range raw {
		if _, known := knownResultKeys[key]; known {
			continue
		}
		r.setExtra(key, decodeAny(value))
	}
	return nil
}

// MarshalJSON writes the known fields and Extra back into a single object.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+len(knownResultKeys))
	for key, value := range r.Extra {
		out[key] = value
	}
	out["entity_id"] = r.EntityID
	out["entity_type"] = r.EntityType
	out["score"] = r.Score
	if r.DistanceKM != nil {
		out["distance_km"] = *r.DistanceKM
	}
	if _, raw := r.Extra["payload"]; !raw {
		out["payload"] = r.Payload
	}
	return json.Marshal(out)
}

func (r *SearchResult) setExtra(key string, value any) {
	if r.Extra == nil {
		r.Extra = make(map[string]any)
	}
	r.Extra[key] = value
}

func decodeAny(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

func numberField(value any) *float64 {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

var knownPayloadKeys = map[string]struct{}{
	"business_id":   {},
	"business_name": {},
	"phone":         {},
	"description":   {},
	"business_type": {},
	"city":          {},
	"country":       {},
}

// UnmarshalJSON decodes the known business fields and stashes everything else in Extra.
// Scalars of the wrong type (numeric phone numbers, for example) are stringified.
func (p *BusinessPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = BusinessPayload{
		BusinessID:   stringField(raw["business_id"]),
		BusinessName: stringField(raw["business_name"]),
		Phone:        stringField(raw["phone"]),
		Description:  stringField(raw["description"]),
		BusinessType: stringField(raw["business_type"]),
		City:         stringField(raw["city"]),
		Country:      stringField(raw["country"]),
	}
	for key, value := range raw {
		if _, known := knownPayloadKeys[key]; known {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = value
	}
	return nil
}

// MarshalJSON writes the known fields and Extra back into a single object.
func (p BusinessPayload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+len(knownPayloadKeys))
	for key, value := range p.Extra {
		out[key] = value
	}
	setIfPresent(out, "business_id", p.BusinessID)
	setIfPresent(out, "business_name", p.BusinessName)
	setIfPresent(out, "phone", p.Phone)
	setIfPresent(out, "description", p.Description)
	setIfPresent(out, "business_type", p.BusinessType)
	setIfPresent(out, "city", p.City)
	setIfPresent(out, "country", p.Country)
	return json.Marshal(out)
}

func setIfPresent(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func stringField(value any) string {
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
