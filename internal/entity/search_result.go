package entity

// SearchResult is one business record returned by the nearby search service.
// Hit-level fields beyond the known ones are kept in Extra.
type SearchResult struct {
	EntityID   string          `json:"entity_id"`
	EntityType string          `json:"entity_type"`
	Score      float64         `json:"score"`
	DistanceKM *float64        `json:"distance_km,omitempty"`
	Payload    BusinessPayload `json:"payload"`
	Extra      map[string]any  `json:"-"`
}

// BusinessPayload carries the business fields of a search hit. Fields the search
// service adds beyond the known ones are kept in Extra so they survive a round trip.
type BusinessPayload struct {
	BusinessID   string         `json:"business_id,omitempty"`
	BusinessName string         `json:"business_name,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Description  string         `json:"description,omitempty"`
	BusinessType string         `json:"business_type,omitempty"`
	City         string         `json:"city,omitempty"`
	Country      string         `json:"country,omitempty"`
	Extra        map[string]any `json:"-"`
}
