package frontend

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/octobees/nearby-assistant/internal/entity"
	"github.com/octobees/nearby-assistant/internal/phone"
)

const (
	unnamedBusiness = "Unnamed business"
	metaSeparator   = " · "

	// EmptyStateMessage is shown under the header when a search found nothing.
	EmptyStateMessage = "Try a different search or move a little closer to town."
)

// Card is the rendered form of one search result.
type Card struct {
	Title       string
	Meta        string
	Description string
}

// FormatDistance renders a distance in kilometres for display. Values under one
// kilometre are shown in metres. Missing, negative, non-finite or non-numeric input
// renders as an empty string.
func FormatDistance(value any) string {
	km, ok := toFloat(value)
	if !ok || math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return ""
	}
	if km > 0 && km < 1 {
		metres := math.Round(km * 1000)
		if metres < 1000 {
			return fmt.Sprintf("%d m away", int(metres))
		}
	}
	rounded := strconv.FormatFloat(math.Round(km*10)/10, 'f', 1, 64)
	return strings.TrimSuffix(rounded, ".0") + " km away"
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// CardTitle picks the business name, then its type, then a placeholder.
func CardTitle(p entity.BusinessPayload) string {
	if name := strings.TrimSpace(p.BusinessName); name != "" {
		return name
	}
	if kind := strings.TrimSpace(p.BusinessType); kind != "" {
		return kind
	}
	return unnamedBusiness
}

// BuildCard formats a search result. Absent fields are left out of the meta line.
func BuildCard(r entity.SearchResult, region string) Card {
	var meta []string
	if raw := strings.TrimSpace(r.Payload.Phone); raw != "" {
		meta = append(meta, phone.Format(raw, region))
	}
	if distance := FormatDistance(r.DistanceKM); distance != "" {
		meta = append(meta, distance)
	}
	if city := strings.TrimSpace(r.Payload.City); city != "" {
		meta = append(meta, city)
	}
	return Card{
		Title:       CardTitle(r.Payload),
		Meta:        strings.Join(meta, metaSeparator),
		Description: strings.TrimSpace(r.Payload.Description),
	}
}

// CardsHeader summarises how many places were found.
func CardsHeader(count int) string {
	switch {
	case count <= 0:
		return "No matches found right now"
	case count == 1:
		return "Found 1 place nearby"
	default:
		return fmt.Sprintf("Found %d places nearby", count)
	}
}
