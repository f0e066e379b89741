package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/octobees/nearby-assistant/internal/entity"
	"github.com/octobees/nearby-assistant/internal/phone"
)

// Summary is the reduced view of a search hit that the model is allowed to talk about.
type Summary struct {
	BusinessName string   `json:"business_name"`
	Phone        string   `json:"phone,omitempty"`
	DistanceKM   *float64 `json:"distance_km,omitempty"`
}

// Simplify keeps only name, phone and distance of each result.
func Simplify(results []entity.SearchResult, region string) []Summary {
	out := make([]Summary, 0, len(results))
	for _, r := range results {
		name := strings.TrimSpace(r.Payload.BusinessName)
		if name == "" {
			name = strings.TrimSpace(r.Payload.BusinessType)
		}
		out = append(out, Summary{
			BusinessName: name,
			Phone:        phone.Format(r.Payload.Phone, region),
			DistanceKM:   r.DistanceKM,
		})
	}
	return out
}

// Describe renders summaries as one sentence per business. It only uses the fields
// present in the summaries.
func Describe(summaries []Summary) string {
	if len(summaries) == 0 {
		return "I couldn't find any matching places nearby right now."
	}

	var b strings.Builder
	b.WriteString("Here's what I found nearby:")
	for _, s := range summaries {
		name := s.BusinessName
		if name == "" {
			name = "Unnamed business"
		}
		details := make([]string, 0, 2)
		if s.Phone != "" {
			details = append(details, "phone "+s.Phone)
		}
		if d := s.DistanceKM; d != nil && *d >= 0 && !math.IsInf(*d, 0) && !math.IsNaN(*d) {
			details = append(details, strconv.FormatFloat(math.Round(*d*10)/10, 'f', -1, 64)+" km away")
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, "\n- %s (%s)", name, strings.Join(details, ", "))
		} else {
			fmt.Fprintf(&b, "\n- %s", name)
		}
	}
	return b.String()
}
