package search

import (
	"strings"
	"testing"

	"github.com/octobees/nearby-assistant/internal/entity"
)

func km(v float64) *float64 { return &v }

func TestSimplify(t *testing.T) {
	results := []entity.SearchResult{
		{EntityID: "1", DistanceKM: km(1.2), Payload: entity.BusinessPayload{BusinessName: "Sai Palace", Phone: "8123456789", Description: "veg thali"}},
		{EntityID: "2", Payload: entity.BusinessPayload{BusinessType: "pharmacy", Phone: "n/a"}},
	}

	got := Simplify(results, "IN")
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].BusinessName != "Sai Palace" || got[0].Phone != "+91 81234 56789" || *got[0].DistanceKM != 1.2 {
		t.Fatalf("unexpected first summary: %+v", got[0])
	}
	if got[1].BusinessName != "pharmacy" || got[1].Phone != "n/a" || got[1].DistanceKM != nil {
		t.Fatalf("unexpected second summary: %+v", got[1])
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); !strings.Contains(got, "couldn't find") {
		t.Fatalf("unexpected empty description: %q", got)
	}

	got := Describe([]Summary{
		{BusinessName: "Sai Palace", Phone: "+91 81234 56789", DistanceKM: km(1.24)},
		{BusinessName: "", DistanceKM: km(-1)},
	})
	if !strings.Contains(got, "- Sai Palace (phone +91 81234 56789, 1.2 km away)") {
		t.Fatalf("unexpected description: %q", got)
	}
	if !strings.Contains(got, "- Unnamed business") || strings.Contains(got, "-1") {
		t.Fatalf("expected unnamed business without negative distance: %q", got)
	}
}
