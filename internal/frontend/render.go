package frontend

import (
	"fmt"
	"io"
	"strings"
)

// Renderer prints exchanges as plain text bubbles and cards.
type Renderer struct {
	out    io.Writer
	region string
}

// NewRenderer writes to out, formatting phone numbers for region.
func NewRenderer(out io.Writer, region string) *Renderer {
	return &Renderer{out: out, region: region}
}

// Render writes the assistant bubble, then cards when the reply came from a search.
func (r *Renderer) Render(ex Exchange) error {
	var b strings.Builder
	fmt.Fprintf(&b, "assistant> %s\n", ex.Reply)
	if ex.Warning != "" {
		fmt.Fprintf(&b, "  ! %s\n", ex.Warning)
	}

	if ex.Search {
		fmt.Fprintf(&b, "\n%s\n", CardsHeader(len(ex.Results)))
		if len(ex.Results) == 0 {
			fmt.Fprintf(&b, "  %s\n", EmptyStateMessage)
		}
		for i, result := range ex.Results {
			card := BuildCard(result, r.region)
			fmt.Fprintf(&b, "  %d. %s\n", i+1, card.Title)
			if card.Meta != "" {
				fmt.Fprintf(&b, "     %s\n", card.Meta)
			}
			if card.Description != "" {
				fmt.Fprintf(&b, "     %s\n", card.Description)
			}
		}
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}
