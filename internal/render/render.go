// Package render is the presentation seam: everything above it produces
// listings, everything below it decides how they look. The CLI uses the
// text renderer; tests can assert against a buffer.
package render

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/HelChris/semesterproject2/internal/listing"
)

// Renderer presents listing sets to the user.
type Renderer interface {
	Listings(heading string, items []listing.Listing) error
	Notice(text string) error
}

// TextRenderer writes plain-text views, one listing per line.
type TextRenderer struct {
	w   io.Writer
	now func() time.Time
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w, now: time.Now}
}

// NewTextRendererAt pins the clock, so output is reproducible.
func NewTextRendererAt(w io.Writer, now func() time.Time) *TextRenderer {
	return &TextRenderer{w: w, now: now}
}

func (r *TextRenderer) Listings(heading string, items []listing.Listing) error {
	if _, err := fmt.Fprintf(r.w, "%s (%d)\n", heading, len(items)); err != nil {
		return err
	}
	now := r.now()
	for _, l := range items {
		seller := "unknown seller"
		if l.Seller != nil && l.Seller.Name != "" {
			seller = l.Seller.Name
		}
		_, err := fmt.Fprintf(r.w, "  %-40s  %4d cr  %-8s  by %s\n",
			truncate(l.Title, 40), l.CurrentBidAmount(), TimeRemaining(l.EndsAt, now), seller)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) Notice(text string) error {
	_, err := fmt.Fprintln(r.w, text)
	return err
}

// TimeRemaining formats how long an auction has left: "Ended", "45m",
// "5h 12m" or "2d 5h".
func TimeRemaining(endsAt, now time.Time) string {
	left := endsAt.Sub(now)
	if left <= 0 {
		return "Ended"
	}
	days := int(left.Hours()) / 24
	hours := int(left.Hours()) % 24
	minutes := int(left.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// truncate shortens s to at most max runes, never splitting one mid-byte.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
