// Package places implements location autocomplete for the add-event form:
// a debounced, cached, retrying Nominatim search whose progress is exposed as
// a single SearchState per form session.
package places

import (
	"strings"

	"golang.org/x/text/cases"
)

// MinQueryLength is the shortest trimmed query, in runes, that is searched.
const MinQueryLength = 3

// Suggestion is one autocomplete candidate. Treat values as immutable; cached
// slices are shared between the cache and every state that shows them.
type Suggestion struct {
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DisplayText is the text written back into the location field on selection.
func (s Suggestion) DisplayText() string {
	if s.Subtitle == "" {
		return s.Title
	}
	return s.Title + ", " + s.Subtitle
}

// Selection is handed back to the form when the user picks a suggestion.
type Selection struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayText string  `json:"displayText"`
}

// Selection converts the suggestion into what the form stores.
func (s Suggestion) Selection() Selection {
	return Selection{
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		DisplayText: s.DisplayText(),
	}
}

// Normalize produces the cache key for a query: trimmed, inner whitespace
// collapsed and case-folded. It is never shown to the user.
func Normalize(query string) string {
	// Casers carry state, so each call gets its own.
	return cases.Fold().String(strings.Join(strings.Fields(query), " "))
}

func buildTitle(displayName string) string {
	title, _, _ := strings.Cut(displayName, ",")
	return strings.TrimSpace(title)
}

func buildSubtitle(address nominatimAddress) string {
	parts := make([]string, 0, 2)
	if city := pickCity(address); city != "" {
		parts = append(parts, city)
	}
	if country := strings.TrimSpace(address.Country); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

func pickCity(address nominatimAddress) string {
	for _, candidate := range []string{address.City, address.Town, address.Village} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
