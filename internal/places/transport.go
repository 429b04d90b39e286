package places

import "github.com/google/uuid"

// LookupRequest is the query string of the one-shot search endpoint.
type LookupRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// QueryRequest carries the current text of the location field. Empty text
// is valid: it clears the suggestions.
type QueryRequest struct {
	Text string `json:"text" validate:"max=255"`
}

// SelectRequest is the suggestion the user tapped.
type SelectRequest struct {
	Title     string   `json:"title" validate:"required"`
	Subtitle  string   `json:"subtitle"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

func (r SelectRequest) suggestion() Suggestion {
	return Suggestion{
		Title:     r.Title,
		Subtitle:  r.Subtitle,
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
	}
}

// OpenSessionResponse is returned when a form session starts.
type OpenSessionResponse struct {
	SessionID uuid.UUID   `json:"sessionId"`
	State     SearchState `json:"state"`
}

// LookupResponse wraps the one-shot search results.
type LookupResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}
