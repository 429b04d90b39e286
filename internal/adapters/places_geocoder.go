package adapters

import (
	"context"

	"evntly_backend/internal/agenda/service"
	"evntly_backend/internal/places"
)

// PlacesGeocoder adapts the place search chain to the agenda Geocoder port:
// the top-ranked suggestion wins.
type PlacesGeocoder struct {
	searcher places.Searcher
}

func NewPlacesGeocoder(searcher places.Searcher) *PlacesGeocoder {
	return &PlacesGeocoder{searcher: searcher}
}

func (g *PlacesGeocoder) Geocode(ctx context.Context, query string) (float64, float64, bool, error) {
	suggestions, err := g.searcher.Search(ctx, query)
	if err != nil {
		return 0, 0, false, err
	}
	if len(suggestions) == 0 {
		return 0, 0, false, nil
	}
	return suggestions[0].Latitude, suggestions[0].Longitude, true, nil
}

var _ service.Geocoder = (*PlacesGeocoder)(nil)
