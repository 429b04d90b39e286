package adapters

import (
	"context"
	"errors"
	"testing"

	"evntly_backend/internal/places"
)

func TestPlacesGeocoderPicksTopSuggestion(t *testing.T) {
	searcher := places.SearcherFunc(func(_ context.Context, query string) ([]places.Suggestion, error) {
		if query != "Tartu Raekoja plats" {
			t.Fatalf("unexpected query %q", query)
		}
		return []places.Suggestion{
			{Title: "Raekoja plats", Latitude: 58.3806, Longitude: 26.7223},
			{Title: "Raekoja", Latitude: 59.0, Longitude: 25.0},
		}, nil
	})

	lat, lon, found, err := NewPlacesGeocoder(searcher).Geocode(context.Background(), "Tartu Raekoja plats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || lat != 58.3806 || lon != 26.7223 {
		t.Fatalf("got (%v, %v, %v)", lat, lon, found)
	}
}

func TestPlacesGeocoderNoResults(t *testing.T) {
	searcher := places.SearcherFunc(func(context.Context, string) ([]places.Suggestion, error) {
		return []places.Suggestion{}, nil
	})

	_, _, found, err := NewPlacesGeocoder(searcher).Geocode(context.Background(), "nowhere")
	if err != nil || found {
		t.Fatalf("expected not found without error, got found=%v err=%v", found, err)
	}
}

func TestPlacesGeocoderPropagatesErrors(t *testing.T) {
	searcher := places.SearcherFunc(func(context.Context, string) ([]places.Suggestion, error) {
		return nil, &places.StatusError{Code: 503}
	})

	_, _, _, err := NewPlacesGeocoder(searcher).Geocode(context.Background(), "Tartu")
	var statusErr *places.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 503 {
		t.Fatalf("expected status error, got %v", err)
	}
}
