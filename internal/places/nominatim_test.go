package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"evntly_backend/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientOptions{
		BaseURL:   srv.URL,
		UserAgent: "evntly-test/1.0",
	}, logger.Discard())
}

func TestClientSearchTartu(t *testing.T) {
	var gotQuery map[string]string
	var gotAgent string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"place_id": 1, "display_name": "Tartu, Estonia", "lat": "59.43", "lon": "24.75",
			 "address": {"city": "Tartu", "country": "Estonia"}},
			{"place_id": 2, "display_name": "Broken", "lat": "n/a", "lon": "24.75", "address": {}}
		]`))
	})

	results, err := client.Search(context.Background(), "Tar")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := Suggestion{Title: "Tartu", Subtitle: "Tartu, Estonia", Latitude: 59.43, Longitude: 24.75}
	if len(results) != 1 || results[0] != want {
		t.Fatalf("got %+v, want [%+v]", results, want)
	}

	if gotAgent != "evntly-test/1.0" {
		t.Fatalf("user agent %q", gotAgent)
	}
	expected := map[string]string{
		"q":               "Tar",
		"format":          "json",
		"addressdetails":  "1",
		"limit":           "10",
		"countrycodes":    "ee",
		"accept-language": "et",
		"viewbox":         "21.5,59.9,28.3,57.4",
		"bounded":         "1",
	}
	for key, value := range expected {
		if gotQuery[key] != value {
			t.Errorf("param %s = %q, want %q", key, gotQuery[key], value)
		}
	}
}

func TestClientSearchFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, wantMsg: MsgBadQuery},
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantMsg: "Request failed (404)"},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, wantMsg: "Server error (502)"},
		{name: "malformed", status: http.StatusOK, body: `{"not":"a list"}`, wantMsg: MsgMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Search(context.Background(), "Tartu")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := ErrorMessage(err); got != tt.wantMsg {
				t.Fatalf("message %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(ClientOptions{BaseURL: srv.URL}, logger.Discard())
	_, err := client.Search(context.Background(), "Tartu")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if ErrorMessage(err) != MsgNetwork {
		t.Fatalf("message %q", ErrorMessage(err))
	}
}

func TestRetryServiceUnavailableTwice(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	searcher := WithRetry(client, 10*time.Millisecond, logger.Discard())
	_, err := searcher.Search(context.Background(), "Tartu")

	if hits.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits.Load())
	}
	if got := ErrorMessage(err); got != "Server error (503)" {
		t.Fatalf("message %q", got)
	}
}

func TestPipelineTartuScenario(t *testing.T) {
	var hits atomic.Int32
	var lastQuery atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastQuery.Store(r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"display_name":"Tartu, Estonia","lat":"59.43","lon":"24.75",
			"address":{"city":"Tartu","country":"Estonia"}}]`))
	})
	p := newTestPipeline(t, WithRetry(client, 10*time.Millisecond, logger.Discard()))

	p.SubmitQuery("T")
	p.SubmitQuery("Ta")
	time.Sleep(4 * testDebounce)
	if hits.Load() != 0 {
		t.Fatalf("short input must not reach the provider, hits = %d", hits.Load())
	}

	p.SubmitQuery("Tar")
	s := waitForState(t, p, "tartu suggestion", hasTitle("Tartu"))

	want := Suggestion{Title: "Tartu", Subtitle: "Tartu, Estonia", Latitude: 59.43, Longitude: 24.75}
	if len(s.Suggestions) != 1 || s.Suggestions[0] != want || s.Error != "" {
		t.Fatalf("unexpected state %+v", s)
	}
	if hits.Load() != 1 || lastQuery.Load() != "Tar" {
		t.Fatalf("expected one call for %q, got %d calls, last %v", "Tar", hits.Load(), lastQuery.Load())
	}
}

func TestPipelineServiceUnavailableScenario(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	p := newTestPipeline(t, WithRetry(client, 10*time.Millisecond, logger.Discard()))

	p.SubmitQuery("Tartu")
	s := waitForState(t, p, "failure", func(s SearchState) bool { return s.Error != "" })
	if s.IsLoading || len(s.Suggestions) != 0 || s.Error != "Server error (503)" {
		t.Fatalf("unexpected state %+v", s)
	}
}
