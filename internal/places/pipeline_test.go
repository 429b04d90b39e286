package places

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"evntly_backend/platform/logger"
)

const testDebounce = 20 * time.Millisecond

// fakeSearcher answers from canned results keyed by normalised query. Queries
// listed in block wait for their channel to close or for cancellation.
type fakeSearcher struct {
	mu        sync.Mutex
	calls     []string
	cancelled []string
	results   map[string][]Suggestion
	errs      map[string]error
	block     map[string]chan struct{}
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: make(map[string][]Suggestion),
		errs:    make(map[string]error),
		block:   make(map[string]chan struct{}),
	}
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]Suggestion, error) {
	key := Normalize(query)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	gate := f.block[key]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled = append(f.cancelled, key)
			f.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeSearcher) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestPipeline(t *testing.T, searcher Searcher) *Pipeline {
	t.Helper()
	p := NewPipeline(searcher, nil, PipelineOptions{Debounce: testDebounce}, logger.Discard())
	t.Cleanup(p.Close)
	return p
}

func waitForState(t *testing.T, p *Pipeline, what string, cond func(SearchState) bool) SearchState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := p.State(); cond(s) {
			return s
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s, last state %+v", what, p.State())
	return SearchState{}
}

func hasTitle(title string) func(SearchState) bool {
	return func(s SearchState) bool {
		return !s.IsLoading && len(s.Suggestions) > 0 && s.Suggestions[0].Title == title
	}
}

func TestPipelineShortInputNeverSearches(t *testing.T) {
	searcher := newFakeSearcher()
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("T")
	p.SubmitQuery("Ta")
	p.SubmitQuery("  ab  ")
	time.Sleep(4 * testDebounce)

	if calls := searcher.callLog(); len(calls) != 0 {
		t.Fatalf("expected no searches, got %v", calls)
	}
	if s := p.State(); s.IsLoading || s.Error != "" || len(s.Suggestions) != 0 {
		t.Fatalf("expected initial state, got %+v", s)
	}
}

func TestPipelineDebouncesBurst(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu"}}
	p := newTestPipeline(t, searcher)

	for _, text := range []string{"Tar", "Tart", "Tartu"} {
		p.SubmitQuery(text)
		time.Sleep(testDebounce / 4)
	}

	waitForState(t, p, "tartu results", hasTitle("Tartu"))
	if calls := searcher.callLog(); len(calls) != 1 || calls[0] != "tartu" {
		t.Fatalf("expected a single search for the last text, got %v", calls)
	}
}

func TestPipelineCoalescesEquivalentQueries(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu"}}
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Tartu")
	waitForState(t, p, "tartu results", hasTitle("Tartu"))

	p.SubmitQuery("  TARTU ")
	time.Sleep(4 * testDebounce)

	if calls := searcher.callLog(); len(calls) != 1 {
		t.Fatalf("equivalent query must not search again, got %v", calls)
	}
	if !hasTitle("Tartu")(p.State()) {
		t.Fatalf("state must be untouched, got %+v", p.State())
	}
}

func TestPipelineServesRepeatsFromSessionCache(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu"}}
	searcher.results["tallinn"] = []Suggestion{{Title: "Tallinn"}}
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Tartu")
	waitForState(t, p, "tartu results", hasTitle("Tartu"))
	p.SubmitQuery("Tallinn")
	waitForState(t, p, "tallinn results", hasTitle("Tallinn"))
	p.SubmitQuery("tartu")
	waitForState(t, p, "cached tartu results", hasTitle("Tartu"))

	if calls := searcher.callLog(); len(calls) != 2 {
		t.Fatalf("repeat must be served from cache, got %v", calls)
	}
}

func TestPipelineClearResetsCoalescing(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu"}}
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Tartu")
	waitForState(t, p, "tartu results", hasTitle("Tartu"))

	p.SubmitQuery("")
	if s := p.State(); len(s.Suggestions) != 0 || s.IsLoading {
		t.Fatalf("clearing must reset synchronously, got %+v", s)
	}

	// retyping the same text is answered again, from the cache
	p.SubmitQuery("Tartu")
	waitForState(t, p, "tartu results again", hasTitle("Tartu"))
	if calls := searcher.callLog(); len(calls) != 1 {
		t.Fatalf("expected the cached answer, got %v", calls)
	}
}

func TestPipelineLatestQueryWins(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu"}}
	searcher.results["tallinn"] = []Suggestion{{Title: "Tallinn"}}
	gate := make(chan struct{})
	searcher.block["tartu"] = gate
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Tartu")
	waitForState(t, p, "loading", func(s SearchState) bool { return s.IsLoading })

	p.SubmitQuery("Tallinn")
	waitForState(t, p, "tallinn results", hasTitle("Tallinn"))
	close(gate)
	time.Sleep(4 * testDebounce)

	if !hasTitle("Tallinn")(p.State()) {
		t.Fatalf("stale response overwrote newer state: %+v", p.State())
	}
	searcher.mu.Lock()
	cancelled := append([]string(nil), searcher.cancelled...)
	searcher.mu.Unlock()
	if len(cancelled) != 1 || cancelled[0] != "tartu" {
		t.Fatalf("superseded search must be cancelled, got %v", cancelled)
	}
}

func TestPipelineFailureState(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.errs["tartu"] = &StatusError{Code: http.StatusServiceUnavailable}
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Tartu")
	s := waitForState(t, p, "failure", func(s SearchState) bool { return s.Error != "" })
	if s.IsLoading || len(s.Suggestions) != 0 || s.Error != "Server error (503)" {
		t.Fatalf("unexpected failure state %+v", s)
	}
}

func TestPipelineEmptyResults(t *testing.T) {
	searcher := newFakeSearcher()
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Nowhere")
	waitForState(t, p, "settled", func(s SearchState) bool { return len(searcher.callLog()) == 1 && !s.IsLoading })

	s := p.State()
	if s.Error != "" || s.Suggestions == nil || len(s.Suggestions) != 0 {
		t.Fatalf("expected settled empty state, got %+v", s)
	}
}

func TestPipelineSelectSuggestion(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu", Subtitle: "Tartu, Estonia", Latitude: 59.43, Longitude: 24.75}}
	p := newTestPipeline(t, searcher)

	p.SubmitQuery("Tartu")
	s := waitForState(t, p, "tartu results", hasTitle("Tartu"))

	sel := p.SelectSuggestion(s.Suggestions[0])
	if sel.DisplayText != "Tartu, Tartu, Estonia" || sel.Latitude != 59.43 || sel.Longitude != 24.75 {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if len(p.State().Suggestions) != 0 {
		t.Fatal("selection must clear the dropdown")
	}

	// a debounced keystroke racing with the selection is dropped
	p.SubmitQuery("Tallinn")
	p.SelectSuggestion(s.Suggestions[0])
	time.Sleep(4 * testDebounce)
	if calls := searcher.callLog(); len(calls) != 1 {
		t.Fatalf("pending input must be abandoned on select, got %v", calls)
	}
}

func TestPipelineCloseCancelsInFlight(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.block["tartu"] = make(chan struct{})
	p := NewPipeline(searcher, nil, PipelineOptions{Debounce: testDebounce}, logger.Discard())

	observed, cancel := p.Subscribe()
	defer cancel()

	p.SubmitQuery("Tartu")
	waitForState(t, p, "loading", func(s SearchState) bool { return s.IsLoading })

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	for range observed {
	}
	p.SubmitQuery("Tallinn")
	time.Sleep(4 * testDebounce)
	if calls := searcher.callLog(); len(calls) != 1 {
		t.Fatalf("closed pipeline must ignore input, got %v", calls)
	}
}
