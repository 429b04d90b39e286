package places

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"evntly_backend/platform/logger"
)

// PipelineOptions tunes a Pipeline. Zero values use the production defaults.
type PipelineOptions struct {
	Debounce time.Duration
}

// submission is one keystroke's text tagged with the input generation it was
// typed in, so a debounced value that raced with a newer input is dropped.
type submission struct {
	text string
	gen  uint64
}

// Pipeline is the place search of one add-event form session.
//
// Keystrokes go through SubmitQuery; after the debounce quiet period the
// latest text is looked up in the session cache and, on a miss, searched.
// Each search gets a sequence number; a response is applied only while its
// number is still the latest, and a superseded search is also cancelled.
type Pipeline struct {
	searcher  Searcher
	cache     *MemoryCache
	cell      *StateCell
	debouncer *Debouncer[submission]
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	inputGen       uint64
	seq            uint64
	lastSearched   string
	cancelInFlight context.CancelFunc
	closed         bool
}

// NewPipeline wires a pipeline around searcher. cache may be nil, in which
// case a fresh session cache is created.
func NewPipeline(searcher Searcher, cache *MemoryCache, opts PipelineOptions, log *logger.Logger) *Pipeline {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		searcher: searcher,
		cache:    cache,
		cell:     NewStateCell(),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	p.debouncer = NewDebouncer(opts.Debounce, p.onDebounced)
	return p
}

// SubmitQuery accepts the current text of the location field. It never
// blocks on network work.
func (p *Pipeline) SubmitQuery(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.inputGen++
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinQueryLength {
		p.resetLocked()
		return
	}

	p.debouncer.Submit(submission{text: text, gen: p.inputGen})
}

// SelectSuggestion resets the state so the dropdown disappears and returns
// what the form should store.
func (p *Pipeline) SelectSuggestion(s Suggestion) Selection {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.inputGen++
		p.resetLocked()
	}
	return s.Selection()
}

// State returns the current SearchState.
func (p *Pipeline) State() SearchState {
	return p.cell.Get()
}

// Subscribe observes state transitions, starting with the current state.
func (p *Pipeline) Subscribe() (<-chan SearchState, func()) {
	return p.cell.Subscribe()
}

// Close stops the pipeline, cancels in-flight work, clears the session cache
// and closes observers. It waits for the in-flight search goroutine to exit.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.debouncer.Stop()
	p.seq++
	if p.cancelInFlight != nil {
		p.cancelInFlight()
		p.cancelInFlight = nil
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.cache.Clear()
	p.cell.Close()
}

// resetLocked clears the state and abandons pending and in-flight searches.
// The last searched text is forgotten so re-typing it is answered again.
func (p *Pipeline) resetLocked() {
	p.debouncer.Cancel()
	p.seq++
	if p.cancelInFlight != nil {
		p.cancelInFlight()
		p.cancelInFlight = nil
	}
	p.lastSearched = ""
	p.cell.Set(InitialState())
}

func (p *Pipeline) onDebounced(sub submission) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || sub.gen != p.inputGen {
		return
	}

	key := Normalize(sub.text)
	if key == p.lastSearched {
		p.log.Debug("skipping duplicate place search", "query", key)
		return
	}
	p.lastSearched = key

	p.seq++
	seq := p.seq
	if p.cancelInFlight != nil {
		p.cancelInFlight()
		p.cancelInFlight = nil
	}

	if cached, ok := p.cache.Lookup(key); ok {
		p.cell.Set(successState(cached))
		return
	}

	ctx, cancel := context.WithCancel(p.ctx)
	p.cancelInFlight = cancel
	p.cell.Set(loadingState())

	p.wg.Add(1)
	go p.search(ctx, cancel, seq, key, sub.text)
}

func (p *Pipeline) search(ctx context.Context, cancel context.CancelFunc, seq uint64, key, query string) {
	defer p.wg.Done()
	defer cancel()

	results, err := p.searcher.Search(ctx, query)
	if err == nil {
		p.cache.Store(key, results)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || seq != p.seq {
		p.log.Debug("discarding stale place search result", "query", key)
		return
	}
	p.cancelInFlight = nil

	if err != nil {
		p.log.Info("place search failed", "query", key, "error", err)
		p.cell.Set(failureState(ErrorMessage(err)))
		return
	}
	p.cell.Set(successState(results))
}
