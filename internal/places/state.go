package places

import "sync"

// SearchState is what the form renders under the location field: a spinner
// while IsLoading, an error line when Error is set, "no results" when settled
// and empty, otherwise the suggestion rows. Values are replaced whole.
type SearchState struct {
	IsLoading   bool         `json:"isLoading"`
	Error       string       `json:"error,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// InitialState is the empty, idle state.
func InitialState() SearchState {
	return SearchState{Suggestions: []Suggestion{}}
}

func loadingState() SearchState {
	return SearchState{IsLoading: true, Suggestions: []Suggestion{}}
}

func successState(results []Suggestion) SearchState {
	if results == nil {
		results = []Suggestion{}
	}
	return SearchState{Suggestions: results}
}

func failureState(message string) SearchState {
	return SearchState{Error: message, Suggestions: []Suggestion{}}
}

// Settled reports whether no search work is pending for this state.
func (s SearchState) Settled() bool {
	return !s.IsLoading
}

// StateCell holds one SearchState and fans changes out to observers.
// Each observer channel keeps only the newest undelivered state, so a slow
// reader skips intermediate frames but always sees the latest one.
type StateCell struct {
	mu        sync.Mutex
	state     SearchState
	observers map[int]chan SearchState
	nextID    int
	closed    bool
}

// NewStateCell creates a cell holding InitialState.
func NewStateCell() *StateCell {
	return &StateCell{
		state:     InitialState(),
		observers: make(map[int]chan SearchState),
	}
}

// Get returns the current state.
func (c *StateCell) Get() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set replaces the state and notifies observers.
func (c *StateCell) Set(state SearchState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state = state
	for _, ch := range c.observers {
		offerLatest(ch, state)
	}
}

// Subscribe returns a channel primed with the current state. The cancel func
// unregisters and closes it; it is safe to call more than once.
func (c *StateCell) Subscribe() (<-chan SearchState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan SearchState, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextID
	c.nextID++
	c.observers[id] = ch
	ch <- c.state

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if obs, ok := c.observers[id]; ok {
			delete(c.observers, id)
			close(obs)
		}
	}
}

// Close closes every observer channel; later Sets are ignored.
func (c *StateCell) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.observers {
		delete(c.observers, id)
		close(ch)
	}
}

func offerLatest(ch chan SearchState, state SearchState) {
	select {
	case ch <- state:
		return
	default:
	}
	// drop the stale frame the reader has not picked up yet
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- state:
	default:
	}
}
