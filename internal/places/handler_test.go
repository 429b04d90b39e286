package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evntly_backend/platform/httpkit"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const testUserHeader = "X-Test-User"

func newTestRouter(t *testing.T, sessionSearcher, lookup Searcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := NewSessions(sessionSearcher, SessionOptions{Debounce: testDebounce}, logger.Discard())
	t.Cleanup(sessions.CloseAll)
	h := NewHandler(sessions, lookup, validator.New())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			c.Set(httpkit.ContextUserIDKey, uuid.MustParse(raw))
		}
		c.Next()
	})
	r.GET("/places/search", h.Lookup)
	r.POST("/places/sessions", h.OpenSession)
	r.GET("/places/sessions/:id/state", h.State)
	r.POST("/places/sessions/:id/query", h.SubmitQuery)
	r.POST("/places/sessions/:id/select", h.SelectSuggestion)
	r.DELETE("/places/sessions/:id", h.CloseSession)
	return r
}

func do(r *gin.Engine, method, path string, user uuid.UUID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != uuid.Nil {
		req.Header.Set(testUserHeader, user.String())
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerSessionFlow(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["tartu"] = []Suggestion{{Title: "Tartu", Subtitle: "Tartu, Estonia", Latitude: 59.43, Longitude: 24.75}}
	r := newTestRouter(t, searcher, searcher)
	user := uuid.New()

	rec := do(r, http.MethodPost, "/places/sessions", user, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: status %d", rec.Code)
	}
	var opened OpenSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("decode open: %v", err)
	}
	base := "/places/sessions/" + opened.SessionID.String()

	if rec := do(r, http.MethodPost, base+"/query", user, `{"text":"Tartu"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("query: status %d", rec.Code)
	}

	var state SearchState
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(r, http.MethodGet, base+"/state", user, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("state: status %d", rec.Code)
		}
		state = SearchState{}
		if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if len(state.Suggestions) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(state.Suggestions) != 1 || state.Suggestions[0].Title != "Tartu" {
		t.Fatalf("unexpected state %+v", state)
	}

	rec = do(r, http.MethodPost, base+"/select", user,
		`{"title":"Tartu","subtitle":"Tartu, Estonia","latitude":59.43,"longitude":24.75}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select: status %d body %s", rec.Code, rec.Body.String())
	}
	var sel Selection
	if err := json.Unmarshal(rec.Body.Bytes(), &sel); err != nil {
		t.Fatalf("decode selection: %v", err)
	}
	if sel.DisplayText != "Tartu, Tartu, Estonia" {
		t.Fatalf("unexpected selection %+v", sel)
	}

	if rec := do(r, http.MethodGet, base+"/state", uuid.New(), ""); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger state: status %d", rec.Code)
	}
	if rec := do(r, http.MethodDelete, base, user, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("close: status %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, base+"/state", user, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("closed state: status %d", rec.Code)
	}
}

func TestHandlerRejectsBadInput(t *testing.T) {
	r := newTestRouter(t, newFakeSearcher(), newFakeSearcher())
	user := uuid.New()

	tests := []struct {
		name   string
		method string
		path   string
		user   uuid.UUID
		body   string
		want   int
	}{
		{name: "anonymous", method: http.MethodPost, path: "/places/sessions", want: http.StatusUnauthorized},
		{name: "bad session id", method: http.MethodGet, path: "/places/sessions/nope/state", user: user, want: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodGet, path: "/places/sessions/" + uuid.NewString() + "/state", user: user, want: http.StatusNotFound},
		{name: "query without body", method: http.MethodPost, path: "/places/sessions/" + uuid.NewString() + "/query", user: user, body: `{`, want: http.StatusBadRequest},
		{name: "select out of range", method: http.MethodPost, path: "/places/sessions/" + uuid.NewString() + "/select", user: user,
			body: `{"title":"x","latitude":123,"longitude":24}`, want: http.StatusBadRequest},
		{name: "lookup without q", method: http.MethodGet, path: "/places/search", user: user, want: http.StatusBadRequest},
		{name: "lookup too short", method: http.MethodGet, path: "/places/search?q=ab", user: user, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(r, tt.method, tt.path, tt.user, tt.body); rec.Code != tt.want {
				t.Fatalf("status %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerLookup(t *testing.T) {
	ok := SearcherFunc(func(_ context.Context, query string) ([]Suggestion, error) {
		return []Suggestion{{Title: query}}, nil
	})
	limited := SearcherFunc(func(context.Context, string) ([]Suggestion, error) {
		return nil, &StatusError{Code: http.StatusTooManyRequests}
	})
	down := SearcherFunc(func(context.Context, string) ([]Suggestion, error) {
		return nil, ErrTransport
	})

	tests := []struct {
		name     string
		searcher Searcher
		want     int
	}{
		{name: "ok", searcher: ok, want: http.StatusOK},
		{name: "rate limited", searcher: limited, want: http.StatusTooManyRequests},
		{name: "provider down", searcher: down, want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, newFakeSearcher(), tt.searcher)
			rec := do(r, http.MethodGet, "/places/search?q=Tartu", uuid.New(), "")
			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp LookupResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Suggestions) != 1 || resp.Suggestions[0].Title != "Tartu" {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}
