package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"evntly_backend/platform/config"
	"evntly_backend/platform/logger"

	"golang.org/x/time/rate"
)

const (
	providerName     = "nominatim"
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "evntly-backend/1.0"
	resultLimit      = 10
)

// ClientOptions configures the Nominatim client. Zero values fall back to the
// Estonian defaults the app ships with.
type ClientOptions struct {
	BaseURL       string
	UserAgent     string
	CountryCodes  string
	Language      string
	Viewbox       string
	Timeout       time.Duration
	RatePerSecond float64
	HTTPClient    *http.Client
}

// OptionsFromConfig maps NOMINATIM_* settings onto ClientOptions.
func OptionsFromConfig(cfg config.NominatimConfig) ClientOptions {
	return ClientOptions{
		BaseURL:       cfg.GetNominatimBaseURL(),
		UserAgent:     cfg.GetNominatimUserAgent(),
		CountryCodes:  cfg.GetNominatimCountryCodes(),
		Language:      cfg.GetNominatimLanguage(),
		Viewbox:       cfg.GetNominatimViewbox(),
		Timeout:       cfg.GetNominatimTimeout(),
		RatePerSecond: cfg.GetNominatimRatePerSecond(),
	}
}

// Client calls the Nominatim search endpoint. It never retries; wrap it with
// WithRetry for that.
type Client struct {
	client    *http.Client
	limiter   *rate.Limiter
	searchURL string
	userAgent string
	country   string
	language  string
	viewbox   string
	log       *logger.Logger
}

// NewClient builds a client. All sessions of the process share its limiter,
// which keeps the app inside the provider's one-request-per-second policy.
func NewClient(opts ClientOptions, log *logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.CountryCodes == "" {
		opts.CountryCodes = "ee"
	}
	if opts.Language == "" {
		opts.Language = "et"
	}
	if opts.Viewbox == "" {
		opts.Viewbox = "21.5,59.9,28.3,57.4"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	return &Client{
		client:    httpClient,
		limiter:   rate.NewLimiter(limit, 1),
		searchURL: strings.TrimRight(opts.BaseURL, "/") + "/search",
		userAgent: opts.UserAgent,
		country:   opts.CountryCodes,
		language:  opts.Language,
		viewbox:   opts.Viewbox,
		log:       log,
	}
}

// Search runs one bounded, locale-biased free-text search.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.UpstreamError(providerName, 0, err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.UpstreamError(providerName, resp.StatusCode, nil)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var rawResults []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResults); err != nil {
		c.log.UpstreamError(providerName, resp.StatusCode, err)
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	suggestions := make([]Suggestion, 0, len(rawResults))
	for _, raw := range rawResults {
		suggestion, ok := buildSuggestion(raw)
		if !ok {
			c.log.Warn("dropping result with unparseable coordinates",
				"placeId", raw.PlaceID, "lat", raw.Lat, "lon", raw.Lon)
			continue
		}
		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

func (c *Client) requestURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("countrycodes", c.country)
	params.Set("accept-language", c.language)
	params.Set("viewbox", c.viewbox)
	params.Set("bounded", "1")

	return c.searchURL + "?" + params.Encode()
}

func buildSuggestion(raw nominatimResponse) (Suggestion, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(raw.Lat), 64)
	if err != nil {
		return Suggestion{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(raw.Lon), 64)
	if err != nil {
		return Suggestion{}, false
	}

	return Suggestion{
		Title:     buildTitle(raw.DisplayName),
		Subtitle:  buildSubtitle(raw.Address),
		Latitude:  lat,
		Longitude: lon,
	}, true
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	Country string `json:"country"`
}

// nominatimResponse mirrors the relevant parts of the OSM search payload.
type nominatimResponse struct {
	PlaceID     int64            `json:"place_id"`
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}
