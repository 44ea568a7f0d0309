package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

var (
	ErrUpstream      = errors.New("geocode: upstream error")
	ErrBadCoordinate = errors.New("geocode: coordinate is not numeric")
)

// Query is a single forward-geocoding request.
type Query struct {
	Text         string
	Limit        int
	CountryCodes []string
}

// Result is a raw candidate as returned by the upstream service. Coordinates
// arrive as strings and are only trusted after Place parses them.
type Result struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type Place struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func (r Result) Place() (Place, error) {
	lat, err := parseCoordinate(r.Lat)
	if err != nil {
		return Place{}, err
	}
	lon, err := parseCoordinate(r.Lon)
	if err != nil {
		return Place{}, err
	}
	return Place{DisplayName: r.DisplayName, Lat: lat, Lon: lon}, nil
}

func parseCoordinate(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	return f, nil
}

// Searcher is anything that can turn a free-text query into candidates.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Client talks to a Nominatim instance. It carries no timeout of its own;
// callers bound a search through the context they pass in.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, userAgent string, rps float64) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, upstreamErr(ctx, err)
	}

	v := url.Values{}
	v.Set("q", q.Text)
	v.Set("format", "json")
	v.Set("addressdetails", "1")
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(q.CountryCodes) > 0 {
		v.Set("countrycodes", strings.Join(q.CountryCodes, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstreamErr(ctx, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode)
	}

	var list []Result
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return list, nil
}

// upstreamErr marks err as a provider failure unless the caller gave up
// first, in which case the context error is returned as is.
func upstreamErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

const (
	MinQueryLength = 3
	LookupLimit    = 6
)

// Lookup is the forgiving variant used behind the public passthrough
// endpoint: short queries never reach upstream, upstream failures and
// unparseable candidates collapse into fewer (or zero) results.
func Lookup(ctx context.Context, s Searcher, text string) []Place {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinQueryLength {
		return []Place{}
	}

	list, err := s.Search(ctx, Query{Text: text, Limit: LookupLimit})
	if err != nil {
		return []Place{}
	}

	places := make([]Place, 0, len(list))
	for _, r := range list {
		p, err := r.Place()
		if err != nil {
			continue
		}
		places = append(places, p)
	}
	return places
}
