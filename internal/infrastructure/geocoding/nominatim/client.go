// Package nominatim resolves free-text addresses through a
// Nominatim-compatible search endpoint restricted to one country.
package nominatim

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Location is one resolved address.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// place mirrors the subset of a jsonv2 search result that is used.
type place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client queries the search endpoint.
type Client struct {
	cfg        config.GeocodingConfig
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient builds a Client whose requests are bounded by cfg.Timeout.
func NewClient(cfg config.GeocodingConfig, logger logging.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewClientWithHTTP builds a Client over a caller-supplied http.Client.
func NewClientWithHTTP(cfg config.GeocodingConfig, hc *http.Client, logger logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultGeocodingTimeout
	}
	if cfg.SuggestLimit <= 0 {
		cfg.SuggestLimit = config.DefaultSuggestLimit
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = config.DefaultMinQueryLength
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{cfg: cfg, httpClient: hc, logger: logger}
}

// Search resolves query to a single location inside the configured country.
// A timeout yields ErrCodeGeocodeTimeout; every other failure, including a
// result outside the country, yields ErrCodeGeocodeNotFound.
func (c *Client) Search(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.ErrCodeGeocodeNotFound, "empty address")
	}

	places, err := c.search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	for _, p := range places {
		if c.cfg.CountryName != "" && !strings.Contains(p.DisplayName, c.cfg.CountryName) {
			continue
		}
		loc, ok := p.location()
		if !ok {
			continue
		}
		return &loc, nil
	}
	return nil, errors.New(errors.ErrCodeGeocodeNotFound, "address not found").WithDetail(query)
}

// Suggest returns up to SuggestLimit candidate locations.  Queries shorter
// than MinQueryLength runes return no suggestions and no error.
func (c *Client) Suggest(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < c.cfg.MinQueryLength {
		return []Location{}, nil
	}

	places, err := c.search(ctx, query, c.cfg.SuggestLimit)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeGeocodeNotFound) {
			return []Location{}, nil
		}
		return nil, err
	}
	out := make([]Location, 0, len(places))
	for _, p := range places {
		if loc, ok := p.location(); ok {
			out = append(out, loc)
		}
		if len(out) == c.cfg.SuggestLimit {
			break
		}
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]place, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	if c.cfg.CountryName != "" {
		q.Set("q", fmt.Sprintf("%s, %s", query, c.cfg.CountryName))
	} else {
		q.Set("q", query)
	}
	q.Set("format", "jsonv2")
	q.Set("limit", strconv.Itoa(limit))
	if c.cfg.CountryCode != "" {
		q.Set("countrycodes", c.cfg.CountryCode)
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeocodeNotFound, "build geocoding request")
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			c.logger.Warn("geocoding timed out",
				logging.String("query", query),
				logging.Duration("elapsed", time.Since(start)))
			return nil, errors.Wrap(err, errors.ErrCodeGeocodeTimeout, "geocoding timed out")
		}
		c.logger.Warn("geocoding request failed", logging.String("query", query), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeGeocodeNotFound, "geocoding request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("geocoding service error",
			logging.Int("status", resp.StatusCode),
			logging.String("body", string(body)))
		return nil, errors.New(errors.ErrCodeGeocodeNotFound, "geocoding service error").
			WithDetail(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Wrap(err, errors.ErrCodeGeocodeTimeout, "geocoding timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeGeocodeNotFound, "decode geocoding response")
	}
	c.logger.Debug("geocoding resolved",
		logging.String("query", query),
		logging.Int("results", len(places)),
		logging.Duration("elapsed", time.Since(start)))
	if len(places) == 0 {
		return nil, errors.New(errors.ErrCodeGeocodeNotFound, "address not found").WithDetail(query)
	}
	return places, nil
}

func (p place) location() (Location, bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return Location{}, false
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return Location{}, false
	}
	return Location{Address: p.DisplayName, Latitude: lat, Longitude: lon}, true
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

//Personal.AI order the ending
