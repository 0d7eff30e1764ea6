// Package geocode resolves free-text place queries to coordinates through a
// Mapbox-style forward-geocoding API.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/hydrovacfinder/directory/internal/app/domain/geo"
	"github.com/hydrovacfinder/directory/internal/app/errs"
	"github.com/hydrovacfinder/directory/internal/config"
	"github.com/hydrovacfinder/directory/pkg/logger"
)

const (
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
	cacheTTL       = 24 * time.Hour
)

// Client calls the forward-geocoding API. Results are optionally cached in
// Redis keyed by the normalized query.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       *redis.Client
	log         *logger.Logger
}

// New creates a geocoding client from configuration. Returns nil when no
// access token is configured; callers treat a nil client as "geocoding
// unavailable".
func New(cfg config.GeocodeConfig, log *logger.Logger) *Client {
	if cfg.AccessToken == "" {
		return nil
	}
	if log == nil {
		log = logger.NewDefault("geocode")
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	return &Client{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: requestTimeout},
		// The upstream free tier allows 600 requests per minute.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		cache:   cache,
		log:     log,
	}
}

// Geocode resolves query to a point. The boolean is false when the API
// returned no features for the query, which is a normal outcome for
// misspelled or unknown places, not an error.
func (c *Client) Geocode(ctx context.Context, query string) (geo.Point, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return geo.Point{}, false, errs.NewValidation("q", "search query is required")
	}

	if point, ok := c.cacheGet(ctx, query); ok {
		return point, true, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return geo.Point{}, false, err
	}

	endpoint := fmt.Sprintf("%s/%s.json?country=us&access_token=%s",
		c.endpoint, url.PathEscape(query), url.QueryEscape(c.accessToken))

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		// Geocoding is an idempotent read: one retry.
		c.log.WithError(err).Warn("geocode request failed, retrying once")
		body, err = c.fetch(ctx, endpoint)
	}
	if err != nil {
		return geo.Point{}, false, &errs.UpstreamError{Service: "geocoding", Err: err}
	}

	center := gjson.GetBytes(body, "features.0.center")
	if !center.Exists() || len(center.Array()) != 2 {
		return geo.Point{}, false, nil
	}

	coords := center.Array()
	point := geo.Point{
		Longitude: coords[0].Float(),
		Latitude:  coords[1].Float(),
	}

	c.cacheSet(ctx, query, point)
	return point, true, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(query)
}

func (c *Client) cacheGet(ctx context.Context, query string) (geo.Point, bool) {
	if c.cache == nil {
		return geo.Point{}, false
	}

	raw, err := c.cache.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		return geo.Point{}, false
	}

	parsed := gjson.Parse(raw)
	if !parsed.Get("latitude").Exists() {
		return geo.Point{}, false
	}
	return geo.Point{
		Latitude:  parsed.Get("latitude").Float(),
		Longitude: parsed.Get("longitude").Float(),
	}, true
}

func (c *Client) cacheSet(ctx context.Context, query string, point geo.Point) {
	if c.cache == nil {
		return
	}
	payload := fmt.Sprintf(`{"latitude":%v,"longitude":%v}`, point.Latitude, point.Longitude)
	if err := c.cache.Set(ctx, cacheKey(query), payload, cacheTTL).Err(); err != nil {
		c.log.WithError(err).Debug("geocode cache write failed")
	}
}
