package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/sony/gobreaker"

	"FeedstockSourcing/internal/infrastructure/breaker"
	"FeedstockSourcing/internal/ports"
)

// ErrNoRoute is returned when the routing engine answers but cannot connect the points.
var ErrNoRoute = errors.New("no route")

// Config configures the OSRM client.
type Config struct {
	BaseURL string           `yaml:"baseURL" validate:"required,url"`
	Profile string           `yaml:"profile"`
	Timeout time.Duration    `yaml:"timeout"`
	Breaker breaker.Settings `yaml:"breaker"`
}

// Client calls the OSRM route and trip services.
type Client struct {
	baseURL string
	profile string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
}

var _ ports.RoutingService = (*Client)(nil)

// NewClient creates a reusable OSRM client; profile defaults to driving.
func NewClient(cfg Config, log *slog.Logger) *Client {
	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: profile,
		http:    &http.Client{Timeout: timeout},
		cb:      breaker.New("osrm", cfg.Breaker, log, ErrNoRoute),
	}
}

type osrmLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type osrmResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Routes  []osrmLeg `json:"routes"`
	Trips   []osrmLeg `json:"trips"`
}

// Route returns the driving distance (m) and duration (s) between two points.
func (c *Client) Route(ctx context.Context, from, to orb.Point) (ports.Route, error) {
	endpoint := c.serviceURL("route", []orb.Point{from, to}, url.Values{"overview": {"false"}})

	resp, err := breaker.Do(c.cb, func() (osrmResponse, error) {
		return c.get(ctx, endpoint)
	})
	if err != nil {
		return ports.Route{}, err
	}
	if len(resp.Routes) == 0 {
		return ports.Route{}, fmt.Errorf("route: %w", ErrNoRoute)
	}
	return ports.Route{Distance: resp.Routes[0].Distance, Duration: resp.Routes[0].Duration}, nil
}

// RoundTrip returns the distance (m) of a trip from origin through every stop and back.
func (c *Client) RoundTrip(ctx context.Context, origin orb.Point, stops []orb.Point) (float64, error) {
	if len(stops) == 0 {
		return 0, nil
	}

	points := make([]orb.Point, 0, len(stops)+1)
	points = append(points, origin)
	points = append(points, stops...)

	endpoint := c.serviceURL("trip", points, url.Values{
		"roundtrip": {"true"},
		"source":    {"first"},
		"overview":  {"false"},
	})

	resp, err := breaker.Do(c.cb, func() (osrmResponse, error) {
		return c.get(ctx, endpoint)
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Trips) == 0 {
		return 0, fmt.Errorf("trip: %w", ErrNoRoute)
	}
	return resp.Trips[0].Distance, nil
}

func (c *Client) serviceURL(service string, points []orb.Point, query url.Values) string {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = strconv.FormatFloat(p.Lon(), 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', 6, 64)
	}
	return fmt.Sprintf("%s/%s/v1/%s/%s?%s", c.baseURL, service, c.profile, strings.Join(coords, ";"), query.Encode())
}

func (c *Client) get(ctx context.Context, endpoint string) (osrmResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return osrmResponse{}, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return osrmResponse{}, fmt.Errorf("do request: %w", err)
	}

	var out osrmResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if closeErr := resp.Body.Close(); closeErr != nil && decodeErr == nil {
		return osrmResponse{}, fmt.Errorf("close response body: %w", closeErr)
	}

	// OSRM reports unroutable input as 400 with a JSON code.
	if resp.StatusCode == http.StatusBadRequest && decodeErr == nil && out.Code != "" {
		return osrmResponse{}, fmt.Errorf("%s: %s: %w", out.Code, out.Message, ErrNoRoute)
	}
	if resp.StatusCode != http.StatusOK {
		return osrmResponse{}, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if decodeErr != nil {
		return osrmResponse{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.Code != "Ok" {
		return osrmResponse{}, fmt.Errorf("%s: %s: %w", out.Code, out.Message, ErrNoRoute)
	}
	return out, nil
}
