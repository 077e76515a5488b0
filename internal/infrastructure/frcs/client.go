package frcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/infrastructure/breaker"
	"FeedstockSourcing/internal/ports"
)

// ErrRejected marks a request the model refused to price (4xx). It does not open the breaker.
var ErrRejected = errors.New("request rejected by harvest model")

// Config configures the harvest-cost model service.
type Config struct {
	Endpoint string           `yaml:"endpoint" validate:"required,url"`
	APIKey   string           `yaml:"apiKey"`
	Timeout  time.Duration    `yaml:"timeout"`
	Breaker  breaker.Settings `yaml:"breaker"`
}

// Client talks to the external harvest-cost and move-in models.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker
}

var _ ports.HarvestCostEvaluator = (*Client)(nil)
var _ ports.MoveInCostModel = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		cb:       breaker.New("harvest-model", cfg.Breaker, log, ErrRejected),
	}
}

type harvestPayload struct {
	ClusterID        string  `json:"clusterId"`
	System           string  `json:"system"`
	Area             float64 `json:"area"`
	LandUse          string  `json:"landUse,omitempty"`
	ForestType       string  `json:"forestType,omitempty"`
	HazClass         int     `json:"hazClass"`
	SiteClass        int     `json:"siteClass"`
	RecoveryFraction float64 `json:"residueRecovFrac"`
	RecoveryWT       float64 `json:"residueRecovFracWT"`
	RecoveryCTL      float64 `json:"residueRecovFracCTL"`
	DieselPrice      float64 `json:"dieselFuelPrice"`
	MoistureContent  float64 `json:"moistureContent"`
	WageFaller       float64 `json:"wageFaller"`
	WageOther        float64 `json:"wageOther"`
	LaborBenefits    float64 `json:"laborBenefits"`
	PPICurrent       float64 `json:"ppiCurrent"`
}

// Estimate runs the harvest-cost model for one cluster.
func (c *Client) Estimate(ctx context.Context, cluster domain.Cluster, params domain.EvaluationParams) (ports.HarvestEstimate, error) {
	payload := harvestPayload{
		ClusterID:        cluster.ID,
		System:           params.HarvestSystem,
		Area:             cluster.Area,
		LandUse:          cluster.LandUse,
		ForestType:       cluster.ForestType,
		HazClass:         cluster.HazClass,
		SiteClass:        cluster.SiteClass,
		RecoveryFraction: params.RecoveryFraction,
		RecoveryWT:       params.Recovery.WholeTree,
		RecoveryCTL:      params.Recovery.CutToLength,
		DieselPrice:      params.DieselPrice,
		MoistureContent:  params.MoistureContent,
		WageFaller:       params.WageFaller,
		WageOther:        params.WageOther,
		LaborBenefits:    params.LaborBenefits,
		PPICurrent:       params.PPICurrent,
	}

	return breaker.Do(c.cb, func() (ports.HarvestEstimate, error) {
		var est ports.HarvestEstimate
		if err := c.post(ctx, "/harvest", payload, &est); err != nil {
			return ports.HarvestEstimate{}, err
		}
		return est, nil
	})
}

// MoveIn prices the equipment move-in for a period.
func (c *Client) MoveIn(ctx context.Context, req ports.MoveInRequest) (ports.MoveInCost, error) {
	return breaker.Do(c.cb, func() (ports.MoveInCost, error) {
		var out ports.MoveInCost
		if err := c.post(ctx, "/move-in", req, &out); err != nil {
			return ports.MoveInCost{}, err
		}
		return out, nil
	})
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		statusErr := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			statusErr = fmt.Errorf("%w: %s", ErrRejected, resp.Status)
		}
		if closeErr != nil {
			return fmt.Errorf("%w, close body: %v", statusErr, closeErr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
