package fuelprice

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FeedstockSourcing/internal/ports"
)

const (
	defaultURL      = "https://www.eia.gov/petroleum/gasdiesel/"
	defaultSelector = "table.basic-table tr:contains('Diesel') td.current"
)

var priceExpr = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Config points the scraper at the weekly retail diesel price page.
type Config struct {
	URL      string        `yaml:"url" validate:"omitempty,url"`
	Selector string        `yaml:"selector"`
	TTL      time.Duration `yaml:"ttl"`
}

// Scraper reads the current diesel price ($/gal) from an HTML page and caches it for TTL.
type Scraper struct {
	client   *http.Client
	url      string
	selector string
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	price     float64
	fetchedAt time.Time
}

var _ ports.FuelPriceSource = (*Scraper)(nil)

// NewScraper wires an HTTP client; url and selector fall back to the EIA weekly table.
func NewScraper(client *http.Client, cfg Config) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	s := &Scraper{
		client:   client,
		url:      cfg.URL,
		selector: cfg.Selector,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	if s.url == "" {
		s.url = defaultURL
	}
	if s.selector == "" {
		s.selector = defaultSelector
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	return s
}

// DieselPrice returns the cached price or scrapes a fresh one.
func (s *Scraper) DieselPrice(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.price > 0 && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.price, nil
	}

	doc, err := s.fetchDocument(ctx)
	if err != nil {
		return 0, err
	}

	price, err := extractPrice(doc, s.selector)
	if err != nil {
		return 0, err
	}

	s.price = price
	s.fetchedAt = s.now()
	return price, nil
}

func (s *Scraper) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "FeedstockSourcing/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request price page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractPrice(doc *goquery.Document, selector string) (float64, error) {
	var (
		price float64
		found bool
	)

	doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.ReplaceAll(strings.TrimSpace(sel.Text()), ",", "")
		match := priceExpr.FindString(text)
		if match == "" {
			return true
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil || v <= 0 {
			return true
		}
		price, found = v, true
		return false
	})

	if !found {
		return 0, fmt.Errorf("no diesel price matched %q", selector)
	}
	return price, nil
}
