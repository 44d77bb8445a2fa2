// Package holidays fetches the school holiday dataset from the Rijksoverheid
// open data API.
package holidays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bryan-buckman/vakantie/internal/model"
)

// DefaultBaseURL is the school holiday endpoint; the school year is appended.
const DefaultBaseURL = "https://opendata.rijksoverheid.nl/v1/sources/rijksoverheid/infotypes/schoolholidays/schoolyear"

// DefaultTimeout bounds a single feed request.
const DefaultTimeout = 10 * time.Second

// Concurrency settings
const (
	// MaxConcurrency is the number of school years fetched in parallel
	MaxConcurrency = 3
	// MaxConcurrencyPerHost limits parallel requests to the API host
	MaxConcurrencyPerHost = 2
	// DelayBetweenHostRequests is the minimum delay between requests to the same host
	DelayBetweenHostRequests = 200 * time.Millisecond
)

// maxBodySize caps the response we are willing to decode.
const maxBodySize = 5 << 20

// hostLimiter controls rate limiting per host to avoid overwhelming the API.
type hostLimiter struct {
	mu          sync.Mutex
	semaphores  map[string]chan struct{}
	lastRequest map[string]time.Time
	delay       time.Duration
}

func newHostLimiter(delay time.Duration) *hostLimiter {
	return &hostLimiter{
		semaphores:  make(map[string]chan struct{}),
		lastRequest: make(map[string]time.Time),
		delay:       delay,
	}
}

// acquire gets a slot for the host, blocking if necessary.
// It also enforces the minimum delay between requests to the same host.
func (hl *hostLimiter) acquire(ctx context.Context, host string) error {
	hl.mu.Lock()
	sem, ok := hl.semaphores[host]
	if !ok {
		sem = make(chan struct{}, MaxConcurrencyPerHost)
		hl.semaphores[host] = sem
	}
	hl.mu.Unlock()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	hl.mu.Lock()
	lastReq := hl.lastRequest[host]
	hl.mu.Unlock()

	if !lastReq.IsZero() {
		if elapsed := time.Since(lastReq); elapsed < hl.delay {
			select {
			case <-time.After(hl.delay - elapsed):
			case <-ctx.Done():
				<-sem
				return ctx.Err()
			}
		}
	}
	return nil
}

// release returns a slot for the host and records the request time.
func (hl *hostLimiter) release(host string) {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	hl.lastRequest[host] = time.Now()
	if sem, ok := hl.semaphores[host]; ok {
		<-sem
	}
}

// Client fetches and normalizes the holiday feed.
type Client struct {
	baseURL     string
	http        *http.Client
	limiter     *hostLimiter
	concurrency int
}

// NewClient creates a client. Empty baseURL and zero timeout use the defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: timeout},
		limiter:     newHostLimiter(DelayBetweenHostRequests),
		concurrency: MaxConcurrency,
	}
}

// URL returns the feed URL for a school year.
func (c *Client) URL(year model.SchoolYear) string {
	return fmt.Sprintf("%s/%s?output=json", c.baseURL, url.PathEscape(string(year)))
}

// Fetch downloads and normalizes the vacations of one school year.
func (c *Client) Fetch(ctx context.Context, year model.SchoolYear) ([]model.VacationPeriod, error) {
	feedURL := c.URL(year)
	host := extractHost(feedURL)
	if err := c.limiter.acquire(ctx, host); err != nil {
		return nil, fmt.Errorf("rate limit cancelled for %s: %w", feedURL, err)
	}
	defer c.limiter.release(host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: unexpected status %s", feedURL, resp.Status)
	}

	periods, err := Decode(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", feedURL, err)
	}
	return periods, nil
}

// Periods is Fetch for callers that only render: failures are logged and
// yield an empty list.
func (c *Client) Periods(ctx context.Context, year model.SchoolYear) []model.VacationPeriod {
	periods, err := c.Fetch(ctx, year)
	if err != nil {
		log.Printf("Failed to load vacation data for %s: %v", year, err)
		return []model.VacationPeriod{}
	}
	return periods
}

// FetchResult holds the result of fetching a single school year.
type FetchResult struct {
	Year    model.SchoolYear
	Periods []model.VacationPeriod
	Error   error
}

// FetchYears fetches several school years with a bounded worker pool.
// Years that fail are logged and left out of the result.
func (c *Client) FetchYears(ctx context.Context, years []model.SchoolYear) map[model.SchoolYear][]model.VacationPeriod {
	results := make(map[model.SchoolYear][]model.VacationPeriod, len(years))
	if len(years) == 0 {
		return results
	}

	yearChan := make(chan model.SchoolYear, len(years))
	resultChan := make(chan FetchResult, len(years))

	workers := c.concurrency
	if workers > len(years) {
		workers = len(years)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for year := range yearChan {
				if ctx.Err() != nil {
					resultChan <- FetchResult{Year: year, Error: ctx.Err()}
					continue
				}
				periods, err := c.Fetch(ctx, year)
				resultChan <- FetchResult{Year: year, Periods: periods, Error: err}
			}
		}()
	}

	for _, y := range years {
		yearChan <- y
	}
	close(yearChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.Error != nil {
			log.Printf("Failed to fetch school year %s: %v", result.Year, result.Error)
			continue
		}
		results[result.Year] = result.Periods
	}
	return results
}

// extractHost gets the host from a URL.
func extractHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	return u.Host
}

// feedResponse mirrors the parts of the API response we use.
type feedResponse struct {
	Content []struct {
		Vacations []struct {
			Type            string `json:"type"`
			CompulsoryDates string `json:"compulsorydates"`
			Regions         []struct {
				Region    string `json:"region"`
				StartDate string `json:"startdate"`
				EndDate   string `json:"enddate"`
			} `json:"regions"`
		} `json:"vacations"`
	} `json:"content"`
}

// Decode reads a feed response and normalizes it. A body that is valid JSON
// but not shaped like the feed gives an empty list; only unreadable JSON is
// an error.
func Decode(r io.Reader) ([]model.VacationPeriod, error) {
	var raw feedResponse
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			log.Printf("Unexpected feed shape at %q, treating as empty", typeErr.Field)
			return []model.VacationPeriod{}, nil
		}
		return nil, err
	}
	if len(raw.Content) == 0 {
		return []model.VacationPeriod{}, nil
	}

	vacations := raw.Content[0].Vacations
	periods := make([]model.VacationPeriod, 0, len(vacations))
	for _, v := range vacations {
		p := model.VacationPeriod{
			Type:            strings.TrimSpace(v.Type),
			CompulsoryDates: v.CompulsoryDates,
			Regions:         make([]model.RegionDateRange, 0, len(v.Regions)),
		}
		for _, r := range v.Regions {
			start, err := model.ParseDate(r.StartDate)
			if err != nil {
				log.Printf("Skipping %s range for %q: %v", p.Type, r.Region, err)
				continue
			}
			end, err := model.ParseDate(r.EndDate)
			if err != nil {
				log.Printf("Skipping %s range for %q: %v", p.Type, r.Region, err)
				continue
			}
			p.Regions = append(p.Regions, model.RegionDateRange{
				Region: model.NormalizeRegion(r.Region),
				Start:  start,
				End:    end,
			})
		}
		periods = append(periods, p)
	}
	return periods, nil
}
