package source

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxPerQuery = 50
	defaultRatePerSec  = 0.5
	defaultBurst       = 1

	acceptLanguage   = "en-US,en;q=0.9"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	scrapedDateFormat = "2006-01-02"
)

// DefaultQueries and DefaultLocations drive the scrapers when nothing is
// configured.
var (
	DefaultQueries = []string{
		"data scientist",
		"machine learning engineer",
		"ml engineer",
		"data science",
		"senior data scientist",
	}
	DefaultLocations = []string{"United States", "Remote"}
)

// ScraperConfig holds the knobs shared by the job-board scrapers.
type ScraperConfig struct {
	Queries     []string
	Locations   []string
	MaxPerQuery int
	BaseURL     string
	Timeout     time.Duration
	UserAgent   string
}

func (c ScraperConfig) withDefaults(baseURL string) ScraperConfig {
	if len(c.Queries) == 0 {
		c.Queries = DefaultQueries
	}
	if len(c.Locations) == 0 {
		c.Locations = DefaultLocations
	}
	if c.MaxPerQuery <= 0 {
		c.MaxPerQuery = defaultMaxPerQuery
	}
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return c
}

func newScrapeClient(cfg ScraperConfig) *resty.Client {
	return resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept-Language", acceptLanguage)
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
