package source

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"jobfinder/internal/job"
)

const indeedBaseURL = "https://www.indeed.com"

// Indeed scrapes the public Indeed search results for each configured
// query/location combination. Anti-bot measures mean production runs may
// come back empty; a failed combination is logged and skipped.
type Indeed struct {
	cfg     ScraperConfig
	client  *resty.Client
	limiter *HostLimiter
	log     *zap.Logger
}

// NewIndeed creates the Indeed scraper. A nil limiter disables pacing.
func NewIndeed(cfg ScraperConfig, limiter *HostLimiter, log *zap.Logger) *Indeed {
	cfg = cfg.withDefaults(indeedBaseURL)
	if log == nil {
		log = zap.NewNop()
	}
	return &Indeed{
		cfg:     cfg,
		client:  newScrapeClient(cfg),
		limiter: limiter,
		log:     log,
	}
}

func (s *Indeed) Name() string { return "indeed" }

func (s *Indeed) Fetch(ctx context.Context) ([]job.Posting, error) {
	var postings []job.Posting

	for _, query := range s.cfg.Queries {
		for _, location := range s.cfg.Locations {
			if err := ctx.Err(); err != nil {
				return postings, err
			}

			found, err := s.search(ctx, query, location)
			if err != nil {
				s.log.Warn("indeed search failed",
					zap.String("query", query),
					zap.String("location", location),
					zap.Error(err),
				)
				continue
			}
			postings = append(postings, found...)
		}
	}

	return postings, nil
}

func (s *Indeed) search(ctx context.Context, query, location string) ([]job.Posting, error) {
	searchURL := s.cfg.BaseURL + "/jobs"
	if err := s.limiter.Wait(ctx, searchURL); err != nil {
		return nil, err
	}

	limit := s.cfg.MaxPerQuery
	if limit > 50 {
		limit = 50
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       query,
			"l":       location,
			"fromage": "1",
			"sort":    "date",
			"limit":   strconv.Itoa(limit),
		}).
		Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("indeed request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("indeed status %s", resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("indeed parse html: %w", err)
	}

	posted := time.Now().Format(scrapedDateFormat)

	var postings []job.Posting
	doc.Find("div[data-jk]").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= s.cfg.MaxPerQuery {
			return false
		}

		title := cleanText(card.Find("h2[class*='jobTitle']").First().Text())
		if title == "" {
			title = "Unknown"
		}
		company := cleanText(card.Find("span[data-testid='company-name']").First().Text())
		if company == "" {
			company = "Unknown"
		}
		cardLocation := cleanText(card.Find("div[data-testid='text-location']").First().Text())
		if cardLocation == "" {
			cardLocation = location
		}

		jobURL := ""
		if jk, _ := card.Attr("data-jk"); jk != "" {
			jobURL = s.cfg.BaseURL + "/viewjob?jk=" + jk
		}

		postings = append(postings, job.Posting{
			Title:       title,
			Company:     company,
			Location:    cardLocation,
			Description: cleanText(card.Find("div[class*='job-snippet']").First().Text()),
			URL:         jobURL,
			Source:      "Indeed",
			Posted:      posted,
		})
		return true
	})

	s.log.Debug("indeed cards parsed",
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("postings", len(postings)),
	)

	return postings, nil
}
