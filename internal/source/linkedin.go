package source

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"jobfinder/internal/job"
)

const linkedinBaseURL = "https://www.linkedin.com"

// LinkedIn scrapes the public /jobs/search endpoint, which serves
// structured HTML to non-authenticated sessions. The list view carries no
// full description, so a keyword placeholder is synthesized from the card.
type LinkedIn struct {
	cfg     ScraperConfig
	client  *resty.Client
	limiter *HostLimiter
	log     *zap.Logger
}

// NewLinkedIn creates the LinkedIn scraper. A nil limiter disables pacing.
func NewLinkedIn(cfg ScraperConfig, limiter *HostLimiter, log *zap.Logger) *LinkedIn {
	cfg = cfg.withDefaults(linkedinBaseURL)
	if log == nil {
		log = zap.NewNop()
	}
	return &LinkedIn{
		cfg:     cfg,
		client:  newScrapeClient(cfg),
		limiter: limiter,
		log:     log,
	}
}

func (s *LinkedIn) Name() string { return "linkedin" }

func (s *LinkedIn) Fetch(ctx context.Context) ([]job.Posting, error) {
	var postings []job.Posting

	for _, query := range s.cfg.Queries {
		for _, location := range s.cfg.Locations {
			if err := ctx.Err(); err != nil {
				return postings, err
			}

			found, err := s.search(ctx, query, location)
			if err != nil {
				s.log.Warn("linkedin search failed",
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

func (s *LinkedIn) search(ctx context.Context, query, location string) ([]job.Posting, error) {
	searchURL := s.cfg.BaseURL + "/jobs/search"
	if err := s.limiter.Wait(ctx, searchURL); err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"keywords": query,
			"location": location,
			"f_TPR":    "r86400",
			"sortBy":   "DD",
			"start":    "0",
		}).
		Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("linkedin request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("linkedin status %s", resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("linkedin parse html: %w", err)
	}

	posted := time.Now().Format(scrapedDateFormat)

	var postings []job.Posting
	doc.Find("div[class*='base-card']").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= s.cfg.MaxPerQuery {
			return false
		}

		title := cleanText(card.Find("h3[class*='base-search-card__title']").First().Text())
		if title == "" {
			title = "Unknown"
		}
		company := cleanText(card.Find("h4[class*='base-search-card__subtitle']").First().Text())
		if company == "" {
			company = "Unknown"
		}
		cardLocation := cleanText(card.Find("span[class*='job-search-card__location']").First().Text())
		if cardLocation == "" {
			cardLocation = location
		}
		jobURL, _ := card.Find("a[class*='base-card__full-link']").First().Attr("href")

		postings = append(postings, job.Posting{
			Title:    title,
			Company:  company,
			Location: cardLocation,
			Description: fmt.Sprintf(
				"%s at %s in %s. Python, SQL, machine learning, data science position.",
				title, company, cardLocation,
			),
			URL:    jobURL,
			Source: "LinkedIn",
			Posted: posted,
		})
		return true
	})

	s.log.Debug("linkedin cards parsed",
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("postings", len(postings)),
	)

	return postings, nil
}
