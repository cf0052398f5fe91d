package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jobfinder/internal/job"
)

type stubSource struct {
	name     string
	postings []job.Posting
	err      error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]job.Posting, error) {
	return s.postings, s.err
}

func TestFetchAllDedupesByURL(t *testing.T) {
	first := &stubSource{name: "a", postings: []job.Posting{
		{Title: "One", URL: "https://example.com/1"},
		{Title: "Two", URL: "https://example.com/2"},
	}}
	second := &stubSource{name: "b", postings: []job.Posting{
		{Title: "Two again", URL: "https://example.com/2"},
		{Title: "Three", URL: "https://example.com/3"},
	}}

	merged, errs := FetchAll(context.Background(), nil, first, second)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	titles := make([]string, 0, len(merged))
	for _, p := range merged {
		titles = append(titles, p.Title)
	}
	if len(titles) != 3 || titles[0] != "One" || titles[1] != "Two" || titles[2] != "Three" {
		t.Fatalf("unexpected merge result: %v", titles)
	}
}

func TestFetchAllKeepsPostingsWithoutURL(t *testing.T) {
	first := &stubSource{name: "a", postings: []job.Posting{
		{Title: "No link one"},
		{Title: "No link two"},
	}}
	second := &stubSource{name: "b", postings: []job.Posting{
		{Title: "No link three"},
	}}

	merged, errs := FetchAll(context.Background(), nil, first, second)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(merged) != 3 {
		t.Fatalf("expected url-less postings to survive, got %d", len(merged))
	}
}

func TestFetchAllCollectsSourceErrors(t *testing.T) {
	broken := &stubSource{name: "broken", err: errors.New("blocked by board")}
	working := &stubSource{name: "working", postings: []job.Posting{
		{Title: "Survivor", URL: "https://example.com/1"},
	}}

	merged, errs := FetchAll(context.Background(), nil, broken, working)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "broken") {
		t.Fatalf("expected error to name the source, got %v", errs[0])
	}
	if len(merged) != 1 || merged[0].Title != "Survivor" {
		t.Fatalf("expected working source postings, got %v", merged)
	}
}

func TestFetchAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &stubSource{name: "a", postings: []job.Posting{{Title: "One"}}}

	merged, errs := FetchAll(ctx, nil, src)
	if len(merged) != 0 {
		t.Fatalf("expected no postings after cancel, got %d", len(merged))
	}
	if len(errs) != 1 || !errors.Is(errs[0], context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", errs)
	}
}
