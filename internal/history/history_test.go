package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"jobfinder/internal/job"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndSeen(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	posting := &job.Posting{
		Title:   "Platform Engineer",
		Company: "Stripe",
		URL:     "https://example.com/stripe/platform",
	}

	seen, err := store.Seen(ctx, posting.Key())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatalf("expected fresh posting to be unseen")
	}

	added, err := store.Record(ctx, posting, 84.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatalf("expected first record to add a row")
	}

	seen, err = store.Seen(ctx, posting.Key())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatalf("expected recorded posting to be seen")
	}
}

func TestRecordDuplicate(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	posting := &job.Posting{Title: "Backend Engineer", Company: "Datadog"}

	if added, err := store.Record(ctx, posting, 91); err != nil || !added {
		t.Fatalf("expected first record to add, got added=%v err=%v", added, err)
	}
	if added, err := store.Record(ctx, posting, 91); err != nil || added {
		t.Fatalf("expected duplicate record to be ignored, got added=%v err=%v", added, err)
	}

	// Key matching is case-insensitive through Posting.Key.
	upper := &job.Posting{Title: "BACKEND ENGINEER", Company: "DATADOG"}
	if added, err := store.Record(ctx, upper, 91); err != nil || added {
		t.Fatalf("expected case-folded duplicate to be ignored, got added=%v err=%v", added, err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	posting := &job.Posting{Title: "SRE", Company: "Cloudflare"}
	if _, err := store.Record(ctx, posting, 77); err != nil {
		t.Fatalf("recording: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	seen, err := reopened.Seen(ctx, posting.Key())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatalf("expected history to survive reopen")
	}
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	started := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.RecordRun(ctx, RunRecord{
			StartedAt: started.Add(time.Duration(i) * time.Hour),
			Total:     10 + i,
			Skipped:   1,
			Qualified: 4,
			Reported:  3,
			EmailSent: i == 2,
			Errors:    i,
			Duration:  90 * time.Second,
		})
		if err != nil {
			t.Fatalf("recording run %d: %v", i, err)
		}
	}

	runs, err := store.Runs(ctx, 2)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	// Newest first.
	if runs[0].Total != 12 || runs[1].Total != 11 {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if !runs[0].EmailSent {
		t.Fatalf("expected email flag on newest run")
	}
	if got := runs[0].StartedAt; !got.Equal(started.Add(2 * time.Hour)) {
		t.Fatalf("unexpected start time %v", got)
	}
	if runs[0].Duration != 90*time.Second {
		t.Fatalf("unexpected duration %v", runs[0].Duration)
	}
}

func TestCloseNil(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("expected nil close to be safe, got %v", err)
	}
}
