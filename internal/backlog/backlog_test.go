package backlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sentimatrix/sentimatrix/internal/domain"
)

func entry(sender string, score int) domain.ProcessedEmail {
	return domain.ProcessedEmail{
		Subject:        "Order #1234",
		Body:           "body text",
		SenderEmail:    sender,
		SentimentScore: score,
		Response:       "canned response",
		ProcessedAt:    time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestAppendCreatesLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Append(context.Background(), domain.CategoryPositive, entry("a@example.com", 20)); err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "positive_emails.json")); err != nil {
		t.Fatalf("positive log file missing: %v", err)
	}

	entries, err := store.Entries(domain.CategoryPositive)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].SenderEmail != "a@example.com" || entries[0].SentimentScore != 20 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestAppendPartitionsByCategory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	if err := store.Append(ctx, domain.CategoryNegative, entry("angry@example.com", 85)); err != nil {
		t.Fatalf("append negative: %v", err)
	}
	if err := store.Append(ctx, domain.CategoryPositive, entry("happy@example.com", 20)); err != nil {
		t.Fatalf("append positive: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "serious_emails.json")); err != nil {
		t.Fatalf("serious log file missing: %v", err)
	}

	negative, err := store.Entries(domain.CategoryNegative)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(negative) != 1 || negative[0].SenderEmail != "angry@example.com" {
		t.Fatalf("unexpected negative entries: %+v", negative)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := entry(fmt.Sprintf("sender%d@example.com", i), 80+i)
		if err := store.Append(ctx, domain.CategoryNegative, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := store.Entries(domain.CategoryNegative)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.SentimentScore != 80+i {
			t.Fatalf("entry %d out of order: %+v", i, e)
		}
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Append(ctx, domain.CategoryNegative, entry(fmt.Sprintf("s%d@example.com", i), 90))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Entries(domain.CategoryNegative)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != n {
		t.Fatalf("expected %d entries, got %d (lost updates)", n, len(entries))
	}
}

func TestAppendUnknownCategory(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if err := store.Append(context.Background(), domain.Category("neutral"), entry("x@example.com", 50)); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestEntriesMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	entries, err := store.Entries(domain.CategoryPositive)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty log, got %d entries", len(entries))
	}
}
