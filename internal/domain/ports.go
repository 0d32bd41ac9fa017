package domain

import (
	"context"
	"time"
)

// SentimentScorer scores normalized text via the external oracle.
type SentimentScorer interface {
	// Score returns an integer on the oracle's declared scale. Failures
	// are reported as *OracleError.
	Score(ctx context.Context, text string) (int, error)
}

// EmailRepository defines the primary structured store for classified emails.
type EmailRepository interface {
	// CreateEmail inserts a new record and fills in the assigned ID.
	CreateEmail(ctx context.Context, email *Email) error

	// ListEmails returns all records, most recent first.
	ListEmails(ctx context.Context) ([]Email, error)

	// ListByCategory returns a page of records for one category, most
	// recent first, plus the total count for that category. A limit of 0
	// or less returns all matching records.
	ListByCategory(ctx context.Context, category Category, limit, offset int) ([]Email, int64, error)

	// ListBySender returns a page of records for one sender, most recent
	// first, plus the total count for that sender.
	ListBySender(ctx context.Context, sender string, limit, offset int) ([]Email, int64, error)

	// SentimentTrend returns per-day score aggregates for records received
	// at or after since, oldest day first.
	SentimentTrend(ctx context.Context, since time.Time) ([]SentimentPoint, error)

	// Stats returns the headline dashboard counters.
	Stats(ctx context.Context) (DashboardStats, error)
}

// BackupLog appends classified records to the category-partitioned flat logs.
type BackupLog interface {
	Append(ctx context.Context, category Category, entry ProcessedEmail) error
}

// TicketBroadcaster fans an urgent ticket out to currently connected
// subscribers. Delivery is best-effort and collects no acknowledgements.
type TicketBroadcaster interface {
	Publish(ticket ProcessedEmail)
}
