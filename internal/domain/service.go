package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sentimatrix/sentimatrix/internal/normalize"
)

// EmailServiceDeps wires the driven adapters into the pipeline service.
type EmailServiceDeps struct {
	Scorer      SentimentScorer
	Repository  EmailRepository
	BackupLog   BackupLog
	Broadcaster TicketBroadcaster
	Classifier  Classifier
	Logger      *slog.Logger
}

// EmailService owns the intake pipeline: it normalizes an inbound message,
// scores it through the oracle, classifies the score, persists the result
// to both sinks, and fans urgent tickets out to live subscribers. It also
// serves the read-side queries over persisted records.
type EmailService struct {
	scorer      SentimentScorer
	repo        EmailRepository
	backup      BackupLog
	broadcaster TicketBroadcaster
	classifier  Classifier
	logger      *slog.Logger
}

// NewEmailService validates and wires the dependencies.
func NewEmailService(deps EmailServiceDeps) (*EmailService, error) {
	if deps.Scorer == nil {
		return nil, fmt.Errorf("sentiment scorer is required")
	}
	if deps.Repository == nil {
		return nil, fmt.Errorf("email repository is required")
	}
	if deps.BackupLog == nil {
		return nil, fmt.Errorf("backup log is required")
	}
	if deps.Broadcaster == nil {
		return nil, fmt.Errorf("broadcaster is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &EmailService{
		scorer:      deps.Scorer,
		repo:        deps.Repository,
		backup:      deps.BackupLog,
		broadcaster: deps.Broadcaster,
		classifier:  deps.Classifier,
		logger:      deps.Logger,
	}, nil
}

// Process runs one pipeline invocation. Stages execute strictly in order;
// an oracle or primary-store failure aborts the invocation, while a
// backup-log or broadcast failure is recorded but does not. Two identical
// submissions produce two distinct records; no deduplication happens here.
func (s *EmailService) Process(ctx context.Context, in Inbound) (*Outcome, error) {
	body := normalize.Text(in.Body)
	if body == "" {
		return nil, &ValidationError{Field: "body", Reason: "empty after normalization"}
	}

	score, err := s.scorer.Score(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("score message: %w", err)
	}

	classification := s.classifier.Classify(score)

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	email := &Email{
		Subject:       in.Subject,
		Body:          body,
		Score:         score,
		SenderEmail:   in.SenderEmail,
		ReceiverEmail: in.ReceiverEmail,
		Category:      classification.Category,
		ReceivedAt:    receivedAt,
	}

	if err := s.repo.CreateEmail(ctx, email); err != nil {
		return nil, &PersistenceError{Sink: SinkPrimaryStore, Err: err}
	}

	processed := ProcessedEmail{
		Subject:        email.Subject,
		Body:           email.Body,
		SenderEmail:    email.SenderEmail,
		SentimentScore: email.Score,
		Response:       classification.Response,
		ProcessedAt:    receivedAt,
	}

	// The primary store is authoritative; a backup-log failure is reported
	// but does not abort the invocation.
	if err := s.backup.Append(ctx, classification.Category, processed); err != nil {
		s.logger.Error("backup log append failed",
			"sink", SinkBackupLog,
			"category", classification.Category,
			"error", err,
		)
	}

	if classification.Category == CategoryNegative {
		s.broadcaster.Publish(processed)
	}

	s.logger.Info("email processed",
		"id", email.ID,
		"sender", email.SenderEmail,
		"score", email.Score,
		"category", email.Category,
	)

	return &Outcome{Email: email, Classification: classification}, nil
}

// SeriousTickets returns all negative records, most recent first.
func (s *EmailService) SeriousTickets(ctx context.Context) ([]Email, error) {
	emails, _, err := s.repo.ListByCategory(ctx, CategoryNegative, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list serious tickets: %w", err)
	}
	return emails, nil
}

// Emails returns all records, most recent first.
func (s *EmailService) Emails(ctx context.Context) ([]Email, error) {
	emails, err := s.repo.ListEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return emails, nil
}

// Page is one page of records plus pagination metadata.
type Page struct {
	Emails   []Email
	Page     int
	PageSize int
	Total    int64
}

// EmailsByCategory returns one page of a category's records.
func (s *EmailService) EmailsByCategory(ctx context.Context, category Category, page, pageSize int) (*Page, error) {
	page, pageSize = clampPage(page, pageSize)

	emails, total, err := s.repo.ListByCategory(ctx, category, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list %s emails: %w", category, err)
	}
	return &Page{Emails: emails, Page: page, PageSize: pageSize, Total: total}, nil
}

// EmailsBySender returns one page of a sender's records.
func (s *EmailService) EmailsBySender(ctx context.Context, sender string, page, pageSize int) (*Page, error) {
	page, pageSize = clampPage(page, pageSize)

	emails, total, err := s.repo.ListBySender(ctx, sender, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list emails by sender: %w", err)
	}
	return &Page{Emails: emails, Page: page, PageSize: pageSize, Total: total}, nil
}

// SentimentTrend returns per-day aggregates for the given lookback period
// (1D, 5D, 1W, or 1M).
func (s *EmailService) SentimentTrend(ctx context.Context, period string) ([]SentimentPoint, error) {
	since, err := periodStart(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	points, err := s.repo.SentimentTrend(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("sentiment trend: %w", err)
	}
	return points, nil
}

// Stats returns the headline dashboard counters.
func (s *EmailService) Stats(ctx context.Context) (DashboardStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func periodStart(period string, now time.Time) (time.Time, error) {
	switch strings.ToUpper(strings.TrimSpace(period)) {
	case "1D":
		return now.AddDate(0, 0, -1), nil
	case "5D":
		return now.AddDate(0, 0, -5), nil
	case "1W":
		return now.AddDate(0, 0, -7), nil
	case "1M":
		return now.AddDate(0, -1, 0), nil
	default:
		return time.Time{}, &ValidationError{Field: "period", Reason: "must be one of 1D, 5D, 1W, 1M"}
	}
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
