package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sentimatrix/sentimatrix/internal/domain"
	_ "github.com/lib/pq"
)

// Repository implements domain.EmailRepository using PostgreSQL. It is the
// authoritative store for classified emails.
type Repository struct {
	db *sql.DB
}

var _ domain.EmailRepository = (*Repository)(nil)

// NewRepository connects to PostgreSQL at the given URL, verifies the
// connection, and returns a new Repository. The caller should call Close
// when the repository is no longer needed.
func NewRepository(databaseURL string) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

const emailColumns = `id, subject, body, score, sender_email, receiver_email, category, received_at`

// CreateEmail inserts a new record and fills in the store-assigned ID.
func (r *Repository) CreateEmail(ctx context.Context, email *domain.Email) error {
	query := `
		INSERT INTO emails (subject, body, score, sender_email, receiver_email, category, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		email.Subject,
		email.Body,
		email.Score,
		email.SenderEmail,
		email.ReceiverEmail,
		string(email.Category),
		email.ReceivedAt,
	).Scan(&email.ID)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

// ListEmails returns all records, most recent first.
func (r *Repository) ListEmails(ctx context.Context) ([]domain.Email, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+emailColumns+`
		FROM emails
		ORDER BY received_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

// ListByCategory returns a page of one category's records, most recent
// first, plus the total count for that category. A limit of 0 or less
// returns all matching records.
func (r *Repository) ListByCategory(ctx context.Context, category domain.Category, limit, offset int) ([]domain.Email, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emails WHERE category = $1`, string(category),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count emails by category: %w", err)
	}

	query := `
		SELECT ` + emailColumns + `
		FROM emails
		WHERE category = $1
		ORDER BY received_at DESC, id DESC`
	args := []any{string(category)}

	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query emails by category: %w", err)
	}
	defer rows.Close()

	emails, err := scanEmails(rows)
	if err != nil {
		return nil, 0, err
	}
	return emails, total, nil
}

// ListBySender returns a page of one sender's records, most recent first,
// plus the total count for that sender.
func (r *Repository) ListBySender(ctx context.Context, sender string, limit, offset int) ([]domain.Email, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emails WHERE sender_email = $1`, sender,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count emails by sender: %w", err)
	}

	query := `
		SELECT ` + emailColumns + `
		FROM emails
		WHERE sender_email = $1
		ORDER BY received_at DESC, id DESC`
	args := []any{sender}

	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query emails by sender: %w", err)
	}
	defer rows.Close()

	emails, err := scanEmails(rows)
	if err != nil {
		return nil, 0, err
	}
	return emails, total, nil
}

// SentimentTrend returns per-day score aggregates for records received at
// or after since, oldest day first.
func (r *Repository) SentimentTrend(ctx context.Context, since time.Time) ([]domain.SentimentPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT received_at::date AS day, AVG(score), COUNT(*)
		FROM emails
		WHERE received_at >= $1
		GROUP BY day
		ORDER BY day ASC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query sentiment trend: %w", err)
	}
	defer rows.Close()

	var points []domain.SentimentPoint
	for rows.Next() {
		var (
			day time.Time
			p   domain.SentimentPoint
		)
		if err := rows.Scan(&day, &p.AverageScore, &p.Count); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		p.Period = day.Format("2006-01-02")
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend points: %w", err)
	}

	return points, nil
}

// Stats returns the headline dashboard counters.
func (r *Repository) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE category = $1),
		       COUNT(*) FILTER (WHERE category = $2),
		       COALESCE(AVG(score), 0)
		FROM emails`,
		string(domain.CategoryPositive),
		string(domain.CategoryNegative),
	).Scan(&stats.TotalEmails, &stats.PositiveCount, &stats.NegativeCount, &stats.AverageScore)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("query stats: %w", err)
	}
	return stats, nil
}

func scanEmails(rows *sql.Rows) ([]domain.Email, error) {
	var emails []domain.Email
	for rows.Next() {
		var (
			e        domain.Email
			category string
		)
		err := rows.Scan(
			&e.ID,
			&e.Subject,
			&e.Body,
			&e.Score,
			&e.SenderEmail,
			&e.ReceiverEmail,
			&category,
			&e.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		e.Category = domain.Category(category)
		emails = append(emails, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emails: %w", err)
	}

	return emails, nil
}
