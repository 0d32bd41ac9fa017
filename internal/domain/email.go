package domain

import "time"

// Category is the sentiment bucket assigned to a processed email.
type Category string

const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
)

// Inbound is a raw email submission as it arrives at the system boundary.
// It is consumed by a single pipeline invocation and never persisted as-is.
type Inbound struct {
	// Subject is the raw subject line. Optional.
	Subject string

	// Body is the raw body, possibly carrying HTML markup.
	Body string

	// SenderEmail identifies the sender.
	SenderEmail string

	// ReceiverEmail identifies the receiving mailbox.
	ReceiverEmail string

	// ReceivedAt is when the submission arrived.
	ReceivedAt time.Time
}

// Email is a classified record persisted in the primary store.
type Email struct {
	// ID is assigned by the store on insert.
	ID int64

	Subject string

	// Body is the normalized plain-text body.
	Body string

	// Score is the oracle's sentiment score (1-100, higher is more negative).
	Score int

	SenderEmail   string
	ReceiverEmail string

	Category Category

	ReceivedAt time.Time
}

// Classification is the outcome of the threshold split for one score.
type Classification struct {
	Category Category

	// Response is the canned reply text matching the category.
	Response string
}

// ProcessedEmail is the legacy-compatible shape written to the backup logs
// and pushed to live subscribers for urgent tickets.
type ProcessedEmail struct {
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SenderEmail    string    `json:"senderEmail"`
	SentimentScore int       `json:"sentimentScore"`
	Response       string    `json:"response"`
	ProcessedAt    time.Time `json:"processedAt"`
}

// Outcome is the synchronous result of one pipeline invocation.
type Outcome struct {
	Email          *Email
	Classification Classification
}

// SentimentPoint is one day's aggregate in a sentiment trend.
type SentimentPoint struct {
	Period       string
	AverageScore float64
	Count        int64
}

// DashboardStats are the headline counters for the dashboard.
type DashboardStats struct {
	TotalEmails   int64
	PositiveCount int64
	NegativeCount int64
	AverageScore  float64
}
