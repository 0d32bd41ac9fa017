// Package groq talks to a Groq/OpenAI-compatible chat-completions endpoint
// and treats it as an opaque text-to-score oracle.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sentimatrix/sentimatrix/internal/config"
	"github.com/sentimatrix/sentimatrix/internal/domain"
)

// Scale bounds declared by the oracle. A completion outside this range is a
// contract violation, not a score.
const (
	ScaleMin = 1
	ScaleMax = 100
)

const systemPrompt = "You are a sentiment analyzer. Score the following email content on a scale of 1-100, where 1 is extremely positive and 100 is extremely negative. Respond with ONLY the numeric score."

// Client scores text through the configured chat-completions endpoint. The
// endpoint, model, and credential are fixed configuration, not per-call
// parameters. The client performs no retries.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ domain.SentimentScorer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GroqConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Model    string        `json:"model"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score sends the normalized text to the oracle and parses the first
// completion as an integer score. Every failure is reported as a
// *domain.OracleError with the matching kind.
func (c *Client) Score(ctx context.Context, text string) (int, error) {
	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Model: c.model,
	})
	if err != nil {
		return 0, &domain.OracleError{Kind: domain.OracleTransportFailure, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, &domain.OracleError{Kind: domain.OracleTransportFailure, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &domain.OracleError{Kind: domain.OracleTransportFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, &domain.OracleError{
			Kind: domain.OracleTransportFailure,
			Err:  fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload))),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, &domain.OracleError{Kind: domain.OracleMalformedResponse, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(parsed.Choices) == 0 {
		return 0, &domain.OracleError{Kind: domain.OracleMalformedResponse, Err: fmt.Errorf("response has no choices")}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return 0, &domain.OracleError{Kind: domain.OracleMalformedResponse, Err: fmt.Errorf("completion content is empty")}
	}

	score, err := strconv.Atoi(content)
	if err != nil {
		return 0, &domain.OracleError{Kind: domain.OracleUnparseableScore, Err: fmt.Errorf("completion %q is not an integer", content)}
	}

	if score < ScaleMin || score > ScaleMax {
		return 0, &domain.OracleError{Kind: domain.OracleUnparseableScore, Err: fmt.Errorf("score %d outside declared scale %d-%d", score, ScaleMin, ScaleMax)}
	}

	return score, nil
}
