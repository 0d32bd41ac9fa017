package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sentimatrix/sentimatrix/internal/config"
	"github.com/sentimatrix/sentimatrix/internal/domain"
	"github.com/sentimatrix/sentimatrix/internal/realtime"
)

// defaultReceiver is used when a submission omits the receiver mailbox.
const defaultReceiver = "support@sentimatrix.io"

// Server is the HTTP server exposing the intake pipeline, the read-side
// query endpoints, and the live ticket stream.
type Server struct {
	cfg        *config.Config
	service    *domain.EmailService
	hub        *realtime.Hub
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server around the given pipeline service.
func NewServer(cfg *config.Config, service *domain.EmailService, hub *realtime.Hub, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		hub:     hub,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("GET /api/process/serious-tickets", s.handleSeriousTickets)
	mux.HandleFunc("GET /api/emails", s.handleListEmails)
	mux.HandleFunc("GET /api/emails/positive", s.handleCategory(domain.CategoryPositive))
	mux.HandleFunc("GET /api/emails/negative", s.handleCategory(domain.CategoryNegative))
	mux.HandleFunc("GET /api/emails/sender/{email}", s.handleBySender)
	mux.HandleFunc("GET /api/emails/sentiment/{period}", s.handleSentimentTrend)
	mux.HandleFunc("GET /api/emails/stats", s.handleStats)
	mux.HandleFunc("GET /ws", hub.ServeWS)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     withLogging(logger, mux),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the /ws stream stays open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// processEnvelope is the response body for the intake endpoint.
type processEnvelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    *processData `json:"data"`
}

type processData struct {
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	SenderEmail    string `json:"senderEmail"`
	SentimentScore int    `json:"sentimentScore"`
	Response       string `json:"response"`
}

type inboundPayload struct {
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	SenderEmail   string `json:"senderEmail"`
	ReceiverEmail string `json:"receiverEmail"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeInbound(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, processEnvelope{Status: "Error", Message: err.Error()})
		return
	}

	if payload.ReceiverEmail == "" {
		payload.ReceiverEmail = defaultReceiver
	}

	outcome, err := s.service.Process(r.Context(), domain.Inbound{
		Subject:       payload.Subject,
		Body:          payload.Body,
		SenderEmail:   payload.SenderEmail,
		ReceiverEmail: payload.ReceiverEmail,
		ReceivedAt:    time.Now().UTC(),
	})
	if err != nil {
		status, message := mapPipelineError(err)
		s.logger.Error("pipeline failed", "sender", payload.SenderEmail, "status", status, "error", err)
		writeJSON(w, status, processEnvelope{Status: "Error", Message: message})
		return
	}

	writeJSON(w, http.StatusOK, processEnvelope{
		Status:  "Success",
		Message: outcome.Classification.Response,
		Data: &processData{
			Subject:        outcome.Email.Subject,
			Body:           outcome.Email.Body,
			SenderEmail:    outcome.Email.SenderEmail,
			SentimentScore: outcome.Email.Score,
			Response:       outcome.Classification.Response,
		},
	})
}

func decodeInbound(r *http.Request) (*inboundPayload, error) {
	var payload inboundPayload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("invalid JSON body")
		}
		return &payload, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body")
	}
	payload.Subject = r.PostFormValue("subject")
	payload.Body = r.PostFormValue("body")
	payload.SenderEmail = r.PostFormValue("senderEmail")
	payload.ReceiverEmail = r.PostFormValue("receiverEmail")
	return &payload, nil
}

// mapPipelineError translates stage errors into caller-visible responses
// that name the failed stage without leaking internals.
func mapPipelineError(err error) (int, string) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Error()
	}

	var oracleErr *domain.OracleError
	if errors.As(err, &oracleErr) {
		return http.StatusInternalServerError, fmt.Sprintf("sentiment scoring failed (%s)", oracleErr.Kind)
	}

	var persistErr *domain.PersistenceError
	if errors.As(err, &persistErr) {
		return http.StatusInternalServerError, fmt.Sprintf("persistence failed (%s)", persistErr.Sink)
	}

	return http.StatusInternalServerError, "failed to process email"
}

func (s *Server) handleSeriousTickets(w http.ResponseWriter, r *http.Request) {
	emails, err := s.service.SeriousTickets(r.Context())
	if err != nil {
		s.logger.Error("failed to list serious tickets", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to retrieve tickets")
		return
	}
	writeJSON(w, http.StatusOK, toEmailResponses(emails))
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := s.service.Emails(r.Context())
	if err != nil {
		s.logger.Error("failed to list emails", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to retrieve emails")
		return
	}
	writeJSON(w, http.StatusOK, toEmailResponses(emails))
}

func (s *Server) handleCategory(category domain.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pagination(r)

		result, err := s.service.EmailsByCategory(r.Context(), category, page, pageSize)
		if err != nil {
			s.logger.Error("failed to list emails by category", "category", category, "error", err)
			writeError(w, http.StatusInternalServerError, "InternalError", "failed to retrieve emails")
			return
		}
		writeJSON(w, http.StatusOK, toPageResponse(result))
	}
}

func (s *Server) handleBySender(w http.ResponseWriter, r *http.Request) {
	sender := r.PathValue("email")
	page, pageSize := pagination(r)

	result, err := s.service.EmailsBySender(r.Context(), sender, page, pageSize)
	if err != nil {
		s.logger.Error("failed to list emails by sender", "sender", sender, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to retrieve emails")
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(result))
}

func (s *Server) handleSentimentTrend(w http.ResponseWriter, r *http.Request) {
	period := r.PathValue("period")

	points, err := s.service.SentimentTrend(r.Context(), period)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, "InvalidRequest", validationErr.Error())
			return
		}
		s.logger.Error("failed to compute sentiment trend", "period", period, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to retrieve trend")
		return
	}

	resp := make([]map[string]any, len(points))
	for i, p := range points {
		resp[i] = map[string]any{
			"period":       p.Period,
			"averageScore": p.AverageScore,
			"count":        p.Count,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to compute stats", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to retrieve stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalEmails":   stats.TotalEmails,
		"positiveCount": stats.PositiveCount,
		"negativeCount": stats.NegativeCount,
		"averageScore":  stats.AverageScore,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type emailResponse struct {
	ID             int64     `json:"id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SenderEmail    string    `json:"senderEmail"`
	ReceiverEmail  string    `json:"receiverEmail"`
	SentimentScore int       `json:"sentimentScore"`
	Category       string    `json:"category"`
	ReceivedAt     time.Time `json:"receivedAt"`
}

func toEmailResponses(emails []domain.Email) []emailResponse {
	result := make([]emailResponse, len(emails))
	for i, e := range emails {
		result[i] = emailResponse{
			ID:             e.ID,
			Subject:        e.Subject,
			Body:           e.Body,
			SenderEmail:    e.SenderEmail,
			ReceiverEmail:  e.ReceiverEmail,
			SentimentScore: e.Score,
			Category:       string(e.Category),
			ReceivedAt:     e.ReceivedAt,
		}
	}
	return result
}

func toPageResponse(page *domain.Page) map[string]any {
	return map[string]any{
		"data":       toEmailResponses(page.Emails),
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"totalCount": page.Total,
	}
}

func pagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 10
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			pageSize = parsed
		}
	}
	return page, pageSize
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack exposes the underlying connection so the websocket upgrade works
// through the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}
