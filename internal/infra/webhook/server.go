package webhook

import (
	"encoding/json"
	"net/http"

	"appointment_notifier/internal/observability/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server receives asynchronous delivery/read receipts from the message
// provider. Receipts are logged and counted only; the classification
// core never consults them for correctness decisions.
type Server struct {
	router      chi.Router
	verifyToken string
	metrics     *metrics.Metrics
	log         *logrus.Entry
}

func NewServer(verifyToken string, m *metrics.Metrics, log *logrus.Entry) *Server {
	s := &Server{
		verifyToken: verifyToken,
		metrics:     m,
		log:         log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/webhook", s.handleChallenge)
	r.Post("/webhook", s.handleReceive)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleChallenge answers the provider's endpoint-ownership check
// (hub.verify_token / hub.challenge, WhatsApp Cloud style).
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if s.verifyToken == "" || token != s.verifyToken {
		s.log.Warn("webhook challenge with invalid verify token")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	s.log.Info("webhook challenge verified")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.metrics.ObserveWebhookEvent("malformed")
		s.log.WithError(err).Warn("malformed webhook payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
		return
	}

	kind := eventKind(payload)
	s.metrics.ObserveWebhookEvent(kind)
	s.log.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"kind":       kind,
	}).Info("webhook event received")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// eventKind pulls a coarse event label out of a provider payload, best
// effort across provider dialects.
func eventKind(payload map[string]any) string {
	for _, field := range []string{"event", "type", "status"} {
		if v, ok := payload[field].(string); ok && v != "" {
			return v
		}
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
