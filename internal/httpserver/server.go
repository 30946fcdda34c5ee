package httpserver

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/heartbeatai/heartbeat/internal/config"
	"github.com/heartbeatai/heartbeat/internal/interaction"
	"github.com/heartbeatai/heartbeat/internal/models"
	"github.com/heartbeatai/heartbeat/internal/notify"
	"github.com/heartbeatai/heartbeat/internal/relay"
	"github.com/heartbeatai/heartbeat/internal/slackapi"
)

type Server struct {
	cfg    config.Config
	notify *notify.Service
	router *interaction.Router
	relay  *relay.Client
}

func New(cfg config.Config, svc *notify.Service, router *interaction.Router, relayClient *relay.Client) *Server {
	return &Server{cfg: cfg, notify: svc, router: router, relay: relayClient}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowed)
		r.Route("/heartbeat-direct", func(r chi.Router) {
			r.Use(corsFor(s.cfg.AllowedOrigin))
			r.MethodNotAllowed(methodNotAllowed)
			r.Post("/", s.handleHeartbeat)
		})
		r.Route("/forward-to-zapier", func(r chi.Router) {
			r.Use(corsFor("*"))
			r.MethodNotAllowed(methodNotAllowed)
			r.Post("/", s.handleForward)
		})
		r.Post("/slack-interaction", s.handleInteraction)
	})

	return r
}

// corsFor builds the permissive preflight policy every browser-facing
// endpoint shares, scoped to one allowed origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Only POST allowed")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC(),
	})
}

// handleHeartbeat is the report intake: normalize, classify, narrate,
// render the chart, and run the two-phase post.
func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var in models.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := in.Normalize()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.notify.SendReport(r.Context(), report)
	if err != nil {
		log.Printf("[httpserver] heartbeat send failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Slack forwarding failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "sent",
		"channel": result.Channel,
		"ts":      result.TS,
	})
}

// handleInteraction receives the form-encoded interaction envelope the chat
// platform posts on every control event.
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	payload, err := slackapi.ParseInteraction(r.PostFormValue("payload"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	resp, err := s.router.HandleEvent(r.Context(), payload)
	if err != nil {
		log.Printf("[httpserver] interaction failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if resp == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleForward is the raw passthrough to the automation relay.
func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := s.relay.Forward(r.Context(), body); err != nil {
		log.Printf("[httpserver] relay forward failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Error forwarding to Zapier")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully forwarded to Zapier"})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
