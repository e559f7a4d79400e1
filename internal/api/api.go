// internal/api/api.go
// Provides the HTTP surface: websocket feed, health, metrics and contest lookups.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/hub"
	"github.com/erilali/spamcontest/internal/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	version         = "1.0.0"
	contestsPath    = "/api/contests"
	shutdownTimeout = 5 * time.Second
)

var journalStreams = []string{hub.StreamContests, hub.StreamMessages, hub.StreamResults}

// ConnectJetStream connects to NATS and prepares the journal streams. Failures are logged and
// reported as nil handles so the bot keeps running without a journal.
func ConnectJetStream(natsURL string, retention time.Duration, serverLogger *logger.Logger) (*nats.Conn, nats.JetStreamContext) {
	serverLogger.Infof("Connecting to NATS at %s", natsURL)
	nc, err := nats.Connect(natsURL, nats.Name("spamcontest"))
	if err != nil {
		serverLogger.Errorf("Error connecting to NATS: %v", err)
		serverLogger.Warn("Running without NATS connection. Contest journal will be disabled.")
		return nil, nil
	}
	serverLogger.Info("Successfully connected to NATS")

	js, err := nc.JetStream()
	if err != nil {
		serverLogger.Errorf("Error getting JetStream context: %v", err)
		serverLogger.Warn("Running without JetStream. Contest journal will be disabled.")
		return nc, nil
	}
	if err := hub.EnsureStreams(js, retention, serverLogger); err != nil {
		serverLogger.Errorf("Error preparing streams: %v", err)
		serverLogger.Warn("Running without JetStream. Contest journal will be disabled.")
		return nc, nil
	}
	serverLogger.Info("Successfully connected to JetStream")
	return nc, js
}

// Server serves the observer endpoints.
type Server struct {
	Addr     string
	Hub      *hub.Hub
	Registry *contest.Registry
	Gatherer prometheus.Gatherer
	NatsConn *nats.Conn
	Js       nats.JetStreamContext
	Logger   *logger.Logger
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.Hub.ServeWs)
	mux.HandleFunc("/health", s.health)
	mux.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc(contestsPath, s.activeContests)
	mux.HandleFunc(contestsPath+"/", s.contestResult)
	return mux
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("Server started at %s", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	s.Logger.Info("Server stopped")
	return nil
}

func (s *Server) activeContests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	active := s.Registry.Active()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contests":  active,
		"count":     len(active),
		"timestamp": time.Now(),
	})
}

func (s *Server) contestResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	contestID := strings.TrimPrefix(r.URL.Path, contestsPath+"/")
	if contestID == "" || strings.Contains(contestID, "/") {
		http.Error(w, "Contest ID required", http.StatusBadRequest)
		return
	}
	// contest ids are UUIDs; anything else could act as a subject wildcard
	if _, err := uuid.Parse(contestID); err != nil {
		http.Error(w, "Contest not found", http.StatusNotFound)
		return
	}
	if s.Js == nil {
		http.Error(w, "JetStream not available", http.StatusServiceUnavailable)
		return
	}
	record, err := hub.FetchResult(s.Js, contestID)
	if errors.Is(err, hub.ErrResultNotFound) {
		http.Error(w, "Contest not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.Logger.Errorf("Error fetching contest %s: %v", contestID, err)
		http.Error(w, "Error retrieving contest", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	natsStatus := "disconnected"
	if s.NatsConn != nil && s.NatsConn.Status() == nats.CONNECTED {
		natsStatus = "connected"
	}
	health := map[string]interface{}{
		"status":          "ok",
		"nats":            natsStatus,
		"version":         version,
		"active_contests": len(s.Registry.Active()),
		"observers":       s.Hub.ClientCount(),
	}
	if s.Js != nil {
		streamInfo := make(map[string]interface{})
		for _, streamName := range journalStreams {
			info, err := s.Js.StreamInfo(streamName)
			if err != nil {
				streamInfo[streamName] = map[string]interface{}{"error": err.Error()}
				continue
			}
			streamInfo[streamName] = map[string]interface{}{
				"messages":  info.State.Msgs,
				"bytes":     info.State.Bytes,
				"subjects":  info.Config.Subjects,
				"retention": fmt.Sprintf("%v", info.Config.MaxAge),
			}
		}
		health["jetstream"] = map[string]interface{}{"streams": streamInfo}
	}
	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
