package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/automabit/silowatch/internal/alerter"
	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/notifier"
	"github.com/automabit/silowatch/internal/types"
	"github.com/automabit/silowatch/internal/version"
	"github.com/automabit/silowatch/internal/webui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ConfigReloadFunc is called when config reload is requested
type ConfigReloadFunc func() (*config.Config, error)

// SiloManager adds and removes silos from the data source
type SiloManager interface {
	Create(name, product, location string) types.Silo
	Remove(id string) bool
}

// Server provides the HTTP API
type Server struct {
	engine     *alerter.Engine
	toasts     *notifier.ToastQueue
	logger     zerolog.Logger
	logBuffer  *webui.LogBuffer
	config     *config.Config
	startTime  time.Time
	reloadFunc ConfigReloadFunc
	reloadMu   sync.RWMutex
	silos      SiloManager
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(engine *alerter.Engine, toasts *notifier.ToastQueue, logger zerolog.Logger, port string) *Server {
	s := &Server{
		engine:    engine,
		toasts:    toasts,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetLogBuffer sets the log buffer served by /api/logs
func (s *Server) SetLogBuffer(lb *webui.LogBuffer) {
	s.logBuffer = lb
}

// SetConfig sets the current configuration
func (s *Server) SetConfig(cfg *config.Config) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	s.config = cfg
}

// SetReloadFunc sets the function to call when config reload is requested
func (s *Server) SetReloadFunc(fn ConfigReloadFunc) {
	s.reloadFunc = fn
}

// SetSiloManager enables silo creation and removal through the API
func (s *Server) SetSiloManager(m SiloManager) {
	s.silos = m
}

// Handler builds the request router
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/alerts", s.handleAlerts)
	mux.HandleFunc("/api/silos", s.handleSilos)
	mux.HandleFunc("/api/silos/", s.handleSiloDetail)
	mux.HandleFunc("/api/readings", s.handleReadings)
	mux.HandleFunc("/api/toasts", s.handleToasts)
	mux.HandleFunc("/api/toasts/", s.handleToastDetail)
	mux.HandleFunc("/api/logs", s.handleLogsAPI)
	mux.HandleFunc("/api/reload", s.handleReload)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start starts the HTTP server and blocks until it stops. It returns nil
// right away if Shutdown already ran.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.httpServer.Addr).
		Msg("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

// DashboardData holds data for the dashboard template
type DashboardData struct {
	Build    version.Info
	Uptime   string
	Cooldown string
	Silos    []types.SiloStatus
	Alerts   []types.Alert
	Toasts   []notifier.Toast
	Logs     []webui.LogEntry
}

// handleDashboard renders the HTML overview
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.reloadMu.RLock()
	cfg := s.config
	s.reloadMu.RUnlock()

	data := DashboardData{
		Build:  version.Get(),
		Uptime: formatDuration(time.Since(s.startTime)),
		Silos:  s.engine.Silos(),
		Alerts: s.engine.GetActiveAlerts(),
		Toasts: s.toasts.Active(),
	}
	if cfg != nil {
		data.Cooldown = cfg.Alerts.Cooldown.String()
	}
	if s.logBuffer != nil {
		data.Logs = s.logBuffer.GetRecentEntries(20, "")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webui.Templates.ExecuteTemplate(w, "dashboard", data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render dashboard")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleHealth returns service health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus returns current state summary
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.reloadMu.RLock()
	cfg := s.config
	s.reloadMu.RUnlock()

	status := map[string]interface{}{
		"active_alerts": len(s.engine.GetActiveAlerts()),
		"silo_count":    len(s.engine.Silos()),
		"toast_count":   len(s.toasts.Active()),
		"time":          time.Now().UTC().Format(time.RFC3339),
		"uptime":        formatDuration(time.Since(s.startTime)),
		"build":         version.Get(),
	}
	if cfg != nil {
		status["cooldown"] = cfg.Alerts.Cooldown.String()
		status["update_interval"] = cfg.Simulator.Interval.String()
	}

	s.writeJSON(w, http.StatusOK, status)
}

// handleAlerts returns the conditions present in the latest snapshot
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.engine.GetActiveAlerts()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// createSiloRequest is the body of POST /api/silos
type createSiloRequest struct {
	Name     string `json:"name"`
	Product  string `json:"product"`
	Location string `json:"location"`
}

// handleSilos lists silos (GET) or adds one to the data source (POST)
func (s *Server) handleSilos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		silos := s.engine.Silos()
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"silos": silos,
			"count": len(silos),
		})
	case http.MethodPost:
		if s.silos == nil {
			s.writeError(w, http.StatusNotImplemented, "silo management not available")
			return
		}
		var req createSiloRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			s.writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		silo := s.silos.Create(req.Name, req.Product, req.Location)
		s.logger.Info().
			Str("silo_id", silo.ID).
			Str("name", silo.Name).
			Msg("Silo created")
		s.writeJSON(w, http.StatusCreated, silo)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSiloDetail removes a silo from the data source
func (s *Server) handleSiloDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.silos == nil {
		s.writeError(w, http.StatusNotImplemented, "silo management not available")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/silos/")
	if id == "" || !s.silos.Remove(id) {
		s.writeError(w, http.StatusNotFound, "silo not found")
		return
	}

	s.logger.Info().Str("silo_id", id).Msg("Silo removed")
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleReadings accepts a full snapshot from an external data source
func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var snapshot []types.Silo
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid snapshot: %v", err))
		return
	}

	notifications := s.engine.ProcessSnapshot(snapshot)
	if notifications == nil {
		notifications = []types.Notification{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// handleToasts lists displayed toasts (GET) or clears them (DELETE)
func (s *Server) handleToasts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		toasts := s.toasts.Active()
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"toasts": toasts,
			"count":  len(toasts),
		})
	case http.MethodDelete:
		s.toasts.Clear()
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleToastDetail dismisses a single toast
func (s *Server) handleToastDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/toasts/")
	if !s.toasts.Dismiss(id) {
		s.writeError(w, http.StatusNotFound, "toast not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleLogsAPI returns recent log entries as JSON
func (s *Server) handleLogsAPI(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries := []webui.LogEntry{}
	if s.logBuffer != nil {
		entries = s.logBuffer.GetRecentEntries(limit, r.URL.Query().Get("level"))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleReload handles config reload requests
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.reloadFunc == nil {
		s.writeError(w, http.StatusNotImplemented, "Config reload not configured")
		return
	}

	s.logger.Info().Msg("Config reload requested via API")

	newCfg, err := s.reloadFunc()
	if err != nil {
		s.logger.Error().Err(err).Msg("Config reload failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.reloadMu.Lock()
	s.config = newCfg
	s.reloadMu.Unlock()

	s.logger.Info().
		Dur("cooldown", newCfg.Alerts.Cooldown).
		Msg("Config reloaded successfully")

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"cooldown": newCfg.Alerts.Cooldown.String(),
	})
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return d.Round(time.Second).String()
	}
	hours := int(d.Hours())
	if hours < 24 {
		return d.Round(time.Minute).String()
	}
	days := hours / 24
	hours = hours % 24
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd %dh", days, hours)
}
