package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"btcprice-service/internal/application"
	"btcprice-service/internal/domain"
	"btcprice-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

const idempotencyHeader = "X-Idempotency-Key"

type BuildInfo struct {
	Version     string
	Environment string
}

type Server struct {
	svc     *application.BitcoinService
	ping    func(ctx context.Context) error
	info    BuildInfo
	started time.Time
}

func NewServer(svc *application.BitcoinService, info BuildInfo) *Server {
	return &Server{svc: svc, info: info, started: time.Now()}
}

// SetReadyCheck installs the dependency probe used by /health and /ready.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type recordResponse struct {
	Recorded     bool                 `json:"recorded"`
	Data         domain.PriceRecord   `json:"data"`
	CurrentPrice domain.PriceSnapshot `json:"current_price"`
}

type upstreamErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(domain.LastUpdatedLayout)
	if s.ping == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": now,
			"uptime":    time.Since(s.started).Seconds(),
			"database":  "not configured",
		})
		return
	}
	if err := s.ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"timestamp": now,
			"database":  "disconnected",
			"error":     err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": now,
		"uptime":    time.Since(s.started).Seconds(),
		"database":  "connected",
	})
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false, "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":     s.info.Version,
		"environment": s.info.Environment,
		"go":          runtime.Version(),
	})
}

func (s *Server) GetPrice(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.CurrentPrice(r.Context())
	if err != nil {
		upstreamUnavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.svc.History(r.Context(), limit)
	if err != nil {
		logx.FromContext(r.Context()).Error("price_history_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch price history")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) RecordPrice(w http.ResponseWriter, r *http.Request) {
	var idem *string
	if v := r.Header.Get(idempotencyHeader); v != "" {
		idem = &v
	}
	res, err := s.svc.RecordPrice(r.Context(), idem)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrConflict):
		writeError(w, http.StatusConflict, "Duplicate request")
		return
	case errors.Is(err, domain.ErrUpstream):
		upstreamUnavailable(w, r, err)
		return
	default:
		logx.FromContext(r.Context()).Error("price_record_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to record price")
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{
		Recorded:     true,
		Data:         res.Record,
		CurrentPrice: res.Current,
	})
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats(r.Context())
	if err != nil {
		logx.FromContext(r.Context()).Error("price_stats_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func upstreamUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	logx.FromContext(r.Context()).Warn("bitcoin_price_unavailable", zap.Error(err))
	writeJSON(w, http.StatusServiceUnavailable, upstreamErrorResponse{
		Error:   "Unable to fetch Bitcoin price",
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
