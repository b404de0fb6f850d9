package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"btcprice-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const requestIDKey contextKey = "request_id"
const traceIDKey contextKey = "trace_id"

type RouterConfig struct {
	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration
	// HideErrors keeps panic details out of 500 responses.
	HideErrors bool
}

func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID())
	r.Use(traceID())
	r.Use(recoverer(cfg.HideErrors))
	r.Use(accessLog())
	r.Use(securityHeaders())
	r.Use(corsHandler(cfg.CORSOrigin))
	if cfg.RateLimitMax > 0 && cfg.RateLimitWindow > 0 {
		r.Use(newRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow).middleware)
	}

	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Get("/version", s.Version)

	r.Route("/api/bitcoin", func(r chi.Router) {
		r.Get("/price", s.GetPrice)
		r.Get("/history", s.GetHistory)
		r.Post("/record", s.RecordPrice)
		r.Get("/stats", s.GetStats)
	})

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

func requestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)
			ctx := context.WithValue(r.Context(), requestIDKey, rid)
			ctx = logx.WithFields(ctx, zap.String("request_id", rid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func traceID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := r.Header.Get("X-Trace-Id")
			if tid == "" {
				tid = uuid.NewString()
			}
			w.Header().Set("X-Trace-Id", tid)
			ctx := context.WithValue(r.Context(), traceIDKey, tid)
			ctx = logx.WithFields(ctx, zap.String("trace_id", tid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func recoverer(hideErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logx.FromContext(r.Context()).Error("panic recovered", zap.Any("error", rec))
					msg := "Internal server error"
					if !hideErrors {
						msg = fmt.Sprint(rec)
					}
					writeError(w, http.StatusInternalServerError, msg)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func accessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(sr, r)
			logx.FromContext(r.Context()).Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sr.status),
				zap.Int("bytes", sr.bytes),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data:"

func securityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("X-DNS-Prefetch-Control", "off")
			next.ServeHTTP(w, r)
		})
	}
}

// corsHandler answers preflight requests itself; the router never sees them.
func corsHandler(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
}
