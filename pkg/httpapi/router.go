package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/ratelimiter"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions selects what Router mounts. Nil entries are skipped.
type RouterOptions struct {
	Auth      Mountable
	Liveness  http.Handler
	Readiness http.Handler
	Logger    *slog.Logger
	Timeout   time.Duration

	// ClientLimiter, when set, limits /auth requests per ClientKey.
	// ClientKey defaults to the remote address.
	ClientLimiter ratelimiter.RateLimiter
	ClientKey     ratelimiter.KeyFunc
}

// Router assembles the service: request ids, panic recovery, access logs,
// /auth routes and health probes.
//
//	r := httpapi.Router(httpapi.RouterOptions{
//	    Auth:   httpapi.NewHandler(authSvc, httpapi.WithLogger(log)),
//	    Logger: log,
//	})
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(log))
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	if opts.Liveness != nil {
		r.Method(http.MethodGet, "/healthz", opts.Liveness)
	}
	if opts.Readiness != nil {
		r.Method(http.MethodGet, "/readyz", opts.Readiness)
	}
	if opts.Auth != nil {
		sub := r.With()
		if opts.ClientLimiter != nil {
			key := opts.ClientKey
			if key == nil {
				key = ratelimiter.ClientIP(false)
			}
			sub = r.With(RateLimit(opts.ClientLimiter, ratelimiter.Composite(ratelimiter.Prefix("auth"), key), log))
		}
		sub.Mount("/auth", opts.Auth.Handle())
	}

	return r
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
