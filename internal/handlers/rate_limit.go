package handlers

import (
	"net/http"
	"strconv"
	"time"

	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/services"
)

// RateLimitHandler отдаёт состояние лимита клиента.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
	cfg     *config.RateLimitConfig
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
	}
}

// Status GET /api/v1/rate-limit/status
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.limiter == nil || h.cfg == nil || !h.limiter.Enabled() {
		writeSuccess(w, http.StatusOK, "", map[string]interface{}{"enabled": false})
		return
	}

	key := services.ExtractClientIP(r)
	usage, err := h.limiter.Usage(r.Context(), key)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to fetch rate limit usage")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]interface{}{
		"enabled":        true,
		"limit":          usage.Limit,
		"window_seconds": h.cfg.WindowSeconds,
		"used":           usage.Used,
		"remaining":      usage.Remaining,
		"reset_at":       usage.ResetAt.UTC().Format(time.RFC3339),
		"key":            key,
	})
}

// RateLimitMiddleware ограничивает частоту запросов по IP клиента (alice.Constructor).
func RateLimitMiddleware(limiter MiddlewareLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !limiter.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			d := limiter.Allow(r.Context(), services.ExtractClientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			if !d.ResetAt.IsZero() {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			}

			if !d.Allowed {
				if retry := time.Until(d.ResetAt); retry > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				}
				writeErrorResponse(w, http.StatusTooManyRequests, "Too many requests.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
