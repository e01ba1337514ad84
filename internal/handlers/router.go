package handlers

import (
	"net/http"

	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
	"github.com/rs/cors"
)

// Router набор обработчиков, из которых собираются маршруты
type Router struct {
	Fare      *FareHandler
	Airports  *AirportHandler
	Cars      *CarHandler
	Extras    *ExtraChargeHandler
	SMS       *SMSNumberHandler
	Keys      *GoogleAPIKeyHandler
	Settings  *SettingsHandler
	Health    *HealthHandler
	RateLimit *RateLimitHandler
	Limiter   MiddlewareLimiter
}

// Routes собирает pat мультиплексор с цепочками middleware и оборачивает его в CORS
func (rt *Router) Routes(log *logger.Logger, corsCfg *config.CORSConfig) http.Handler {
	standard := alice.New(RecoverPanic(log), LogRequest(log), SecureHeaders)
	api := standard.Append(RateLimitMiddleware(rt.Limiter))

	mux := pat.New()

	mux.Get("/health", standard.ThenFunc(rt.Health.Health))
	mux.Get("/health/readiness", standard.ThenFunc(rt.Health.Readiness))
	mux.Get("/health/liveness", standard.ThenFunc(rt.Health.Liveness))

	mux.Post("/api/v1/fare-calculation", api.ThenFunc(rt.Fare.Calculate))

	mux.Get("/api/v1/airports", api.ThenFunc(rt.Airports.List))
	mux.Post("/api/v1/airports", api.ThenFunc(rt.Airports.Create))
	mux.Get("/api/v1/airports/:id", api.ThenFunc(rt.Airports.Get))
	mux.Put("/api/v1/airports/:id", api.ThenFunc(rt.Airports.Update))
	mux.Del("/api/v1/airports/:id", api.ThenFunc(rt.Airports.Delete))

	mux.Get("/api/v1/cars/:id/slabs", api.ThenFunc(rt.Cars.ListSlabs))
	mux.Put("/api/v1/cars/:id/slabs", api.ThenFunc(rt.Cars.ReplaceSlabs))
	mux.Get("/api/v1/cars", api.ThenFunc(rt.Cars.List))
	mux.Post("/api/v1/cars", api.ThenFunc(rt.Cars.Create))
	mux.Get("/api/v1/cars/:id", api.ThenFunc(rt.Cars.Get))
	mux.Put("/api/v1/cars/:id", api.ThenFunc(rt.Cars.Update))
	mux.Del("/api/v1/cars/:id", api.ThenFunc(rt.Cars.Delete))

	mux.Get("/api/v1/extra-charges", api.ThenFunc(rt.Extras.List))
	mux.Post("/api/v1/extra-charges", api.ThenFunc(rt.Extras.Create))
	mux.Get("/api/v1/extra-charges/:id", api.ThenFunc(rt.Extras.Get))
	mux.Put("/api/v1/extra-charges/:id", api.ThenFunc(rt.Extras.Update))
	mux.Del("/api/v1/extra-charges/:id", api.ThenFunc(rt.Extras.Delete))

	mux.Get("/api/v1/sms-numbers", api.ThenFunc(rt.SMS.List))
	mux.Post("/api/v1/sms-numbers", api.ThenFunc(rt.SMS.Create))
	mux.Get("/api/v1/sms-numbers/:id", api.ThenFunc(rt.SMS.Get))
	mux.Put("/api/v1/sms-numbers/:id", api.ThenFunc(rt.SMS.Update))
	mux.Del("/api/v1/sms-numbers/:id", api.ThenFunc(rt.SMS.Delete))

	mux.Get("/api/v1/google-api-keys", api.ThenFunc(rt.Keys.List))
	mux.Post("/api/v1/google-api-keys", api.ThenFunc(rt.Keys.Create))
	mux.Get("/api/v1/google-api-keys/:id", api.ThenFunc(rt.Keys.Get))
	mux.Put("/api/v1/google-api-keys/:id", api.ThenFunc(rt.Keys.Update))
	mux.Del("/api/v1/google-api-keys/:id", api.ThenFunc(rt.Keys.Delete))

	mux.Get("/api/v1/common-settings", api.ThenFunc(rt.Settings.Get))
	mux.Put("/api/v1/common-settings", api.ThenFunc(rt.Settings.Upsert))

	mux.Get("/api/v1/rate-limit/status", api.ThenFunc(rt.RateLimit.Status))

	origins := []string{"*"}
	if corsCfg != nil && len(corsCfg.AllowedOrigins) > 0 {
		origins = corsCfg.AllowedOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return c.Handler(mux)
}
