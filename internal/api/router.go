package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/campusconnect/server/internal/api/handlers"
	"github.com/campusconnect/server/internal/api/middleware"
	"github.com/campusconnect/server/internal/auth"
	"github.com/campusconnect/server/internal/config"
	"github.com/campusconnect/server/internal/domain/events"
	"github.com/campusconnect/server/internal/media"
	"github.com/campusconnect/server/internal/metrics"
	"github.com/campusconnect/server/internal/storage/postgres"
)

// NewRouter wires repositories, services, and handlers onto the route
// table and wraps everything in the shared middleware chain.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	eventsService := events.NewService(repo.Events())
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)

	var uploader media.Uploader
	if cfg.Cloudinary.Enabled() {
		cloudinaryUploader, err := media.NewCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			return nil, err
		}
		uploader = cloudinaryUploader
		eventsService.SetImageRemover(cloudinaryUploader)
	} else {
		logger.Warn().Msg("cloudinary not configured, image uploads disabled")
	}

	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	adminHandler := handlers.NewAdminEventsHandler(eventsService, cfg.Environment)
	uploadsHandler := handlers.NewUploadsHandler(uploader, cfg.Environment)

	requireUser := middleware.Authenticate(jwtManager, cfg.Environment)
	requireAdmin := func(next http.Handler) http.Handler {
		return requireUser(middleware.RequireAdmin(cfg.Environment)(next))
	}
	optionalAuth := middleware.OptionalAuth(jwtManager)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	publicTier := rateLimiter.Limit(middleware.TierPublic)
	userTier := rateLimiter.Limit(middleware.TierUser)
	adminTier := rateLimiter.Limit(middleware.TierAdmin)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", metrics.Handler())

	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet: publicTier(http.HandlerFunc(eventsHandler.List)),
	}))
	mux.Handle("/events/home", methodMux(map[string]http.Handler{
		http.MethodGet: publicTier(http.HandlerFunc(eventsHandler.Home)),
	}))
	mux.Handle("/events/search", methodMux(map[string]http.Handler{
		http.MethodGet: publicTier(http.HandlerFunc(eventsHandler.Search)),
	}))
	mux.Handle("/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: publicTier(optionalAuth(http.HandlerFunc(eventsHandler.Get))),
	}))

	mux.Handle("/events/request", methodMux(map[string]http.Handler{
		http.MethodPost: requireUser(userTier(middleware.PublicRequestSize()(http.HandlerFunc(eventsHandler.Create)))),
	}))
	mux.Handle("/events/upload", methodMux(map[string]http.Handler{
		http.MethodPost: requireUser(userTier(middleware.UploadRequestSize()(http.HandlerFunc(uploadsHandler.Upload)))),
	}))
	mux.Handle("/events/me", methodMux(map[string]http.Handler{
		http.MethodGet: requireUser(userTier(http.HandlerFunc(eventsHandler.MyEvents))),
	}))
	mux.Handle("/events/me/{id}", methodMux(map[string]http.Handler{
		http.MethodDelete: requireUser(userTier(http.HandlerFunc(eventsHandler.DeleteMine))),
	}))

	mux.Handle("/events/admin", methodMux(map[string]http.Handler{
		http.MethodGet: requireAdmin(adminTier(http.HandlerFunc(adminHandler.List))),
	}))
	mux.Handle("/events/admin/{id}/status", methodMux(map[string]http.Handler{
		http.MethodPatch: requireAdmin(adminTier(middleware.PublicRequestSize()(http.HandlerFunc(adminHandler.UpdateStatus)))),
	}))
	mux.Handle("/events/admin/{id}", methodMux(map[string]http.Handler{
		http.MethodDelete: requireAdmin(adminTier(http.HandlerFunc(adminHandler.Delete))),
	}))

	var handler http.Handler = metrics.HTTPMetrics(mux)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)

	return handler, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
