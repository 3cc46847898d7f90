package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/ws"
)

func SetupRoutes(lb *lobby.Lobby, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	h := &handlers{lobby: lb, log: log}

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(lb, log))

	r.Route("/draft", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/", h.start)
		r.Delete("/", h.reset)
		r.Post("/bans", h.ban)
		r.Post("/ordering", h.publish)
		r.Post("/artifacts", h.rewrite)
		r.Get("/artifacts/config", h.configFile)
		r.Get("/artifacts/splits", h.splitsFile)
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
