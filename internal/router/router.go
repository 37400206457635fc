package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"aula-backend/internal/handlers"
	"aula-backend/internal/middleware"
	"aula-backend/internal/remote"
	"aula-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	linkHandler *handlers.LinkHandler,
	recordingHandler *handlers.RecordingHandler,
	collabClient remote.Client,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Endpoints that call out to the conferencing provider get a per-IP cap
	// (30 req/min) so a misbehaving client cannot drain the provider quota.
	providerLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check. The provider configuration check runs fresh per probe (a
	// verifier caches for one unit of work only), so a provider that recovers
	// shows up on the next poll.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		verifier := remote.NewVerifier(collabClient)
		if verifier.Verified(r.Context()) {
			w.Write([]byte(`{"status":"ok","provider":"verified"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","provider":"unverified"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/activities/{activityID}", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Get("/links", linkHandler.MyLinks)
			r.Delete("/sessions", linkHandler.DeleteActivitySessions)
			r.Get("/recordings", recordingHandler.List)
			r.Delete("/recordings/{recordingID}", recordingHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(providerLimiter.Middleware)
				r.Post("/links/apply", linkHandler.Apply)
				r.Get("/groups/{groupID}/link", linkHandler.GroupLink)
				r.Get("/guest-url", linkHandler.GuestURL)
			})
		})

		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Delete("/sessions", linkHandler.DeleteGroupSessions)
		})

		r.Route("/links/{linkID}", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/recordings/{recordingID}/view", recordingHandler.RecordView)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
