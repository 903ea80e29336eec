package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/websocket"
)

// New builds the HTTP surface. jwtAuth and chatLimiter are optional: without
// jwtAuth /clear is open, without chatLimiter /chat is unlimited.
func New(
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	jwtAuth *middleware.JWTAuth,
	chatLimiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	r.Get("/health", chatHandler.Health)
	r.Get("/history", chatHandler.History)

	r.Group(func(r chi.Router) {
		if chatLimiter != nil {
			r.Use(chatLimiter.Middleware)
		}
		r.Post("/chat", chatHandler.Chat)
	})

	r.Group(func(r chi.Router) {
		if jwtAuth != nil {
			r.Use(jwtAuth.Middleware)
		}
		r.Get("/clear", chatHandler.Clear)
	})

	if wsHub != nil {
		r.Get("/ws", wsHub.HandleWebSocket)
	}

	return r
}
