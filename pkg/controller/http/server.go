package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	websocket_controller "github.com/secmon-lab/bqchat/pkg/controller/websocket"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
)

type Server struct {
	router        *chi.Mux
	websocketCtrl *websocket_controller.Handler
}

type Options func(*Server)

func WithWebSocketHandler(handler *websocket_controller.Handler) Options {
	return func(s *Server) {
		s.websocketCtrl = handler
	}
}

func New(uc interfaces.ChatUseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{router: r}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profiles", profilesHandler(uc))
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", createSessionHandler(uc))
			r.Delete("/{sessionID}", deleteSessionHandler(uc))
			r.Route("/{sessionID}/messages", func(r chi.Router) {
				r.Get("/", getMessagesHandler(uc))
				r.Post("/", postMessageHandler(uc))
			})
		})
	})

	if s.websocketCtrl != nil {
		r.Route("/ws", func(r chi.Router) {
			r.Get("/chat", s.websocketCtrl.HandleChat)
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
