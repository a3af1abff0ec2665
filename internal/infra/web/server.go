// Package web is the presentation-layer stand-in: it validates input,
// awaits backend calls, and only then issues synchronous store mutations.
// The stores themselves never see an invalid input or a failed call.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/infra/countries"
	"ai-chat-client/internal/store"
)

type Server struct {
	session   *store.Session
	conv      *store.Conversation
	otp       adapter.OTPGateway
	replies   adapter.ReplyGenerator
	countries *countries.Service
	auth      *AuthManager
	log       *zerolog.Logger
}

func NewServer(
	session *store.Session,
	conv *store.Conversation,
	otp adapter.OTPGateway,
	replies adapter.ReplyGenerator,
	countrySvc *countries.Service,
	auth *AuthManager,
	log *zerolog.Logger,
) *Server {
	return &Server{
		session:   session,
		conv:      conv,
		otp:       otp,
		replies:   replies,
		countries: countrySvc,
		auth:      auth,
		log:       log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)
		r.Post("/auth/otp/send", s.handleSendOTP)
		r.Post("/auth/otp/verify", s.handleVerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/session", s.handleSession)

			r.Get("/chatrooms", s.handleListChatrooms)
			r.Post("/chatrooms", s.handleCreateChatroom)
			r.Put("/chatrooms/selection", s.handleSelectChatroom)
			r.Delete("/chatrooms/{id}", s.handleDeleteChatroom)
			r.Post("/chatrooms/{id}/messages", s.handleSendMessage)
			r.Post("/chatrooms/{id}/history", s.handleLoadOlder)

			r.Put("/ui/search", s.handleSearch)
			r.Post("/ui/dark-mode/toggle", s.handleToggleDarkMode)
		})
	})

	return r
}

// requireSession accepts only a valid token that matches the session
// store's current user. A stale token from before a logout is rejected
// even if its signature still verifies.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.FromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		u := s.session.User()
		if u == nil || u.ID != claims.Subject {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}
