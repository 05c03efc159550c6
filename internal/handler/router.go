package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iMallco/iMall/internal/middleware"
)

// NewRouter wires the auth API. verifier guards the bearer-protected routes.
func NewRouter(auth *AuthHandler, verifier middleware.TokenVerifier) http.Handler {
	started := time.Now()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Welcome to iMall API",
			"status":    "success",
			"timestamp": time.Now().UTC(),
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"uptime":    time.Since(started).Seconds(),
			"timestamp": time.Now().UTC(),
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", auth.HandleSignUp)
		r.Post("/signin", auth.HandleSignIn)
		r.Post("/reset-password", auth.HandleResetPassword)
		r.Post("/set-user-type", auth.HandleSetUserType)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(verifier))
			r.Post("/logout", auth.HandleLogout)
			r.Get("/me", auth.HandleMe)
		})
	})

	return r
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"message": "Route not found",
		"status":  "error",
	})
}
