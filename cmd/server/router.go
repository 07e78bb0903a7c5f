package main

import (
	"net/http"

	"github.com/cardboardgarden/garden-api/internal/api"
	apiMiddleware "github.com/cardboardgarden/garden-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter builds the chi router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	authHandler := api.NewAuthHandler(app.engine, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.engine)
	cardHandler := api.NewCardHandler(app.cards, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/resend-verification", authHandler.ResendVerification)

			r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
		})

		r.Get("/cards", cardHandler.Search)
		r.Get("/cards/{id}", cardHandler.Get)
	})

	r.Get("/health", api.Health)

	return r
}
