package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/suqapp/backend/internal/application/auth"
	"github.com/suqapp/backend/internal/application/otp"
	"github.com/suqapp/backend/internal/application/user"
	"github.com/suqapp/backend/internal/config"
	"github.com/suqapp/backend/internal/transport/http/handler"
	appmiddleware "github.com/suqapp/backend/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpMgr := otp.NewManager(deps.OTPRepo, deps.SMSSender, cfg.OTPTTL, cfg.OTPIssueWindow, cfg.OTPIssueMax)
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:       deps.UserRepo,
		OTPs:        otpMgr,
		Issuer:      deps.Issuer,
		CountryCode: cfg.CountryCode,
	})
	userSvc := user.NewService(deps.UserRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.Post("/auth/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/refresh-token", authH.Refresh)
		r.With(sensitiveRL.Limit).Post("/auth/resend-otp", authH.ResendOTP)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Issuer, deps.UserRepo))

			r.Get("/users/me", userH.Me)
			r.Delete("/users/me", userH.Deactivate)
		})
	})

	return r
}
