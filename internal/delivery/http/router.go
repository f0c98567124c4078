package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"campuscoins/internal/delivery/http/controllers"
	"campuscoins/internal/delivery/http/middleware"
	"campuscoins/internal/domain"
)

// Controllers bundles the controllers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Coins         *controllers.CoinController
	Students      *controllers.StudentController
	Admin         *controllers.AdminController
	Notifications *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes.
// Everything except auth, swagger, metrics, and the health check sits behind
// the Bearer-token middleware.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Events
	mux.HandleFunc("POST /events", auth(c.Events.Create))
	mux.HandleFunc("GET /events", auth(c.Events.List))
	mux.HandleFunc("GET /events/upcoming", auth(c.Events.ListUpcoming))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.Get))
	mux.HandleFunc("POST /events/{eventID}/winners", auth(c.Events.DeclareWinners))
	mux.HandleFunc("POST /events/{eventID}/register", auth(c.Events.Register))
	mux.HandleFunc("DELETE /events/{eventID}/register", auth(c.Events.CancelRegistration))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(c.Events.ListRegistrations))
	mux.HandleFunc("DELETE /events/{eventID}/registrations/{studentID}", auth(c.Events.RemoveRegistration))

	// Coins
	mux.HandleFunc("POST /coins/manage", auth(c.Coins.Adjust))
	mux.HandleFunc("GET /coins/history/{studentID}", auth(c.Coins.History))

	// Students (self-service)
	mux.HandleFunc("GET /students/profile", auth(c.Students.Profile))
	mux.HandleFunc("GET /students/history", auth(c.Students.History))

	// Admin
	mux.HandleFunc("GET /admin/dashboard", auth(c.Admin.Dashboard))
	mux.HandleFunc("GET /admin/students", auth(c.Admin.ListStudents))
	mux.HandleFunc("GET /admin/students/search", auth(c.Admin.SearchStudents))
	mux.HandleFunc("GET /admin/students/{studentID}", auth(c.Admin.GetStudent))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notifications.List))
	mux.HandleFunc("PUT /notifications/{notificationID}/read", auth(c.Notifications.MarkRead))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
