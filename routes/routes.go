package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/josvita0323/devhost-2025-sub000/handlers"
	"github.com/josvita0323/devhost-2025-sub000/middleware"
	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/services"
)

func SetupRoutes(
	router *chi.Mux,
	verifier services.TokenVerifier,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	eventHandler *handlers.EventHandler,
	teamHandler *handlers.TeamHandler,
	paymentHandler *handlers.PaymentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(verifier)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Post("/auth/admin/login", authHandler.AdminLogin)

	router.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", userHandler.GetMe)
		r.Post("/me", userHandler.SaveProfile)
		r.Put("/me", userHandler.SaveProfile)
	})

	router.Route("/events", func(r chi.Router) {
		// Публичные маршруты для просмотра событий
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)

		// Защищенные маршруты только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", eventHandler.CreateEvent)
			r.Put("/{eventID}", eventHandler.UpdateEvent)
			r.Delete("/{eventID}", eventHandler.DeleteEvent)
			r.Post("/{eventID}/poster", eventHandler.UploadPoster)
			r.Get("/{eventID}/teams", teamHandler.ListEventTeams)
			r.Post("/{eventID}/teams/{teamID}/pay", teamHandler.MarkEventTeamPaid)
		})

		// Командные маршруты для участников
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{eventID}/teams/create", teamHandler.CreateEventTeam)
			r.Post("/{eventID}/teams/join", teamHandler.JoinEventTeam)
			r.Post("/{eventID}/teams/me", teamHandler.EventTeamMine)
			r.Get("/{eventID}/teams/{teamID}", teamHandler.GetEventTeam)
			r.Post("/{eventID}/teams/{teamID}/remove", teamHandler.RemoveEventTeamMember)
			r.Delete("/{eventID}/teams/{teamID}", teamHandler.DisbandEventTeam)
		})
	})

	router.Route("/team", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/create", teamHandler.CreateTeam)
		r.Post("/join", teamHandler.JoinTeam)
		r.Post("/leave", teamHandler.LeaveTeam)
		r.Post("/remove", teamHandler.RemovePeer)
		r.Post("/drive", teamHandler.SetDriveLink)
		r.Post("/finalize", teamHandler.FinalizeTeam)
		r.Get("/get", teamHandler.GetTeam)
	})

	// Платежные маршруты монтируются только при настроенном шлюзе.
	if paymentHandler != nil {
		router.Route("/payments", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/order", paymentHandler.CreateOrder)
			r.Post("/verify", paymentHandler.VerifyPayment)
		})
	}

	router.Route("/ws", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)
		r.Get("/events/{eventID}", webSocketHandler.ServeWs)
	})
}
