package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fairwayleague/fantasy-golf/handlers"
	"github.com/fairwayleague/fantasy-golf/middleware"
	"github.com/fairwayleague/fantasy-golf/models"
)

// SetupRoutes навешивает все маршруты приложения на router.
// Просмотр турниров публичный, всё остальное требует токена;
// импорт и синхронизация турниров и управление аккаунтами требуют роли owner.
func SetupRoutes(
	router *chi.Mux,
	authenticator *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	tournamentHandler *handlers.TournamentHandler,
	leagueHandler *handlers.LeagueHandler,
	teamHandler *handlers.TeamHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/field", tournamentHandler.GetField)
		r.Get("/{tournamentID}/leaderboard", tournamentHandler.GetLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.RequireRole(models.RoleOwner))

			r.Post("/", tournamentHandler.Import)
			r.Post("/{tournamentID}/sync", tournamentHandler.Sync)
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Use(authenticator.Authenticate)

		r.Get("/", leagueHandler.ListMine)
		r.Post("/", leagueHandler.Create)
		r.Post("/join", leagueHandler.Join)
		r.Get("/{leagueID}", leagueHandler.Get)
		r.Get("/{leagueID}/members", leagueHandler.ListMembers)
		r.Get("/{leagueID}/standings", leagueHandler.Standings)
		r.Get("/{leagueID}/available-players", teamHandler.ListAvailablePlayers)
		r.Post("/{leagueID}/logo", leagueHandler.UploadLogo)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Use(authenticator.Authenticate)

		r.Get("/{teamID}", teamHandler.Get)
		r.Post("/{teamID}/players", teamHandler.DraftPlayer)
		r.Delete("/{teamID}/players/{playerID}", teamHandler.UndraftPlayer)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.RequireRole(models.RoleOwner))

		r.Get("/users/pending", adminHandler.ListPendingUsers)
		r.Post("/users/{userID}/approve", adminHandler.ApproveUser)
		r.Put("/users/{userID}/role", adminHandler.ChangeRole)
	})
}
