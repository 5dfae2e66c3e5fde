package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/cup-simulator/handlers"
	"github.com/Dosada05/cup-simulator/middleware"
	"github.com/Dosada05/cup-simulator/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Team       *handlers.TeamHandler
	Match      *handlers.MatchHandler
	Tournament *handlers.TournamentHandler
	Analytics  *handlers.AnalyticsHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// WebSocket соединения живут дольше таймаута запросов.
	router.Get("/ws/tournament", h.WebSocket.ServeWs)

	// Симуляция матчей: быстрая и полная.
	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Get("/simulate_match/{matchID}", h.Match.SimulateMatch)
		r.Get("/play_match/{matchID}", h.Match.PlayMatch)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.ListTeams)
			r.Post("/", h.Team.RegisterTeam)
			r.Get("/{country}", h.Team.GetTeamByCountry)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.ListMatches)
			r.Get("/{matchID}", h.Match.GetMatch)
		})

		r.Get("/tournament", h.Tournament.GetTournament)
		r.Get("/match_preview/{matchID}", h.Match.MatchPreview)
		r.Get("/player_analysis/{matchID}/{playerName}", h.Match.PlayerAnalysis)
		r.Get("/team_analytics/{country}", h.Analytics.TeamAnalytics)
		r.Get("/standings", h.Analytics.Standings)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)

			// Защищенные маршруты только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret))
				r.Use(middleware.Authorize(string(models.RoleAdmin)))

				r.Post("/create_tournament", h.Tournament.CreateTournament)
				r.Post("/reset_tournament", h.Tournament.ResetTournament)
				r.Post("/simulate_round", h.Tournament.SimulateRound)
				r.Get("/dashboard", h.Tournament.Dashboard)
			})
		})
	})
}
