package rest

import (
	"net/http"

	"spaces-backend/application/services"
	"spaces-backend/infrastructure/config"
	"spaces-backend/interfaces/http/rest/handlers"
	"spaces-backend/interfaces/http/rest/middleware"
	"spaces-backend/pkg/auth"
	"spaces-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg         *config.Config
	spaces      *services.SpaceService
	memberships *services.MembershipService
	invitations *services.InvitationService
	journal     *services.JournalService
	validator   *auth.JWTValidator
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	spaces *services.SpaceService,
	memberships *services.MembershipService,
	invitations *services.InvitationService,
	journal *services.JournalService,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:         cfg,
		spaces:      spaces,
		memberships: memberships,
		invitations: invitations,
		journal:     journal,
		validator:   validator,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableTracing && !rt.cfg.IsLambda {
		router.Use(middleware.Tracing(observability.NewTracer("spaces-backend")))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.spaces.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.IsLambda {
			r.Use(middleware.AuthenticateForLambda(rt.cfg.UserRateLimit, rt.logger))
		} else {
			r.Use(middleware.Authenticate(rt.validator, rt.cfg.IPRateLimit, rt.cfg.UserRateLimit, rt.logger))
		}

		// Invitation endpoints
		r.Route("/invitations", func(r chi.Router) {
			invitationHandler := handlers.NewInvitationHandler(rt.invitations, rt.logger)
			r.Post("/", invitationHandler.CreateInvitation)
			r.Get("/", invitationHandler.ListMyInvitations)
			r.Get("/validate", invitationHandler.ValidateCode)
			r.Post("/accept", invitationHandler.AcceptInvitation)
			r.Post("/{invitationID}/accept", invitationHandler.AcceptInvitation)
			r.Delete("/{invitationID}", invitationHandler.CancelInvitation)

			r.With(middleware.RequireRole("admin")).Get("/all", invitationHandler.ListAllInvitations)
		})

		// Space endpoints
		r.Route("/spaces", func(r chi.Router) {
			spaceHandler := handlers.NewSpaceHandler(rt.spaces, rt.memberships, rt.logger)
			invitationHandler := handlers.NewInvitationHandler(rt.invitations, rt.logger)
			journalHandler := handlers.NewJournalHandler(rt.journal, rt.logger)

			r.Post("/", spaceHandler.CreateSpace)
			r.Get("/", spaceHandler.ListMySpaces)
			r.Post("/join", spaceHandler.JoinSpace)

			r.Route("/{spaceID}", func(r chi.Router) {
				r.Get("/", spaceHandler.GetSpace)
				r.Put("/", spaceHandler.UpdateSpace)
				r.Delete("/", spaceHandler.DeleteSpace)

				r.Get("/members", spaceHandler.ListMembers)
				r.Post("/members", spaceHandler.AddMember)
				r.Delete("/members/{userID}", spaceHandler.RemoveMember)

				r.Post("/invite-code", spaceHandler.RegenerateInviteCode)
				r.Get("/invitations", invitationHandler.ListSpaceInvitations)

				r.Route("/journal", func(r chi.Router) {
					r.Post("/", journalHandler.CreateEntry)
					r.Get("/", journalHandler.ListEntries)
					r.Get("/{entryID}", journalHandler.GetEntry)
					r.Delete("/{entryID}", journalHandler.DeleteEntry)
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
