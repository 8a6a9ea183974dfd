package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/velesmarket/backend/internal/config"
	authsvc "github.com/velesmarket/backend/internal/services/auth"
	docsvc "github.com/velesmarket/backend/internal/services/documents"
	lookupsvc "github.com/velesmarket/backend/internal/services/lookup"
	modsvc "github.com/velesmarket/backend/internal/services/moderation"
	onboardingsvc "github.com/velesmarket/backend/internal/services/onboarding"
	"github.com/velesmarket/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager        *authsvc.JWTManager
	Wizard            *onboardingsvc.Wizard
	OnboardingService *onboardingsvc.Service
	DocumentService   *docsvc.Service
	LookupClient      *lookupsvc.Client
	ModerationService *modsvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	onboardingHandler := handlers.NewOnboardingHandler(deps.Wizard, deps.OnboardingService)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocumentService, deps.Wizard)
	lookupHandler := handlers.NewLookupHandler(deps.LookupClient)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	adminRoleMW := RequireRole(authsvc.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1/onboarding", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/wizard/start", onboardingHandler.WizardStart)
		r.Get("/wizard", onboardingHandler.WizardGet)
		r.Post("/wizard/step", onboardingHandler.WizardStep)
		r.Post("/wizard/prev", onboardingHandler.WizardPrev)
		r.Post("/wizard/role", onboardingHandler.WizardChangeRole)
		r.Post("/submit", onboardingHandler.Submit)
		r.Get("/readiness", onboardingHandler.Readiness)
		r.Get("/status", onboardingHandler.Status)
		r.Post("/documents", documentsHandler.Upload)
		r.Get("/documents", documentsHandler.List)
	})

	r.Route("/v1/lookup", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/company", lookupHandler.Company)
		r.Get("/bank", lookupHandler.Bank)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminRoleMW)
		r.Post("/vendors/{id}/moderation", moderationHandler.Decide)
		r.Get("/vendors/{id}/history", moderationHandler.History)
		r.Post("/documents/{id}/decision", moderationHandler.DecideDocument)
		r.Get("/moderation/queue/next", moderationHandler.QueueNext)
		r.Get("/moderation/reject-reasons", moderationHandler.RejectReasons)
	})
}
