package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/velesmarket/backend/internal/config"
	"github.com/velesmarket/backend/internal/infra/httpclient"
	s3infra "github.com/velesmarket/backend/internal/infra/s3"
	"github.com/velesmarket/backend/internal/jobs/cleanup"
	pgrepo "github.com/velesmarket/backend/internal/repo/postgres"
	redrepo "github.com/velesmarket/backend/internal/repo/redis"
	authsvc "github.com/velesmarket/backend/internal/services/auth"
	docsvc "github.com/velesmarket/backend/internal/services/documents"
	lookupsvc "github.com/velesmarket/backend/internal/services/lookup"
	modsvc "github.com/velesmarket/backend/internal/services/moderation"
	onboardingsvc "github.com/velesmarket/backend/internal/services/onboarding"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler

	cleanupJob *cleanup.Job
	jobsCtx    context.Context
	stopJobs   context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	draftRepo := redrepo.NewWizardDraftRepo(redisClient)
	statusCacheRepo := redrepo.NewStatusCacheRepo(redisClient)

	txRunner := pgrepo.NewTxRunner(pool)
	vendorRepo := pgrepo.NewVendorRepo(pool)
	roleRepo := pgrepo.NewVendorRoleRepo(pool)
	bankRepo := pgrepo.NewBankAccountRepo(pool)
	taxRepo := pgrepo.NewTaxProfileRepo(pool)
	documentRepo := pgrepo.NewDocumentRepo(pool)
	historyRepo := pgrepo.NewHistoryRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	lookupClient := lookupsvc.NewClient(
		cfg.Lookup.BaseURL,
		cfg.Lookup.APIKey,
		httpclient.New(cfg.Lookup.Timeout),
		log,
	)

	documentStorage := docsvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	documentService := docsvc.NewService(documentRepo, documentStorage, cfg.Onboarding.MaxDocumentSize)

	wizard := onboardingsvc.NewWizard(draftRepo, cfg.Onboarding.DraftTTL)
	onboardingService := onboardingsvc.NewService(onboardingsvc.Dependencies{
		Tx:            txRunner,
		Vendors:       vendorRepo,
		Roles:         roleRepo,
		Banks:         bankRepo,
		Taxes:         taxRepo,
		Documents:     documentRepo,
		History:       historyRepo,
		BankDirectory: lookupClient,
		StatusCache:   statusCacheRepo,
		CacheTTL:      cfg.Onboarding.StatusCacheTTL,
		Logger:        log,
	})

	moderationService := modsvc.NewService(modsvc.Dependencies{
		Tx:          txRunner,
		Vendors:     vendorRepo,
		Roles:       roleRepo,
		Documents:   documentRepo,
		History:     historyRepo,
		Signer:      documentStorage,
		StatusCache: statusCacheRepo,
		Logger:      log,
	})

	RegisterRoutes(r, Dependencies{
		JWTManager:        jwtManager,
		Wizard:            wizard,
		OnboardingService: onboardingService,
		DocumentService:   documentService,
		LookupClient:      lookupClient,
		ModerationService: moderationService,
		Logger:            log,
		Config:            cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
		cleanupJob: cleanup.New(documentRepo, cfg.Cleanup.DocumentValidity, log),
		jobsCtx:    jobsCtx,
		stopJobs:   stopJobs,
	}, nil
}

func (a *App) Run() error {
	if a.cleanupJob != nil {
		go a.cleanupJob.Start(a.jobsCtx, a.cfg.Cleanup.Interval)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.stopJobs != nil {
		a.stopJobs()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
