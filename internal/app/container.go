// Package app wires the application together: database, cache, broker,
// repositories, the lifecycle engine and every command/query handler.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/casetrack/casetrack/internal/aiassist"
	"github.com/casetrack/casetrack/internal/audit"
	caseCommands "github.com/casetrack/casetrack/internal/casefile/application/commands"
	caseQueries "github.com/casetrack/casetrack/internal/casefile/application/queries"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	caseCache "github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	casePersistence "github.com/casetrack/casetrack/internal/casefile/infrastructure/persistence"
	courtCommands "github.com/casetrack/casetrack/internal/court/application/commands"
	courtQueries "github.com/casetrack/casetrack/internal/court/application/queries"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	courtPersistence "github.com/casetrack/casetrack/internal/court/infrastructure/persistence"
	"github.com/casetrack/casetrack/internal/docgen"
	"github.com/casetrack/casetrack/internal/docrequest"
	invApplication "github.com/casetrack/casetrack/internal/investigation/application"
	invDomain "github.com/casetrack/casetrack/internal/investigation/domain"
	invPersistence "github.com/casetrack/casetrack/internal/investigation/infrastructure/persistence"
	orgDomain "github.com/casetrack/casetrack/internal/organization/domain"
	orgPersistence "github.com/casetrack/casetrack/internal/organization/infrastructure/persistence"
	reopenCommands "github.com/casetrack/casetrack/internal/reopen/application/commands"
	reopenQueries "github.com/casetrack/casetrack/internal/reopen/application/queries"
	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	reopenPersistence "github.com/casetrack/casetrack/internal/reopen/infrastructure/persistence"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/eventbus"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/outbox"
	"github.com/casetrack/casetrack/pkg/config"
	"github.com/casetrack/casetrack/pkg/observability"
)

// Container holds all wired application components.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DB          *pgxpool.Pool
	RedisClient *redis.Client

	EventPublisher eventbus.Publisher
	OutboxRepo     outbox.Repository
	UnitOfWork     sharedApplication.UnitOfWork
	AuditRecorder  audit.Recorder

	// Repositories
	CaseRepo        casefile.Repository
	FIRRepo         casefile.FIRRepository
	StateRepo       casefile.StateRepository
	AssignmentRepo  casefile.AssignmentRepository
	SubmissionRepo  courtDomain.SubmissionRepository
	CourtActionRepo courtDomain.CourtActionRepository
	ReopenRepo      reopenDomain.Repository
	DocRequestRepo  docrequest.Repository
	InvRepo         invDomain.Repository
	OrgRepo         orgDomain.OrganizationRepository
	UserRepo        orgDomain.UserRepository

	CaseCache caseCache.CaseCache
	Engine    *services.Engine

	// External service clients
	DocgenClient *docgen.Client
	AssistClient *aiassist.Client

	// Case lifecycle command handlers
	RegisterFIRHandler           *caseCommands.RegisterFIRHandler
	AssignCaseHandler            *caseCommands.AssignCaseHandler
	StartInvestigationHandler    *caseCommands.StartInvestigationHandler
	PauseInvestigationHandler    *caseCommands.PauseInvestigationHandler
	ResumeInvestigationHandler   *caseCommands.ResumeInvestigationHandler
	CompleteInvestigationHandler *caseCommands.CompleteInvestigationHandler
	PrepareChargeSheetHandler    *caseCommands.PrepareChargeSheetHandler
	PrepareClosureReportHandler  *caseCommands.PrepareClosureReportHandler
	ArchiveCaseHandler           *caseCommands.ArchiveCaseHandler

	// Case query handlers
	GetCaseHandler        *caseQueries.GetCaseHandler
	ListCasesHandler      *caseQueries.ListCasesHandler
	MyCasesHandler        *caseQueries.MyCasesHandler
	StateHistoryHandler   *caseQueries.StateHistoryHandler
	AllowedActionsHandler *caseQueries.AllowedActionsHandler

	// Court handlers
	SubmitToCourtHandler     *courtCommands.SubmitToCourtHandler
	ResubmitHandler          *courtCommands.ResubmitHandler
	IntakeSubmissionHandler  *courtCommands.IntakeSubmissionHandler
	ReturnForDefectsHandler  *courtCommands.ReturnForDefectsHandler
	RecordCourtActionHandler *courtCommands.RecordCourtActionHandler
	CaseSubmissionsHandler   *courtQueries.CaseSubmissionsHandler
	CaseActionsHandler       *courtQueries.CaseActionsHandler

	// Reopen handlers
	RequestReopenHandler *reopenCommands.RequestReopenHandler
	ApproveReopenHandler *reopenCommands.ApproveReopenHandler
	RejectReopenHandler  *reopenCommands.RejectReopenHandler
	CaseRequestsHandler  *reopenQueries.CaseRequestsHandler

	// Services
	InvestigationService *invApplication.Service
	DocRequestService    *docrequest.Service

	Health *observability.HealthRegistry
}

// NewContainer wires up the full application.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	c.DB = pool
	c.Health.Register("postgres", observability.PingHealthChecker(pool.Ping, observability.HealthStatusUnhealthy))

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Cache is optional. Without Redis every read goes to Postgres.
	c.CaseCache = caseCache.NoopCaseCache{}
	if cfg.RedisEnabled {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			if cfg.IsProduction() {
				pool.Close()
				return nil, fmt.Errorf("pinging redis: %w", err)
			}
			logger.Warn("redis not available, case detail caching disabled", "error", err)
			_ = client.Close()
		} else {
			c.RedisClient = client
			c.CaseCache = caseCache.NewRedisCaseCache(client)
			c.Health.Register("redis", observability.PingHealthChecker(func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}, observability.HealthStatusDegraded))
		}
	}

	// Events flow through the transactional outbox; the publisher is only
	// needed by the worker, but the serve process keeps one for health checks.
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsProduction() {
			c.Close()
			return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
		}
		logger.Warn("rabbitmq not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
	} else {
		c.EventPublisher = publisher
	}

	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
	c.AuditRecorder = audit.NewPostgresRecorder(pool)

	// Repositories
	c.CaseRepo = casePersistence.NewPostgresCaseRepository(pool)
	c.FIRRepo = casePersistence.NewPostgresFIRRepository(pool)
	stateRepo := casePersistence.NewPostgresStateRepository(pool)
	c.StateRepo = stateRepo
	c.AssignmentRepo = casePersistence.NewPostgresAssignmentRepository(pool)
	caseReader := casePersistence.NewPostgresCaseReader(pool)
	c.SubmissionRepo = courtPersistence.NewPostgresSubmissionRepository(pool)
	c.CourtActionRepo = courtPersistence.NewPostgresCourtActionRepository(pool)
	c.ReopenRepo = reopenPersistence.NewPostgresReopenRepository(pool)
	c.DocRequestRepo = docrequest.NewPostgresRepository(pool)
	c.InvRepo = invPersistence.NewPostgresRepository(pool)
	c.OrgRepo = orgPersistence.NewPostgresOrganizationRepository(pool)
	c.UserRepo = orgPersistence.NewPostgresUserRepository(pool)

	c.Engine = services.NewEngine(stateRepo, c.OutboxRepo, c.UnitOfWork, logger)

	c.DocgenClient = docgen.NewClient(docgen.Config{
		BaseURL:          cfg.DocgenURL,
		RequestTimeout:   cfg.DocgenTimeout,
		FailureThreshold: uint32(cfg.DocgenFailureThreshold),
	}, logger)

	if cfg.AIAssistURL != "" {
		c.AssistClient = aiassist.NewClient(aiassist.Config{
			BaseURL:          cfg.AIAssistURL,
			APIKey:           cfg.AIAssistAPIKey,
			RequestTimeout:   cfg.AIAssistTimeout,
			FailureThreshold: uint32(cfg.AIAssistFailureThreshold),
		}, logger)
	}

	// Case lifecycle command handlers
	c.RegisterFIRHandler = caseCommands.NewRegisterFIRHandler(c.FIRRepo, c.CaseRepo, c.StateRepo, c.OutboxRepo, c.AuditRecorder, c.UnitOfWork)
	c.AssignCaseHandler = caseCommands.NewAssignCaseHandler(c.AssignmentRepo, c.Engine, c.OutboxRepo, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.StartInvestigationHandler = caseCommands.NewStartInvestigationHandler(c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.PauseInvestigationHandler = caseCommands.NewPauseInvestigationHandler(c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.ResumeInvestigationHandler = caseCommands.NewResumeInvestigationHandler(c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.CompleteInvestigationHandler = caseCommands.NewCompleteInvestigationHandler(c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.PrepareChargeSheetHandler = caseCommands.NewPrepareChargeSheetHandler(c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.PrepareClosureReportHandler = caseCommands.NewPrepareClosureReportHandler(c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.ArchiveCaseHandler = caseCommands.NewArchiveCaseHandler(c.CaseRepo, c.DocgenClient, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)

	// Case query handlers
	c.GetCaseHandler = caseQueries.NewGetCaseHandler(c.CaseRepo, c.FIRRepo, c.AssignmentRepo, c.StateRepo, c.CaseCache, logger)
	c.ListCasesHandler = caseQueries.NewListCasesHandler(caseReader)
	c.MyCasesHandler = caseQueries.NewMyCasesHandler(caseReader)
	c.StateHistoryHandler = caseQueries.NewStateHistoryHandler(c.CaseRepo, c.StateRepo)
	c.AllowedActionsHandler = caseQueries.NewAllowedActionsHandler(c.Engine)

	// Court handlers
	c.SubmitToCourtHandler = courtCommands.NewSubmitToCourtHandler(c.SubmissionRepo, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.ResubmitHandler = courtCommands.NewResubmitHandler(c.SubmissionRepo, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.IntakeSubmissionHandler = courtCommands.NewIntakeSubmissionHandler(c.SubmissionRepo, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.ReturnForDefectsHandler = courtCommands.NewReturnForDefectsHandler(c.SubmissionRepo, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.RecordCourtActionHandler = courtCommands.NewRecordCourtActionHandler(c.CourtActionRepo, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.CaseSubmissionsHandler = courtQueries.NewCaseSubmissionsHandler(c.SubmissionRepo)
	c.CaseActionsHandler = courtQueries.NewCaseActionsHandler(c.CourtActionRepo)

	// Reopen handlers
	c.RequestReopenHandler = reopenCommands.NewRequestReopenHandler(c.ReopenRepo, c.StateRepo, c.AuditRecorder, c.UnitOfWork)
	c.ApproveReopenHandler = reopenCommands.NewApproveReopenHandler(c.ReopenRepo, c.CaseRepo, c.AssignmentRepo, c.SubmissionRepo, c.Engine, c.AuditRecorder, c.CaseCache, c.UnitOfWork)
	c.RejectReopenHandler = reopenCommands.NewRejectReopenHandler(c.ReopenRepo, c.SubmissionRepo, c.AuditRecorder, c.UnitOfWork)
	c.CaseRequestsHandler = reopenQueries.NewCaseRequestsHandler(c.ReopenRepo)

	// Services
	c.InvestigationService = invApplication.NewService(c.InvRepo, c.FIRRepo, c.AssignmentRepo, c.AuditRecorder, c.UnitOfWork)
	c.DocRequestService = docrequest.NewService(c.DocRequestRepo, c.CaseRepo, c.AuditRecorder, c.UnitOfWork)

	return c, nil
}

// Close releases all container resources.
func (c *Container) Close() {
	if closer, ok := c.EventPublisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.Logger.Warn("closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("closing redis client", "error", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
