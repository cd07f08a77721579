package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/casetrack/casetrack/adapter/api"
	"github.com/casetrack/casetrack/internal/app"
	"github.com/casetrack/casetrack/pkg/config"
	"github.com/casetrack/casetrack/pkg/observability"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.IsProduction())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, err := app.NewContainer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer container.Close()

			auth := api.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer, container.UserRepo, logger)

			var assist *api.AssistHandler
			if container.AssistClient != nil {
				assist = api.NewAssistHandler(container.AssistClient, logger)
			}

			serverCfg := api.DefaultServerConfig()
			serverCfg.Addr = cfg.HTTPAddr
			server := api.NewServer(serverCfg, api.Handlers{
				Auth: auth,
				Cases: api.NewCaseHandler(api.CaseHandlerConfig{
					RegisterFIR:           container.RegisterFIRHandler,
					AssignCase:            container.AssignCaseHandler,
					StartInvestigation:    container.StartInvestigationHandler,
					PauseInvestigation:    container.PauseInvestigationHandler,
					ResumeInvestigation:   container.ResumeInvestigationHandler,
					CompleteInvestigation: container.CompleteInvestigationHandler,
					PrepareChargeSheet:    container.PrepareChargeSheetHandler,
					PrepareClosureReport:  container.PrepareClosureReportHandler,
					ArchiveCase:           container.ArchiveCaseHandler,
					GetCase:               container.GetCaseHandler,
					ListCases:             container.ListCasesHandler,
					MyCases:               container.MyCasesHandler,
					StateHistory:          container.StateHistoryHandler,
					AllowedActions:        container.AllowedActionsHandler,
					Logger:                logger,
				}),
				Court: api.NewCourtHandler(api.CourtHandlerConfig{
					Submit:           container.SubmitToCourtHandler,
					Resubmit:         container.ResubmitHandler,
					Intake:           container.IntakeSubmissionHandler,
					ReturnForDefects: container.ReturnForDefectsHandler,
					RecordAction:     container.RecordCourtActionHandler,
					CaseSubmissions:  container.CaseSubmissionsHandler,
					CaseActions:      container.CaseActionsHandler,
					Logger:           logger,
				}),
				Reopen: api.NewReopenHandler(
					container.RequestReopenHandler,
					container.ApproveReopenHandler,
					container.RejectReopenHandler,
					container.CaseRequestsHandler,
					logger,
				),
				Investigation: api.NewInvestigationHandler(container.InvestigationService, logger),
				Documents:     api.NewDocumentRequestHandler(container.DocRequestService, logger),
				Assist:        assist,
			}, container.Health, logger)

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
