package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complyd/internal/bootstrap/config"
	"complyd/internal/bootstrap/database"
	"complyd/internal/bootstrap/logging"
	"complyd/internal/domain"
	"complyd/internal/errs"
	"complyd/internal/infra/db"
	complydhttp "complyd/internal/infra/http"
	"complyd/internal/infra/policyrego"
	"complyd/internal/infra/ratelimit"
	"complyd/internal/infra/textgen"
	"complyd/internal/usecase"
)

func main() {
	configFile := flag.String("config", "", "config file path")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := logging.WithLogger(context.Background(), logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "complyd"))

	if err := run(ctx, *configFile); err != nil {
		logging.Error(ctx, "fatal", slog.Any("err", errs.Loggable(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return err
	}

	gdb, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return errs.Wrap(err, "migrate schema")
	}
	if cfg.Seed.CompanyID != "" {
		if err := db.Seed(ctx, gdb, cfg.Seed.CompanyID, cfg.Seed.CompanyName); err != nil {
			return errs.Wrap(err, "seed reference data")
		}
	}

	capability, err := policyrego.NewEngine(ctx)
	if err != nil {
		return errs.Wrap(err, "compile access policy")
	}

	var limiter domain.RateLimiter
	if cfg.Redis.Addr != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Now)
		if err != nil {
			return errs.Wrap(err, "redis limiter")
		}
		limiter = redisLimiter
	} else {
		limiter = ratelimit.NewMemoryLimiter(time.Now)
	}

	var generator usecase.TextGenerator
	if cfg.Reports.OpenAIAPIKey != "" {
		generator, err = textgen.NewOpenAIGenerator(cfg.Reports.OpenAIAPIKey, cfg.Reports.Model, cfg.Reports.GenerateTimeout)
		if err != nil {
			return errs.Wrap(err, "openai generator")
		}
	} else {
		logging.Warn(ctx, "no openai api key configured, report generation disabled")
		generator = textgen.DisabledGenerator{}
	}

	audits := db.NewAuditRepository(gdb)
	scope := db.NewScopeRepository(gdb)
	categories := db.NewCategoryRepository(gdb)
	auditRuns := db.NewAuditRunRepository(gdb)
	auditTemplates := db.NewAuditTemplateRepository(gdb)
	responses := db.NewResponseRepository(gdb)
	findings := db.NewFindingRepository(gdb)
	evidence := db.NewEvidenceRepository(gdb)
	complianceTemplates := db.NewComplianceTemplateRepository(gdb)
	complianceRuns := db.NewComplianceRunRepository(gdb)
	complianceResponses := db.NewComplianceResponseRepository(gdb)
	actions := db.NewComplianceActionRepository(gdb)
	scopeEntities := db.NewScopeEntityRepository(gdb)
	assignments := db.NewAssignmentRepository(gdb)
	changeRecords := db.NewChangeRecordRepository(gdb)
	reports := db.NewReportRepository(gdb)

	changes := usecase.NewChangeEmitter(changeRecords, time.Now)

	auditLifecycle := &usecase.AuditLifecycle{
		Audits:              audits,
		Scope:               scope,
		Categories:          categories,
		Runs:                auditRuns,
		Templates:           auditTemplates,
		Responses:           responses,
		Findings:            findings,
		Changes:             changes,
		Clock:               time.Now,
		AllowCloseFromDraft: cfg.Policy.AllowCloseFromDraft,
	}
	indicatorResponses := &usecase.IndicatorResponses{
		Audits:    audits,
		Templates: auditTemplates,
		Responses: responses,
		Findings:  findings,
		Changes:   changes,
		Clock:     time.Now,
	}
	findingWorkflow := &usecase.FindingWorkflow{
		Findings:   findings,
		Evidence:   evidence,
		Capability: capability,
		Changes:    changes,
		Clock:      time.Now,
	}
	templateAdmin := &usecase.ComplianceTemplates{
		Repo:  complianceTemplates,
		Clock: time.Now,
	}
	runEngine := &usecase.ComplianceRuns{
		Templates:   complianceTemplates,
		Runs:        complianceRuns,
		Responses:   complianceResponses,
		Actions:     actions,
		Scopes:      scopeEntities,
		Assignments: assignments,
		Capability:  capability,
		Changes:     changes,
		Clock:       time.Now,
	}
	rollup := &usecase.Rollup{
		Runs:      complianceRuns,
		Templates: complianceTemplates,
		Responses: complianceResponses,
		Actions:   actions,
	}
	weeklyReports := &usecase.WeeklyReports{
		Reports:         reports,
		Runs:            complianceRuns,
		Templates:       complianceTemplates,
		Responses:       complianceResponses,
		Actions:         actions,
		Scopes:          scopeEntities,
		Generator:       generator,
		Limiter:         limiter,
		Changes:         changes,
		Clock:           time.Now,
		Model:           cfg.Reports.Model,
		PromptVersion:   cfg.Reports.PromptVersion,
		RateLimit:       cfg.Reports.RateLimit,
		RateLimitWindow: cfg.Reports.RateLimitWindow,
	}

	server := complydhttp.NewServer(
		auditLifecycle,
		indicatorResponses,
		findingWorkflow,
		templateAdmin,
		runEngine,
		rollup,
		weeklyReports,
		changes,
	)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info(ctx, "listening", slog.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errs.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(err, "shutdown")
	}
	logging.Info(ctx, "stopped")
	return nil
}
