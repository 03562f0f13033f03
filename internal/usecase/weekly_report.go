package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyd/internal/bootstrap/logging"
	"complyd/internal/domain"
	"complyd/internal/errs"
)

const (
	reportFeatureKey = "weekly_participant_report"

	reportSystemPrompt = "You are a report writer for a disability service provider. " +
		"Write a short weekly summary of compliance checklist outcomes for one participant. " +
		"Use only the facts in the input. Do not invent incidents, names or dates. " +
		"Do not include medical or health details about the participant. " +
		"Plain professional English, at most three paragraphs."

	reportUserPromptTemplate = "Write the weekly compliance summary for the following data:\n%s"
)

// WeeklyReports assembles per-participant narrative reports through the
// external text-generation collaborator. Every generation attempt is logged
// with the same structured fields whether it succeeds or fails; failures
// surface as EXTERNAL errors without retry and without the provider's raw
// message.
type WeeklyReports struct {
	Reports   ReportRepository
	Runs      ComplianceRunRepository
	Templates ComplianceTemplateRepository
	Responses ComplianceResponseRepository
	Actions   ComplianceActionRepository
	Scopes    ScopeEntityRepository
	Generator TextGenerator
	Limiter   domain.RateLimiter
	Changes   *ChangeEmitter
	Clock     Clock

	Model           string
	PromptVersion   string
	RateLimit       int
	RateLimitWindow time.Duration
}

type GenerateReportRequest struct {
	ParticipantID string
	PeriodStart   time.Time
	PeriodEnd     time.Time
}

func (uc *WeeklyReports) Generate(ctx context.Context, actor domain.Actor, req GenerateReportRequest) (*domain.WeeklyReport, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, domain.Validationf("periodEnd must be after periodStart")
	}
	participant, err := uc.Scopes.GetParticipant(ctx, actor.CompanyID, req.ParticipantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("participant %s not found", req.ParticipantID)
		}
		return nil, err
	}

	if uc.Limiter != nil && uc.RateLimit > 0 {
		decision, err := uc.Limiter.Allow(ctx, "reports:generate:"+actor.CompanyID, uc.RateLimit, uc.RateLimitWindow)
		switch {
		case err != nil:
			// Fail open: a limiter outage must not block generation, but it
			// has to be visible in the logs.
			logging.Warn(ctx, "rate limiter unavailable, skipping limit",
				slog.String("feature", reportFeatureKey),
				slog.Any("err", errs.Loggable(err)))
		case !decision.Allowed:
			return nil, domain.Conflictf("report generation rate limit reached, retry later")
		}
	}

	input, err := uc.buildInput(ctx, actor, *participant, req)
	if err != nil {
		return nil, err
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, errs.Wrap(err, "encode report input")
	}
	sum := sha256.Sum256(inputJSON)
	inputHash := hex.EncodeToString(sum[:])

	logCtx := logging.WithAttrs(ctx,
		slog.String("feature", reportFeatureKey),
		slog.String("participant_id", req.ParticipantID),
		slog.String("period_start", req.PeriodStart.Format(time.DateOnly)),
		slog.String("input_hash", inputHash),
		slog.String("prompt_version", uc.PromptVersion),
		slog.String("model", uc.Model),
	)

	now := uc.now()
	genLog := domain.GenerationLog{
		ID:            uuid.NewString(),
		CompanyID:     actor.CompanyID,
		FeatureKey:    reportFeatureKey,
		ParticipantID: req.ParticipantID,
		PeriodStart:   req.PeriodStart.UTC(),
		Model:         uc.Model,
		PromptVersion: uc.PromptVersion,
		InputHash:     inputHash,
		CreatedAt:     now,
	}

	result, genErr := uc.Generator.Generate(ctx, TextGenRequest{
		System: reportSystemPrompt,
		Prompt: fmt.Sprintf(reportUserPromptTemplate, string(inputJSON)),
	})
	if genErr != nil {
		genLog.Success = false
		genLog.ErrorMessage = genErr.Error()
		if logErr := uc.Reports.AppendLog(ctx, genLog); logErr != nil {
			logging.Error(logCtx, "generation log append failed", slog.Any("err", errs.Loggable(logErr)))
		}
		logging.Error(logCtx, "report generation failed", slog.Any("err", errs.Loggable(genErr)))
		return nil, domain.Externalf("report generation is currently unavailable")
	}
	if result.Model != "" {
		genLog.Model = result.Model
	}
	genLog.Success = true
	if err := uc.Reports.AppendLog(ctx, genLog); err != nil {
		logging.Error(logCtx, "generation log append failed", slog.Any("err", errs.Loggable(err)))
	}
	logging.Info(logCtx, "report generated")

	report := domain.WeeklyReport{
		ID:            uuid.NewString(),
		CompanyID:     actor.CompanyID,
		ParticipantID: req.ParticipantID,
		PeriodStart:   req.PeriodStart.UTC(),
		PeriodEnd:     req.PeriodEnd.UTC(),
		Content:       strings.TrimSpace(result.Text),
		Status:        domain.ReportDraft,
		Model:         genLog.Model,
		PromptVersion: uc.PromptVersion,
		InputHash:     inputHash,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Reports.Create(ctx, report); err != nil {
		return nil, err
	}
	if err := uc.Changes.Emit(ctx, actor, domain.ChangeReportGenerated, domain.EntityWeeklyReport, report.ID, nil, report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (uc *WeeklyReports) buildInput(ctx context.Context, actor domain.Actor, participant domain.Participant, req GenerateReportRequest) (domain.ReportInput, error) {
	from := req.PeriodStart.UTC()
	to := req.PeriodEnd.UTC()
	runs, err := uc.Runs.List(ctx, actor.CompanyID, RunFilter{
		ScopeType: domain.ScopeParticipant,
		ScopeID:   participant.ID,
		Statuses:  []domain.RunStatus{domain.RunSubmitted, domain.RunLocked},
		From:      &from,
		To:        &to,
	})
	if err != nil {
		return domain.ReportInput{}, err
	}

	input := domain.ReportInput{
		ParticipantName: participant.Name,
		PeriodStart:     from.Format(time.DateOnly),
		PeriodEnd:       to.Format(time.DateOnly),
		Runs:            make([]domain.ReportRunSummary, 0, len(runs)),
	}
	itemsByTemplate := make(map[string][]domain.ComplianceTemplateItem)
	templateNames := make(map[string]string)
	for _, run := range runs {
		items, ok := itemsByTemplate[run.TemplateID]
		if !ok {
			items, err = uc.Templates.ListItems(ctx, actor.CompanyID, run.TemplateID)
			if err != nil {
				return domain.ReportInput{}, err
			}
			itemsByTemplate[run.TemplateID] = items
			if tpl, err := uc.Templates.Get(ctx, actor.CompanyID, run.TemplateID); err == nil {
				templateNames[run.TemplateID] = tpl.Name
			}
		}
		responses, err := uc.Responses.ListByRun(ctx, actor.CompanyID, run.ID)
		if err != nil {
			return domain.ReportInput{}, err
		}
		valueByItem := make(map[string]string, len(responses))
		for _, resp := range responses {
			valueByItem[resp.ItemID] = resp.Value
		}
		criticalFails := 0
		for _, item := range items {
			if item.Critical && strings.EqualFold(valueByItem[item.ID], "NO") {
				criticalFails++
			}
		}
		input.Runs = append(input.Runs, domain.ReportRunSummary{
			TemplateName:  templateNames[run.TemplateID],
			Date:          run.PeriodStart.Format(time.DateOnly),
			StatusColor:   domain.DeriveStatusColor(items, valueByItem),
			CriticalFails: criticalFails,
			TotalItems:    len(items),
		})
	}

	actions, err := uc.Actions.List(ctx, actor.CompanyID, ActionFilter{
		Status:    domain.ActionOpen,
		ScopeType: domain.ScopeParticipant,
		ScopeID:   participant.ID,
	})
	if err != nil {
		return domain.ReportInput{}, err
	}
	input.OpenActions = len(actions)
	return input, nil
}

func (uc *WeeklyReports) List(ctx context.Context, actor domain.Actor, participantID string) ([]domain.WeeklyReport, error) {
	return uc.Reports.List(ctx, actor.CompanyID, participantID)
}

func (uc *WeeklyReports) Update(ctx context.Context, actor domain.Actor, reportID string, update ReportUpdate) error {
	return uc.Reports.Update(ctx, actor.CompanyID, reportID, update)
}

func (uc *WeeklyReports) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
