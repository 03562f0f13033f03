package usecase

import (
	"context"
	"time"

	"complyd/internal/domain"
)

// Rollup aggregates run outcomes and open corrective actions for the
// dashboard. Colors are re-derived from current template items and
// responses on every query rather than read from the stored run row, so the
// rollup always reflects the same logic submission used.
type Rollup struct {
	Runs      ComplianceRunRepository
	Templates ComplianceTemplateRepository
	Responses ComplianceResponseRepository
	Actions   ComplianceActionRepository
}

type RollupFilter struct {
	TemplateID string
	ScopeType  domain.ScopeType
	ScopeID    string
	From       *time.Time
	To         *time.Time
}

type RollupResult struct {
	Red         int `json:"red"`
	Amber       int `json:"amber"`
	Green       int `json:"green"`
	OpenHigh    int `json:"open_high"`
	OpenMedium  int `json:"open_medium"`
	OpenLow     int `json:"open_low"`
	RunsCounted int `json:"runs_counted"`
}

func (uc *Rollup) Get(ctx context.Context, actor domain.Actor, filter RollupFilter) (*RollupResult, error) {
	runs, err := uc.Runs.List(ctx, actor.CompanyID, RunFilter{
		TemplateID: filter.TemplateID,
		ScopeType:  filter.ScopeType,
		ScopeID:    filter.ScopeID,
		Statuses:   []domain.RunStatus{domain.RunSubmitted, domain.RunLocked},
		From:       filter.From,
		To:         filter.To,
	})
	if err != nil {
		return nil, err
	}

	result := &RollupResult{}
	itemsByTemplate := make(map[string][]domain.ComplianceTemplateItem)
	for _, run := range runs {
		items, ok := itemsByTemplate[run.TemplateID]
		if !ok {
			items, err = uc.Templates.ListItems(ctx, actor.CompanyID, run.TemplateID)
			if err != nil {
				return nil, err
			}
			itemsByTemplate[run.TemplateID] = items
		}
		responses, err := uc.Responses.ListByRun(ctx, actor.CompanyID, run.ID)
		if err != nil {
			return nil, err
		}
		valueByItem := make(map[string]string, len(responses))
		for _, resp := range responses {
			valueByItem[resp.ItemID] = resp.Value
		}
		switch domain.DeriveStatusColor(items, valueByItem) {
		case domain.ColorRed:
			result.Red++
		case domain.ColorAmber:
			result.Amber++
		default:
			result.Green++
		}
		result.RunsCounted++
	}

	actions, err := uc.Actions.List(ctx, actor.CompanyID, ActionFilter{
		Status:    domain.ActionOpen,
		ScopeType: filter.ScopeType,
		ScopeID:   filter.ScopeID,
		From:      filter.From,
		To:        filter.To,
	})
	if err != nil {
		return nil, err
	}
	for _, action := range actions {
		switch action.Severity {
		case domain.SeverityHigh:
			result.OpenHigh++
		case domain.SeverityMedium:
			result.OpenMedium++
		default:
			result.OpenLow++
		}
	}
	return result, nil
}
