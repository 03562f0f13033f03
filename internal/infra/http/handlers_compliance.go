package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type createComplianceTemplatePayload struct {
	Name      string `json:"name" binding:"required"`
	ScopeType string `json:"scopeType" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
}

func (s *Server) createComplianceTemplate(c *gin.Context) {
	var payload createComplianceTemplatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	tpl, err := s.templates.Create(c.Request.Context(), actorFrom(c), usecase.CreateComplianceTemplateRequest{
		Name:      payload.Name,
		ScopeType: domain.ScopeType(payload.ScopeType),
		Frequency: domain.Frequency(payload.Frequency),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (s *Server) listComplianceTemplates(c *gin.Context) {
	templates, err := s.templates.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

type updateComplianceTemplatePayload struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

func (s *Server) updateComplianceTemplate(c *gin.Context) {
	var payload updateComplianceTemplatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	err := s.templates.Update(c.Request.Context(), actorFrom(c), c.Param("id"), usecase.ComplianceTemplateUpdate{
		Name:   payload.Name,
		Active: payload.Active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addComplianceItemPayload struct {
	Title     string `json:"title" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Critical  bool   `json:"critical"`
	SortOrder int    `json:"sortOrder"`
}

func (s *Server) addComplianceItem(c *gin.Context) {
	var payload addComplianceItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	item, err := s.templates.AddItem(c.Request.Context(), actorFrom(c), usecase.AddItemRequest{
		TemplateID: c.Param("id"),
		Title:      payload.Title,
		Type:       domain.ItemType(payload.Type),
		Critical:   payload.Critical,
		SortOrder:  payload.SortOrder,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) listComplianceItems(c *gin.Context) {
	items, err := s.templates.ListItems(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) removeComplianceItem(c *gin.Context) {
	if err := s.templates.RemoveItem(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createRunPayload struct {
	TemplateID  string     `json:"templateId" binding:"required"`
	ScopeID     string     `json:"scopeId" binding:"required"`
	Date        *time.Time `json:"date"`
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
}

func (s *Server) createRun(c *gin.Context) {
	var payload createRunPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	run, err := s.runs.CreateRun(c.Request.Context(), actorFrom(c), usecase.CreateRunRequest{
		TemplateID:  payload.TemplateID,
		ScopeID:     payload.ScopeID,
		Date:        payload.Date,
		PeriodStart: payload.PeriodStart,
		PeriodEnd:   payload.PeriodEnd,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (s *Server) listRuns(c *gin.Context) {
	filter := usecase.RunFilter{
		TemplateID: c.Query("templateId"),
		ScopeType:  domain.ScopeType(c.Query("scopeType")),
		ScopeID:    c.Query("scopeId"),
	}
	if statuses, ok := c.GetQueryArray("status"); ok {
		for _, status := range statuses {
			filter.Statuses = append(filter.Statuses, domain.RunStatus(status))
		}
	}
	var err error
	if filter.From, err = timeQuery(c, "from"); err != nil {
		writeError(c, err)
		return
	}
	if filter.To, err = timeQuery(c, "to"); err != nil {
		writeError(c, err)
		return
	}
	runs, err := s.runs.ListRuns(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	run, err := s.runs.GetRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

type respondPayload struct {
	ItemID         string `json:"itemId" binding:"required"`
	Value          string `json:"value"`
	Notes          string `json:"notes"`
	AttachmentPath string `json:"attachmentPath"`
}

func (s *Server) respond(c *gin.Context) {
	var payload respondPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	resp, err := s.runs.Respond(c.Request.Context(), actorFrom(c), usecase.RespondRequest{
		RunID:          c.Param("id"),
		ItemID:         payload.ItemID,
		Value:          payload.Value,
		Notes:          payload.Notes,
		AttachmentPath: payload.AttachmentPath,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) submitRun(c *gin.Context) {
	result, err := s.runs.Submit(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listActions(c *gin.Context) {
	filter := usecase.ActionFilter{
		Status:    domain.ActionStatus(c.Query("status")),
		ScopeType: domain.ScopeType(c.Query("scopeType")),
		ScopeID:   c.Query("scopeId"),
	}
	var err error
	if filter.From, err = timeQuery(c, "from"); err != nil {
		writeError(c, err)
		return
	}
	if filter.To, err = timeQuery(c, "to"); err != nil {
		writeError(c, err)
		return
	}
	actions, err := s.runs.ListActions(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

type closeActionPayload struct {
	Notes          string `json:"notes" binding:"required"`
	AttachmentPath string `json:"attachmentPath"`
}

func (s *Server) closeAction(c *gin.Context) {
	var payload closeActionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	action, err := s.runs.CloseAction(c.Request.Context(), actorFrom(c), usecase.CloseActionRequest{
		ActionID:       c.Param("id"),
		Notes:          payload.Notes,
		AttachmentPath: payload.AttachmentPath,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

func (s *Server) getRollup(c *gin.Context) {
	filter := usecase.RollupFilter{
		TemplateID: c.Query("templateId"),
		ScopeType:  domain.ScopeType(c.Query("scopeType")),
		ScopeID:    c.Query("scopeId"),
	}
	var err error
	if filter.From, err = timeQuery(c, "from"); err != nil {
		writeError(c, err)
		return
	}
	if filter.To, err = timeQuery(c, "to"); err != nil {
		writeError(c, err)
		return
	}
	result, err := s.rollup.Get(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse(time.DateOnly, raw)
	}
	if err != nil {
		return nil, domain.Validationf("%s must be RFC3339 or YYYY-MM-DD", name)
	}
	return &t, nil
}
