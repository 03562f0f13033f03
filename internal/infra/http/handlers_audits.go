package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type scopeItemPayload struct {
	LineItemID string `json:"lineItemId" binding:"required"`
	Label      string `json:"label"`
}

type createAuditPayload struct {
	Type           string             `json:"type" binding:"required"`
	ServiceContext string             `json:"serviceContext" binding:"required"`
	StartDate      *time.Time         `json:"startDate"`
	EndDate        *time.Time         `json:"endDate"`
	AuditorName    string             `json:"auditorName"`
	AuditorOrg     string             `json:"auditorOrg"`
	AuditorEmail   string             `json:"auditorEmail"`
	ScopeItems     []scopeItemPayload `json:"scopeItems"`
}

func (s *Server) createAudit(c *gin.Context) {
	var payload createAuditPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	audit, err := s.audits.Create(c.Request.Context(), actorFrom(c), usecase.CreateAuditRequest{
		Type:           domain.AuditType(payload.Type),
		ServiceContext: payload.ServiceContext,
		StartDate:      payload.StartDate,
		EndDate:        payload.EndDate,
		AuditorName:    payload.AuditorName,
		AuditorOrg:     payload.AuditorOrg,
		AuditorEmail:   payload.AuditorEmail,
		ScopeItems:     scopeItems(payload.ScopeItems),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, audit)
}

func (s *Server) listAudits(c *gin.Context) {
	filter := usecase.AuditFilter{
		Status: domain.AuditStatus(c.Query("status")),
		Type:   domain.AuditType(c.Query("type")),
	}
	audits, err := s.audits.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": audits})
}

func (s *Server) getAudit(c *gin.Context) {
	detail, err := s.audits.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type updateScopePayload struct {
	ScopeItems []scopeItemPayload `json:"scopeItems" binding:"required"`
}

func (s *Server) updateAuditScope(c *gin.Context) {
	var payload updateScopePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	if err := s.audits.UpdateScope(c.Request.Context(), actorFrom(c), c.Param("id"), scopeItems(payload.ScopeItems)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type selectTemplatePayload struct {
	TemplateID string `json:"templateId" binding:"required"`
}

func (s *Server) selectAuditTemplate(c *gin.Context) {
	var payload selectTemplatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	run, err := s.audits.SelectTemplate(c.Request.Context(), actorFrom(c), c.Param("id"), payload.TemplateID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) startAudit(c *gin.Context) {
	audit, err := s.audits.Start(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

func (s *Server) submitAudit(c *gin.Context) {
	audit, err := s.audits.SubmitForReview(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

type closeAuditPayload struct {
	Reason string `json:"reason"`
}

func (s *Server) closeAudit(c *gin.Context) {
	var payload closeAuditPayload
	if err := c.ShouldBindJSON(&payload); err != nil && c.Request.ContentLength > 0 {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	audit, err := s.audits.Close(c.Request.Context(), actorFrom(c), c.Param("id"), payload.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

func (s *Server) auditChanges(c *gin.Context) {
	records, err := s.changes.History(c.Request.Context(), actorFrom(c), domain.EntityAudit, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": records})
}

type saveResponsePayload struct {
	IndicatorID string `json:"indicatorId" binding:"required"`
	Rating      string `json:"rating" binding:"required"`
	Comment     string `json:"comment"`
}

func (s *Server) saveResponse(c *gin.Context) {
	var payload saveResponsePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	result, err := s.responses.Save(c.Request.Context(), actorFrom(c), usecase.SaveResponseRequest{
		AuditID:     c.Param("id"),
		IndicatorID: payload.IndicatorID,
		Rating:      domain.Rating(payload.Rating),
		Comment:     payload.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listAuditFindings(c *gin.Context) {
	findings, err := s.findings.ListByAudit(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"findings": findings})
}

func (s *Server) listAuditTemplates(c *gin.Context) {
	templates, err := s.audits.Templates.List(c.Request.Context(), actorFrom(c).CompanyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) listTemplateIndicators(c *gin.Context) {
	indicators, err := s.audits.Templates.ListIndicators(c.Request.Context(), actorFrom(c).CompanyID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"indicators": indicators})
}

func scopeItems(payload []scopeItemPayload) []usecase.ScopeItemInput {
	items := make([]usecase.ScopeItemInput, 0, len(payload))
	for _, item := range payload {
		items = append(items, usecase.ScopeItemInput{LineItemID: item.LineItemID, Label: item.Label})
	}
	return items
}
