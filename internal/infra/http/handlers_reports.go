package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

type generateReportPayload struct {
	ParticipantID string    `json:"participantId" binding:"required"`
	PeriodStart   time.Time `json:"periodStart" binding:"required"`
	PeriodEnd     time.Time `json:"periodEnd" binding:"required"`
}

func (s *Server) generateReport(c *gin.Context) {
	var payload generateReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	report, err := s.reports.Generate(c.Request.Context(), actorFrom(c), usecase.GenerateReportRequest{
		ParticipantID: payload.ParticipantID,
		PeriodStart:   payload.PeriodStart,
		PeriodEnd:     payload.PeriodEnd,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) listReports(c *gin.Context) {
	reports, err := s.reports.List(c.Request.Context(), actorFrom(c), c.Query("participantId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type updateReportPayload struct {
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (s *Server) updateReport(c *gin.Context) {
	var payload updateReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	update := usecase.ReportUpdate{Content: payload.Content}
	if payload.Status != nil {
		status := domain.ReportStatus(*payload.Status)
		if status != domain.ReportDraft && status != domain.ReportPublished {
			writeError(c, domain.Validationf("status must be DRAFT or PUBLISHED"))
			return
		}
		update.Status = &status
	}
	if err := s.reports.Update(c.Request.Context(), actorFrom(c), c.Param("id"), update); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
