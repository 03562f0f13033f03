package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complyd/internal/domain"
	"complyd/internal/usecase"
)

func (s *Server) getFinding(c *gin.Context) {
	detail, err := s.findings.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type updateFindingPayload struct {
	Status      *string    `json:"status"`
	OwnerID     *string    `json:"ownerId"`
	DueDate     *time.Time `json:"dueDate"`
	ClosureNote string     `json:"closureNote"`
}

func (s *Server) updateFinding(c *gin.Context) {
	var payload updateFindingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	req := usecase.UpdateFindingRequest{
		FindingID:   c.Param("id"),
		OwnerID:     payload.OwnerID,
		DueDate:     payload.DueDate,
		ClosureNote: payload.ClosureNote,
	}
	if payload.Status != nil {
		status := domain.FindingStatus(*payload.Status)
		req.Status = &status
	}
	finding, err := s.findings.Update(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, finding)
}

type requestEvidencePayload struct {
	Type    string     `json:"type"`
	Note    string     `json:"note"`
	DueDate *time.Time `json:"dueDate"`
}

func (s *Server) requestEvidence(c *gin.Context) {
	var payload requestEvidencePayload
	if err := c.ShouldBindJSON(&payload); err != nil && c.Request.ContentLength > 0 {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	request, err := s.findings.RequestEvidence(c.Request.Context(), actorFrom(c), usecase.RequestEvidenceRequest{
		FindingID: c.Param("id"),
		Type:      payload.Type,
		Note:      payload.Note,
		DueDate:   payload.DueDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

type submitEvidencePayload struct {
	Kind        string `json:"kind" binding:"required"`
	FilePath    string `json:"filePath"`
	MimeType    string `json:"mimeType"`
	ExternalURL string `json:"externalUrl"`
}

func (s *Server) submitEvidence(c *gin.Context) {
	var payload submitEvidencePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	request, err := s.findings.SubmitEvidence(c.Request.Context(), actorFrom(c), usecase.SubmitEvidenceRequest{
		RequestID:   c.Param("id"),
		Kind:        domain.EvidenceKind(payload.Kind),
		FilePath:    payload.FilePath,
		MimeType:    payload.MimeType,
		ExternalURL: payload.ExternalURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (s *Server) listEvidenceItems(c *gin.Context) {
	items, err := s.findings.ListEvidenceItems(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type reviewEvidencePayload struct {
	Decision string `json:"decision" binding:"required"`
	Note     string `json:"note"`
}

func (s *Server) reviewEvidence(c *gin.Context) {
	var payload reviewEvidencePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}
	request, err := s.findings.ReviewEvidence(c.Request.Context(), actorFrom(c), usecase.ReviewEvidenceRequest{
		RequestID: c.Param("id"),
		Decision:  domain.ReviewDecision(payload.Decision),
		Note:      payload.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
