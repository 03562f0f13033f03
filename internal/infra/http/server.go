package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complyd/internal/bootstrap/logging"
	"complyd/internal/domain"
	"complyd/internal/usecase"
)

// Server exposes the workflow operations over HTTP. Authentication is
// upstream: the gateway injects identity headers, the server only validates
// their shape.
type Server struct {
	audits    *usecase.AuditLifecycle
	responses *usecase.IndicatorResponses
	findings  *usecase.FindingWorkflow
	templates *usecase.ComplianceTemplates
	runs      *usecase.ComplianceRuns
	rollup    *usecase.Rollup
	reports   *usecase.WeeklyReports
	changes   *usecase.ChangeEmitter
}

func NewServer(
	audits *usecase.AuditLifecycle,
	responses *usecase.IndicatorResponses,
	findings *usecase.FindingWorkflow,
	templates *usecase.ComplianceTemplates,
	runs *usecase.ComplianceRuns,
	rollup *usecase.Rollup,
	reports *usecase.WeeklyReports,
	changes *usecase.ChangeEmitter,
) *Server {
	return &Server{
		audits:    audits,
		responses: responses,
		findings:  findings,
		templates: templates,
		runs:      runs,
		rollup:    rollup,
		reports:   reports,
		changes:   changes,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/v1", requireActor())

	api.POST("/audits", s.createAudit)
	api.GET("/audits", s.listAudits)
	api.GET("/audits/:id", s.getAudit)
	api.PUT("/audits/:id/scope", s.updateAuditScope)
	api.POST("/audits/:id/template", s.selectAuditTemplate)
	api.POST("/audits/:id/start", s.startAudit)
	api.POST("/audits/:id/submit", s.submitAudit)
	api.POST("/audits/:id/close", s.closeAudit)
	api.GET("/audits/:id/changes", s.auditChanges)
	api.POST("/audits/:id/responses", s.saveResponse)
	api.GET("/audits/:id/findings", s.listAuditFindings)
	api.GET("/audit-templates", s.listAuditTemplates)
	api.GET("/audit-templates/:id/indicators", s.listTemplateIndicators)

	api.GET("/findings/:id", s.getFinding)
	api.PATCH("/findings/:id", s.updateFinding)
	api.POST("/findings/:id/evidence-request", s.requestEvidence)
	api.POST("/evidence-requests/:id/items", s.submitEvidence)
	api.GET("/evidence-requests/:id/items", s.listEvidenceItems)
	api.POST("/evidence-requests/:id/review", s.reviewEvidence)

	api.POST("/compliance/templates", s.createComplianceTemplate)
	api.GET("/compliance/templates", s.listComplianceTemplates)
	api.PATCH("/compliance/templates/:id", s.updateComplianceTemplate)
	api.POST("/compliance/templates/:id/items", s.addComplianceItem)
	api.GET("/compliance/templates/:id/items", s.listComplianceItems)
	api.DELETE("/compliance/items/:id", s.removeComplianceItem)

	api.POST("/compliance/runs", s.createRun)
	api.GET("/compliance/runs", s.listRuns)
	api.GET("/compliance/runs/:id", s.getRun)
	api.PUT("/compliance/runs/:id/responses", s.respond)
	api.POST("/compliance/runs/:id/submit", s.submitRun)

	api.GET("/compliance/actions", s.listActions)
	api.POST("/compliance/actions/:id/close", s.closeAction)
	api.GET("/compliance/rollup", s.getRollup)

	api.POST("/reports/weekly", s.generateReport)
	api.GET("/reports/weekly", s.listReports)
	api.PATCH("/reports/weekly/:id", s.updateReport)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Info(c.Request.Context(), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

const actorKey = "complyd.actor"

// requireActor builds the request actor from the gateway identity headers.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := domain.Actor{
			UserID:    c.GetHeader("X-User-ID"),
			CompanyID: c.GetHeader("X-Company-ID"),
			Role:      domain.Role(c.GetHeader("X-Role")),
		}
		if actor.UserID == "" || actor.CompanyID == "" {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "identity headers are required")
			c.Abort()
			return
		}
		switch actor.Role {
		case domain.RoleCompanyAdmin, domain.RoleReviewer, domain.RoleStaff, domain.RoleStaffReadOnly:
		default:
			writeErrorCode(c, http.StatusUnauthorized, "UNKNOWN_ROLE", "unknown role "+string(actor.Role))
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(domain.Actor)
	return actor
}
