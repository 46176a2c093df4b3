package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	domain "github.com/arslant84/syntra.production-sub009/internal/domain/workflow"
	"github.com/arslant84/syntra.production-sub009/internal/report"
	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"github.com/arslant84/syntra.production-sub009/internal/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine   *workflow.Engine
	store    *repository.Store
	exporter *report.RegisterExporter
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(engine *workflow.Engine, store *repository.Store, exporter *report.RegisterExporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		store:    store,
		exporter: exporter,
		logger:   logger,
	}
}

// Response is the standard JSON envelope
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
}

// SubmitRequestBody is the submission payload
type SubmitRequestBody struct {
	Type           string            `json:"type" binding:"required"`
	RequestorName  string            `json:"requestor_name" binding:"required"`
	Department     string            `json:"department"`
	RequestorEmail string            `json:"requestor_email"`
	AdditionalData map[string]string `json:"additional_data"`
}

// ActionBody is the action payload
type ActionBody struct {
	Type           string `json:"type" binding:"required"`
	Action         string `json:"action" binding:"required"`
	Comment        string `json:"comment"`
	ExpectedStatus string `json:"expected_status"`
}

// actor resolves the acting identity from headers; session issuance happens
// upstream of this service
func actor(c *gin.Context) (entity.Actor, bool) {
	a := entity.Actor{
		StaffID: c.GetHeader("X-Staff-Id"),
		Name:    c.GetHeader("X-Staff-Name"),
	}
	return a, a.StaffID != ""
}

func statusForKind(kind string) int {
	switch kind {
	case "InvalidTransition":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusForbidden
	case "NotFound":
		return http.StatusNotFound
	case "StaleTransition", "AlreadyRunning":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	kind := domain.Kind(err)
	c.JSON(statusForKind(kind), Response{
		Success:   false,
		Error:     err.Error(),
		ErrorKind: kind,
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SubmitRequest handles POST /api/requests
func (h *Handlers) SubmitRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "missing X-Staff-Id header"})
		return
	}

	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	req, err := h.engine.SubmitRequest(c.Request.Context(), entity.RequestType(body.Type), workflow.SubmitPayload{
		RequestorName:  body.RequestorName,
		Department:     body.Department,
		RequestorEmail: body.RequestorEmail,
		AdditionalData: body.AdditionalData,
	}, a)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: req})
}

// ActOnRequest handles POST /api/requests/:id/actions
func (h *Handlers) ActOnRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "missing X-Staff-Id header"})
		return
	}

	var body ActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.engine.ActOnRequest(
		c.Request.Context(),
		c.Param("id"),
		entity.RequestType(body.Type),
		domain.Action(body.Action),
		a,
		body.Comment,
		body.ExpectedStatus,
	)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// GetRequest handles GET /api/requests/:id?type=Transport
func (h *Handlers) GetRequest(c *gin.Context) {
	reqType := entity.RequestType(c.Query("type"))
	if !reqType.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing or invalid type query parameter"})
		return
	}

	req, err := h.store.Requests().GetByID(c.Param("id"), reqType)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "request not found", ErrorKind: "NotFound"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// GetSteps handles GET /api/requests/:id/steps
func (h *Handlers) GetSteps(c *gin.Context) {
	steps, err := h.store.Steps().ListByRequest(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: steps})
}

// GetExecution handles GET /api/requests/:id/execution?type=Transport
func (h *Handlers) GetExecution(c *gin.Context) {
	reqType := entity.RequestType(c.Query("type"))
	if !reqType.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing or invalid type query parameter"})
		return
	}

	exec, err := h.engine.GetExecutionStatus(c.Request.Context(), c.Param("id"), reqType)
	if err != nil {
		h.fail(c, err)
		return
	}
	if exec == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "no execution recorded", ErrorKind: "NotFound"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: exec})
}

// ListRequests handles GET /api/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	var query struct {
		Type   string `form:"type"`
		Status string `form:"status"`
		Limit  int    `form:"limit"`
		Offset int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	requests, err := h.store.Requests().List(repository.ListFilter{
		Type:   entity.RequestType(query.Type),
		Status: query.Status,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// ExportRegister handles GET /api/reports/register
func (h *Handlers) ExportRegister(c *gin.Context) {
	f, err := h.exporter.Export(repository.ListFilter{
		Type:   entity.RequestType(c.Query("type")),
		Status: c.Query("status"),
		Limit:  1000,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="approval_register.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream register", zap.Error(err))
	}
}
