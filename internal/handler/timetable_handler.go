package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/dto"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
	appErrors "github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/errors"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*models.TimetableRun, error)
	GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*models.TimetableRun, error)
	GetRun(ctx context.Context, id string) (*models.TimetableRun, error)
	ExportRun(ctx context.Context, id, format string) ([]byte, string, string, error)
}

// TimetableHandler exposes the solving endpoints.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableGenerator) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate runs a solving run synchronously and returns the finished run.
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	run, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		if run != nil {
			c.JSON(appErr.Status, response.Envelope{Data: dto.GenerateTimetableResponse{Run: run}, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.GenerateTimetableResponse{Run: run})
}

// GenerateAsync enqueues a solving run and returns its ID immediately.
func (h *TimetableHandler) GenerateAsync(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	run, err := h.service.GenerateAsync(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.EnqueueTimetableResponse{RunID: run.ID, Status: run.Status})
}

// GetRun returns a stored run by ID.
func (h *TimetableHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.GenerateTimetableResponse{Run: run})
}

// ExportRun streams a finished run as CSV or PDF.
func (h *TimetableHandler) ExportRun(c *gin.Context) {
	payload, contentType, filename, err := h.service.ExportRun(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

// bindOptionalJSON tolerates an empty body so every override stays optional.
func bindOptionalJSON(c *gin.Context, req *dto.GenerateTimetableRequest) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(req)
}
