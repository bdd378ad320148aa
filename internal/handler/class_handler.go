package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studiofit/class-booking-api/internal/models"
	"github.com/studiofit/class-booking-api/internal/service"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
	"github.com/studiofit/class-booking-api/pkg/response"
)

// ClassHandler exposes class session endpoints.
type ClassHandler struct {
	classes *service.ClassSessionService
	exports *service.ExportService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(classes *service.ClassSessionService, exports *service.ExportService) *ClassHandler {
	return &ClassHandler{classes: classes, exports: exports}
}

type cancelClassRequest struct {
	Reason *string `json:"reason"`
}

// List godoc
// @Summary List classes with seat availability
// @Tags Classes
// @Produce json
// @Param status query string false "Filter by status"
// @Param discipline query string false "Filter by discipline"
// @Param skillLevel query string false "Filter by skill level"
// @Param from query string false "Scheduled from (RFC3339)"
// @Param to query string false "Scheduled until (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassSessionFilter
	filter.Status = models.ClassStatus(strings.ToUpper(c.Query("status")))
	filter.Discipline = models.Discipline(strings.ToUpper(c.Query("discipline")))
	filter.SkillLevel = models.SkillLevel(strings.ToUpper(c.Query("skillLevel")))
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	sessions, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get godoc
// @Summary Get class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	session, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create godoc
// @Summary Schedule a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /admin/classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.classes.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update a scheduled class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.ClassSessionPatch true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id} [patch]
func (h *ClassHandler) Update(c *gin.Context) {
	var patch models.ClassSessionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.classes.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Cancel godoc
// @Summary Cancel a scheduled class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body cancelClassRequest false "Optional cancellation reason"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id}/cancel [post]
func (h *ClassHandler) Cancel(c *gin.Context) {
	var req cancelClassRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	session, err := h.classes.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Complete godoc
// @Summary Mark a class as completed
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id}/complete [post]
func (h *ClassHandler) Complete(c *gin.Context) {
	session, err := h.classes.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ExportRoster godoc
// @Summary Export the approved roster of a class
// @Tags Classes
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /admin/classes/{id}/roster/export [get]
func (h *ClassHandler) ExportRoster(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.exports.Roster(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
