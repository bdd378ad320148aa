package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiofit/class-booking-api/internal/service"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
	"github.com/studiofit/class-booking-api/pkg/response"
)

// InstructorAssignmentHandler exposes instructor assignment endpoints.
type InstructorAssignmentHandler struct {
	assignments *service.InstructorAssignmentService
}

// NewInstructorAssignmentHandler constructs InstructorAssignmentHandler.
func NewInstructorAssignmentHandler(assignments *service.InstructorAssignmentService) *InstructorAssignmentHandler {
	return &InstructorAssignmentHandler{assignments: assignments}
}

// Assign godoc
// @Summary Assign an instructor to a class
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.AssignInstructorRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /admin/classes/{id}/instructors [post]
func (h *InstructorAssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignment, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Remove godoc
// @Summary Remove an instructor from a class
// @Tags Instructors
// @Produce json
// @Param id path string true "Class ID"
// @Param instructorId path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id}/instructors/{instructorId} [delete]
func (h *InstructorAssignmentHandler) Remove(c *gin.Context) {
	assignment, err := h.assignments.Remove(c.Request.Context(), c.Param("id"), c.Param("instructorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ListByClass godoc
// @Summary List instructors assigned to a class
// @Tags Instructors
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /admin/classes/{id}/instructors [get]
func (h *InstructorAssignmentHandler) ListByClass(c *gin.Context) {
	assignments, err := h.assignments.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// MyAssignments godoc
// @Summary List classes assigned to the authenticated instructor
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors/me/classes [get]
func (h *InstructorAssignmentHandler) MyAssignments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignments, err := h.assignments.ListByInstructor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}
