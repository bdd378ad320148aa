package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiofit/class-booking-api/internal/models"
	"github.com/studiofit/class-booking-api/internal/service"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
	"github.com/studiofit/class-booking-api/pkg/response"
)

// CancellationRuleHandler exposes refund-policy rule endpoints.
type CancellationRuleHandler struct {
	rules *service.CancellationRuleService
}

// NewCancellationRuleHandler constructs CancellationRuleHandler.
func NewCancellationRuleHandler(rules *service.CancellationRuleService) *CancellationRuleHandler {
	return &CancellationRuleHandler{rules: rules}
}

// List godoc
// @Summary List cancellation rules
// @Tags CancellationRules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/cancellation-rules [get]
func (h *CancellationRuleHandler) List(c *gin.Context) {
	rules, err := h.rules.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// Create godoc
// @Summary Create a cancellation rule (activates it, deactivating others)
// @Tags CancellationRules
// @Accept json
// @Produce json
// @Param payload body service.CreateCancellationRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /admin/cancellation-rules [post]
func (h *CancellationRuleHandler) Create(c *gin.Context) {
	var req service.CreateCancellationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rule, err := h.rules.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// Update godoc
// @Summary Update a cancellation rule
// @Tags CancellationRules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body models.CancellationRulePatch true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /admin/cancellation-rules/{id} [patch]
func (h *CancellationRuleHandler) Update(c *gin.Context) {
	var patch models.CancellationRulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, err := h.rules.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Delete godoc
// @Summary Delete a cancellation rule
// @Tags CancellationRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 "No Content"
// @Router /admin/cancellation-rules/{id} [delete]
func (h *CancellationRuleHandler) Delete(c *gin.Context) {
	if err := h.rules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Active godoc
// @Summary Get the currently active cancellation rule
// @Tags CancellationRules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/cancellation-rules/active [get]
func (h *CancellationRuleHandler) Active(c *gin.Context) {
	rule, err := h.rules.GetActiveRule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}
