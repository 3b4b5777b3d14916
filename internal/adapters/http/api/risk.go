// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RiskHandler handles risk classification requests.
type RiskHandler struct {
	deps Dependencies
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(deps Dependencies) *RiskHandler {
	return &RiskHandler{deps: deps}
}

// HandleGetRiskReport handles GET /api/risk?date=YYYY-MM-DD requests. It
// returns the currently non-safe securities, most severe first.
func (h *RiskHandler) HandleGetRiskReport(c *gin.Context) {
	ref, err := queryDate(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
		return
	}

	report, err := h.deps.RiskReport(c.Request.Context(), ref)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleGetSecurityRisk handles GET /api/securities/:code/risk requests.
// Unlike the report, this returns the assessment even when it is safe.
func (h *RiskHandler) HandleGetSecurityRisk(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		writeError(c, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: missing security code", ErrBadRequest))
		return
	}

	ref, err := queryDate(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
		return
	}

	assessment, err := h.deps.Assess(c.Request.Context(), code, ref)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	c.JSON(http.StatusOK, assessment)
}
