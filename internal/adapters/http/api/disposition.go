// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DispositionHandler handles disposition query requests.
type DispositionHandler struct {
	deps Dependencies
}

// NewDispositionHandler creates a new disposition handler.
func NewDispositionHandler(deps Dependencies) *DispositionHandler {
	return &DispositionHandler{deps: deps}
}

// HandleGetDisposition handles GET /api/disposition?date=YYYY-MM-DD requests.
// It returns the intervals whose period contains the date, boundaries
// included.
func (h *DispositionHandler) HandleGetDisposition(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
		return
	}

	intervals, err := h.deps.DispositionsCovering(c.Request.Context(), date)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	c.JSON(http.StatusOK, intervals)
}
