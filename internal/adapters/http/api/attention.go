// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AttentionHandler handles attention query requests.
type AttentionHandler struct {
	deps Dependencies
}

// NewAttentionHandler creates a new attention handler.
func NewAttentionHandler(deps Dependencies) *AttentionHandler {
	return &AttentionHandler{deps: deps}
}

// HandleGetAttention handles GET /api/attention?date=YYYY-MM-DD requests.
// Without a date parameter it serves today's events.
func (h *AttentionHandler) HandleGetAttention(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
		return
	}

	events, err := h.deps.AttentionOn(c.Request.Context(), date)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	c.JSON(http.StatusOK, events)
}
