package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/internal/hookmind/store"
	"github.com/kiosk404/hookmind/internal/pkg/core"
	"github.com/kiosk404/hookmind/pkg/errorx"
)

const defaultLifecycleLimit = 50

// LifecycleHandler serves the registry's lifecycle log.
type LifecycleHandler struct {
	log store.LifecycleLog
}

// NewLifecycleHandler creates a new LifecycleHandler.
func NewLifecycleHandler(log store.LifecycleLog) *LifecycleHandler {
	return &LifecycleHandler{log: log}
}

// List handles GET /v1/lifecycle?limit=N, newest first.
func (h *LifecycleHandler) List(c *gin.Context) {
	limit := defaultLifecycleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			core.WriteResponse(c, errorx.WithCode(ErrValidation, "limit must be a non-negative integer, got %q", raw), nil)
			return
		}
		limit = n
	}

	entries, err := h.log.Recent(c.Request.Context(), limit)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrLifecycleList, "list lifecycle events"), nil)
		return
	}
	resp := make([]LifecycleResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toLifecycleResponse(e))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}
