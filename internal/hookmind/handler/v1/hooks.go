package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/pkg/core"
	"github.com/kiosk404/hookmind/pkg/errorx"
)

// HookHandler exposes the hook table and the dispatcher.
type HookHandler struct {
	table      *plugin.HookTable
	dispatcher *plugin.Dispatcher
}

// NewHookHandler creates a new HookHandler.
func NewHookHandler(table *plugin.HookTable, dispatcher *plugin.Dispatcher) *HookHandler {
	return &HookHandler{table: table, dispatcher: dispatcher}
}

// List handles GET /v1/hooks.
func (h *HookHandler) List(c *gin.Context) {
	names := h.table.Events()
	resp := make([]EventResponse, 0, len(names))
	for _, event := range names {
		resp = append(resp, EventResponse{
			Event:    event,
			Handlers: h.table.Len(event),
			Policy:   h.dispatcher.Policy(event).String(),
		})
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Order handles GET /v1/hooks/:event, returning the resolved handler order.
func (h *HookHandler) Order(c *gin.Context) {
	event := c.Param("event")
	regs := h.table.ResolvedOrder(event)
	resp := make([]HookResponse, 0, len(regs))
	for _, reg := range regs {
		resp = append(resp, HookResponse{
			Event:    reg.Event,
			Plugin:   reg.Plugin,
			Order:    reg.Order.String(),
			Sequence: reg.Sequence,
		})
	}
	core.WriteResponse(c, nil, gin.H{"event": event, "policy": h.dispatcher.Policy(event).String(), "data": resp})
}

// Dispatch handles POST /v1/hooks/:event/dispatch. The optional body seeds
// the event's context.
func (h *HookHandler) Dispatch(c *gin.Context) {
	event := c.Param("event")
	data := events.NewContext(event)
	if data == nil {
		core.WriteResponse(c, errorx.WithCode(ErrEventUnknown, "event %q has no dispatch context", event), nil)
		return
	}
	if err := c.ShouldBindJSON(data); err != nil && !errors.Is(err, io.EOF) {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind %s context", event), nil)
		return
	}

	out, err := h.dispatcher.Dispatch(c.Request.Context(), event, data)
	if err != nil {
		var hee *plugin.HandlerExecutionError
		if errors.As(err, &hee) {
			core.WriteResponse(c, errorx.WrapC(err, ErrHandlerFailed, "dispatch %s", event), nil)
			return
		}
		core.WriteResponse(c, errorx.WrapC(err, ErrDispatchFailed, "dispatch %s", event), nil)
		return
	}
	core.WriteResponse(c, nil, DispatchResponse{Event: event, Context: out})
}

// Stats handles GET /v1/hooks/stats.
func (h *HookHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.dispatcher.Stats())
}
