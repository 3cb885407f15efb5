package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/pkg/core"
	"github.com/kiosk404/hookmind/pkg/errorx"
)

// PluginHandler handles the plugin lifecycle REST API endpoints.
type PluginHandler struct {
	registry *plugin.Registry
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(registry *plugin.Registry) *PluginHandler {
	return &PluginHandler{registry: registry}
}

// List handles GET /v1/plugins.
func (h *PluginHandler) List(c *gin.Context) {
	descriptors := h.registry.List()
	resp := make([]PluginResponse, 0, len(descriptors))
	for _, d := range descriptors {
		resp = append(resp, toPluginResponse(d, false))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Get handles GET /v1/plugins/:name.
func (h *PluginHandler) Get(c *gin.Context) {
	name := c.Param("name")
	d, ok := h.registry.Get(name)
	if !ok {
		core.WriteResponse(c, errorx.WrapC(plugin.ErrPluginNotFound, ErrPluginNotFound, "plugin %q", name), nil)
		return
	}
	core.WriteResponse(c, nil, toPluginResponse(d, true))
}

// Install handles POST /v1/plugins/:name/install.
func (h *PluginHandler) Install(c *gin.Context) {
	h.transition(c, "install", h.registry.Install)
}

// Activate handles POST /v1/plugins/:name/activate.
func (h *PluginHandler) Activate(c *gin.Context) {
	h.transition(c, "activate", h.registry.Activate)
}

// Deactivate handles POST /v1/plugins/:name/deactivate.
func (h *PluginHandler) Deactivate(c *gin.Context) {
	h.transition(c, "deactivate", h.registry.Deactivate)
}

// Uninstall handles POST /v1/plugins/:name/uninstall.
func (h *PluginHandler) Uninstall(c *gin.Context) {
	h.transition(c, "uninstall", h.registry.Uninstall)
}

// Reload handles POST /v1/plugins/:name/reload.
func (h *PluginHandler) Reload(c *gin.Context) {
	h.transition(c, "reload metadata of", func(_ context.Context, name string) error {
		return h.registry.ReloadMetadata(name)
	})
}

func (h *PluginHandler) transition(c *gin.Context, op string, fn func(context.Context, string) error) {
	name := c.Param("name")
	if err := fn(c.Request.Context(), name); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, pluginCode(err), "%s plugin %q", op, name), nil)
		return
	}
	d, ok := h.registry.Get(name)
	if !ok {
		core.WriteResponse(c, errorx.WrapC(plugin.ErrPluginNotFound, ErrPluginNotFound, "plugin %q", name), nil)
		return
	}
	core.WriteResponse(c, nil, toPluginResponse(d, false))
}
