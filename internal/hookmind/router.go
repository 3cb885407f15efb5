package hookmind

import (
	"github.com/gin-gonic/gin"
	"github.com/kiosk404/hookmind/internal/hookmind/handler/middleware"
	v1 "github.com/kiosk404/hookmind/internal/hookmind/handler/v1"
)

func initRouter(g *gin.Engine, rt *Runtime) {
	installMiddleware(g)
	installController(g, rt)
}

func installMiddleware(g *gin.Engine) {
	g.Use(middleware.RequestLogger())
}

func installController(g *gin.Engine, rt *Runtime) {
	// Handlers.
	pluginHandler := v1.NewPluginHandler(rt.Registry)
	hookHandler := v1.NewHookHandler(rt.Registry.Table(), rt.Dispatcher)
	lifecycleHandler := v1.NewLifecycleHandler(rt.Lifecycle)

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		// Plugin lifecycle.
		apiV1.GET("/plugins", pluginHandler.List)
		apiV1.GET("/plugins/:name", pluginHandler.Get)
		apiV1.POST("/plugins/:name/install", pluginHandler.Install)
		apiV1.POST("/plugins/:name/activate", pluginHandler.Activate)
		apiV1.POST("/plugins/:name/deactivate", pluginHandler.Deactivate)
		apiV1.POST("/plugins/:name/uninstall", pluginHandler.Uninstall)
		apiV1.POST("/plugins/:name/reload", pluginHandler.Reload)

		// Hook table and dispatch.
		apiV1.GET("/hooks", hookHandler.List)
		apiV1.GET("/hooks/:event", hookHandler.Order)
		apiV1.POST("/hooks/:event/dispatch", hookHandler.Dispatch)
		apiV1.GET("/dispatch/stats", hookHandler.Stats)

		// Lifecycle log.
		apiV1.GET("/lifecycle", lifecycleHandler.List)
	}
}
