package httpapi

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return mode
	}
	return gin.ReleaseMode
}

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) *gin.Engine {
	gin.SetMode(ginMode(app.Cfg.GinMode))
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), WithRequestID(), WithLogging())
	if len(app.Cfg.CORSOrigins) > 0 {
		r.Use(WithCORS(app.Cfg.CORSOrigins))
	}

	api := r.Group("/api")
	api.POST("/production", app.postProductionHandler)
	api.GET("/production", app.listProductionHandler)
	api.GET("/production/:id", app.getProductionHandler)
	api.GET("/products", app.listProductsHandler)
	api.POST("/products", app.postProductHandler)

	r.GET("/healthz", app.healthHandler)
	r.GET("/debug/metrics", app.metricsHandler)
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	r.GET("/openapi.yaml", app.openapiHandler)
	r.GET("/docs", app.docsHandler)

	r.NoRoute(func(c *gin.Context) {
		WriteJSONError(c, http.StatusNotFound, "not_found", "")
	})
	r.NoMethod(func(c *gin.Context) {
		WriteJSONError(c, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	return r
}
