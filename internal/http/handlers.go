package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairyhunter13/production-ledger/internal/catalog"
	"github.com/fairyhunter13/production-ledger/internal/config"
	httpopenapi "github.com/fairyhunter13/production-ledger/internal/http/openapi"
	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/production"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type counters struct {
	recordsCreated atomic.Uint64
	recordsUpdated atomic.Uint64
	productsAdded  atomic.Uint64
	invalidInput   atomic.Uint64
	storeErrors    atomic.Uint64
}

// App holds the dependencies shared by the HTTP handlers.
type App struct {
	Cfg        config.Config
	Catalog    *catalog.Service
	Production *production.Service
	Store      Pinger

	closing atomic.Bool
	started time.Time
	metrics counters
}

type recordResponse struct {
	Status  model.UpsertStatus     `json:"status"`
	Message string                 `json:"message"`
	Record  model.ProductionRecord `json:"record"`
}

type createProductRequest struct {
	ProductName string                `json:"productName"`
	Weights     []model.WeightVariant `json:"weights"`
}

// NewApp wires handlers to their services.
func NewApp(cfg config.Config, cat *catalog.Service, prod *production.Service, st Pinger) *App {
	return &App{Cfg: cfg, Catalog: cat, Production: prod, Store: st, started: time.Now()}
}

// StartShutdown makes write endpoints answer 503 while the server drains.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

// acceptWrite rejects writes during shutdown and non-JSON bodies.
func (a *App) acceptWrite(c *gin.Context) bool {
	if a.closing.Load() {
		WriteJSONError(c, http.StatusServiceUnavailable, "shutting_down", "")
		return false
	}
	ct := c.GetHeader("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	return true
}

func (a *App) postProductionHandler(c *gin.Context) {
	if !a.acceptWrite(c) {
		return
	}
	var req productionRequest
	if err := c.ShouldBindWith(&req, strictJSON{}); err != nil {
		WriteJSONError(c, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	res, err := a.Production.RecordProduction(c.Request.Context(), req.event())
	if err != nil {
		a.writeServiceError(c, "record_production", err)
		return
	}
	if res.Status == model.StatusCreated {
		a.metrics.recordsCreated.Add(1)
		c.JSON(http.StatusCreated, recordResponse{Status: res.Status, Message: "New production record created", Record: res.Record})
		return
	}
	a.metrics.recordsUpdated.Add(1)
	c.JSON(http.StatusOK, recordResponse{Status: res.Status, Message: "Production record updated", Record: res.Record})
}

func (a *App) listProductionHandler(c *gin.Context) {
	recs, err := a.Production.ListProductions(c.Request.Context(), c.Query("productId"))
	if err != nil {
		a.writeServiceError(c, "list_productions", err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (a *App) getProductionHandler(c *gin.Context) {
	rec, err := a.Production.GetProduction(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.writeServiceError(c, "get_production", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *App) listProductsHandler(c *gin.Context) {
	products, err := a.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		a.writeServiceError(c, "list_products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a *App) postProductHandler(c *gin.Context) {
	if !a.acceptWrite(c) {
		return
	}
	var req createProductRequest
	if err := c.ShouldBindWith(&req, strictJSON{}); err != nil {
		WriteJSONError(c, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	p, err := a.Catalog.CreateProduct(c.Request.Context(), req.ProductName, req.Weights)
	if err != nil {
		a.writeServiceError(c, "create_product", err)
		return
	}
	a.metrics.productsAdded.Add(1)
	c.JSON(http.StatusCreated, p)
}

func (a *App) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if a.Store != nil {
		if err := a.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) metricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"records_created": a.metrics.recordsCreated.Load(),
		"records_updated": a.metrics.recordsUpdated.Load(),
		"products_added":  a.metrics.productsAdded.Load(),
		"invalid_input":   a.metrics.invalidInput.Load(),
		"store_errors":    a.metrics.storeErrors.Load(),
		"store_backend":   a.Cfg.StoreBackend,
		"uptime_sec":      time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", httpopenapi.YAML)
}

func (a *App) docsHandler(c *gin.Context) {
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Production Ledger API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
