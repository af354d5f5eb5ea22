// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"rebanho/internal/domain/breeding"
	"rebanho/internal/domain/fiscal"
	"rebanho/internal/domain/herd"
	"rebanho/internal/domain/ledger"
	"rebanho/internal/domain/semen"
	"rebanho/internal/infrastructure/http/v1/handlers"
	"rebanho/internal/infrastructure/http/v1/middleware"
	"rebanho/internal/infrastructure/storage/postgres"
	"rebanho/pkg/logger"
)

// RouterConfig carries the wired services.
type RouterConfig struct {
	Pool      *postgres.Pool
	Logger    *logger.Logger
	JWTSecret string

	Fiscal   *fiscal.Service
	Herd     *herd.Service
	Semen    *semen.Service
	Breeding *breeding.Service
	Ledger   *ledger.Service
}

// NewRouter builds the gin engine. Middleware order matters: recovery
// first, then tracing, logging, actor attribution, and the error renderer.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Actor(cfg.JWTSecret))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	nfHandler := handlers.NewNotaFiscalHandler(base, cfg.Fiscal)
	semenHandler := handlers.NewSemenHandler(base, cfg.Semen)
	herdHandler := handlers.NewHerdHandler(base, cfg.Herd)
	breedingHandler := handlers.NewBreedingHandler(base, cfg.Breeding)
	ledgerHandler := handlers.NewLedgerHandler(base, cfg.Ledger)

	api := router.Group("/api/v1")
	{
		nf := api.Group("/notas-fiscais")
		{
			nf.POST("", nfHandler.Create)
			nf.GET("", nfHandler.List)
			nf.GET("/:id", nfHandler.Get)
			nf.PUT("/:id", nfHandler.Update)
			nf.GET("/numero/:number", nfHandler.GetByNumber)
		}

		sm := api.Group("/semen")
		{
			sm.GET("/lotes", semenHandler.ListLots)
			sm.GET("/lotes/:id", semenHandler.GetLot)
			sm.GET("/lotes/:id/saidas", semenHandler.LotWithdrawals)
			sm.POST("/saidas", semenHandler.Withdraw)
		}

		animals := api.Group("/animais")
		{
			animals.GET("", herdHandler.List)
			animals.GET("/:id", herdHandler.Get)
		}

		diagnostics := api.Group("/diagnosticos")
		{
			diagnostics.GET("", breedingHandler.Due)
			diagnostics.PATCH("/:id", breedingHandler.MarkResult)
		}

		api.GET("/ledger/movimentos/:number", ledgerHandler.ByDocument)
	}

	return router
}
