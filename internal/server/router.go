// Package server exposes arenas over HTTP: JSON API, stats reports,
// Prometheus metrics and the spectator websocket.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"turnbattle/internal/arena"
	"turnbattle/internal/spectate"
)

type Deps struct {
	Registry *arena.Registry
	Hub      *spectate.Hub
	// Results may be nil when no database is configured.
	Results  Results
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Setup creates and configures the Gin router
func Setup(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(log))
	router.Use(Recovery(log))

	battleHandler := NewBattleHandler(d.Registry, d.Results, log)

	router.GET("/health", battleHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if d.Hub != nil {
		router.GET("/ws", gin.WrapF(d.Hub.HandleWS))
	}

	v1 := router.Group("/api/v1")
	{
		battles := v1.Group("/battles")
		{
			battles.GET("", battleHandler.ListBattles)
			battles.GET("/:name", battleHandler.GetBattle)
			battles.GET("/:name/stats", battleHandler.GetBattleStats)
		}
		v1.GET("/results", battleHandler.ListResults)
	}

	return router
}
