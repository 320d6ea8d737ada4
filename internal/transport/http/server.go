package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"airway-triage/internal/bootstrap"
	"airway-triage/internal/config"
	"airway-triage/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(app.Config)))

	healthHandler := handler.NewHealthHandler(app.Engine)
	analyzeHandler := handler.NewAnalyzeHandler(app.Engine, app.Mock, app.Config.Upload.MaxFileBytes)

	router.GET("/health", healthHandler.Check)
	router.POST("/analyze", analyzeHandler.Analyze)
	router.POST("/analyze/mock", analyzeHandler.AnalyzeMock)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type"}
	if len(cfg.CORS.AllowOrigins) == 1 && cfg.CORS.AllowOrigins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORS.AllowOrigins
	}
	return c
}
