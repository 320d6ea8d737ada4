package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airway-triage/internal/inference"
)

type HealthHandler struct {
	engine *inference.Engine
}

func NewHealthHandler(engine *inference.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// Check reports service liveness and the real model state. The analyze
// endpoint degrades silently when the model is missing, so this is where
// operators find out.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"model_available":   h.engine.Available(),
		"model_file_exists": h.engine.CheckpointExists(),
	})
}
