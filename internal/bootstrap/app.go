package bootstrap

import (
	"fmt"
	"log"
	"time"

	"airway-triage/internal/assessment"
	"airway-triage/internal/config"
	"airway-triage/internal/inference"
)

type App struct {
	Config *config.Config
	Engine *inference.Engine
	Mock   *assessment.Mock

	StartedAt time.Time
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	engine := inference.NewEngine(cfg.Model.CheckpointPath, cfg.Model.ONNXSharedLibPath, cfg.Model.ImageSize)

	// Preload eagerly when the checkpoint is on disk; a failed preload
	// leaves the engine unavailable and the service serving placeholders.
	if engine.CheckpointExists() {
		log.Printf("preloading model from %s", cfg.Model.CheckpointPath)
		if err := engine.Load(); err != nil {
			log.Printf("model preload failed, serving placeholder results: %v", err)
		} else {
			log.Printf("model preloaded successfully")
		}
	} else {
		log.Printf("model checkpoint %s not found, serving placeholder results", cfg.Model.CheckpointPath)
	}

	return &App{
		Config:    cfg,
		Engine:    engine,
		Mock:      assessment.NewMock(nil),
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	if a.Engine != nil {
		a.Engine.Close()
	}
	return nil
}
