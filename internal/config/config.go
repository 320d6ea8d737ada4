package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App    AppConfig    `toml:"app"`
	Model  ModelConfig  `toml:"model"`
	Upload UploadConfig `toml:"upload"`
	CORS   CORSConfig   `toml:"cors"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type ModelConfig struct {
	CheckpointPath    string `toml:"checkpoint_path"`
	ONNXSharedLibPath string `toml:"onnx_shared_lib_path"`
	ImageSize         int    `toml:"image_size"`
}

type UploadConfig struct {
	MaxFileBytes int64 `toml:"max_file_bytes"`
}

type CORSConfig struct {
	AllowOrigins []string `toml:"allow_origins"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "airway-triage",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    5001,
			GinMode: "debug",
		},
		Model: ModelConfig{
			CheckpointPath:    "models/airway_triple_convnext.onnx",
			ONNXSharedLibPath: "", // use default or set via MODEL_ONNX_LIB
			ImageSize:         224,
		},
		Upload: UploadConfig{
			MaxFileBytes: 10 << 20,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Model.CheckpointPath = getEnv("MODEL_CHECKPOINT_PATH", cfg.Model.CheckpointPath)
	cfg.Model.ONNXSharedLibPath = getEnv("MODEL_ONNX_LIB", cfg.Model.ONNXSharedLibPath)
	cfg.Model.ImageSize = getEnvAsInt("MODEL_IMAGE_SIZE", cfg.Model.ImageSize)

	cfg.Upload.MaxFileBytes = getEnvAsInt64("UPLOAD_MAX_FILE_BYTES", cfg.Upload.MaxFileBytes)

	if raw, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok && raw != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.CORS.AllowOrigins = origins
		}
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
