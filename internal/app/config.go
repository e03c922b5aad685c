package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/utils"
)

type Config struct {
	ServiceName      string   `yaml:"service_name"`
	Port             string   `yaml:"port"`
	LogMode          string   `yaml:"log_mode"`
	KVBackend        string   `yaml:"kv_backend"`
	RedisAddr        string   `yaml:"redis_addr"`
	JWTSecretKey     string   `yaml:"jwt_secret_key"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	StreamHeartbeatS int      `yaml:"stream_heartbeat_seconds"`
}

// LoadConfig layers defaults, an optional YAML file (CONFIG_FILE) and
// environment variables, with the environment winning.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		ServiceName:      "freshtrack",
		Port:             "8080",
		LogMode:          "development",
		KVBackend:        "memory",
		RedisAddr:        "localhost:6379",
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5174"},
		StreamHeartbeatS: 15,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.ServiceName = utils.GetEnv("SERVICE_NAME", cfg.ServiceName, log)
	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.LogMode = utils.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.KVBackend = utils.GetEnv("KV_BACKEND", cfg.KVBackend, log)
	cfg.RedisAddr = utils.GetEnv("REDIS_ADDR", cfg.RedisAddr, log)
	cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
	cfg.StreamHeartbeatS = utils.GetEnvAsInt("STREAM_HEARTBEAT_SECONDS", cfg.StreamHeartbeatS, log)
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	if cfg.JWTSecretKey == "" {
		secret, err := utils.GenerateToken(32)
		if err != nil {
			return cfg, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecretKey = secret
		log.Warn("JWT_SECRET_KEY not set; generated an ephemeral secret, issued tokens will not survive a restart")
	}
	return cfg, nil
}
