package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey     string `env:"LLM_API_KEY,required"`
	LLMBaseURL    string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-4"`
	PersonaPath   string `env:"PERSONA_PATH"`
	HistoryWindow int    `env:"HISTORY_WINDOW" envDefault:"0"` // 0 = historial completo

	UploadEndpoint  string `env:"UPLOAD_ENDPOINT"`
	UploadAPIKey    string `env:"UPLOAD_API_KEY"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES" envDefault:"4194304"`
	DailyUploadsMax int    `env:"DAILY_UPLOADS_MAX" envDefault:"5"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET,required"`

	MaintenanceMode     bool   `env:"MAINTENANCE_MODE" envDefault:"false"`
	MaintenanceScenario string `env:"MAINTENANCE_SCENARIO" envDefault:"upgrade"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
