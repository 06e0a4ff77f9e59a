package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/cluehunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Gameplay knobs. QuestionTime anchors the authoritative deadline:
	// a question expires QuestionTime after the session's start_time.
	QuestionTime   time.Duration `env:"QUESTION_TIME" envDefault:"30s"`
	TotalQuestions int           `env:"TOTAL_QUESTIONS" envDefault:"5"`
	ScoreFloor     int           `env:"SCORE_FLOOR" envDefault:"0"`

	// Initial admin account, created on first boot when no admin exists.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@cluehunt.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:""`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
