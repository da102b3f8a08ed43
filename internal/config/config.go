package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Diagnosis collaborator
	DiagnosisAPIURL  string        `env:"DIAGNOSIS_API_URL" envDefault:"http://127.0.0.1:5000"`
	DiagnosisTimeout time.Duration `env:"DIAGNOSIS_TIMEOUT" envDefault:"30s"`

	// Speech-to-text; voice input is disabled when empty
	STTURL     string        `env:"STT_URL"`
	STTTimeout time.Duration `env:"STT_TIMEOUT" envDefault:"60s"`

	// Spoken replies to voice notes; disabled when the key is empty
	TTSURL     string        `env:"TTS_URL" envDefault:"https://api.elevenlabs.io/v1/text-to-speech"`
	TTSAPIKey  string        `env:"TTS_API_KEY"`
	TTSVoiceID string        `env:"TTS_VOICE_ID"`
	TTSTimeout time.Duration `env:"TTS_TIMEOUT" envDefault:"60s"`

	// Care team notifications; disabled when the token is empty
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	CareTeamChatID   int64  `env:"CARE_TEAM_CHAT_ID"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	PDFFontPaths []string `env:"PDF_FONT_PATHS" envSeparator:"," envDefault:"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf,/usr/share/fonts/dejavu/DejaVuSans.ttf,/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != "" && c.CareTeamChatID != 0
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
