package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data/projects"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	HistoryLimit   int    `envconfig:"HISTORY_LIMIT" default:"80"`
	// ClipboardMirror shares copied selections with the host OS clipboard.
	// Off by default; servers are usually headless.
	ClipboardMirror bool `envconfig:"CLIPBOARD_MIRROR" default:"false"`
	CanvasWidth    int    `envconfig:"CANVAS_WIDTH" default:"1280"`
	CanvasHeight   int    `envconfig:"CANVAS_HEIGHT" default:"800"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
