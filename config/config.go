// Package config loads the motionedit server configuration from a JSON
// file with environment-variable overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the full server configuration.
type Config struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Server      Server   `json:"server"`
	Logging     Logging  `json:"logging"`
	Playback    Playback `json:"playback"`
	Assist      Assist   `json:"assist"`
	Render      Render   `json:"render"`
	Scenes      Scenes   `json:"scenes"`
}

// Server is the HTTP listener configuration.
type Server struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Debug bool   `json:"debug"`
}

// Logging configures the process logger.
type Logging struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Playback configures the per-session playback driver.
type Playback struct {
	TickMillis            int `json:"tick_millis"`
	SessionTimeoutMinutes int `json:"session_timeout_minutes"`
}

// Assist configures the code-generation collaborator. The API key is read
// from the named environment variable, never stored in the file.
type Assist struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKeyEnv string `json:"api_key_env"`
}

// Render configures the video export backend.
type Render struct {
	FFmpegPath     string `json:"ffmpeg_path"`
	BrowserPath    string `json:"browser_path"`
	FPS            int    `json:"fps"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Scenes configures scene persistence.
type Scenes struct {
	Dir   string `json:"dir"`
	Watch bool   `json:"watch"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &Config{
		Name:        "motionedit",
		Version:     "0.1.0",
		Description: "Server backend for an LLM-driven CSS motion-graphics editor",
		Server: Server{
			Host: "localhost",
			Port: 9273,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Path:   filepath.Join(home, ".motionedit", "logs", "motionedit.log"),
		},
		Playback: Playback{
			TickMillis:            33,
			SessionTimeoutMinutes: 30,
		},
		Assist: Assist{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "MOTIONEDIT_API_KEY",
		},
		Render: Render{
			FFmpegPath:     "ffmpeg",
			BrowserPath:    "chromium",
			FPS:            30,
			Width:          1280,
			Height:         720,
			TimeoutSeconds: 120,
		},
		Scenes: Scenes{
			Dir:   filepath.Join(home, ".motionedit", "scenes"),
			Watch: true,
		},
	}
}

// LoadConfig reads the configuration from a file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if portStr := os.Getenv("MOTIONEDIT_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("warning: ignoring invalid MOTIONEDIT_PORT value %q: %v", portStr, err)
		}
	}
	if host := os.Getenv("MOTIONEDIT_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if debug := os.Getenv("MOTIONEDIT_DEBUG"); debug != "" {
		if parsed, err := strconv.ParseBool(debug); err == nil {
			cfg.Server.Debug = parsed
		} else {
			log.Printf("warning: ignoring invalid MOTIONEDIT_DEBUG value %q: %v", debug, err)
		}
	}
	if level := os.Getenv("MOTIONEDIT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("MOTIONEDIT_LOG_PATH"); path != "" {
		cfg.Logging.Path = path
	}
	if baseURL := os.Getenv("MOTIONEDIT_ASSIST_BASE_URL"); baseURL != "" {
		cfg.Assist.BaseURL = baseURL
	}
	if model := os.Getenv("MOTIONEDIT_ASSIST_MODEL"); model != "" {
		cfg.Assist.Model = model
	}
	if dir := os.Getenv("MOTIONEDIT_SCENES_DIR"); dir != "" {
		cfg.Scenes.Dir = dir
	}
	if ffmpeg := os.Getenv("MOTIONEDIT_FFMPEG_PATH"); ffmpeg != "" {
		cfg.Render.FFmpegPath = ffmpeg
	}
	if browser := os.Getenv("MOTIONEDIT_BROWSER_PATH"); browser != "" {
		cfg.Render.BrowserPath = browser
	}
}

// Normalize canonicalizes values so validation and runtime logic operate
// on stable representations.
func (c *Config) Normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
	c.Assist.BaseURL = strings.TrimRight(strings.TrimSpace(c.Assist.BaseURL), "/")
	c.Assist.Model = strings.TrimSpace(c.Assist.Model)
	c.Assist.APIKeyEnv = strings.TrimSpace(c.Assist.APIKeyEnv)
	c.Scenes.Dir = strings.TrimSpace(c.Scenes.Dir)
	if c.Playback.TickMillis == 0 {
		c.Playback.TickMillis = 33
	}
	if c.Playback.SessionTimeoutMinutes == 0 {
		c.Playback.SessionTimeoutMinutes = 30
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid port number")
	}
	if c.Server.Host == "" {
		return errors.New("host cannot be empty")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return errors.New("invalid log level")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return errors.New("invalid log format")
	}

	if c.Playback.TickMillis < 5 || c.Playback.TickMillis > 1000 {
		return fmt.Errorf("invalid playback tick %dms: expected range 5..1000", c.Playback.TickMillis)
	}
	if c.Playback.SessionTimeoutMinutes < 1 {
		return errors.New("session timeout must be at least one minute")
	}

	if c.Render.FPS < 1 || c.Render.FPS > 120 {
		return fmt.Errorf("invalid render fps %d: expected range 1..120", c.Render.FPS)
	}
	if c.Render.Width < 16 || c.Render.Height < 16 {
		return fmt.Errorf("invalid render resolution %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.TimeoutSeconds < 1 {
		return errors.New("render timeout must be at least one second")
	}

	if c.Scenes.Dir == "" {
		return errors.New("scene directory cannot be empty")
	}
	return nil
}

// ResolveConfigPath returns the path that should be used for configuration.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("MOTIONEDIT_CONFIG_PATH")); path != "" {
		return path, nil
	}
	if _, err := os.Stat("config/motionedit.json"); err == nil {
		return "config/motionedit.json", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".motionedit", "config", "motionedit.json"), nil
}

// EnsureDefaultConfig creates a default config file if one does not exist.
func EnsureDefaultConfig(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path cannot be empty")
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	return SaveConfig(NewConfig(), path)
}

// APIKey resolves the assist API key from the configured environment
// variable.
func (a Assist) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}
