package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/shelf/internal/keypath"
)

// Courier modes.
const (
	ModeSimulated = "simulated"
	ModeHTTP      = "http"
)

// Config is the shelf client configuration.
type Config struct {
	Courier CourierConfig `toml:"courier"`
	Log     LogConfig     `toml:"log"`
}

// CourierConfig selects the backend the conductor talks to.
type CourierConfig struct {
	Mode    string `toml:"mode"`
	URL     string `toml:"url"`
	Latency string `toml:"latency"`
}

// LogConfig controls where and how shelf logs.
type LogConfig struct {
	File   string `toml:"file"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultConfigPath = "~/.config/shelf/config.toml"
	defaultLogFile    = "~/.local/share/shelf/shelf.log"
	defaultURL        = "127.0.0.1:7488"
	defaultLatency    = "500ms"
	defaultLevel      = "info"
	defaultFormat     = "text"
)

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		Courier: CourierConfig{Mode: ModeSimulated, URL: defaultURL, Latency: defaultLatency},
		Log:     LogConfig{File: mustExpand(defaultLogFile), Level: defaultLevel, Format: defaultFormat},
	}
}

// Load reads the config at path (the default path when blank), then applies
// overrides of the form "section.key=value". A missing file is not an error.
func Load(path string, overrides []string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	data, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if len(overrides) > 0 {
		cfg, err = applyOverrides(cfg, overrides)
		if err != nil {
			return Config{}, err
		}
	}

	return normalize(cfg)
}

// LatencyDuration returns the parsed courier latency. Load has already
// validated it, so a parse failure here means the field was edited by hand.
func (c CourierConfig) LatencyDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Latency))
	if err != nil {
		d, _ = time.ParseDuration(defaultLatency)
	}
	return d
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return data, nil
}

// applyOverrides round-trips cfg through a TOML document so overrides address
// the same keys a config file would.
func applyOverrides(cfg Config, overrides []string) (Config, error) {
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(encoded, &doc); err != nil {
		return Config{}, fmt.Errorf("decode config document: %w", err)
	}

	for _, raw := range overrides {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return Config{}, fmt.Errorf("invalid override %q: want key=value", raw)
		}
		if _, err := keypath.Get(doc, key); err != nil {
			return Config{}, fmt.Errorf("override %q: %w", key, err)
		}
		if doc, err = keypath.Set(doc, key, strings.TrimSpace(value)); err != nil {
			return Config{}, fmt.Errorf("override %q: %w", key, err)
		}
	}

	encoded, err = toml.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("encode overrides: %w", err)
	}
	var out Config
	dec := toml.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return Config{}, fmt.Errorf("apply overrides: %w", err)
	}
	return out, nil
}

func normalize(cfg Config) (Config, error) {
	cfg.Courier.Mode = strings.ToLower(strings.TrimSpace(cfg.Courier.Mode))
	if cfg.Courier.Mode == "" {
		cfg.Courier.Mode = ModeSimulated
	}
	switch cfg.Courier.Mode {
	case ModeSimulated, ModeHTTP:
	default:
		return Config{}, fmt.Errorf("unknown courier mode %q", cfg.Courier.Mode)
	}

	cfg.Courier.URL = strings.TrimSpace(cfg.Courier.URL)
	if cfg.Courier.URL == "" {
		cfg.Courier.URL = defaultURL
	}

	cfg.Courier.Latency = strings.TrimSpace(cfg.Courier.Latency)
	if cfg.Courier.Latency == "" {
		cfg.Courier.Latency = defaultLatency
	}
	if _, err := time.ParseDuration(cfg.Courier.Latency); err != nil {
		return Config{}, fmt.Errorf("parse courier latency: %w", err)
	}

	cfg.Log.File = strings.TrimSpace(cfg.Log.File)
	if cfg.Log.File == "" {
		cfg.Log.File = defaultLogFile
	}
	cfg.Log.File = mustExpand(cfg.Log.File)

	cfg.Log.Level = strings.TrimSpace(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLevel
	}
	cfg.Log.Format = strings.TrimSpace(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultFormat
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
