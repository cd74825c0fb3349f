// Package config loads the workbench configuration.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional TOML file, and environment variables (optionally seeded from
// a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
)

// Environment variable names recognised by Load.
const (
	EnvLogLevel            = "VISION_DEMO_LOG_LEVEL"
	EnvConfidence          = "VISION_DEMO_CONFIDENCE"
	EnvDetectionModel      = "VISION_DEMO_DETECTION_MODEL"
	EnvClassificationModel = "VISION_DEMO_CLASSIFICATION_MODEL"
	EnvDetectionStepMS     = "VISION_DEMO_DETECTION_STEP_MS"
	EnvClassifyStepMS      = "VISION_DEMO_CLASSIFICATION_STEP_MS"
	EnvExportDir           = "VISION_DEMO_EXPORT_DIR"
)

type LogConfig struct {
	Level string `toml:"level"`
}

type PipelineConfig struct {
	DetectionStepMS      int `toml:"detection_step_ms"`
	ClassificationStepMS int `toml:"classification_step_ms"`
}

type DefaultsConfig struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	DetectionModel      string  `toml:"detection_model"`
	ClassificationModel string  `toml:"classification_model"`
}

type ReportConfig struct {
	Title  string `toml:"title"`
	Author string `toml:"author"`
}

type ExportConfig struct {
	Dir string `toml:"dir"`
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Defaults DefaultsConfig `toml:"defaults"`
	Report   ReportConfig   `toml:"report"`
	Export   ExportConfig   `toml:"export"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Pipeline: PipelineConfig{
			DetectionStepMS:      800,
			ClassificationStepMS: 700,
		},
		Defaults: DefaultsConfig{
			ConfidenceThreshold: 0.5,
			DetectionModel:      "yolo",
			ClassificationModel: "resnet",
		},
		Report: ReportConfig{
			Title:  "Computer Vision Analysis Report",
			Author: "Vision Demo Workbench",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (when
// path is non-empty) and the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, cverr.Wrap(cverr.KindConfig, "load",
				fmt.Sprintf("failed to read config file '%s'", path), err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, cverr.Wrap(cverr.KindConfig, "load", "failed to parse TOML", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv seeds the environment from the given .env files. Missing files
// are ignored; variables already set in the process win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cverr.Wrap(cverr.KindConfig, "dotenv", fmt.Sprintf("failed to load %s", p), err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvDetectionModel); v != "" {
		c.Defaults.DetectionModel = v
	}
	if v := os.Getenv(EnvClassificationModel); v != "" {
		c.Defaults.ClassificationModel = v
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv(EnvConfidence); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cverr.Wrap(cverr.KindConfig, "env", EnvConfidence+" is not a number", err)
		}
		c.Defaults.ConfidenceThreshold = f
	}
	if v := os.Getenv(EnvDetectionStepMS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cverr.Wrap(cverr.KindConfig, "env", EnvDetectionStepMS+" is not an integer", err)
		}
		c.Pipeline.DetectionStepMS = n
	}
	if v := os.Getenv(EnvClassifyStepMS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cverr.Wrap(cverr.KindConfig, "env", EnvClassifyStepMS+" is not an integer", err)
		}
		c.Pipeline.ClassificationStepMS = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	t := c.Defaults.ConfidenceThreshold
	if t < 0 || t > 1 {
		return cverr.New(cverr.KindConfig, "validate",
			fmt.Sprintf("confidence_threshold must be within [0,1], got %g", t))
	}
	if c.Pipeline.DetectionStepMS < 0 || c.Pipeline.ClassificationStepMS < 0 {
		return cverr.New(cverr.KindConfig, "validate", "step delays must not be negative")
	}
	if c.Defaults.DetectionModel == "" || c.Defaults.ClassificationModel == "" {
		return cverr.New(cverr.KindConfig, "validate", "model names must not be empty")
	}
	return nil
}

// DetectionStepDelay is the per-step delay of the detection pipeline.
func (c *Config) DetectionStepDelay() time.Duration {
	return time.Duration(c.Pipeline.DetectionStepMS) * time.Millisecond
}

// ClassificationStepDelay is the per-step delay of the classification pipeline.
func (c *Config) ClassificationStepDelay() time.Duration {
	return time.Duration(c.Pipeline.ClassificationStepMS) * time.Millisecond
}

// SlogLevel maps the configured level name onto a slog level. Unknown names
// fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
