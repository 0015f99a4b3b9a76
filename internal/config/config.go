package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Job defaults, overridden by CLI flags
	Defaults DefaultsConfig `yaml:"defaults"`
}

type FFmpegConfig struct {
	BinaryPath     string `yaml:"binary_path"`
	ProbePath      string `yaml:"probe_path"`
	Threads        int    `yaml:"threads"`
	Preset         string `yaml:"preset"`
	Profile        string `yaml:"profile"`
	Level          string `yaml:"level"`
	PixelFormat    string `yaml:"pixel_format"`
	LogLevel       string `yaml:"log_level"`
	ExtractRetries int    `yaml:"extract_retries"`
	FrameFormat    string `yaml:"frame_format"`
	PadColor       string `yaml:"pad_color"`
}

type DefaultsConfig struct {
	OutputDuration float64 `yaml:"output_duration"`
	OutputFPS      float64 `yaml:"output_fps"`
	Easing         string  `yaml:"easing"`
	Bitrate        string  `yaml:"bitrate"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects values no job could run with.
func (c *Config) Validate() error {
	switch {
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	case c.FFmpeg.Threads < 0:
		return fmt.Errorf("ffmpeg.threads cannot be negative")
	case c.FFmpeg.ExtractRetries < 0:
		return fmt.Errorf("ffmpeg.extract_retries cannot be negative")
	case c.FFmpeg.FrameFormat != "png" && c.FFmpeg.FrameFormat != "jpg":
		return fmt.Errorf("ffmpeg.frame_format must be png or jpg, got %q", c.FFmpeg.FrameFormat)
	case !(c.Defaults.OutputDuration > 0):
		return fmt.Errorf("defaults.output_duration must be positive")
	case !(c.Defaults.OutputFPS > 0):
		return fmt.Errorf("defaults.output_fps must be positive")
	}
	if _, err := util.ParseBitrate(c.Defaults.Bitrate); err != nil {
		return fmt.Errorf("defaults.bitrate: %w", err)
	}
	if _, err := easing.Describe(c.Defaults.Easing); err != nil {
		return fmt.Errorf("defaults.easing: %w", err)
	}
	return nil
}

// ExecutorConfig maps the ffmpeg section onto executor settings.
func (c *Config) ExecutorConfig() ffmpeg.Config {
	return ffmpeg.Config{
		FFmpegPath:  c.FFmpeg.BinaryPath,
		FFprobePath: c.FFmpeg.ProbePath,
		Threads:     c.FFmpeg.Threads,
		LogLevel:    c.FFmpeg.LogLevel,
	}
}

// CodecOptions maps the ffmpeg section onto encoder settings.
func (c *Config) CodecOptions() ffmpeg.CodecOptions {
	return ffmpeg.CodecOptions{
		VideoCodec:  ffmpeg.DefaultVideoCodec,
		Preset:      c.FFmpeg.Preset,
		Profile:     c.FFmpeg.Profile,
		Level:       c.FFmpeg.Level,
		PixelFormat: c.FFmpeg.PixelFormat,
	}
}

func defaultConfig() *Config {
	return &Config{
		TempDir:     os.TempDir(),
		Concurrency: 4,
		FFmpeg: FFmpegConfig{
			BinaryPath:     "ffmpeg",
			ProbePath:      "ffprobe",
			Threads:        0,
			Preset:         ffmpeg.DefaultPreset,
			Profile:        ffmpeg.DefaultProfile,
			Level:          ffmpeg.DefaultLevel,
			PixelFormat:    ffmpeg.DefaultPixelFormat,
			LogLevel:       "error",
			ExtractRetries: ffmpeg.DefaultRetries,
			FrameFormat:    ffmpeg.DefaultFrameFormat,
			PadColor:       ffmpeg.DefaultPadColor,
		},
		Defaults: DefaultsConfig{
			OutputDuration: 1.5,
			OutputFPS:      60,
			Easing:         easing.DefaultName,
			Bitrate:        ffmpeg.DefaultBitrate,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	candidates := []string{
		"./speedramp.yaml",
		"./speedramp.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".speedramp", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
