package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	OCR    OCRConfig    `yaml:"ocr"`
	Report ReportConfig `yaml:"report"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string        `yaml:"engine"`
	Tesseract     string        `yaml:"tesseract"`
	TesseractLang string        `yaml:"lang"`
	TessdataDir   string        `yaml:"tessdata_dir"`
	PSM           int           `yaml:"psm"`
	OEM           int           `yaml:"oem"`
	MaxDimension  int           `yaml:"max_dimension"`
	Rotations     []int         `yaml:"rotations"`
	Timeout       time.Duration `yaml:"timeout"`
	Workers       int           `yaml:"workers"`
	Retries       int           `yaml:"retries"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
}

// ReportConfig holds report rendering configuration
type ReportConfig struct {
	ExcerptLength int `yaml:"excerpt_length"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when neither file nor env override a value.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8000",
			GRPCAddr:        ":9090",
			MaxUploadBytes:  20 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		OCR: OCRConfig{
			Engine:        "tesseract",
			Tesseract:     "tesseract",
			TesseractLang: "eng",
			MaxDimension:  1024,
			Rotations:     []int{0, 90},
			Timeout:       30 * time.Second,
			Workers:       4,
			Retries:       1,
			RetryBackoff:  250 * time.Millisecond,
		},
		Report: ReportConfig{
			ExcerptLength: 500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, then the optional YAML file at path,
// then environment variables, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("parse config file %s", path), err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.OCR.Engine = getEnv("OCR_ENGINE", c.OCR.Engine)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.TesseractLang = getEnv("TESSERACT_LANG", c.OCR.TesseractLang)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.PSM = getEnvAsInt("OCR_PSM", c.OCR.PSM)
	c.OCR.OEM = getEnvAsInt("OCR_OEM", c.OCR.OEM)
	c.OCR.MaxDimension = getEnvAsInt("OCR_MAX_DIMENSION", c.OCR.MaxDimension)
	c.OCR.Rotations = getEnvAsIntSlice("OCR_ROTATIONS", c.OCR.Rotations)
	c.OCR.Timeout = getEnvAsDuration("OCR_TIMEOUT", c.OCR.Timeout)
	c.OCR.Workers = getEnvAsInt("OCR_WORKERS", c.OCR.Workers)
	c.OCR.Retries = getEnvAsInt("OCR_RETRIES", c.OCR.Retries)
	c.OCR.RetryBackoff = getEnvAsDuration("OCR_RETRY_BACKOFF", c.OCR.RetryBackoff)

	c.Report.ExcerptLength = getEnvAsInt("OCR_EXCERPT_LENGTH", c.Report.ExcerptLength)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsIntSlice parses a comma separated list such as "0,90".
func getEnvAsIntSlice(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return ConfigError("HTTP_ADDR is required")
	}
	if c.Server.GRPCAddr == "" {
		return ConfigError("GRPC_ADDR is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return ConfigError("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.OCR.Tesseract == "" {
		return ConfigError("TESSERACT_BIN is required")
	}
	if c.OCR.Workers <= 0 {
		return ConfigError("OCR_WORKERS must be positive, got %d", c.OCR.Workers)
	}
	if c.OCR.Timeout <= 0 {
		return ConfigError("OCR_TIMEOUT must be positive, got %s", c.OCR.Timeout)
	}
	if c.OCR.Retries < 0 {
		return ConfigError("OCR_RETRIES must not be negative, got %d", c.OCR.Retries)
	}
	if c.OCR.Retries > 0 && c.OCR.RetryBackoff <= 0 {
		return ConfigError("OCR_RETRY_BACKOFF must be positive when retries are enabled")
	}
	if len(c.OCR.Rotations) == 0 {
		return ConfigError("at least one OCR rotation is required")
	}
	for _, r := range c.OCR.Rotations {
		if r%90 != 0 || r < 0 || r >= 360 {
			return ConfigError("OCR rotation %d is not one of 0, 90, 180, 270", r)
		}
	}
	if c.Report.ExcerptLength <= 0 {
		return ConfigError("OCR_EXCERPT_LENGTH must be positive, got %d", c.Report.ExcerptLength)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return ConfigError("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}
