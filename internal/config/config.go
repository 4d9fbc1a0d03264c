// Package config loads runtime settings for the order form binaries.
//
// Values resolve in layers: built-in defaults, then an optional YAML file,
// then a .env file, then the process environment. Later layers win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/deadline"
)

const (
	defaultEnvFile      = ".env"
	defaultAddr         = ":8080"
	defaultLocale       = "en-US"
	defaultCurrency     = "$"
	defaultLogLevel     = "info"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultSessionTTL   = 2 * time.Hour
)

// Environment variable names.
const (
	EnvAPIBaseURL  = "ORDERFORM_API_BASE_URL"
	EnvAPIToken    = "ORDERFORM_API_TOKEN"
	EnvHTTPTimeout = "ORDERFORM_HTTP_TIMEOUT"
	EnvAddr        = "ORDERFORM_ADDR"
	EnvCurrency    = "ORDERFORM_CURRENCY"
	EnvLocale      = "ORDERFORM_LOCALE"
	EnvLeadTime    = "ORDERFORM_LEAD_TIME"
	EnvMaxFiles    = "ORDERFORM_MAX_FILES"
	EnvMaxFileSize = "ORDERFORM_MAX_FILE_SIZE"
	EnvMaxTotal    = "ORDERFORM_MAX_TOTAL_SIZE"
	EnvTheme       = "ORDERFORM_THEME"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Server      ServerConfig      `yaml:"server"`
	Display     DisplayConfig     `yaml:"display"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Deadline    DeadlineConfig    `yaml:"deadline"`
	LogLevel    string            `yaml:"log_level"`
}

// APIConfig points at the external order API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the web frontend's HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// DisplayConfig controls money formatting and theming.
type DisplayConfig struct {
	Locale   string `yaml:"locale"`
	Currency string `yaml:"currency"`
	Theme    string `yaml:"theme"`
	Variant  string `yaml:"variant"`
}

// AttachmentsConfig bounds what customers may attach.
type AttachmentsConfig struct {
	MaxFiles     int      `yaml:"max_files"`
	MaxFileSize  int64    `yaml:"max_file_size"`
	MaxTotalSize int64    `yaml:"max_total_size"`
	Accepted     []string `yaml:"accepted_types"`
}

// Limits converts the settings into collector limits.
func (a AttachmentsConfig) Limits() attachments.Limits {
	limits := attachments.Limits{
		MaxFiles:      a.MaxFiles,
		MaxFileSize:   a.MaxFileSize,
		MaxTotalSize:  a.MaxTotalSize,
		AcceptedTypes: append([]string(nil), a.Accepted...),
	}
	if len(limits.AcceptedTypes) == 0 {
		limits.AcceptedTypes = append([]string(nil), attachments.DefaultAcceptedTypes...)
	}
	return limits
}

// DeadlineConfig controls deadline selection.
type DeadlineConfig struct {
	LeadTime time.Duration `yaml:"lead_time"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{Timeout: client.DefaultTimeout},
		Server: ServerConfig{
			Addr:         defaultAddr,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
			SessionTTL:   defaultSessionTTL,
		},
		Display: DisplayConfig{Locale: defaultLocale, Currency: defaultCurrency},
		Attachments: AttachmentsConfig{
			MaxFiles:     attachments.DefaultMaxFiles,
			MaxFileSize:  attachments.DefaultMaxFileSize,
			MaxTotalSize: attachments.DefaultMaxTotalSize,
		},
		Deadline: DeadlineConfig{LeadTime: deadline.DefaultLeadTime},
		LogLevel: defaultLogLevel,
	}
}

// ValidationError lists the settings that are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Validate rejects an empty API base URL and non-positive limits.
func (c Config) Validate() error {
	var fields []string
	if strings.TrimSpace(c.API.BaseURL) == "" {
		fields = append(fields, "API.BaseURL")
	}
	if c.API.Timeout <= 0 {
		fields = append(fields, "API.Timeout")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		fields = append(fields, "Server.Addr")
	}
	if c.Attachments.MaxFiles <= 0 {
		fields = append(fields, "Attachments.MaxFiles")
	}
	if c.Attachments.MaxFileSize <= 0 {
		fields = append(fields, "Attachments.MaxFileSize")
	}
	if c.Attachments.MaxTotalSize <= 0 {
		fields = append(fields, "Attachments.MaxTotalSize")
	}
	if c.Deadline.LeadTime < 0 {
		fields = append(fields, "Deadline.LeadTime")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

type loaderOptions struct {
	file         string
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	skipValidate bool
}

// Option customises Load.
type Option func(*loaderOptions)

// WithFile reads a YAML config file before applying the environment.
func WithFile(path string) Option {
	return func(o *loaderOptions) {
		o.file = strings.TrimSpace(path)
	}
}

// WithEnvFile overrides the .env path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies values that take precedence over the process env.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithoutValidation returns the merged config even when it is incomplete.
// The CLI uses it for offline dry runs.
func WithoutValidation() Option {
	return func(o *loaderOptions) {
		o.skipValidate = true
	}
}

// Load merges defaults, the YAML file, .env and the environment.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	cfg := Default()
	if options.file != "" {
		if err := loadYAML(options.file, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnv[key]
		return value, ok
	}

	cfg.API.BaseURL = stringWithDefault(lookup, EnvAPIBaseURL, cfg.API.BaseURL)
	cfg.API.Token = stringWithDefault(lookup, EnvAPIToken, cfg.API.Token)
	cfg.API.Timeout = durationWithDefault(lookup, EnvHTTPTimeout, cfg.API.Timeout)
	cfg.Server.Addr = stringWithDefault(lookup, EnvAddr, cfg.Server.Addr)
	cfg.Display.Currency = stringWithDefault(lookup, EnvCurrency, cfg.Display.Currency)
	cfg.Display.Locale = stringWithDefault(lookup, EnvLocale, cfg.Display.Locale)
	cfg.Display.Theme = stringWithDefault(lookup, EnvTheme, cfg.Display.Theme)
	cfg.Deadline.LeadTime = durationWithDefault(lookup, EnvLeadTime, cfg.Deadline.LeadTime)
	cfg.Attachments.MaxFiles = intWithDefault(lookup, EnvMaxFiles, cfg.Attachments.MaxFiles)
	cfg.Attachments.MaxFileSize = int64WithDefault(lookup, EnvMaxFileSize, cfg.Attachments.MaxFileSize)
	cfg.Attachments.MaxTotalSize = int64WithDefault(lookup, EnvMaxTotal, cfg.Attachments.MaxTotalSize)
	cfg.LogLevel = strings.ToLower(stringWithDefault(lookup, EnvLogLevel, cfg.LogLevel))
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if options.skipValidate {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func int64WithDefault(lookup func(string) (string, bool), key string, fallback int64) int64 {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
