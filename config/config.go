package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp"
)

// Transport kinds.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// Unknown-argument policies.
const (
	PolicyLenient = "lenient"
	PolicyStrict  = "strict"
)

const (
	DefaultGlobalAPI           = "https://app.xano.com/api:meta"
	DefaultInstanceURLTemplate = "https://{instance}.n7c.xano.io/api:meta"
	InstancePlaceholder        = "{instance}"
)

// Config represents the MCP server configuration
type Config struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	Version     string   `json:"version" yaml:"version" toml:"version"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Server      Server   `json:"server" yaml:"server" toml:"server"`
	Transport   string   `json:"transport" yaml:"transport" toml:"transport"`
	Logging     Logging  `json:"logging" yaml:"logging" toml:"logging"`
	Xano        Xano     `json:"xano" yaml:"xano" toml:"xano"`
	Dispatch    Dispatch `json:"dispatch" yaml:"dispatch" toml:"dispatch"`
}

// Server represents server configuration
type Server struct {
	Host  string `json:"host" yaml:"host" toml:"host"`
	Port  int    `json:"port" yaml:"port" toml:"port"`
	Debug bool   `json:"debug" yaml:"debug" toml:"debug"`

	// AllowedOrigins lists the browser origins that may call the HTTP and
	// WebSocket endpoints. Requests without an Origin header are always
	// accepted.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
}

// Logging represents logging configuration
type Logging struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
	Path   string `json:"path" yaml:"path" toml:"path"`
}

// Xano holds the remote Metadata API endpoint and credentials.
type Xano struct {
	APIToken            string `json:"api_token,omitempty" yaml:"api_token,omitempty" toml:"api_token,omitempty"`
	GlobalAPI           string `json:"global_api" yaml:"global_api" toml:"global_api"`
	InstanceURLTemplate string `json:"instance_url_template" yaml:"instance_url_template" toml:"instance_url_template"`
	TimeoutSeconds      int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Dispatch controls tool argument validation.
type Dispatch struct {
	UnknownArguments string `json:"unknown_arguments" yaml:"unknown_arguments" toml:"unknown_arguments"`
}

// Error is a fatal configuration problem detected before serving.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrMissingToken is returned when no API token was supplied anywhere.
var ErrMissingToken = &Error{
	Field:   "xano.api_token",
	Message: "Xano API token not provided; set XANO_API_TOKEN or pass -token",
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &Config{
		Name:        mcp.ServerName,
		Version:     mcp.ServerVersion,
		Description: "Model Context Protocol server for the Xano Metadata API",
		Server: Server{
			Host:           "127.0.0.1",
			Port:           8000,
			Debug:          false,
			AllowedOrigins: []string{},
		},
		Transport: TransportStdio,
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Path:   filepath.Join(home, ".xano-mcp", "logs", "mcp.log"),
		},
		Xano: Xano{
			GlobalAPI:           DefaultGlobalAPI,
			InstanceURLTemplate: DefaultInstanceURLTemplate,
			TimeoutSeconds:      30,
		},
		Dispatch: Dispatch{
			UnknownArguments: PolicyLenient,
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional file at
// path, environment variables and finally the given overrides, then
// validates the result.
func LoadConfig(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := NewConfig()

	if strings.TrimSpace(path) != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	for _, override := range overrides {
		if override != nil {
			override(cfg)
		}
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func decodeFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	expanded := []byte(expandEnvVars(string(data)))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(expanded, cfg)
	case ".toml":
		_, err = toml.Decode(string(expanded), cfg)
	default:
		err = json.Unmarshal(expanded, cfg)
	}
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func encodeFile(path string, cfg *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("XANO_API_TOKEN"); token != "" {
		cfg.Xano.APIToken = token
	}

	if transport := os.Getenv("MCP_TRANSPORT"); transport != "" {
		cfg.Transport = transport
	}

	if portStr := os.Getenv("MCP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("warning: ignoring invalid MCP_PORT value %q: %v", portStr, err)
		}
	}

	if host := os.Getenv("MCP_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if origins, ok := os.LookupEnv("MCP_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("MCP_DEBUG"); debug != "" {
		if parsed, err := strconv.ParseBool(debug); err == nil {
			cfg.Server.Debug = parsed
		} else {
			log.Printf("warning: ignoring invalid MCP_DEBUG value %q: %v", debug, err)
		}
	}

	if logLevel := os.Getenv("MCP_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if logPath, ok := os.LookupEnv("MCP_LOG_PATH"); ok {
		cfg.Logging.Path = logPath
	}

	if timeout := os.Getenv("XANO_TIMEOUT_SECONDS"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil {
			cfg.Xano.TimeoutSeconds = parsed
		} else {
			log.Printf("warning: ignoring invalid XANO_TIMEOUT_SECONDS value %q: %v", timeout, err)
		}
	}

	if policy := os.Getenv("XANO_UNKNOWN_ARGUMENTS"); policy != "" {
		cfg.Dispatch.UnknownArguments = policy
	}
}

// Normalize canonicalizes config values so downstream validation and runtime
// logic operate on stable representations.
func (c *Config) Normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	for _, origin := range c.Server.AllowedOrigins {
		origin = strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	c.Server.AllowedOrigins = origins
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
	c.Xano.APIToken = strings.TrimSpace(c.Xano.APIToken)
	c.Xano.GlobalAPI = strings.TrimRight(strings.TrimSpace(c.Xano.GlobalAPI), "/")
	c.Xano.InstanceURLTemplate = strings.TrimRight(strings.TrimSpace(c.Xano.InstanceURLTemplate), "/")
	if c.Xano.TimeoutSeconds == 0 {
		c.Xano.TimeoutSeconds = 30
	}
	c.Dispatch.UnknownArguments = strings.ToLower(strings.TrimSpace(c.Dispatch.UnknownArguments))
	if c.Dispatch.UnknownArguments == "" {
		c.Dispatch.UnknownArguments = PolicyLenient
	}
	if c.Server.Debug {
		c.Logging.Level = "debug"
	}
}

// Validate checks if the configuration is valid. Every failure is an *Error.
func (c *Config) Validate() error {
	if c.Xano.APIToken == "" {
		return ErrMissingToken
	}

	validTransports := map[string]bool{
		TransportStdio:     true,
		TransportHTTP:      true,
		TransportWebSocket: true,
	}
	if !validTransports[c.Transport] {
		return invalid("transport", "invalid transport %q: expected one of [stdio http websocket]", c.Transport)
	}

	if c.Transport != TransportStdio {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return invalid("server.port", "invalid port number %d", c.Server.Port)
		}
		if c.Server.Host == "" {
			return invalid("server.host", "host cannot be empty")
		}
		for _, origin := range c.Server.AllowedOrigins {
			u, err := url.Parse(origin)
			if err != nil || u.Scheme == "" || u.Host == "" || u.Path != "" {
				return invalid("server.allowed_origins", "invalid origin %q: expected scheme://host[:port]", origin)
			}
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return invalid("logging.level", "invalid log level %q", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return invalid("logging.format", "invalid log format %q", c.Logging.Format)
	}

	if c.Xano.GlobalAPI == "" {
		return invalid("xano.global_api", "global API URL cannot be empty")
	}
	if !strings.Contains(c.Xano.InstanceURLTemplate, InstancePlaceholder) {
		return invalid("xano.instance_url_template", "template %q must contain %s", c.Xano.InstanceURLTemplate, InstancePlaceholder)
	}
	if c.Xano.TimeoutSeconds < 1 || c.Xano.TimeoutSeconds > 600 {
		return invalid("xano.timeout_seconds", "invalid timeout %d: expected range 1..600", c.Xano.TimeoutSeconds)
	}

	if c.Dispatch.UnknownArguments != PolicyLenient && c.Dispatch.UnknownArguments != PolicyStrict {
		return invalid("dispatch.unknown_arguments", "invalid policy %q: expected one of [lenient strict]", c.Dispatch.UnknownArguments)
	}

	return nil
}

// RejectUnknownArguments reports whether extra tool arguments are errors.
func (c *Config) RejectUnknownArguments() bool {
	return c.Dispatch.UnknownArguments == PolicyStrict
}

// Address returns the listen address for socket transports.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LogValue keeps the API token out of log output.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", c.Name),
		slog.String("version", c.Version),
		slog.String("transport", c.Transport),
		slog.String("address", c.Address()),
		slog.Bool("debug", c.Server.Debug),
		slog.Any("allowed_origins", c.Server.AllowedOrigins),
		slog.String("log_level", c.Logging.Level),
		slog.String("global_api", c.Xano.GlobalAPI),
		slog.String("instance_url_template", c.Xano.InstanceURLTemplate),
		slog.String("api_token", logger.Redact(c.Xano.APIToken)),
		slog.Int("timeout_seconds", c.Xano.TimeoutSeconds),
		slog.String("unknown_arguments", c.Dispatch.UnknownArguments),
	)
}

// ResolveConfigPath returns the config file to load, or "" when none exists.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("MCP_CONFIG_PATH")); path != "" {
		return path, nil
	}

	for _, candidate := range []string{"config/xano_mcp.json", "config/xano_mcp.yaml", "config/xano_mcp.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// DefaultConfigPath is where EnsureDefaultConfig writes when nothing else is set.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".xano-mcp", "config.json"), nil
}

// EnsureDefaultConfig creates a default config file if one does not exist.
// The written file never contains an API token.
func EnsureDefaultConfig(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := NewConfig()
	defaultConfig.Normalize()
	data, err := encodeFile(path, defaultConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}
