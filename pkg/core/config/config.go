package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "KALEIDO_"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// ParserConfig holds engine limits
type ParserConfig struct {
	MaxErrors      int   `toml:"max_errors" yaml:"max_errors"`
	ValidateAST    bool  `toml:"validate_ast" yaml:"validate_ast"`
	MaxSourceBytes int64 `toml:"max_source_bytes" yaml:"max_source_bytes"`
}

// OutputConfig holds unit output settings
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
	Color  bool   `toml:"color" yaml:"color"`
}

// StoreConfig holds the SQLite unit store settings
type StoreConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig holds the WebSocket and gRPC server settings
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	HTTPPort        int      `toml:"http_port" yaml:"http_port"`
	GRPCPort        int      `toml:"grpc_port" yaml:"grpc_port"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	CacheSize       int      `toml:"cache_size" yaml:"cache_size"` // -1 disables the result cache
	CacheTTL        Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Output formats accepted by Validate
var outputFormats = map[string]bool{"text": true, "tree": true, "json": true, "yaml": true}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file, or a YAML file when the
// extension is .yaml or .yml
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("config.Load")
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to read config").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, mdwerror.Wrap(err, "failed to parse config").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, mdwerror.Wrap(err, "failed to parse config").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in paths
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadOrDefault loads path when given. Without a path it tries the
// KALEIDO_CONFIG environment variable and the default locations, and falls
// back to Default when none exists.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return Load(p)
	}

	defaultPaths := []string{
		"./kaleido.toml",
		"./kaleido.yaml",
		"./configs/kaleido.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		defaultPaths = append(defaultPaths, filepath.Join(home, ".config/kaleido/kaleido.toml"))
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "kaleido"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Output
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "kaleido.db")
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8480
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9480
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Server.CacheSize == 0 {
		c.Server.CacheSize = 256
	}
	if c.Server.CacheTTL.Duration == 0 {
		c.Server.CacheTTL.Duration = 5 * time.Minute
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// ApplyEnv overrides values from KALEIDO_* environment variables
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":     &c.General.LogLevel,
		"LOG_FORMAT":    &c.General.LogFormat,
		"DATA_DIR":      &c.General.DataDir,
		"OUTPUT_FORMAT": &c.Output.Format,
		"STORE_PATH":    &c.Store.Path,
		"SERVER_HOST":   &c.Server.Host,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_ERRORS": &c.Parser.MaxErrors,
		"HTTP_PORT":  &c.Server.HTTPPort,
		"GRPC_PORT":  &c.Server.GRPCPort,
		"CACHE_SIZE": &c.Server.CacheSize,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(key, v, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"VALIDATE_AST":  &c.Parser.ValidateAST,
		"OUTPUT_COLOR":  &c.Output.Color,
		"STORE_ENABLED": &c.Store.Enabled,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(key, v, err)
		}
		*dst = b
	}

	if v, ok := os.LookupEnv(EnvPrefix + "MAX_SOURCE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("MAX_SOURCE_BYTES", v, err)
		}
		c.Parser.MaxSourceBytes = n
	}

	return nil
}

func envError(key, value string, err error) error {
	return mdwerror.Wrap(err, fmt.Sprintf("invalid value for %s%s", EnvPrefix, key)).
		WithCode(mdwerror.CodeInvalidConfig).
		WithOperation("config.ApplyEnv").
		WithDetail("value", value)
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("general.log_level", c.General.LogLevel)
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		return invalid("general.log_format", c.General.LogFormat)
	}
	if c.Parser.MaxErrors < 0 {
		return invalid("parser.max_errors", c.Parser.MaxErrors)
	}
	if c.Parser.MaxSourceBytes < 0 {
		return invalid("parser.max_source_bytes", c.Parser.MaxSourceBytes)
	}
	if !outputFormats[c.Output.Format] {
		return invalid("output.format", c.Output.Format)
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return invalid("store.path", c.Store.Path)
	}
	if c.Server.Host == "" {
		return invalid("server.host", c.Server.Host)
	}
	for key, port := range map[string]int{"server.http_port": c.Server.HTTPPort, "server.grpc_port": c.Server.GRPCPort} {
		if port < 1 || port > 65535 {
			return invalid(key, port)
		}
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return invalid("server.grpc_port", c.Server.GRPCPort)
	}
	if c.Server.ReadTimeout.Duration < 0 {
		return invalid("server.read_timeout", c.Server.ReadTimeout)
	}
	if c.Server.ShutdownTimeout.Duration < 0 {
		return invalid("server.shutdown_timeout", c.Server.ShutdownTimeout)
	}
	if c.Server.CacheSize < -1 {
		return invalid("server.cache_size", c.Server.CacheSize)
	}
	return nil
}

func invalid(key string, value interface{}) error {
	return mdwerror.Newf("invalid configuration value for %s: %v", key, value).
		WithCode(mdwerror.CodeInvalidConfig).
		WithOperation("config.Validate").
		WithDetail("key", key)
}

// HTTPAddress returns the address of the WebSocket and health server
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GRPCAddress returns the address of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
