package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log format constants
	LogFormatText = "text"
	LogFormatJSON = "json"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = LogFormatText
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultDatabaseName = "pdf-form-filler.db"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDF_FILLER"
)

// ErrVersionRequested is returned by Load when --version or -v is present.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the form filler
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Storage configuration
	DataDirectory string // template imports and generated output
	DatabasePath  string // SQLite file; defaults to DefaultDatabaseName inside DataDirectory

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum template upload size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		DataDirectory: currentDir,
		Version:       "1.0.0",
		ServerName:    "pdf-form-filler",
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the process arguments and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load builds a configuration from args and PDF_FILLER_* environment
// variables. Flags take precedence over the environment.
func Load(program string, args []string) (*Config, error) {
	if versionRequested(args) {
		return nil, ErrVersionRequested
	}

	cfg := DefaultConfig()
	v := viper.New()
	setupViperEnvironment(v, cfg)

	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)
	defineCommandLineFlags(flags, cfg)
	flags.Usage = func() { printUsage(os.Stderr, program, flags) }
	bindFlagsToViper(v, flags)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)

	if cfg.DataDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.DataDirectory); err == nil {
			cfg.DataDirectory = expandedPath
		}
	}

	if cfg.DatabasePath == "" && cfg.DataDirectory != "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDirectory, DefaultDatabaseName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.DataDirectory)
	v.SetDefault("db", cfg.DatabasePath)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Run mode: 'stdio' for MCP standard I/O, 'server' for the HTTP API")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.DataDirectory, "Data directory for template imports and generated PDFs")
	flags.String("db", cfg.DatabasePath, "SQLite database file (default: "+DefaultDatabaseName+" in the data directory)")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("logformat", cfg.LogFormat, "Log format (text, json)")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum template file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, flags *pflag.FlagSet) {
	for _, name := range []string{"mode", "host", "port", "dir", "db", "loglevel", "logformat", "maxfilesize"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
}

func printUsage(w io.Writer, program string, flags *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage of %s:\n", program)
	fmt.Fprintf(w, "\nPDF Form Filler - map PDF form fields to entity data and generate filled forms\n\n")
	fmt.Fprintf(w, "Options:\n")
	flags.SetOutput(w)
	flags.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  %s                                   # MCP over stdio, current directory\n", program)
	fmt.Fprintf(w, "  %s --dir=/srv/forms                  # MCP over stdio with a data directory\n", program)
	fmt.Fprintf(w, "  %s --mode=server --port=8081         # HTTP API\n", program)
	fmt.Fprintf(w, "\nEnvironment Variables:\n")
	fmt.Fprintf(w, "  PDF_FILLER_MODE        Run mode\n")
	fmt.Fprintf(w, "  PDF_FILLER_HOST        Server host\n")
	fmt.Fprintf(w, "  PDF_FILLER_PORT        Server port\n")
	fmt.Fprintf(w, "  PDF_FILLER_DIR         Data directory\n")
	fmt.Fprintf(w, "  PDF_FILLER_DB          SQLite database file\n")
	fmt.Fprintf(w, "  PDF_FILLER_LOGLEVEL    Log level\n")
	fmt.Fprintf(w, "  PDF_FILLER_LOGFORMAT   Log format\n")
	fmt.Fprintf(w, "  PDF_FILLER_MAXFILESIZE Maximum file size\n")
}

func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.DataDirectory = v.GetString("dir")
	cfg.DatabasePath = v.GetString("db")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters when serving HTTP
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DataDirectory == "" {
		return errors.New("data directory cannot be empty")
	}

	if _, err := os.Stat(c.DataDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DataDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create data directory %s: %w", c.DataDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access data directory %s: %w", c.DataDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DataDirectory: %s, DatabasePath: %s, LogLevel: %s, LogFormat: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.DataDirectory, c.DatabasePath, c.LogLevel, c.LogFormat, c.MaxFileSize)
}

// IsServerMode returns true when the HTTP API should be served
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true when MCP is served over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
