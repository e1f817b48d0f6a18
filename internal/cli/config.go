package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orizon-lang/exprir/internal/codegen"
)

// ServerConfig configures `expr-ir serve`.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	CertFile  string `yaml:"cert_file"`
	KeyFile   string `yaml:"key_file"`
	CacheSize int    `yaml:"cache_size"`
}

// Config is the YAML configuration shared by every expr-ir subcommand.
// Command-line flags override the values loaded from file.
type Config struct {
	ModuleName   string       `yaml:"module_name"`
	FunctionName string       `yaml:"function_name"`
	Emit         string       `yaml:"emit"`
	Verbose      bool         `yaml:"verbose"`
	Debug        bool         `yaml:"debug"`
	Color        *bool        `yaml:"color,omitempty"`
	Requires     string       `yaml:"requires,omitempty"`
	Server       ServerConfig `yaml:"server"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	def := codegen.DefaultOptions()
	return &Config{
		ModuleName:   def.ModuleName,
		FunctionName: def.FunctionName,
		Emit:         string(def.Emit),
		Server: ServerConfig{
			Addr:      "127.0.0.1:4433",
			CacheSize: 256,
		},
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; unknown keys are rejected.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the emit kind and the version constraint.
func (c *Config) Validate() error {
	if _, err := codegen.ParseEmit(c.Emit); err != nil {
		return err
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("server.cache_size must not be negative, got %d", c.Server.CacheSize)
	}
	return CheckVersion(c.Requires)
}

// Options converts the configuration into compile options.
func (c *Config) Options() (codegen.Options, error) {
	emit, err := codegen.ParseEmit(c.Emit)
	if err != nil {
		return codegen.Options{}, err
	}
	return codegen.Options{
		ModuleName:   c.ModuleName,
		FunctionName: c.FunctionName,
		Emit:         emit,
	}, nil
}
