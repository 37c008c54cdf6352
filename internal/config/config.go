package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qiniu/x/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Solver SolverConfig `yaml:"solver"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type SolverConfig struct {
	// Timeout bounds one solve request. Zero disables the deadline.
	Timeout     time.Duration `yaml:"timeout"`
	RoundDigits int           `yaml:"round_digits"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "",
			Port:              8080,
			MaxBodyBytes:      1 << 20,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Solver: SolverConfig{
			Timeout:     5 * time.Second,
			RoundDigits: 6,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configPath when it exists, then applies environment overrides.
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	if host, ok := os.LookupEnv("BERNOULLI_HOST"); ok {
		c.Server.Host = host
	}
	if portStr := os.Getenv("BERNOULLI_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid BERNOULLI_PORT %q: %w", portStr, err)
		}
		c.Server.Port = port
	}
	if timeout := os.Getenv("BERNOULLI_SOLVE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid BERNOULLI_SOLVE_TIMEOUT %q: %w", timeout, err)
		}
		c.Solver.Timeout = d
	}
	if digits := os.Getenv("BERNOULLI_ROUND_DIGITS"); digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return fmt.Errorf("invalid BERNOULLI_ROUND_DIGITS %q: %w", digits, err)
		}
		c.Solver.RoundDigits = n
	}
	if level := os.Getenv("BERNOULLI_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	return nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive"))
	}
	if c.Solver.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solver.timeout must not be negative"))
	}
	if c.Solver.RoundDigits < 1 || c.Solver.RoundDigits > 17 {
		errs = append(errs, fmt.Errorf("solver.round_digits %d must be between 1 and 17", c.Solver.RoundDigits))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogLevel maps log.level to a github.com/qiniu/x/log output level.
func (c *Config) LogLevel() (int, error) {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return log.Ldebug, nil
	case "", "info":
		return log.Linfo, nil
	case "warn", "warning":
		return log.Lwarn, nil
	case "error":
		return log.Lerror, nil
	}
	return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
}
