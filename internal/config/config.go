// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Policies for the free-text detail that accompanies an "Other" answer.
const (
	OtherDetailsRequired = "required"
	OtherDetailsOptional = "optional"
)

// Config holds all configuration values for enroll.
type Config struct {
	Endpoint       string   `mapstructure:"endpoint" yaml:"endpoint"`
	DataDir        string   `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string   `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string   `mapstructure:"log_file" yaml:"log_file"`
	ReferralPrefix string   `mapstructure:"referral_prefix" yaml:"referral_prefix"`
	DefaultCountry string   `mapstructure:"default_country" yaml:"default_country"`
	TimeZone       string   `mapstructure:"time_zone" yaml:"time_zone"`
	TimeSlots      []string `mapstructure:"time_slots" yaml:"time_slots,omitempty"`
	OtherDetails   string   `mapstructure:"other_details" yaml:"other_details"`
	RequestTimeout string   `mapstructure:"request_timeout" yaml:"request_timeout"`
	AuthToken      string   `mapstructure:"auth_token" yaml:"auth_token,omitempty"`
	// Confirmation is a markdown file replacing the built-in thank-you page.
	Confirmation string `mapstructure:"confirmation_template" yaml:"confirmation_template,omitempty"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Endpoint:       "http://localhost:5001",
		DataDir:        ".enroll",
		LogLevel:       "info",
		ReferralPrefix: "ALF-REFID",
		DefaultCountry: "United States",
		OtherDetails:   OtherDetailsRequired,
		RequestTimeout: "0s",
	}
}

var envKeys = []string{
	"endpoint",
	"data_dir",
	"log_level",
	"log_file",
	"referral_prefix",
	"default_country",
	"time_zone",
	"time_slots",
	"other_details",
	"request_timeout",
	"auth_token",
	"confirmation_template",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults.
// Flags are applied by the caller on the returned value.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("enroll")

	def := Default()
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("referral_prefix", def.ReferralPrefix)
	v.SetDefault("default_country", def.DefaultCountry)
	v.SetDefault("time_zone", "")
	v.SetDefault("time_slots", []string{})
	v.SetDefault("other_details", def.OtherDetails)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("auth_token", "")
	v.SetDefault("confirmation_template", "")

	v.SetEnvPrefix("ENROLL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		if err := v.BindEnv(key, "ENROLL_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint %q is not an absolute URL", c.Endpoint)
	}
	switch c.OtherDetails {
	case OtherDetailsRequired, OtherDetailsOptional:
	default:
		return fmt.Errorf("other_details must be %q or %q, got %q", OtherDetailsRequired, OtherDetailsOptional, c.OtherDetails)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("time_zone %q: %w", c.TimeZone, err)
		}
	}
	return nil
}

// Timeout returns the HTTP request timeout; zero means the transport default.
func (c *Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout %q: %w", c.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("request_timeout must not be negative")
	}
	return d, nil
}

// OtherDetailsMandatory reports whether "Other" answers need free text.
func (c *Config) OtherDetailsMandatory() bool {
	return c.OtherDetails != OtherDetailsOptional
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/enroll/enroll.yml or $XDG_CONFIG_HOME/enroll/enroll.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "enroll", "enroll.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "enroll", "enroll.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "enroll.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	// 0600: the file may carry an auth token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
