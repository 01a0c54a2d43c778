// Package config loads blog settings from blog.yaml, BLOG_* environment
// variables and built-in defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete blog configuration.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Build   BuildConfig   `mapstructure:"build"`
	Serve   ServeConfig   `mapstructure:"serve"`
	Deploy  DeployConfig  `mapstructure:"deploy"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig holds the metadata rendered into every page.
type SiteConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Author      string `mapstructure:"author"`
	Owner       string `mapstructure:"owner"`
	BaseURL     string `mapstructure:"base_url"`
}

// BuildConfig controls where content is read from and written to.
type BuildConfig struct {
	ContentDir    string `mapstructure:"content_dir"`
	StaticDir     string `mapstructure:"static_dir"`
	LayoutsDir    string `mapstructure:"layouts_dir"`
	OutputDir     string `mapstructure:"output_dir"`
	PostsPerPage  int    `mapstructure:"posts_per_page"`
	ImageMaxWidth int    `mapstructure:"image_max_width"`
	Workers       int    `mapstructure:"workers"`
}

// ServeConfig controls the local preview server.
type ServeConfig struct {
	Port     int           `mapstructure:"port"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// DeployConfig describes the hosting stack handed to the provisioning engine.
type DeployConfig struct {
	StackName    string `mapstructure:"stack_name"`
	Account      string `mapstructure:"account"`
	Region       string `mapstructure:"region"`
	OutDir       string `mapstructure:"out_dir"`
	Bucket       bool   `mapstructure:"bucket"`
	CDN          bool   `mapstructure:"cdn"`
	Domain       string `mapstructure:"domain"`
	HostedZoneID string `mapstructure:"hosted_zone_id"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error when cfgFile is empty.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("blog")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present. It panics if the built-in defaults are invalid.
func Default() *Config {
	cfg, err := defaults()
	if err != nil {
		panic(err)
	}
	return cfg
}

func defaults() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating defaults: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.title", "Pixegami Blog")
	v.SetDefault("site.description", "Notes on software, games and the things in between.")
	v.SetDefault("site.author", "@pixegami")
	v.SetDefault("site.owner", "Pixegami")
	v.SetDefault("site.base_url", "")

	v.SetDefault("build.content_dir", "content")
	v.SetDefault("build.static_dir", "static")
	v.SetDefault("build.layouts_dir", "layouts")
	v.SetDefault("build.output_dir", "public")
	v.SetDefault("build.posts_per_page", 12)
	v.SetDefault("build.image_max_width", 800)
	v.SetDefault("build.workers", 4)

	v.SetDefault("serve.port", 8000)
	v.SetDefault("serve.debounce", 500*time.Millisecond)

	v.SetDefault("deploy.stack_name", "PixegamiBlogStack")
	v.SetDefault("deploy.account", "")
	v.SetDefault("deploy.region", "us-east-1")
	v.SetDefault("deploy.out_dir", "cdk.out")
	v.SetDefault("deploy.bucket", false)
	v.SetDefault("deploy.cdn", false)
	v.SetDefault("deploy.domain", "")
	v.SetDefault("deploy.hosted_zone_id", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Build.ContentDir == "" {
		return fmt.Errorf("build.content_dir must not be empty")
	}
	if c.Build.OutputDir == "" {
		return fmt.Errorf("build.output_dir must not be empty")
	}
	if out := filepath.Clean(c.Build.OutputDir); out == "." || out == string(filepath.Separator) || out == filepath.Clean(c.Build.ContentDir) {
		return fmt.Errorf("build.output_dir %q is wiped on every build and cannot be the working, root or content directory", c.Build.OutputDir)
	}
	if c.Build.PostsPerPage < 1 {
		return fmt.Errorf("build.posts_per_page must be positive, got %d", c.Build.PostsPerPage)
	}
	if c.Build.ImageMaxWidth < 1 {
		return fmt.Errorf("build.image_max_width must be positive, got %d", c.Build.ImageMaxWidth)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be positive, got %d", c.Build.Workers)
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be console or json)", c.Logging.Format)
	}

	return nil
}
