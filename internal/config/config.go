package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the tuning file for enrichment and the finder. The env Settings
// decide where things live; this decides how hard the fetchers work.
type Config struct {
	Enrich struct {
		Pages          []string `yaml:"pages"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		Workers        int      `yaml:"workers"`
		HostRPS        float64  `yaml:"host_rps"`
		HostBurst      int      `yaml:"host_burst"`
		MaxRows        int      `yaml:"max_rows"`
		OnlyBlank      bool     `yaml:"only_blank"`
	} `yaml:"enrich"`

	Finder struct {
		BlockedDomains []string `yaml:"blocked_domains"`
	} `yaml:"finder"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the built-in tuning used when no config file exists yet.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Enrich.Pages) == 0 {
		c.Enrich.Pages = []string{
			"/", "/contact", "/advertise", "/advertising", "/sponsor",
			"/sponsorship", "/partners", "/brand", "/brand-partnerships",
			"/media-kit", "/media", "/press", "/marketing", "/work-with-us",
		}
	}
	if c.Enrich.TimeoutSeconds <= 0 {
		c.Enrich.TimeoutSeconds = 5
	}
	if c.Enrich.Workers <= 0 {
		c.Enrich.Workers = 4
	}
	if c.Enrich.HostRPS <= 0 {
		c.Enrich.HostRPS = 2
	}
	if c.Enrich.HostBurst <= 0 {
		c.Enrich.HostBurst = 1
	}
	if c.Enrich.MaxRows <= 0 {
		c.Enrich.MaxRows = 50
	}
	if len(c.Finder.BlockedDomains) == 0 {
		c.Finder.BlockedDomains = []string{
			"facebook.com", "x.com", "twitter.com", "instagram.com",
			"youtube.com", "tiktok.com", "linkedin.com", "pinterest.com",
			"itunes.apple.com",
		}
	}
}
