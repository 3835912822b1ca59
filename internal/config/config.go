package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

// Duration parses yaml scalars like "5m" or "1h"; yaml.v2 cannot decode
// time.Duration on its own.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Public struct {
	Port       int    `yaml:"port"`
	LogLevel   string `yaml:"log_level"`
	LogJSON    bool   `yaml:"log_json"`
	CorsOrigin string `yaml:"cors_origin"`

	Pg Pg `yaml:"pg"`

	EthRpcUrl   string   `yaml:"eth_rpc_url"`   // empty disables ENS resolution
	EnsCacheTTL Duration `yaml:"ens_cache_ttl"` // how long resolved names are reused

	FreshnessWindow  Duration `yaml:"freshness_window"` // signed message replay window, symmetric
	MaxCommentLength int      `yaml:"max_comment_length"`
	DefaultPageSize  int      `yaml:"default_page_size"`
	MaxPageSize      int      `yaml:"max_page_size"` // hard clamp applied regardless of client request
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

type Private struct {
	PgPassword string `yaml:"pg_password"`
}

func (c *Config) PgPassword() string {
	return c.private.PgPassword
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := Config{public, private}
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Public.Port == 0 {
		c.Public.Port = 8080
	}
	if c.Public.FreshnessWindow.Duration == 0 {
		c.Public.FreshnessWindow.Duration = 5 * time.Minute
	}
	if c.Public.MaxCommentLength == 0 {
		c.Public.MaxCommentLength = 2000
	}
	if c.Public.DefaultPageSize == 0 {
		c.Public.DefaultPageSize = 50
	}
	if c.Public.MaxPageSize == 0 {
		c.Public.MaxPageSize = 100
	}
	if c.Public.EnsCacheTTL.Duration == 0 {
		c.Public.EnsCacheTTL.Duration = time.Hour
	}
}

// NewForTesting builds a config without yaml files, for tests that need
// explicit Pg coordinates.
func NewForTesting(public Public, private Private) *Config {
	cfg := Config{public, private}
	cfg.applyDefaults()
	return &cfg
}
