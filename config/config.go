// Package config loads tekir settings from a TOML file.
//
// Every field is optional. Values absent from the file keep their defaults,
// so an empty or missing file yields Default().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/bang"
	"github.com/poiesic/tekir/fetch"
)

// ErrInvalidConfig is returned when a loaded file fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Storage settings.
type Storage struct {
	// Path is the badger directory holding chats and preferences.
	Path string `toml:"path"`
}

// Endpoints are the hosted service URLs.
type Endpoints struct {
	Search           string `toml:"search"`
	Autocomplete     string `toml:"autocomplete"`
	WikipediaAPI     string `toml:"wikipedia_api"`
	WikipediaSummary string `toml:"wikipedia_summary"`
}

// AI backend settings.
type AI struct {
	Backend      string            `toml:"backend"`
	AnswerHost   string            `toml:"answer_host"`
	ChatURL      string            `toml:"chat_url"`
	OpenAIHost   string            `toml:"openai_host"`
	OpenAIToken  string            `toml:"openai_token"`
	DefaultModel string            `toml:"default_model"`
	Models       map[string]string `toml:"models"`
}

// Search orchestration settings.
type Search struct {
	Debounce time.Duration `toml:"debounce"`
	PoolSize int           `toml:"pool_size"`
}

// HTTP client settings.
type HTTP struct {
	UserAgent string        `toml:"user_agent"`
	Timeout   time.Duration `toml:"timeout"`
}

// Bang is an extra redirect shortcut.
type Bang struct {
	Token    string `toml:"token"`
	Name     string `toml:"name"`
	Template string `toml:"template"`
}

// Config is the root of the config file.
type Config struct {
	Storage   Storage   `toml:"storage"`
	Endpoints Endpoints `toml:"endpoints"`
	AI        AI        `toml:"ai"`
	Search    Search    `toml:"search"`
	HTTP      HTTP      `toml:"http"`
	Bangs     []Bang    `toml:"bangs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	e := fetch.DefaultEndpoints()
	a := ai.DefaultConfig()
	return &Config{
		Storage: Storage{Path: defaultStoragePath()},
		Endpoints: Endpoints{
			Search:           e.Search,
			Autocomplete:     e.Autocomplete,
			WikipediaAPI:     e.WikipediaAPI,
			WikipediaSummary: e.WikipediaSummary,
		},
		AI: AI{
			Backend:      a.Backend,
			AnswerHost:   a.AnswerHost,
			ChatURL:      a.ChatURL,
			OpenAIHost:   a.OpenAIHost,
			OpenAIToken:  a.OpenAIToken,
			DefaultModel: a.DefaultModel,
		},
		Search: Search{
			Debounce: 200 * time.Millisecond,
			PoolSize: 8,
		},
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tekir"), nil
}

func defaultStoragePath() string {
	dir, err := configDir()
	if err != nil {
		return "tekir-data"
	}
	return filepath.Join(dir, "data")
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path on top of Default. An empty path uses Path(); a missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("%w: storage.path is required", ErrInvalidConfig)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("%w: search.debounce cannot be negative", ErrInvalidConfig)
	}
	if c.Search.PoolSize < 0 {
		return fmt.Errorf("%w: search.pool_size cannot be negative", ErrInvalidConfig)
	}
	for _, b := range c.Bangs {
		if b.Token == "" || !strings.Contains(b.Template, bang.Placeholder) {
			return fmt.Errorf("%w: bang %q needs a token and a template containing %s", ErrInvalidConfig, b.Token, bang.Placeholder)
		}
	}
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig converts the [ai] table into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithBackend(c.AI.Backend),
		ai.WithAnswerHost(c.AI.AnswerHost),
		ai.WithChatURL(c.AI.ChatURL),
		ai.WithOpenAIHost(c.AI.OpenAIHost),
		ai.WithOpenAIToken(c.AI.OpenAIToken),
		ai.WithDefaultModel(c.AI.DefaultModel),
		ai.WithTimeout(c.HTTP.Timeout),
	}
	for id, name := range c.AI.Models {
		opts = append(opts, ai.WithModelMapping(id, name))
	}
	return ai.NewConfig(opts...)
}

// FetchEndpoints converts the [endpoints] table.
func (c *Config) FetchEndpoints() fetch.Endpoints {
	e := fetch.Endpoints{
		Search:           c.Endpoints.Search,
		Autocomplete:     c.Endpoints.Autocomplete,
		WikipediaAPI:     c.Endpoints.WikipediaAPI,
		WikipediaSummary: c.Endpoints.WikipediaSummary,
	}
	e.Normalize()
	return e
}

// ResolverOptions returns the extra bangs as resolver options.
func (c *Config) ResolverOptions() []bang.Option {
	opts := make([]bang.Option, 0, len(c.Bangs))
	for _, b := range c.Bangs {
		opts = append(opts, bang.WithBang(bang.Bang{Token: b.Token, Name: b.Name, Template: b.Template}))
	}
	return opts
}
