package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "DEALSCANNER_CONFIG"
	databasePathEnv   = "DEALSCANNER_DB_PATH"
	searchKeywordEnv  = "SEARCH_KEYWORD"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Logging       LoggingConfig      `yaml:"logging"`
	Search        SearchConfig       `yaml:"search"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Crawler       CrawlerConfig      `yaml:"crawler"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig carries the keyword the boards are scanned for.
type SearchConfig struct {
	Keyword string `yaml:"keyword"`
}

// SchedulerConfig defines when the scanner should run.
type SchedulerConfig struct {
	Enabled         bool           `yaml:"enabled"`
	IntervalMinutes int            `yaml:"intervalMinutes"`
	Timezone        string         `yaml:"timezone"`
	location        *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Interval converts the configured minutes into a duration.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// CrawlerConfig governs outbound fetch behavior.
type CrawlerConfig struct {
	UserAgent         string  `yaml:"userAgent"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// GeminiConfig defines how to contact the Gemini generation API.
type GeminiConfig struct {
	Endpoint       string  `yaml:"endpoint"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"apiKey"`
	SystemPrompt   string  `yaml:"systemPrompt"`
	PromptTemplate string  `yaml:"promptTemplate"`
	Temperature    float64 `yaml:"temperature"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Boards  []BoardConfig     `yaml:"boards"`
	Options map[string]string `yaml:"options"`
}

// BoardConfig holds the concrete board endpoints to scan.
type BoardConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present), applies environment overrides,
// and validates the result. A missing search keyword or Gemini API key is a
// startup-fatal configuration error.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate enforces the values the pipeline cannot run without.
func (c Config) Validate() error {
	if c.Search.Keyword == "" {
		return fmt.Errorf("search.keyword must be set (or %s)", searchKeywordEnv)
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.apiKey must be set (or %s)", geminiAPIKeyEnv)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(searchKeywordEnv); v != "" {
		c.Search.Keyword = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Search.Keyword != "" {
		base.Search = override.Search
	}

	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler.IntervalMinutes = override.Scheduler.IntervalMinutes
	}
	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Crawler.UserAgent != "" {
		base.Crawler.UserAgent = override.Crawler.UserAgent
	}
	if override.Crawler.RequestsPerSecond > 0 {
		base.Crawler.RequestsPerSecond = override.Crawler.RequestsPerSecond
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.SystemPrompt != "" {
		base.Gemini.SystemPrompt = override.Gemini.SystemPrompt
	}
	if override.Gemini.PromptTemplate != "" {
		base.Gemini.PromptTemplate = override.Gemini.PromptTemplate
	}
	if override.Gemini.Temperature > 0 {
		base.Gemini.Temperature = override.Gemini.Temperature
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Path: "posts.db"},
		Logging:  LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			Enabled:         false,
			IntervalMinutes: 30,
			Timezone:        defaultTimezone,
			location:        tz,
		},
		Crawler: CrawlerConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
				" (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			RequestsPerSecond: 1,
		},
		Gemini: GeminiConfig{
			Endpoint:     "https://generativelanguage.googleapis.com/v1beta",
			Model:        "gemini-2.0-flash-lite",
			SystemPrompt: "You summarize Korean deal-forum posts in a few short sentences.",
			PromptTemplate: "Summarize the following forum post. Mention the product," +
				" the price and how to get the deal if the post says so.",
			Temperature: 0.7,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Sites: []SiteConfig{
			{
				Name:    "ppomppu-phone",
				Scanner: "ppomppu",
				Boards: []BoardConfig{
					{Name: "phone", URL: "https://www.ppomppu.co.kr/zboard/zboard.php?id=phone"},
				},
			},
		},
	}
}
