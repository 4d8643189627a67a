package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"` // empty disables article caching
	} `yaml:"redis"`
	Market struct {
		Exchange  string `yaml:"exchange"` // NSE or BSE
		Timezone  string `yaml:"timezone"`
		CloseHour int    `yaml:"close_hour"` // 24h clock, local to Timezone
	} `yaml:"market"`
	Prices struct {
		Source          string  `yaml:"source"` // YAHOO or KITE
		ThrottleSeconds float64 `yaml:"throttle_seconds"`
		LookbackDays    int     `yaml:"lookback_days"`
	} `yaml:"prices"`
	News struct {
		Source       string `yaml:"source"`      // NEWSAPI or SCRAPER
		APIKeyEnv    string `yaml:"api_key_env"` // env var holding the NewsAPI key
		PageSize     int    `yaml:"page_size"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"news"`
	Scoring struct {
		Provider   string `yaml:"provider"` // REMOTE or LEXICON
		Endpoint   string `yaml:"endpoint"` // remote scoring service URL
		BatchLimit int    `yaml:"batch_limit"`
	} `yaml:"scoring"`
	Pipeline struct {
		ScheduleMinute    int  `yaml:"schedule_minute"` // minute past the trigger hour
		RunTimeoutMinutes int  `yaml:"run_timeout_minutes"`
		SentimentDaysBack int  `yaml:"sentiment_days_back"`
		RunOnStart        bool `yaml:"run_on_start"`
	} `yaml:"pipeline"`
	AssetsFile string `yaml:"assets_file"`
}

// NewsAPIKey resolves the NewsAPI credential from the environment. An empty
// result soft-disables headline fetching rather than failing.
func (c *Config) NewsAPIKey() string {
	if c.News.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.News.APIKeyEnv)
}

// Throttle returns the delay enforced between price provider calls.
func (c *Config) Throttle() time.Duration {
	return time.Duration(c.Prices.ThrottleSeconds * float64(time.Second))
}

// RunTimeout returns the overall deadline applied to a single pipeline run.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Pipeline.RunTimeoutMinutes) * time.Minute
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn cannot be empty")
	}
	if c.Market.Exchange != "NSE" && c.Market.Exchange != "BSE" {
		return fmt.Errorf("invalid market.exchange '%s': must be 'NSE' or 'BSE'", c.Market.Exchange)
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("invalid market.timezone '%s': %w", c.Market.Timezone, err)
	}
	if c.Market.CloseHour < 0 || c.Market.CloseHour > 23 {
		return fmt.Errorf("market.close_hour must be 0-23, got %d", c.Market.CloseHour)
	}
	if c.Prices.Source != "YAHOO" && c.Prices.Source != "KITE" {
		return fmt.Errorf("invalid prices.source '%s': must be 'YAHOO' or 'KITE'", c.Prices.Source)
	}
	if c.News.Source != "NEWSAPI" && c.News.Source != "SCRAPER" {
		return fmt.Errorf("invalid news.source '%s': must be 'NEWSAPI' or 'SCRAPER'", c.News.Source)
	}
	if c.Scoring.Provider != "REMOTE" && c.Scoring.Provider != "LEXICON" {
		return fmt.Errorf("invalid scoring.provider '%s': must be 'REMOTE' or 'LEXICON'", c.Scoring.Provider)
	}
	if c.Scoring.Provider == "REMOTE" && c.Scoring.Endpoint == "" {
		return fmt.Errorf("scoring.endpoint is required when scoring.provider is 'REMOTE'")
	}
	if c.Prices.LookbackDays < 1 || c.Prices.LookbackDays > 365 {
		return fmt.Errorf("prices.lookback_days must be 1-365, got %d", c.Prices.LookbackDays)
	}
	if c.Pipeline.SentimentDaysBack < 0 || c.Pipeline.SentimentDaysBack > 366 {
		return fmt.Errorf("pipeline.sentiment_days_back must be 0-366, got %d", c.Pipeline.SentimentDaysBack)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Market.Exchange == "" {
		c.Market.Exchange = "NSE"
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "Asia/Kolkata"
	}
	if c.Market.CloseHour == 0 {
		c.Market.CloseHour = 15
	}
	if c.Prices.Source == "" {
		c.Prices.Source = "YAHOO"
	}
	if c.Prices.ThrottleSeconds == 0 {
		c.Prices.ThrottleSeconds = 1.0
	}
	if c.Prices.LookbackDays == 0 {
		c.Prices.LookbackDays = 30
	}
	if c.News.Source == "" {
		c.News.Source = "NEWSAPI"
	}
	if c.News.APIKeyEnv == "" {
		c.News.APIKeyEnv = "NEWS_API_KEY"
	}
	if c.News.PageSize == 0 {
		c.News.PageSize = 50
	}
	if c.News.LookbackDays == 0 {
		c.News.LookbackDays = 7
	}
	if c.Scoring.Provider == "" {
		c.Scoring.Provider = "LEXICON"
	}
	if c.Scoring.BatchLimit == 0 {
		c.Scoring.BatchLimit = 100
	}
	if c.Pipeline.ScheduleMinute == 0 {
		c.Pipeline.ScheduleMinute = 30
	}
	if c.Pipeline.RunTimeoutMinutes == 0 {
		c.Pipeline.RunTimeoutMinutes = 30
	}
	if c.Pipeline.SentimentDaysBack == 0 {
		c.Pipeline.SentimentDaysBack = 30
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
