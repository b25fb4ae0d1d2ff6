package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"SignalReplay/internal/backtest"
	"SignalReplay/internal/strategy"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Backtest struct {
		backtest.Config `yaml:",inline"`
		Symbols         []string `yaml:"symbols"`
		LookbackDays    int      `yaml:"lookback_days"`
		Concurrency     int      `yaml:"concurrency"`
	} `yaml:"backtest"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		CSVDir   string `yaml:"csv_dir"`
	} `yaml:"data_source"`
	Signal   strategy.SourceConfig `yaml:"signal"`
	Schedule struct {
		BacktestCron string `yaml:"backtest_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	ResultsDir string `yaml:"results_dir"`
	Proxy      string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	// A zero fee is a valid setting, so simulation defaults go in before
	// the file is decoded over them.
	cfg.Backtest.Config = backtest.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		c.DataSource.CSVDir = v
	}
	if v := os.Getenv("SIGNAL_SOURCE"); v != "" {
		c.Signal.Name = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Backtest.Symbols = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_BACKTEST"); v != "" {
		c.Schedule.BacktestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RESULTS_DIR"); v != "" {
		c.ResultsDir = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid INITIAL_CAPITAL: %w", err)
		}
		c.Backtest.InitialCapital = f
	}
	if v := os.Getenv("FEE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FEE_RATE: %w", err)
		}
		c.Backtest.FeeRate = f
	}
	return nil
}

func (c *Config) applyDefaults() {
	for i, s := range c.Backtest.Symbols {
		c.Backtest.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if len(c.Backtest.Symbols) == 0 {
		c.Backtest.Symbols = []string{"SPX500"}
	}
	if c.Backtest.LookbackDays == 0 {
		c.Backtest.LookbackDays = 365
	}
	if c.Backtest.Concurrency == 0 {
		c.Backtest.Concurrency = 4
	}
	if c.Schedule.BacktestCron == "" {
		c.Schedule.BacktestCron = "0 30 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signal_replay.db"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the settings form a runnable configuration.
func (c *Config) Validate() error {
	if err := c.Backtest.Config.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Backtest.LookbackDays < 0 {
		return fmt.Errorf("backtest.lookback_days must not be negative")
	}
	if c.Backtest.Concurrency < 0 {
		return fmt.Errorf("backtest.concurrency must not be negative")
	}
	for _, s := range c.Backtest.Symbols {
		if s == "" {
			return fmt.Errorf("backtest.symbols contains an empty symbol")
		}
	}
	switch strings.ToLower(c.DataSource.Provider) {
	case "", "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	case "csv":
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for csv")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
