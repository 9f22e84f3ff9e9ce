package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override credentials and storage from the YAML file.
const (
	EnvUsername    = "REPOST_USERNAME"
	EnvPassword    = "REPOST_PASSWORD"
	EnvDatabaseURL = "REPOST_DATABASE_URL"
)

// Config holds all application configuration
type Config struct {
	// Managed account credentials
	Username string `yaml:"account.username"`
	Password string `yaml:"account.password"`

	// Platform gateway configuration
	PlatformBaseURL      string        `yaml:"platform.base_url"`
	MediasAmount         int           `yaml:"platform.medias_amount"`
	HTTPClientTimeout    time.Duration `yaml:"-"`
	HTTPClientTimeoutStr string        `yaml:"platform.http_client_timeout"`
	TransferTimeout      time.Duration `yaml:"-"`
	TransferTimeoutStr   string        `yaml:"platform.transfer_timeout"`

	// Selection policy
	TopMediaCount        int           `yaml:"selection.top_media_count"`
	TopTagCount          int           `yaml:"selection.top_tag_count"`
	Cooldown             time.Duration `yaml:"-"`
	CooldownStr          string        `yaml:"selection.cooldown"`
	InterAccountDelay    time.Duration `yaml:"-"`
	InterAccountDelayStr string        `yaml:"selection.inter_account_delay"`
	AcceptVideo          bool          `yaml:"selection.accept_video"`
	MaxAlbumItems        int           `yaml:"selection.max_album_items"`
	SeparatorLines       int           `yaml:"selection.separator_lines"`

	// Hashtag template pool used to pad captions
	HashtagTemplates []string `yaml:"templates.hashtags"`

	// Download configuration
	DownloadDir        string        `yaml:"resources.image_folder"`
	DownloadBufferSize int           `yaml:"resources.buffer_size"`
	CleanupMaxAge      time.Duration `yaml:"-"`
	CleanupMaxAgeStr   string        `yaml:"resources.cleanup_max_age"`

	// Account intake
	AccountListPath string `yaml:"intake.account_list"`

	// Cron schedule configuration
	CronSchedule string `yaml:"cron.schedule"`

	// Server configuration
	ServerPort string `yaml:"server.port"`

	// Database configuration
	DatabaseURL  string `yaml:"database.url"`
	DatabaseName string `yaml:"database.name"`

	// Logging configuration
	LogDirectory  string `yaml:"logging.dir"`
	LogOutputFile string `yaml:"logging.output_file"`
	LogErrorFile  string `yaml:"logging.error_file"`
	LogLevel      string `yaml:"logging.level"`
}

// configFile represents the YAML structure
type configFile struct {
	Account struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"account"`
	Platform struct {
		BaseURL           string `yaml:"base_url"`
		MediasAmount      int    `yaml:"medias_amount"`
		HTTPClientTimeout string `yaml:"http_client_timeout"`
		TransferTimeout   string `yaml:"transfer_timeout"`
	} `yaml:"platform"`
	Selection struct {
		TopMediaCount     int    `yaml:"top_media_count"`
		TopTagCount       int    `yaml:"top_tag_count"`
		Cooldown          string `yaml:"cooldown"`
		InterAccountDelay string `yaml:"inter_account_delay"`
		AcceptVideo       bool   `yaml:"accept_video"`
		MaxAlbumItems     int    `yaml:"max_album_items"`
		SeparatorLines    int    `yaml:"separator_lines"`
	} `yaml:"selection"`
	Templates struct {
		Hashtags []string `yaml:"hashtags"`
	} `yaml:"templates"`
	Resources struct {
		ImageFolder   string `yaml:"image_folder"`
		BufferSize    int    `yaml:"buffer_size"`
		CleanupMaxAge string `yaml:"cleanup_max_age"`
	} `yaml:"resources"`
	Intake struct {
		AccountList string `yaml:"account_list"`
	} `yaml:"intake"`
	Cron struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"cron"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL  string `yaml:"url"`
		Name string `yaml:"name"`
	} `yaml:"database"`
	Logging struct {
		Directory  string `yaml:"dir"`
		OutputFile string `yaml:"output_file"`
		ErrorFile  string `yaml:"error_file"`
		Level      string `yaml:"level"`
	} `yaml:"logging"`
}

// Manager handles configuration loading and saving
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	if configPath == "" {
		configPath = DefaultPath()
	}
	return &Manager{
		configPath: configPath,
	}
}

// DefaultPath returns config/config.yaml when present, config.yaml otherwise.
func DefaultPath() string {
	if _, err := os.Stat("config/config.yaml"); err == nil {
		return "config/config.yaml"
	}
	return "config.yaml"
}

// Load reads configuration from YAML file, applies environment overrides and defaults
func (m *Manager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return m.createDefaultConfig()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfgFile configFile
	if err := yaml.Unmarshal(data, &cfgFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := fromFile(&cfgFile)
	applyEnv(cfg)
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}

	m.config = cfg
	return cfg, nil
}

func fromFile(f *configFile) *Config {
	return &Config{
		Username:             f.Account.Username,
		Password:             f.Account.Password,
		PlatformBaseURL:      f.Platform.BaseURL,
		MediasAmount:         f.Platform.MediasAmount,
		HTTPClientTimeoutStr: f.Platform.HTTPClientTimeout,
		TransferTimeoutStr:   f.Platform.TransferTimeout,
		TopMediaCount:        f.Selection.TopMediaCount,
		TopTagCount:          f.Selection.TopTagCount,
		CooldownStr:          f.Selection.Cooldown,
		InterAccountDelayStr: f.Selection.InterAccountDelay,
		AcceptVideo:          f.Selection.AcceptVideo,
		MaxAlbumItems:        f.Selection.MaxAlbumItems,
		SeparatorLines:       f.Selection.SeparatorLines,
		HashtagTemplates:     f.Templates.Hashtags,
		DownloadDir:          f.Resources.ImageFolder,
		DownloadBufferSize:   f.Resources.BufferSize,
		CleanupMaxAgeStr:     f.Resources.CleanupMaxAge,
		AccountListPath:      f.Intake.AccountList,
		CronSchedule:         f.Cron.Schedule,
		ServerPort:           f.Server.Port,
		DatabaseURL:          f.Database.URL,
		DatabaseName:         f.Database.Name,
		LogDirectory:         f.Logging.Directory,
		LogOutputFile:        f.Logging.OutputFile,
		LogErrorFile:         f.Logging.ErrorFile,
		LogLevel:             f.Logging.Level,
	}
}

func toFile(cfg *Config) *configFile {
	var f configFile
	f.Account.Username = cfg.Username
	f.Account.Password = cfg.Password
	f.Platform.BaseURL = cfg.PlatformBaseURL
	f.Platform.MediasAmount = cfg.MediasAmount
	f.Platform.HTTPClientTimeout = cfg.HTTPClientTimeout.String()
	f.Platform.TransferTimeout = cfg.TransferTimeout.String()
	f.Selection.TopMediaCount = cfg.TopMediaCount
	f.Selection.TopTagCount = cfg.TopTagCount
	f.Selection.Cooldown = cfg.Cooldown.String()
	f.Selection.InterAccountDelay = cfg.InterAccountDelay.String()
	f.Selection.AcceptVideo = cfg.AcceptVideo
	f.Selection.MaxAlbumItems = cfg.MaxAlbumItems
	f.Selection.SeparatorLines = cfg.SeparatorLines
	f.Templates.Hashtags = cfg.HashtagTemplates
	f.Resources.ImageFolder = cfg.DownloadDir
	f.Resources.BufferSize = cfg.DownloadBufferSize
	f.Resources.CleanupMaxAge = cfg.CleanupMaxAge.String()
	f.Intake.AccountList = cfg.AccountListPath
	f.Cron.Schedule = cfg.CronSchedule
	f.Server.Port = cfg.ServerPort
	f.Database.URL = cfg.DatabaseURL
	f.Database.Name = cfg.DatabaseName
	f.Logging.Directory = cfg.LogDirectory
	f.Logging.OutputFile = cfg.LogOutputFile
	f.Logging.ErrorFile = cfg.LogErrorFile
	f.Logging.Level = cfg.LogLevel
	return &f
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.PlatformBaseURL == "" {
		cfg.PlatformBaseURL = "http://localhost:8000"
	}
	if cfg.MediasAmount == 0 {
		cfg.MediasAmount = 50
	}
	if cfg.TopMediaCount == 0 {
		cfg.TopMediaCount = 3
	}
	if cfg.TopTagCount == 0 {
		cfg.TopTagCount = 30
	}
	if cfg.MaxAlbumItems == 0 {
		cfg.MaxAlbumItems = 10
	}
	if cfg.SeparatorLines == 0 {
		cfg.SeparatorLines = 4
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "./images"
	}
	if cfg.DownloadBufferSize == 0 {
		cfg.DownloadBufferSize = 1024 * 1024
	}
	if cfg.AccountListPath == "" {
		cfg.AccountListPath = "account_list.txt"
	}
	if cfg.CronSchedule == "" {
		cfg.CronSchedule = "0 */6 * * *"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "sqlite3:./data.db"
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "repost"
	}
	if cfg.LogDirectory == "" {
		cfg.LogDirectory = "./logs"
	}
	if cfg.LogOutputFile == "" {
		cfg.LogOutputFile = "app.log"
	}
	if cfg.LogErrorFile == "" {
		cfg.LogErrorFile = "app.error.log"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	durations := []struct {
		key      string
		raw      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"platform.http_client_timeout", cfg.HTTPClientTimeoutStr, 60 * time.Second, &cfg.HTTPClientTimeout},
		{"platform.transfer_timeout", cfg.TransferTimeoutStr, 30 * time.Minute, &cfg.TransferTimeout},
		{"selection.cooldown", cfg.CooldownStr, 7 * 24 * time.Hour, &cfg.Cooldown},
		{"selection.inter_account_delay", cfg.InterAccountDelayStr, 4 * time.Hour, &cfg.InterAccountDelay},
		{"resources.cleanup_max_age", cfg.CleanupMaxAgeStr, 72 * time.Hour, &cfg.CleanupMaxAge},
	}
	for _, d := range durations {
		value, err := parseDuration(d.raw, d.fallback)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = value
	}
	return nil
}

// parseDuration accepts Go durations plus a "<n>d" day shorthand.
func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if n, ok := strings.CutSuffix(value, "d"); ok {
		if days, err := strconv.Atoi(n); err == nil && days >= 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return 0, fmt.Errorf("%q is not a duration (use Go syntax like 90m or a day count like 7d)", value)
}

// Validate checks the settings a posting run depends on.
func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("account.username and account.password are required (or %s/%s)", EnvUsername, EnvPassword)
	}
	if c.TopMediaCount < 0 {
		return fmt.Errorf("selection.top_media_count must be positive, got %d", c.TopMediaCount)
	}
	if c.TopTagCount < 0 {
		return fmt.Errorf("selection.top_tag_count must be positive, got %d", c.TopTagCount)
	}
	if c.Cooldown < 0 || c.InterAccountDelay < 0 {
		return fmt.Errorf("selection durations must not be negative")
	}
	return nil
}

// Save writes configuration to YAML file
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveUnlocked(cfg)
}

// saveUnlocked persists config assuming caller already holds the write lock.
func (m *Manager) saveUnlocked(cfg *Config) error {
	data, err := yaml.Marshal(toFile(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.config = cfg
	return nil
}

// Get returns the current configuration (thread-safe)
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// createDefaultConfig writes a config file populated with defaults
func (m *Manager) createDefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	cfg.HashtagTemplates = []string{"photooftheday", "instagood", "picoftheday"}

	if err := m.saveUnlocked(cfg); err != nil {
		return nil, err
	}

	// Credentials never land in the generated file.
	applyEnv(cfg)
	return cfg, nil
}

// Load loads configuration from the default path
func Load() (*Config, error) {
	return NewManager("").Load()
}
