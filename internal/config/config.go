// Package config loads the scraper configuration from config.json5, its
// local override and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"espritjobs/internal/feeds"
	"espritjobs/internal/notify"
	"espritjobs/internal/session"
	"espritjobs/internal/store"
	"espritjobs/lib/configutil"
)

const (
	DriverBrowser = "browser"
	DriverHTTP    = "http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Config struct {
	BaseURL      string `json:"base_url"`
	InitialJobID int    `json:"initial_job_id"`
	MaxJobs      int    `json:"max_jobs"`
	Driver       string `json:"driver"`
	Headless     *bool  `json:"headless"`
	// InstallBrowser downloads chromium before the first launch.
	InstallBrowser bool `json:"install_browser"`

	RequestDelayMs         int  `json:"request_delay_ms"`
	SettleDelayMs          int  `json:"settle_delay_ms"`
	PageLoadDelayMs        int  `json:"page_load_delay_ms"`
	MaxConsecutiveFailures *int `json:"max_consecutive_failures"`

	DataDir            string   `json:"data_dir"`
	StateFile          string   `json:"state_file"`
	RecordsFile        string   `json:"records_file"`
	LegacyRecordsFiles []string `json:"legacy_records_files"`
	FeedsDir           string   `json:"feeds_dir"`
	DumpHTTP           string   `json:"dump_http"`

	Credentials      Credentials         `json:"credentials"`
	Login            session.LoginForm   `json:"login"`
	CloudflareBypass *bool               `json:"cloudflare_bypass"`
	Feeds            feeds.Options       `json:"feeds"`
	Archive          store.ArchiveConfig `json:"archive"`
	Smtp             notify.SmtpConfig   `json:"smtp"`
}

func boolPtr(v bool) *bool {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// Defaults fills every unset field.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://espritconnect.com"
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.InitialJobID == 0 {
		c.InitialJobID = 795
	}
	if c.MaxJobs == 0 {
		c.MaxJobs = 200
	}
	if c.Driver == "" {
		c.Driver = DriverBrowser
	}
	if c.Headless == nil {
		c.Headless = boolPtr(true)
	}
	if c.RequestDelayMs == 0 {
		c.RequestDelayMs = 1000
	}
	if c.SettleDelayMs == 0 {
		c.SettleDelayMs = 3000
	}
	if c.PageLoadDelayMs == 0 {
		c.PageLoadDelayMs = 2000
	}
	if c.MaxConsecutiveFailures == nil {
		c.MaxConsecutiveFailures = intPtr(3)
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.StateFile == "" {
		c.StateFile = "scraper_state.json"
	}
	if c.RecordsFile == "" {
		c.RecordsFile = filepath.Join(c.DataDir, "jobs_raw.json")
	}
	if c.LegacyRecordsFiles == nil {
		c.LegacyRecordsFiles = []string{"jobs_raw.json"}
	}
	if c.FeedsDir == "" {
		c.FeedsDir = c.DataDir
	}
	form := session.DefaultLoginForm()
	if c.Login.Path == "" {
		c.Login.Path = form.Path
	}
	if c.Login.EmailField == "" {
		c.Login.EmailField = form.EmailField
	}
	if c.Login.PasswordField == "" {
		c.Login.PasswordField = form.PasswordField
	}
	if c.Login.VerifyPath == "" {
		c.Login.VerifyPath = form.VerifyPath
	}
	if c.Login.VerifySelector == "" {
		c.Login.VerifySelector = form.VerifySelector
	}
	if c.CloudflareBypass == nil {
		c.CloudflareBypass = boolPtr(true)
	}

	defaults := feeds.DefaultOptions()
	if c.Feeds.Title == "" {
		c.Feeds.Title = defaults.Title
	}
	if c.Feeds.Description == "" {
		c.Feeds.Description = defaults.Description
	}
	if c.Feeds.HomePageURL == "" {
		c.Feeds.HomePageURL = c.BaseURL
	}
	if c.Feeds.Language == "" {
		c.Feeds.Language = defaults.Language
	}
	if c.Feeds.Generator == "" {
		c.Feeds.Generator = defaults.Generator
	}
	if c.Feeds.Author == "" {
		c.Feeds.Author = defaults.Author
	}
	if c.Smtp.Port == 0 {
		c.Smtp.Port = 587
	}
}

// ApplyEnv overrides fields from ESPRIT_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	if v, ok := lookup("ESPRIT_EMAIL"); ok && v != "" {
		c.Credentials.Email = v
	}
	if v, ok := lookup("ESPRIT_PASSWORD"); ok && v != "" {
		c.Credentials.Password = v
	}
	if v, ok := lookup("ESPRIT_BASE_URL"); ok && v != "" {
		c.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v, ok := lookup("ESPRIT_HEADLESS"); ok && v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ESPRIT_HEADLESS: %w", err))
		} else {
			c.Headless = &headless
		}
	}
	if v, ok := lookup("ESPRIT_MAX_JOBS"); ok && v != "" {
		maxJobs, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ESPRIT_MAX_JOBS: %w", err))
		} else {
			c.MaxJobs = maxJobs
		}
	}
	return errors.Join(errs...)
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("base_url must be an http(s) url, got %q", c.BaseURL))
	}
	if c.InitialJobID <= 0 {
		errs = append(errs, fmt.Errorf("initial_job_id must be positive"))
	}
	if c.MaxJobs < 0 {
		errs = append(errs, fmt.Errorf("max_jobs must not be negative"))
	}
	if c.Driver != DriverBrowser && c.Driver != DriverHTTP {
		errs = append(errs, fmt.Errorf("driver must be %q or %q, got %q", DriverBrowser, DriverHTTP, c.Driver))
	}
	if c.RequestDelayMs < 0 || c.SettleDelayMs < 0 || c.PageLoadDelayMs < 0 {
		errs = append(errs, fmt.Errorf("delays must not be negative"))
	}
	if c.MaxConsecutiveFailures != nil && *c.MaxConsecutiveFailures < 0 {
		errs = append(errs, fmt.Errorf("max_consecutive_failures must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c Config) PageLoadDelay() time.Duration {
	return time.Duration(c.PageLoadDelayMs) * time.Millisecond
}

// RecordFiles lists the files the duplicate set is seeded from, in order.
func (c Config) RecordFiles() []string {
	return append([]string{c.RecordsFile}, c.LegacyRecordsFiles...)
}

// Load reads path (and its .local override), fills defaults and applies the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("config file not found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = cfg.ApplyEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	cfg.Defaults()
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
