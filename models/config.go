package models

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	util "github.com/5amCurfew/tap-linnworks/util"
)

var Config TapConfig

const defaultPageSize = 500

type TapConfig struct {
	ApplicationID     string `json:"application_id"`
	ApplicationSecret string `json:"application_secret"`
	InstallationToken string `json:"installation_token"`
	StartDate         string `json:"start_date"`
	UserAgent         string `json:"user_agent,omitempty"`
	PageSize          int    `json:"page_size,omitempty"`
}

// ConfigError indicates a missing or invalid configuration field, detected
// before any network call is made
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s %s", e.Field, e.Reason)
}

// Read parses the config JSON file at filePath into Config
func (c *TapConfig) Read(filePath string) error {
	configFile, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(configFile, c); err != nil {
		return fmt.Errorf("error unmarshalling config json: %w", err)
	}

	return nil
}

// MergeEnv fills empty required fields from LINNWORKS_* environment
// variables, sourcing a .env file when one is present
func (c *TapConfig) MergeEnv() {
	_ = godotenv.Load()

	envFallback(&c.ApplicationID, "LINNWORKS_APPLICATION_ID")
	envFallback(&c.ApplicationSecret, "LINNWORKS_APPLICATION_SECRET")
	envFallback(&c.InstallationToken, "LINNWORKS_INSTALLATION_TOKEN")
	envFallback(&c.StartDate, "LINNWORKS_START_DATE")
}

func envFallback(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}

// Validate checks all required fields are present and non-empty and that
// start_date is a parseable timestamp
func (c *TapConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"application_id", c.ApplicationID},
		{"application_secret", c.ApplicationSecret},
		{"installation_token", c.InstallationToken},
		{"start_date", c.StartDate},
	}

	for _, field := range required {
		if field.value == "" {
			return &ConfigError{Field: field.name, Reason: "is required and must be non-empty"}
		}
	}

	if _, err := util.ParseTimestamp(c.StartDate); err != nil {
		return &ConfigError{Field: "start_date", Reason: fmt.Sprintf("is not a valid timestamp: %v", err)}
	}

	return nil
}

// StartTime returns the parsed start_date, the fallback extraction cursor
// when a stream has no stored bookmark. Validate must have succeeded.
func (c *TapConfig) StartTime() time.Time {
	t, _ := util.ParseTimestamp(c.StartDate)
	return t
}

// EntriesPerPage returns the configured page size, defaulting to 500
func (c *TapConfig) EntriesPerPage() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return defaultPageSize
}
