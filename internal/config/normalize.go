package config

import (
	"os"
	"strings"
)

// normalize expands paths and fills environment-derived values before validation.
func (c *Config) normalize() error {
	if key := strings.TrimSpace(os.Getenv("PEXELS_API_KEY")); key != "" && strings.TrimSpace(c.Provider.APIKey) == "" {
		c.Provider.APIKey = key
	}

	for _, field := range []*string{
		&c.Paths.DataDir,
		&c.Paths.ScratchDir,
		&c.Paths.LogDir,
		&c.Paths.OutputDir,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)

	if c.Pipeline.ResolverWorkers <= 0 {
		c.Pipeline.ResolverWorkers = defaultResolverWorkers()
	}
	if c.Pipeline.ScratchGraceSeconds < 0 {
		c.Pipeline.ScratchGraceSeconds = 0
	}
	if c.Provider.ResultLimit <= 0 {
		c.Provider.ResultLimit = defaultResultLimit
	}
	if c.Provider.RequestTimeout <= 0 {
		c.Provider.RequestTimeout = defaultRequestTimeout
	}
	if c.Provider.DownloadTimeout <= 0 {
		c.Provider.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}

	return nil
}
