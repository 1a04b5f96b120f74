package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		return errors.New("paths.scratch_dir must be set")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return errors.New("output.width and output.height must be positive")
	}
	if c.Output.Width%2 != 0 || c.Output.Height%2 != 0 {
		return errors.New("output.width and output.height must be even for yuv420p encoding")
	}
	if c.Output.FPS <= 0 {
		return errors.New("output.fps must be positive")
	}
	if c.Output.CRF < 0 || c.Output.CRF > 51 {
		return errors.New("output.crf must be between 0 and 51")
	}
	if strings.TrimSpace(c.Output.VideoCodec) == "" {
		return errors.New("output.video_codec must be set")
	}
	return nil
}

func (c *Config) validateProvider() error {
	if strings.TrimSpace(c.Provider.BaseURL) == "" {
		return errors.New("provider.base_url must be set")
	}
	if !strings.HasPrefix(c.Provider.BaseURL, "http://") && !strings.HasPrefix(c.Provider.BaseURL, "https://") {
		return fmt.Errorf("provider.base_url %q must be an http(s) URL", c.Provider.BaseURL)
	}
	// The API key is optional: without it the resolver degrades to the
	// placeholder path, which is a supported mode of operation.
	if c.Provider.ResultLimit > 80 {
		return errors.New("provider.result_limit must be at most 80")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	url := c.Notifications.WebhookURL
	if url == "" {
		return nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("notifications.webhook_url %q must be an http(s) URL", url)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be auto, console, or json", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
