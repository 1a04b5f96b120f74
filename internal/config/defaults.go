package config

import (
	"github.com/shirou/gopsutil/v3/cpu"
)

const (
	defaultDataDir             = "~/.local/share/reelforge"
	defaultScratchDir          = "~/.local/share/reelforge/scratch"
	defaultLogDir              = "~/.local/share/reelforge/logs"
	defaultOutputDir           = "~/reelforge-output"
	defaultWidth               = 1080
	defaultHeight              = 1920
	defaultFPS                 = 30
	defaultVideoCodec          = "libx264"
	defaultAudioCodec          = "aac"
	defaultCRF                 = 23
	defaultPreset              = "medium"
	defaultProviderBaseURL     = "https://api.pexels.com"
	defaultResultLimit         = 5
	defaultRequestTimeout      = 15
	defaultDownloadTimeout     = 60
	defaultFallbackImageURL    = "https://images.pexels.com/photos/1103970/pexels-photo-1103970.jpeg?auto=compress&w=1080"
	defaultScratchGraceSeconds = 30
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"

	// Resolver workers are network and disk bound, not CPU bound, so the
	// logical CPU count is only an upper bound.
	maxResolverWorkers = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			OutputDir:  defaultOutputDir,
		},
		Output: Output{
			Width:      defaultWidth,
			Height:     defaultHeight,
			FPS:        defaultFPS,
			VideoCodec: defaultVideoCodec,
			AudioCodec: defaultAudioCodec,
			CRF:        defaultCRF,
			Preset:     defaultPreset,
		},
		Provider: Provider{
			BaseURL:         defaultProviderBaseURL,
			ResultLimit:     defaultResultLimit,
			RequestTimeout:  defaultRequestTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			FallbackImage:   defaultFallbackImageURL,
		},
		Pipeline: Pipeline{
			ResolverWorkers:     defaultResolverWorkers(),
			ScratchGraceSeconds: defaultScratchGraceSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultResolverWorkers() int {
	count, err := cpu.Counts(true)
	if err != nil || count < 1 {
		return 2
	}
	if count > maxResolverWorkers {
		return maxResolverWorkers
	}
	return count
}
