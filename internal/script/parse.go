package script

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"reelforge/internal/services"
)

// Parse decodes a script document from YAML or JSON bytes. JSON parses as a
// YAML subset so both formats go through one decoder.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "script", "parse", "malformed script document", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile reads and parses a script document from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "script", "read", fmt.Sprintf("read script %s", path), err)
	}
	return Parse(data)
}

// Validate checks structural requirements that cannot be repaired by
// analysis defaults.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return services.Wrap(services.ErrValidation, "script", "validate", "script title is required", nil)
	}
	if len(d.Scenes) == 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", "script has no scenes", nil)
	}
	if d.TargetDuration < 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", "target duration must not be negative", nil)
	}
	for i, raw := range d.Scenes {
		if raw.StartTime != nil && raw.EndTime != nil && *raw.EndTime <= *raw.StartTime {
			return services.Wrap(services.ErrValidation, "script", "validate",
				fmt.Sprintf("scene %d end time %.2f must be after start time %.2f", i+1, *raw.EndTime, *raw.StartTime), nil)
		}
	}
	return nil
}
