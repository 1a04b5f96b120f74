// Package timeline merges analyzed scenes, resolved assets, and caption
// segments into the ordered structure the render pipeline consumes.
package timeline

import (
	"github.com/google/uuid"

	"reelforge/internal/assets"
	"reelforge/internal/captions"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

// DefaultTransition is applied between consecutive scenes unless a script
// ever specifies otherwise.
var DefaultTransition = Transition{Type: "fade", Duration: 0.5}

// Transition describes how one scene hands off to the next.
type Transition struct {
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

// Entry is one scene's composite: the scene itself, its resolved asset, and
// the captions that fall inside its window.
type Entry struct {
	Scene      script.Scene       `json:"scene"`
	Asset      assets.Asset       `json:"asset"`
	Captions   []captions.Segment `json:"captions"`
	Transition Transition         `json:"transition"`
}

// Timeline is the fully assembled render plan. Built once, consumed once.
//
// TotalDuration is taken from the script's requested target, not recomputed
// from the entry windows, so the visual timeline may diverge slightly from
// the requested total. Callers wanting the visual length should use
// ScenesDuration.
type Timeline struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Platform      string  `json:"platform,omitempty"`
	TotalDuration float64 `json:"totalDuration"`
	Entries       []Entry `json:"entries"`
}

// ScenesDuration sums the entry scene windows.
func (t *Timeline) ScenesDuration() float64 {
	var total float64
	for _, entry := range t.Entries {
		total += entry.Scene.Duration()
	}
	return total
}

// Assemble builds a Timeline from the pipeline stage outputs. Scenes without
// a resolved asset are skipped; assembling zero usable scenes is an error
// because nothing downstream could render.
func Assemble(doc *script.Document, scenes []script.Scene, resolved map[string]*assets.Asset, segments []captions.Segment) (*Timeline, error) {
	entries := make([]Entry, 0, len(scenes))
	for _, scene := range scenes {
		asset, ok := resolved[scene.ID]
		if !ok || asset == nil {
			continue
		}
		entries = append(entries, Entry{
			Scene:      scene,
			Asset:      *asset,
			Captions:   captionsForScene(segments, scene.ID),
			Transition: DefaultTransition,
		})
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrValidation, "timeline", "assemble", "no scenes with resolved assets", nil)
	}

	total := doc.TargetDuration
	if total <= 0 {
		tl := &Timeline{Entries: entries}
		total = tl.ScenesDuration()
	}

	return &Timeline{
		ID:            uuid.NewString(),
		Title:         doc.Title,
		Platform:      doc.Platform,
		TotalDuration: total,
		Entries:       entries,
	}, nil
}

func captionsForScene(segments []captions.Segment, sceneID string) []captions.Segment {
	var matched []captions.Segment
	for _, segment := range segments {
		if segment.SceneID == sceneID {
			matched = append(matched, segment)
		}
	}
	return matched
}
