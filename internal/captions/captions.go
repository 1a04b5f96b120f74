// Package captions derives timed caption segments from scene narration.
//
// Spoken captions chunk the narration into groups of up to six words, with
// each chunk's window sized proportionally to its share of the scene's words.
// A scene with on-screen text additionally gets one overlay segment spanning
// the full scene window.
package captions

import (
	"strings"

	"reelforge/internal/script"
)

// Kind distinguishes narration-driven captions from persistent overlays.
type Kind string

const (
	KindSpoken  Kind = "spoken"
	KindOverlay Kind = "overlay"
)

// wordsPerSegment is the chunk size for spoken captions.
const wordsPerSegment = 6

// Segment is one timed caption, clipped to its scene's bounds.
type Segment struct {
	SceneID   string
	StartTime float64
	EndTime   float64
	Text      string
	Kind      Kind
}

// Duration returns the segment's length in seconds.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// ForScene computes all caption segments for a scene. A scene with empty
// narration yields no spoken segments; on-screen text always yields exactly
// one overlay segment.
func ForScene(scene script.Scene) []Segment {
	segments := spokenSegments(scene)
	if scene.OnScreenText != "" {
		segments = append(segments, Segment{
			SceneID:   scene.ID,
			StartTime: scene.StartTime,
			EndTime:   scene.EndTime,
			Text:      scene.OnScreenText,
			Kind:      KindOverlay,
		})
	}
	return segments
}

// ForScenes computes caption segments for every scene in order.
func ForScenes(scenes []script.Scene) []Segment {
	var segments []Segment
	for _, scene := range scenes {
		segments = append(segments, ForScene(scene)...)
	}
	return segments
}

func spokenSegments(scene script.Scene) []Segment {
	words := strings.Fields(scene.Narration)
	if len(words) == 0 {
		return nil
	}

	wordDuration := scene.Duration() / float64(len(words))
	var segments []Segment
	var buffer []string
	clock := scene.StartTime
	segmentStart := scene.StartTime

	for i, word := range words {
		buffer = append(buffer, word)
		clock += wordDuration
		if len(buffer) < wordsPerSegment && i != len(words)-1 {
			continue
		}

		end := clock
		if end > scene.EndTime {
			end = scene.EndTime
		}
		segments = append(segments, Segment{
			SceneID:   scene.ID,
			StartTime: segmentStart,
			EndTime:   end,
			Text:      strings.Join(buffer, " "),
			Kind:      KindSpoken,
		})
		buffer = buffer[:0]
		segmentStart = end
	}
	return segments
}
