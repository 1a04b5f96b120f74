package script

import (
	"fmt"
	"strings"

	"reelforge/internal/textutil"
)

const (
	// defaultSceneWindow is applied when a scene carries no timing fields.
	defaultSceneWindow = 5.0
	maxKeywords        = 5
)

// motionKeywords mark a visual direction as wanting moving footage rather
// than a still image.
var motionKeywords = []string{
	"moving", "motion", "walking", "running", "flying", "driving",
	"flowing", "dancing", "spinning", "timelapse", "time-lapse",
	"panning", "zooming", "action", "footage", "video",
}

// Analyze normalizes a document's raw scenes into ordered Scene values,
// applying timing defaults and deriving search keywords and a media-type
// hint per scene. Analysis always succeeds; missing fields get best-effort
// defaults rather than errors.
func Analyze(doc *Document) []Scene {
	scenes := make([]Scene, 0, len(doc.Scenes))
	cursor := 0.0
	for i, raw := range doc.Scenes {
		start, end := sceneWindow(raw, cursor)
		cursor = end

		scenes = append(scenes, Scene{
			ID:              fmt.Sprintf("scene_%d", i+1),
			StartTime:       start,
			EndTime:         end,
			Narration:       strings.TrimSpace(raw.Narration),
			VisualDirection: strings.TrimSpace(raw.VisualDirection),
			OnScreenText:    strings.TrimSpace(raw.OnScreenText),
			Keywords:        sceneKeywords(raw),
			MediaHint:       mediaHint(raw.VisualDirection),
		})
	}
	return scenes
}

// sceneWindow resolves a raw scene's timing. Scenes with no timing fields get
// a default-length window starting where the previous scene ended; a scene
// with only one bound gets the default window length from that bound.
func sceneWindow(raw RawScene, cursor float64) (float64, float64) {
	switch {
	case raw.StartTime != nil && raw.EndTime != nil:
		return *raw.StartTime, *raw.EndTime
	case raw.StartTime != nil:
		return *raw.StartTime, *raw.StartTime + defaultSceneWindow
	case raw.EndTime != nil:
		start := *raw.EndTime - defaultSceneWindow
		if start < 0 {
			start = 0
		}
		return start, *raw.EndTime
	default:
		return cursor, cursor + defaultSceneWindow
	}
}

// sceneKeywords derives search terms from the visual direction, falling back
// to narration when the direction yields nothing usable.
func sceneKeywords(raw RawScene) []string {
	keywords := textutil.Keywords(raw.VisualDirection, maxKeywords)
	if len(keywords) == 0 {
		keywords = textutil.Keywords(raw.Narration, maxKeywords)
	}
	return keywords
}

// mediaHint returns MediaTypeVideo when the visual direction mentions motion,
// MediaTypeImage otherwise.
func mediaHint(visualDirection string) MediaType {
	lowered := strings.ToLower(visualDirection)
	for _, kw := range motionKeywords {
		if strings.Contains(lowered, kw) {
			return MediaTypeVideo
		}
	}
	return MediaTypeImage
}
