package script

// MediaType classifies the preferred visual asset kind for a scene.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Document is the immutable input to a pipeline run: a titled script with an
// ordered sequence of raw scene descriptors.
type Document struct {
	Title          string     `yaml:"title" json:"title"`
	TargetDuration float64    `yaml:"target_duration" json:"targetDuration"`
	Platform       string     `yaml:"platform" json:"platform"`
	Scenes         []RawScene `yaml:"scenes" json:"scenes"`
}

// RawScene is a scene descriptor as authored in the script file, before
// defaults and derived fields are applied. Timing fields are pointers so a
// missing value can be distinguished from an explicit zero.
type RawScene struct {
	StartTime       *float64 `yaml:"start_time" json:"startTime"`
	EndTime         *float64 `yaml:"end_time" json:"endTime"`
	Narration       string   `yaml:"narration" json:"narration"`
	VisualDirection string   `yaml:"visual_direction" json:"visualDirection"`
	OnScreenText    string   `yaml:"on_screen_text" json:"onScreenText"`
}

// Scene is a normalized, analyzed scene. Created once by Analyze and
// immutable thereafter.
type Scene struct {
	ID              string
	StartTime       float64
	EndTime         float64
	Narration       string
	VisualDirection string
	OnScreenText    string
	Keywords        []string
	MediaHint       MediaType
}

// Duration returns the scene's length in seconds.
func (s Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}
