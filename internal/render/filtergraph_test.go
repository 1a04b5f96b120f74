package render

import (
	"strings"
	"testing"

	"reelforge/internal/assets"
	"reelforge/internal/script"
	"reelforge/internal/timeline"
)

var testOptions = Options{
	Width:      1080,
	Height:     1920,
	FPS:        30,
	VideoCodec: "libx264",
	AudioCodec: "aac",
	CRF:        23,
	Preset:     "medium",
}

func timelineWith(entries ...timeline.Entry) *timeline.Timeline {
	return &timeline.Timeline{ID: "tl-test", Title: "Test", Entries: entries}
}

func imageEntry(id, path string, start, end float64) timeline.Entry {
	return timeline.Entry{
		Scene: script.Scene{ID: id, StartTime: start, EndTime: end},
		Asset: assets.Asset{SceneID: id, Type: assets.TypeImage, Path: path},
	}
}

func videoEntry(id, path string, start, end float64) timeline.Entry {
	return timeline.Entry{
		Scene: script.Scene{ID: id, StartTime: start, EndTime: end},
		Asset: assets.Asset{SceneID: id, Type: assets.TypeVideo, Path: path},
	}
}

func TestBuildGraphConcatenatesLabeledPads(t *testing.T) {
	tl := timelineWith(
		imageEntry("scene_1", "/tmp/a.jpg", 0, 5),
		videoEntry("scene_2", "/tmp/b.mp4", 5, 10),
	)

	g := buildGraph(tl, testOptions)

	if !strings.Contains(g.filter, "[v0][v1]concat=n=2:v=1:a=0[vout]") {
		t.Fatalf("missing concat node in filter: %s", g.filter)
	}
	if !strings.Contains(g.filter, "[0:v]scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920,setsar=1,fps=30") {
		t.Fatalf("missing normalization chain: %s", g.filter)
	}
	if !strings.Contains(g.filter, "trim=duration=5.000,setpts=PTS-STARTPTS[v0]") {
		t.Fatalf("missing trim for scene 1: %s", g.filter)
	}
}

func TestBuildGraphLoopsStillImages(t *testing.T) {
	tl := timelineWith(
		imageEntry("scene_1", "/tmp/a.jpg", 0, 4),
		videoEntry("scene_2", "/tmp/b.mp4", 4, 8),
	)

	g := buildGraph(tl, testOptions)
	joined := strings.Join(g.inputArgs, " ")

	if !strings.Contains(joined, "-loop 1 -t 4.000 -i /tmp/a.jpg") {
		t.Fatalf("image input not looped: %s", joined)
	}
	if strings.Contains(joined, "-loop 1 -t 4.000 -i /tmp/b.mp4") {
		t.Fatalf("video input must not be looped: %s", joined)
	}
}

func TestBuildGraphSingleSceneBypassesConcat(t *testing.T) {
	tl := timelineWith(imageEntry("scene_1", "/tmp/a.jpg", 0, 5))

	g := buildGraph(tl, testOptions)

	if strings.Contains(g.filter, "concat") {
		t.Fatalf("single-scene graph must not concat: %s", g.filter)
	}
	if !strings.HasSuffix(g.filter, "[vout]") {
		t.Fatalf("single chain must end in the output label: %s", g.filter)
	}
}

func TestBuildGraphPlaceholderTreatedAsImage(t *testing.T) {
	entry := imageEntry("scene_1", "/tmp/p.png", 0, 5)
	entry.Asset.Type = assets.TypePlaceholder
	tl := timelineWith(entry, videoEntry("scene_2", "/tmp/b.mp4", 5, 10))

	g := buildGraph(tl, testOptions)
	if !strings.Contains(strings.Join(g.inputArgs, " "), "-loop 1 -t 5.000 -i /tmp/p.png") {
		t.Fatalf("placeholder input not looped: %v", g.inputArgs)
	}
}

func TestEncodeArgsMapExplicitOutput(t *testing.T) {
	args := strings.Join(encodeArgs(testOptions, "/tmp/out.mp4"), " ")
	for _, want := range []string{
		"-map [vout]",
		"-c:v libx264",
		"-crf 23",
		"-preset medium",
		"-movflags +faststart",
		"-pix_fmt yuv420p",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("encode args missing %q: %s", want, args)
		}
	}
}
