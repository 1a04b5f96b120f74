package script

import (
	"reflect"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestAnalyzeAppliesDefaultWindow(t *testing.T) {
	doc := &Document{
		Title: "Test",
		Scenes: []RawScene{
			{Narration: "first"},
			{Narration: "second"},
		},
	}

	scenes := Analyze(doc)
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].ID != "scene_1" || scenes[1].ID != "scene_2" {
		t.Fatalf("unexpected scene IDs: %s, %s", scenes[0].ID, scenes[1].ID)
	}
	if scenes[0].StartTime != 0 || scenes[0].EndTime != 5 {
		t.Fatalf("scene 1 window = %.1f-%.1f", scenes[0].StartTime, scenes[0].EndTime)
	}
	if scenes[1].StartTime != 5 || scenes[1].EndTime != 10 {
		t.Fatalf("scene 2 window = %.1f-%.1f", scenes[1].StartTime, scenes[1].EndTime)
	}
}

func TestAnalyzeKeepsExplicitTiming(t *testing.T) {
	doc := &Document{
		Title: "Test",
		Scenes: []RawScene{
			{StartTime: floatPtr(2), EndTime: floatPtr(9.5), Narration: "hello"},
		},
	}

	scenes := Analyze(doc)
	if scenes[0].StartTime != 2 || scenes[0].EndTime != 9.5 {
		t.Fatalf("window = %.1f-%.1f", scenes[0].StartTime, scenes[0].EndTime)
	}
	if got := scenes[0].Duration(); got != 7.5 {
		t.Fatalf("Duration = %.1f", got)
	}
}

func TestAnalyzeKeywordsFromVisualDirection(t *testing.T) {
	doc := &Document{
		Title: "Test",
		Scenes: []RawScene{
			{
				Narration:       "welcome everyone to the channel",
				VisualDirection: "A city skyline at night with neon lights reflecting",
			},
		},
	}

	scenes := Analyze(doc)
	want := []string{"city", "skyline", "night", "neon", "lights"}
	if !reflect.DeepEqual(scenes[0].Keywords, want) {
		t.Fatalf("Keywords = %v, want %v", scenes[0].Keywords, want)
	}
}

func TestAnalyzeKeywordsFallBackToNarration(t *testing.T) {
	doc := &Document{
		Title: "Test",
		Scenes: []RawScene{
			{Narration: "mountain sunrise over the valley"},
		},
	}

	scenes := Analyze(doc)
	if len(scenes[0].Keywords) == 0 {
		t.Fatal("expected narration-derived keywords")
	}
	if scenes[0].Keywords[0] != "mountain" {
		t.Fatalf("Keywords = %v", scenes[0].Keywords)
	}
}

func TestAnalyzeMediaHint(t *testing.T) {
	doc := &Document{
		Title: "Test",
		Scenes: []RawScene{
			{VisualDirection: "waves flowing onto the beach"},
			{VisualDirection: "a quiet mountain lake"},
			{}, // missing direction defaults to image
		},
	}

	scenes := Analyze(doc)
	if scenes[0].MediaHint != MediaTypeVideo {
		t.Fatalf("scene 1 hint = %s", scenes[0].MediaHint)
	}
	if scenes[1].MediaHint != MediaTypeImage {
		t.Fatalf("scene 2 hint = %s", scenes[1].MediaHint)
	}
	if scenes[2].MediaHint != MediaTypeImage {
		t.Fatalf("scene 3 hint = %s", scenes[2].MediaHint)
	}
}
