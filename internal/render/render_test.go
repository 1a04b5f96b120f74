package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/testsupport"
	"reelforge/internal/timeline"
)

type stubEncoder struct {
	err   error
	calls int
}

func (s *stubEncoder) Encode(ctx context.Context, tl *timeline.Timeline, outputPath string, progress func(float64)) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	if progress != nil {
		progress(0.5)
		progress(1)
	}
	return os.WriteFile(outputPath, []byte("video-bytes"), 0o644)
}

func renderableTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	imgPath := filepath.Join(t.TempDir(), "a.png")
	testsupport.WriteFile(t, imgPath, 64)
	tl := timelineWith(imageEntry("scene_1", imgPath, 0, 5))
	tl.Title = "My Short"
	return tl
}

func TestRenderPrimaryPathYieldsVideo(t *testing.T) {
	enc := &stubEncoder{}
	r := &Renderer{Encoder: enc, OutputDir: t.TempDir()}

	var fractions []float64
	artifact, warnings, err := r.Render(context.Background(), renderableTimeline(t), func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if artifact.Kind != KindVideo {
		t.Fatalf("Kind = %s", artifact.Kind)
	}
	if !strings.HasSuffix(artifact.Path, ".mp4") {
		t.Fatalf("Path = %s", artifact.Path)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(fractions) == 0 || fractions[len(fractions)-1] != 1 {
		t.Fatalf("progress fractions = %v", fractions)
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		t.Fatalf("artifact not on disk: %v", err)
	}
}

type cancelingEncoder struct {
	cancel context.CancelFunc
}

func (e *cancelingEncoder) Encode(ctx context.Context, tl *timeline.Timeline, outputPath string, progress func(float64)) error {
	e.cancel()
	return ctx.Err()
}

func TestRenderCancellationFailsWithoutDegrading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	outputDir := t.TempDir()
	r := &Renderer{Encoder: &cancelingEncoder{cancel: cancel}, OutputDir: outputDir}

	artifact, _, err := r.Render(ctx, renderableTimeline(t), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if artifact != (Artifact{}) {
		t.Fatalf("canceled render must not yield an artifact, got %+v", artifact)
	}

	entries, readErr := os.ReadDir(outputDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".html") || strings.HasSuffix(entry.Name(), ".json") {
			t.Fatalf("degraded artifact %s produced after cancellation", entry.Name())
		}
	}
}

func TestRenderDegradesToSlideshow(t *testing.T) {
	enc := &stubEncoder{err: errors.New("encoder exited with status 1")}
	r := &Renderer{Encoder: enc, OutputDir: t.TempDir()}

	artifact, warnings, err := r.Render(context.Background(), renderableTimeline(t), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if artifact.Kind != KindSlideshow {
		t.Fatalf("Kind = %s, want slideshow", artifact.Kind)
	}
	if !strings.HasSuffix(artifact.Path, ".html") {
		t.Fatalf("Path = %s", artifact.Path)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "rendering fallback") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestRenderDegradesToDataDump(t *testing.T) {
	enc := &stubEncoder{err: errors.New("encoder exited with status 1")}
	r := &Renderer{Encoder: enc, OutputDir: t.TempDir()}

	// An unreadable asset path makes slideshow generation fail too.
	tl := timelineWith(imageEntry("scene_1", filepath.Join(t.TempDir(), "missing.png"), 0, 5))
	tl.Title = "Broken"

	artifact, warnings, err := r.Render(context.Background(), tl, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if artifact.Kind != KindDataDump {
		t.Fatalf("Kind = %s, want data-dump", artifact.Kind)
	}
	if !strings.HasSuffix(artifact.Path, ".json") {
		t.Fatalf("Path = %s", artifact.Path)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v", warnings)
	}
	data, readErr := os.ReadFile(artifact.Path)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if !strings.Contains(string(data), "manual review") {
		t.Fatalf("dump missing review note: %s", data)
	}
}

func TestRenderArtifactNameDerivedFromTitle(t *testing.T) {
	enc := &stubEncoder{}
	r := &Renderer{Encoder: enc, OutputDir: t.TempDir()}

	artifact, _, err := r.Render(context.Background(), renderableTimeline(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(artifact.Path)
	if !strings.HasPrefix(base, "my_short_") {
		t.Fatalf("artifact base name = %s", base)
	}
}
