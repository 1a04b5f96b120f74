package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/assets"
	"reelforge/internal/jobs"
	"reelforge/internal/render"
	"reelforge/internal/script"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
	"reelforge/internal/timeline"
)

type fakeProvider struct {
	searchErr  error
	candidates []assets.Candidate
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(ctx context.Context, keywords []string, mediaType script.MediaType, limit int) ([]assets.Candidate, error) {
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.candidates, nil
}

func (p *fakeProvider) Download(ctx context.Context, url, dest string) error {
	return os.WriteFile(dest, []byte("asset-bytes"), 0o644)
}

type fakeSynthesizer struct {
	failSubstring string
}

func (s *fakeSynthesizer) Render(text string, width, height int, dest string) error {
	if s.failSubstring != "" && strings.Contains(text, s.failSubstring) {
		return errors.New("synthesis backend unavailable")
	}
	return os.WriteFile(dest, []byte("placeholder-bytes"), 0o644)
}

type fakeEncoder struct {
	err error
}

func (e *fakeEncoder) Encode(ctx context.Context, tl *timeline.Timeline, outputPath string, progress func(float64)) error {
	if e.err != nil {
		return e.err
	}
	if progress != nil {
		progress(1)
	}
	return os.WriteFile(outputPath, []byte("video-bytes"), 0o644)
}

type fixture struct {
	pipeline *Pipeline
	store    *jobs.Store
}

func newFixture(t *testing.T, provider assets.Provider, synth assets.Synthesizer, encoder render.Encoder) fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)

	resolver, err := assets.NewResolver(assets.ResolverConfig{
		Provider:    provider,
		Synthesizer: synth,
		Workers:     2,
		FrameWidth:  108,
		FrameHeight: 192,
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	renderer := &render.Renderer{Encoder: encoder, OutputDir: cfg.Paths.OutputDir}
	store := testsupport.MustOpenStore(t, cfg)

	return fixture{
		pipeline: New(cfg, resolver, renderer, store, nil, nil),
		store:    store,
	}
}

func twoSceneDoc() *script.Document {
	start1, end1 := 0.0, 5.0
	start2, end2 := 5.0, 10.0
	return &script.Document{
		Title:          "Morning Routine",
		TargetDuration: 10,
		Scenes: []script.RawScene{
			{StartTime: &start1, EndTime: &end1, Narration: "welcome to the show today", VisualDirection: "sunrise over city skyline"},
			{StartTime: &start2, EndTime: &end2, Narration: "thanks for watching", VisualDirection: "ocean waves", OnScreenText: "SUBSCRIBE"},
		},
	}
}

func TestRunHappyPath(t *testing.T) {
	provider := &fakeProvider{candidates: []assets.Candidate{{Type: script.MediaTypeImage, DownloadURL: "http://img/a.jpg"}}}
	fx := newFixture(t, provider, &fakeSynthesizer{}, &fakeEncoder{})

	result, err := fx.pipeline.Run(context.Background(), twoSceneDoc())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArtifactKind != render.KindVideo {
		t.Fatalf("ArtifactKind = %s", result.ArtifactKind)
	}
	if _, err := os.Stat(result.ArtifactPath); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if len(result.Timeline.Entries) != 2 {
		t.Fatalf("timeline entries = %d", len(result.Timeline.Entries))
	}

	job, err := fx.pipeline.GetJob(context.Background(), result.JobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s", job.Status)
	}
	if job.Progress != 100 {
		t.Fatalf("progress = %d", job.Progress)
	}
	if len(job.Stages) != 4 {
		t.Fatalf("stages = %+v", job.Stages)
	}
}

func TestRunProviderFailureEngagesPlaceholders(t *testing.T) {
	provider := &fakeProvider{searchErr: errors.New("provider down")}
	fx := newFixture(t, provider, &fakeSynthesizer{}, &fakeEncoder{})

	result, err := fx.pipeline.Run(context.Background(), twoSceneDoc())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArtifactKind != render.KindVideo {
		t.Fatalf("ArtifactKind = %s", result.ArtifactKind)
	}
	for _, entry := range result.Timeline.Entries {
		if entry.Asset.Origin != assets.OriginSynthetic {
			t.Fatalf("asset origin = %s", entry.Asset.Origin)
		}
	}

	job, err := fx.pipeline.GetJob(context.Background(), result.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s", job.Status)
	}
	if len(job.Warnings) == 0 {
		t.Fatal("expected provider warnings")
	}
}

func TestRunEncoderFailureYieldsSlideshow(t *testing.T) {
	provider := &fakeProvider{searchErr: errors.New("provider down")}
	fx := newFixture(t, provider, &fakeSynthesizer{}, &fakeEncoder{err: errors.New("exit status 1")})

	result, err := fx.pipeline.Run(context.Background(), twoSceneDoc())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArtifactKind != render.KindSlideshow {
		t.Fatalf("ArtifactKind = %s, want slideshow", result.ArtifactKind)
	}

	job, err := fx.pipeline.GetJob(context.Background(), result.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s", job.Status)
	}
	var foundFallbackWarning bool
	for _, warning := range job.Warnings {
		if strings.Contains(warning, "rendering fallback") {
			foundFallbackWarning = true
		}
	}
	if !foundFallbackWarning {
		t.Fatalf("warnings = %v", job.Warnings)
	}
}

type cancelingEncoder struct {
	cancel context.CancelFunc
}

func (e *cancelingEncoder) Encode(ctx context.Context, tl *timeline.Timeline, outputPath string, progress func(float64)) error {
	e.cancel()
	return ctx.Err()
}

func TestRunCancellationDuringEncodeFailsJob(t *testing.T) {
	provider := &fakeProvider{candidates: []assets.Candidate{{Type: script.MediaTypeImage, DownloadURL: "http://img/a.jpg"}}}
	ctx, cancel := context.WithCancel(context.Background())
	fx := newFixture(t, provider, &fakeSynthesizer{}, &cancelingEncoder{cancel: cancel})

	result, err := fx.pipeline.Run(ctx, twoSceneDoc())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v (result %+v), want context.Canceled", err, result)
	}

	listed, listErr := fx.store.ListJobs(context.Background(), 1)
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(listed) != 1 || listed[0].Status != jobs.StatusFailed {
		t.Fatalf("jobs = %+v", listed)
	}
	if listed[0].ArtifactPath != "" {
		t.Fatalf("canceled job recorded artifact %q", listed[0].ArtifactPath)
	}

	// Failure cleans scratch immediately, no grace delay.
	entries, readErr := os.ReadDir(fx.pipeline.cfg.Paths.ScratchDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "job_") {
			t.Fatalf("scratch directory %s left behind", entry.Name())
		}
	}
}

func TestRunPartialSceneFailureCompletesWithErrors(t *testing.T) {
	provider := &fakeProvider{searchErr: errors.New("provider down")}
	synth := &fakeSynthesizer{failSubstring: "ocean"}
	fx := newFixture(t, provider, synth, &fakeEncoder{})

	result, err := fx.pipeline.Run(context.Background(), twoSceneDoc())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Timeline.Entries) != 1 {
		t.Fatalf("timeline entries = %d", len(result.Timeline.Entries))
	}

	job, err := fx.pipeline.GetJob(context.Background(), result.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != jobs.StatusCompletedWithErrors {
		t.Fatalf("status = %s", job.Status)
	}
	if len(job.Errors) != 1 {
		t.Fatalf("errors = %v", job.Errors)
	}
}

func TestRunFailsWithZeroUsableScenes(t *testing.T) {
	provider := &fakeProvider{searchErr: errors.New("provider down")}
	// The substring matches both scenes' direction text, so synthesis
	// fails everywhere and no fallback image is configured.
	synth := &fakeSynthesizer{failSubstring: "s"}
	fx := newFixture(t, provider, synth, &fakeEncoder{})

	_, err := fx.pipeline.Run(context.Background(), twoSceneDoc())
	if err == nil {
		t.Fatal("expected fatal error")
	}

	listed, listErr := fx.store.ListJobs(context.Background(), 1)
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(listed) != 1 || listed[0].Status != jobs.StatusFailed {
		t.Fatalf("jobs = %+v", listed)
	}
	if listed[0].LastError() == "" {
		t.Fatal("failed job must carry an actionable error")
	}
}

func TestRunRejectsInvalidDocument(t *testing.T) {
	fx := newFixture(t, &fakeProvider{}, &fakeSynthesizer{}, &fakeEncoder{})
	_, err := fx.pipeline.Run(context.Background(), &script.Document{Title: "Empty"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunCleansScratchAfterCompletion(t *testing.T) {
	provider := &fakeProvider{candidates: []assets.Candidate{{Type: script.MediaTypeImage, DownloadURL: "http://img/a.jpg"}}}
	fx := newFixture(t, provider, &fakeSynthesizer{}, &fakeEncoder{})

	_, err := fx.pipeline.Run(context.Background(), twoSceneDoc())
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(fx.pipeline.cfg.Paths.ScratchDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "job_") {
			t.Fatalf("scratch directory %s not cleaned", filepath.Join(fx.pipeline.cfg.Paths.ScratchDir, entry.Name()))
		}
	}
}
