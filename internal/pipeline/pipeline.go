// Package pipeline orchestrates a full script-to-render run: analysis,
// parallel asset resolution, caption timing, timeline assembly, and the
// render ladder, all supervised by a job tracker.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/captions"
	"reelforge/internal/config"
	"reelforge/internal/jobs"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/render"
	"reelforge/internal/script"
	"reelforge/internal/services"
	"reelforge/internal/timeline"
)

// Progress bands per stage. Within a band progress scales with the stage's
// own completion; band edges keep the overall value monotonic.
const (
	progressResolutionStart = 10
	progressResolutionEnd   = 60
	progressCaptionsEnd     = 70
	progressAssemblyEnd     = 75
	progressRenderEnd       = 100
)

// Result is what a successful (or degraded) run hands back to the caller.
type Result struct {
	JobID        string
	ArtifactPath string
	ArtifactKind render.Kind
	Timeline     *timeline.Timeline
}

// Pipeline wires the stage components together. All collaborators are
// injected so concurrent runs share no hidden state; Store and Notifier may
// be nil.
type Pipeline struct {
	cfg      *config.Config
	resolver *assets.Resolver
	renderer *render.Renderer
	store    *jobs.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// New assembles a Pipeline from its collaborators.
func New(cfg *config.Config, resolver *assets.Resolver, renderer *render.Renderer, store *jobs.Store, notifier notifications.Service, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	return &Pipeline{
		cfg:      cfg,
		resolver: resolver,
		renderer: renderer,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// GetJob returns a persisted job snapshot for polling-style progress
// reporting.
func (p *Pipeline) GetJob(ctx context.Context, jobID string) (jobs.Job, error) {
	if p.store == nil {
		return jobs.Job{}, services.Wrap(services.ErrConfiguration, "pipeline", "get job", "no job store configured", nil)
	}
	return p.store.GetJob(ctx, jobID)
}

// Run executes the whole pipeline for one script document and always leaves
// the job in a terminal state. The returned error is non-nil only for fatal
// failures; degraded artifacts return normally with their kind downgraded.
func (p *Pipeline) Run(ctx context.Context, doc *script.Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	tracker := jobs.NewTracker(doc.Title, p.logger)
	jobID := tracker.JobID()
	ctx = services.WithJobID(ctx, jobID)
	logger := p.logger.With(logging.String(logging.FieldJobID, jobID))

	unobserve := notifications.Observe(ctx, p.notifier, tracker)
	defer unobserve()

	persist := func() {
		if p.store == nil {
			return
		}
		// The failed snapshot must still reach the store when the run
		// context itself was canceled.
		if err := p.store.SaveJob(context.WithoutCancel(ctx), tracker.Snapshot()); err != nil {
			logger.Warn("persist job snapshot failed", logging.Error(err))
		}
	}
	persist()

	scratchDir, err := os.MkdirTemp(p.cfg.Paths.ScratchDir, "job_")
	if err != nil {
		tracker.Fail(fmt.Sprintf("create scratch directory: %v", err))
		persist()
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "scratch", "create scratch directory", err)
	}

	fail := func(message string, cause error) (*Result, error) {
		tracker.Fail(message)
		persist()
		os.RemoveAll(scratchDir)
		if cause == nil {
			cause = services.Wrap(services.ErrExternalTool, "pipeline", "run", message, nil)
		}
		return nil, cause
	}

	tracker.Start()
	_ = p.notifier.NotifyJobStarted(ctx, doc.Title)
	logger.Info("pipeline started",
		logging.String("title", doc.Title),
		logging.Int("scenes", len(doc.Scenes)))

	scenes := script.Analyze(doc)

	// Scene resolution, parallel across scenes.
	tracker.StartStage(jobs.StageSceneResolution)
	tracker.SetProgress(progressResolutionStart)
	outcomes := p.resolver.ResolveAll(ctx, scenes, scratchDir, func(done, total int) {
		span := progressResolutionEnd - progressResolutionStart
		tracker.SetProgress(progressResolutionStart + span*done/total)
	})
	if ctx.Err() != nil {
		return fail(fmt.Sprintf("cancelled during scene resolution: %v", ctx.Err()), ctx.Err())
	}

	resolved := make(map[string]*assets.Asset, len(scenes))
	for _, scene := range scenes {
		outcome := outcomes[scene.ID]
		for _, warning := range outcome.Warnings {
			tracker.AddWarning(warning)
		}
		if outcome.Err != nil {
			tracker.AddError(outcome.Err.Error())
			continue
		}
		if outcome.Asset != nil {
			resolved[scene.ID] = outcome.Asset
		}
	}
	if len(resolved) == 0 {
		return fail("scene resolution produced zero usable scenes", nil)
	}
	tracker.SetProgress(progressResolutionEnd)

	// Caption timing.
	tracker.StartStage(jobs.StageCaptionGeneration)
	segments := captions.ForScenes(scenes)
	tracker.SetProgress(progressCaptionsEnd)

	// Timeline assembly.
	tracker.StartStage(jobs.StageTimelineAssembly)
	tl, err := timeline.Assemble(doc, scenes, resolved, segments)
	if err != nil {
		return fail(fmt.Sprintf("timeline assembly failed: %v", err), err)
	}
	tracker.SetProgress(progressAssemblyEnd)
	logger.Info("timeline assembled",
		logging.String("timeline_id", tl.ID),
		logging.Int("entries", len(tl.Entries)),
		logging.Float64("total_duration", tl.TotalDuration))

	// Rendering with the fallback ladder.
	tracker.StartStage(jobs.StageRendering)
	artifact, renderWarnings, err := p.renderer.Render(ctx, tl, func(fraction float64) {
		span := float64(progressRenderEnd - progressAssemblyEnd)
		tracker.SetProgress(progressAssemblyEnd + int(span*fraction))
	})
	for _, warning := range renderWarnings {
		tracker.AddWarning(warning)
	}
	if err != nil {
		return fail(fmt.Sprintf("rendering failed: %v", err), err)
	}
	if artifact.Kind != render.KindVideo {
		_ = p.notifier.NotifyRenderDegraded(ctx, doc.Title, string(artifact.Kind))
	}

	tracker.Complete(artifact.Path, string(artifact.Kind))
	persist()
	p.scheduleScratchCleanup(scratchDir, logger)

	return &Result{
		JobID:        jobID,
		ArtifactPath: artifact.Path,
		ArtifactKind: artifact.Kind,
		Timeline:     tl,
	}, nil
}

// scheduleScratchCleanup removes the per-job scratch directory after a grace
// delay, leaving a window for in-flight reads of just-produced files.
func (p *Pipeline) scheduleScratchCleanup(dir string, logger *slog.Logger) {
	grace := time.Duration(p.cfg.Pipeline.ScratchGraceSeconds) * time.Second
	if grace <= 0 {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("scratch cleanup failed", logging.Error(err))
		}
		return
	}
	time.AfterFunc(grace, func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("scratch cleanup failed", logging.Error(err))
		}
	})
}
