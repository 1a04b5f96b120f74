package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

// ResolverConfig wires a Resolver's collaborators and tunables.
type ResolverConfig struct {
	Provider         Provider
	Synthesizer      Synthesizer
	FallbackImageURL string
	ResultLimit      int
	Workers          int
	FrameWidth       int
	FrameHeight      int
	Logger           *slog.Logger
}

// Resolver produces exactly one asset per scene via the four-tier cascade:
// provider search and download, synthetic placeholder, generic fallback
// image, and finally a scene-scoped error when everything failed.
type Resolver struct {
	provider    Provider
	synthesizer Synthesizer
	fallbackURL string
	resultLimit int
	workers     int
	frameWidth  int
	frameHeight int
	logger      *slog.Logger
}

// Outcome is the result of resolving one scene. Warnings record absorbed
// tier failures; Err is set only when no tier produced an asset.
type Outcome struct {
	SceneID  string
	Asset    *Asset
	Warnings []string
	Err      error
}

// NewResolver builds a Resolver. Provider and Synthesizer are required.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Provider == nil {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "resolver", "provider is required", nil)
	}
	if cfg.Synthesizer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "resolver", "synthesizer is required", nil)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	limit := cfg.ResultLimit
	if limit < 1 {
		limit = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		provider:    cfg.Provider,
		synthesizer: cfg.Synthesizer,
		fallbackURL: strings.TrimSpace(cfg.FallbackImageURL),
		resultLimit: limit,
		workers:     workers,
		frameWidth:  cfg.FrameWidth,
		frameHeight: cfg.FrameHeight,
		logger:      logger,
	}, nil
}

// ResolveAll resolves every scene concurrently up to the configured worker
// bound. Results are keyed by scene ID, never by completion order, and one
// scene's failure does not stop the others. The progress callback, when
// non-nil, fires after each scene finishes.
func (r *Resolver) ResolveAll(ctx context.Context, scenes []script.Scene, dir string, progress func(done, total int)) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(scenes))
	var mu sync.Mutex
	done := 0

	var group errgroup.Group
	group.SetLimit(r.workers)
	for _, scene := range scenes {
		scene := scene
		group.Go(func() error {
			outcome := r.Resolve(ctx, scene, dir)
			mu.Lock()
			outcomes[scene.ID] = outcome
			done++
			completed := done
			mu.Unlock()
			if progress != nil {
				progress(completed, len(scenes))
			}
			return nil
		})
	}
	group.Wait()
	return outcomes
}

// Resolve runs the cascade for a single scene.
func (r *Resolver) Resolve(ctx context.Context, scene script.Scene, dir string) Outcome {
	ctx = services.WithSceneID(ctx, scene.ID)
	outcome := Outcome{SceneID: scene.ID}

	asset, err := r.fromProvider(ctx, scene, dir)
	if err == nil {
		outcome.Asset = asset
		return outcome
	}
	outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("%s: provider lookup failed: %v", scene.ID, err))
	r.logger.WarnContext(ctx, "provider lookup failed, synthesizing placeholder",
		logging.String(logging.FieldSceneID, scene.ID), logging.Error(err))

	asset, err = r.fromPlaceholder(scene, dir)
	if err == nil {
		outcome.Asset = asset
		return outcome
	}
	outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("%s: placeholder synthesis failed: %v", scene.ID, err))
	r.logger.WarnContext(ctx, "placeholder synthesis failed, fetching fallback image",
		logging.String(logging.FieldSceneID, scene.ID), logging.Error(err))

	asset, err = r.fromFallbackStock(ctx, scene, dir)
	if err == nil {
		outcome.Asset = asset
		return outcome
	}
	outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("%s: fallback image failed: %v", scene.ID, err))

	outcome.Err = services.Wrap(services.ErrExternalTool, "assets", "resolve",
		fmt.Sprintf("all resolution tiers failed for %s", scene.ID), err)
	return outcome
}

func (r *Resolver) fromProvider(ctx context.Context, scene script.Scene, dir string) (*Asset, error) {
	if len(scene.Keywords) == 0 {
		return nil, fmt.Errorf("scene has no search keywords")
	}

	candidates, err := r.provider.Search(ctx, scene.Keywords, scene.MediaHint, r.resultLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no results for %q", strings.Join(scene.Keywords, " "))
	}

	// First-result tie-break: trust provider relevance ordering.
	candidate := candidates[0]
	dest := filepath.Join(dir, scene.ID+candidateExtension(candidate))

	if err := r.provider.Download(ctx, candidate.DownloadURL, dest); err != nil {
		if candidate.SecondaryURL == "" || candidate.SecondaryURL == candidate.DownloadURL {
			return nil, err
		}
		if retryErr := r.provider.Download(ctx, candidate.SecondaryURL, dest); retryErr != nil {
			return nil, fmt.Errorf("primary: %v; secondary: %w", err, retryErr)
		}
	}

	size, err := usableSize(dest)
	if err != nil {
		return nil, err
	}

	assetType := TypeImage
	if candidate.Type == script.MediaTypeVideo {
		assetType = TypeVideo
	}
	return &Asset{
		SceneID:  scene.ID,
		Type:     assetType,
		Path:     dest,
		Origin:   OriginProvider,
		Title:    candidate.Title,
		Source:   r.provider.Name(),
		Width:    candidate.Width,
		Height:   candidate.Height,
		ByteSize: size,
	}, nil
}

func (r *Resolver) fromPlaceholder(scene script.Scene, dir string) (*Asset, error) {
	text := scene.VisualDirection
	if text == "" {
		text = scene.Narration
	}
	if text == "" {
		text = scene.ID
	}

	dest := filepath.Join(dir, scene.ID+"_placeholder.png")
	if err := r.synthesizer.Render(text, r.frameWidth, r.frameHeight, dest); err != nil {
		return nil, err
	}
	size, err := usableSize(dest)
	if err != nil {
		return nil, err
	}
	return &Asset{
		SceneID:  scene.ID,
		Type:     TypePlaceholder,
		Path:     dest,
		Origin:   OriginSynthetic,
		Title:    text,
		Source:   "synthesizer",
		Width:    r.frameWidth,
		Height:   r.frameHeight,
		ByteSize: size,
	}, nil
}

func (r *Resolver) fromFallbackStock(ctx context.Context, scene script.Scene, dir string) (*Asset, error) {
	if r.fallbackURL == "" {
		return nil, fmt.Errorf("no fallback image configured")
	}
	dest := filepath.Join(dir, scene.ID+"_fallback.jpg")
	if err := r.provider.Download(ctx, r.fallbackURL, dest); err != nil {
		return nil, err
	}
	size, err := usableSize(dest)
	if err != nil {
		return nil, err
	}
	return &Asset{
		SceneID:  scene.ID,
		Type:     TypeImage,
		Path:     dest,
		Origin:   OriginFallbackStock,
		Source:   "fallback",
		ByteSize: size,
	}, nil
}

// usableSize measures a produced asset file and rejects empty output. The
// check holds for any Provider or Synthesizer implementation, not just the
// ones that validate their own writes.
func usableSize(path string) (int64, error) {
	size, err := fileutil.FileSize(path)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("asset file %s is empty", filepath.Base(path))
	}
	return size, nil
}

func candidateExtension(c Candidate) string {
	if c.Type == script.MediaTypeVideo {
		return ".mp4"
	}
	return ".jpg"
}
