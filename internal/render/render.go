package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
	"reelforge/internal/timeline"
)

// Kind tags the artifact a render produced so callers can distinguish a true
// video from a degraded deliverable.
type Kind string

const (
	KindVideo     Kind = "video"
	KindSlideshow Kind = "slideshow"
	KindDataDump  Kind = "data-dump"
)

// Artifact is the deliverable of a render: a local file and its kind.
type Artifact struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// durationTolerance is the acceptable drift between the encoded duration and
// the timeline's visual duration, in seconds.
const durationTolerance = 1.5

// Prober measures a rendered file, used to sanity-check encode output.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Renderer walks the three-tier ladder: encode, slideshow, data dump. It
// guarantees an artifact or a terminal error, never a panic or a missing
// deliverable for a recoverable failure.
type Renderer struct {
	Encoder   Encoder
	Prober    Prober
	OutputDir string
	Logger    *slog.Logger
}

// Render produces the deliverable for tl. Returned warnings describe tier
// downgrades; the error is non-nil only when every tier failed.
func (r *Renderer) Render(ctx context.Context, tl *timeline.Timeline, progress func(fraction float64)) (Artifact, []string, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := fileutil.EnsureDir(strings.TrimSpace(r.OutputDir)); err != nil {
		return Artifact{}, nil, services.Wrap(services.ErrConfiguration, "render", "ladder",
			"prepare output directory", err)
	}
	base := r.artifactBase(tl)
	var warnings []string

	videoPath := base + ".mp4"
	encodeErr := r.Encoder.Encode(ctx, tl, videoPath, progress)
	if encodeErr == nil {
		r.verifyDuration(ctx, tl, videoPath, logger)
		return Artifact{Path: videoPath, Kind: KindVideo}, warnings, nil
	}
	// A canceled run is an interruption, not an encode failure; degrading
	// would hand back a partial deliverable instead of stopping.
	if ctx.Err() != nil || errors.Is(encodeErr, context.Canceled) || errors.Is(encodeErr, context.DeadlineExceeded) {
		return Artifact{}, warnings, encodeErr
	}
	warnings = append(warnings, fmt.Sprintf("rendering fallback: encoding failed, producing slideshow instead: %v", encodeErr))
	logger.WarnContext(ctx, "encoding failed, degrading to slideshow", logging.Error(encodeErr))

	slideshowPath := base + ".html"
	slideshowErr := WriteSlideshow(tl, slideshowPath)
	if slideshowErr == nil {
		return Artifact{Path: slideshowPath, Kind: KindSlideshow}, warnings, nil
	}
	warnings = append(warnings, fmt.Sprintf("rendering fallback: slideshow generation failed, dumping timeline data: %v", slideshowErr))
	logger.WarnContext(ctx, "slideshow generation failed, degrading to data dump", logging.Error(slideshowErr))

	dumpPath := base + ".json"
	if dumpErr := WriteDataDump(tl, dumpPath); dumpErr != nil {
		return Artifact{}, warnings, services.Wrap(services.ErrExternalTool, "render", "ladder",
			"all rendering tiers failed", dumpErr)
	}
	return Artifact{Path: dumpPath, Kind: KindDataDump}, warnings, nil
}

// verifyDuration compares the encoded file's duration against the timeline's
// visual duration. Drift is reported as a log warning only; a playable file
// with slightly off duration is still a valid deliverable.
func (r *Renderer) verifyDuration(ctx context.Context, tl *timeline.Timeline, path string, logger *slog.Logger) {
	if r.Prober == nil {
		return
	}
	actual, err := r.Prober.ProbeDuration(ctx, path)
	if err != nil {
		logger.WarnContext(ctx, "duration verification skipped", logging.Error(err))
		return
	}
	expected := tl.ScenesDuration()
	if math.Abs(actual-expected) > durationTolerance {
		logger.WarnContext(ctx, "encoded duration drifts from timeline",
			logging.Float64("expected_seconds", expected),
			logging.Float64("actual_seconds", actual))
	}
}

func (r *Renderer) artifactBase(tl *timeline.Timeline) string {
	name := textutil.SanitizeToken(tl.Title)
	id := tl.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id != "" {
		name = name + "_" + id
	}
	return filepath.Join(strings.TrimSpace(r.OutputDir), name)
}
