package render

import (
	"fmt"
	"strconv"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/timeline"
)

// finalLabel names the filter graph's output pad; the encode maps it
// explicitly instead of relying on default stream selection.
const finalLabel = "vout"

// Options are the fixed output parameters of the deliverable video.
type Options struct {
	Width      int
	Height     int
	FPS        int
	VideoCodec string
	AudioCodec string
	CRF        int
	Preset     string
}

// graph holds the pieces of an ffmpeg invocation derived from a timeline:
// per-scene input arguments and the filter-complex program ending in the
// labeled output pad.
type graph struct {
	inputArgs []string
	filter    string
}

// buildGraph constructs one filter chain per timeline entry and concatenates
// the chains. Still images are looped into timed streams before the shared
// normalization; a single-entry timeline skips the concat node and labels
// its sole chain as the output directly.
func buildGraph(tl *timeline.Timeline, opts Options) graph {
	var g graph
	var chains []string
	var labels []string

	for i, entry := range tl.Entries {
		duration := entry.Scene.Duration()
		if isStillImage(entry.Asset.Type) {
			g.inputArgs = append(g.inputArgs,
				"-loop", "1",
				"-t", formatSeconds(duration),
				"-i", entry.Asset.Path,
			)
		} else {
			g.inputArgs = append(g.inputArgs, "-i", entry.Asset.Path)
		}

		label := fmt.Sprintf("v%d", i)
		if len(tl.Entries) == 1 {
			label = finalLabel
		}
		chains = append(chains, sceneChain(i, duration, label, opts))
		labels = append(labels, "["+label+"]")
	}

	if len(tl.Entries) == 1 {
		g.filter = chains[0]
		return g
	}

	concat := fmt.Sprintf("%sconcat=n=%d:v=1:a=0[%s]",
		strings.Join(labels, ""), len(tl.Entries), finalLabel)
	g.filter = strings.Join(append(chains, concat), ";")
	return g
}

// sceneChain normalizes one input stream to the output frame: scale to
// cover, center-crop, unify sample aspect ratio and frame rate, trim to the
// scene window, and reset timestamps so concat sees contiguous streams.
func sceneChain(index int, duration float64, label string, opts Options) string {
	return fmt.Sprintf(
		"[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=%d,trim=duration=%s,setpts=PTS-STARTPTS[%s]",
		index, opts.Width, opts.Height, opts.Width, opts.Height, opts.FPS,
		formatSeconds(duration), label,
	)
}

// encodeArgs returns the output-side arguments shared by every encode.
func encodeArgs(opts Options, outputPath string) []string {
	return []string{
		"-map", "[" + finalLabel + "]",
		"-c:v", opts.VideoCodec,
		"-crf", strconv.Itoa(opts.CRF),
		"-preset", opts.Preset,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(opts.FPS),
		"-c:a", opts.AudioCodec,
		"-movflags", "+faststart",
		outputPath,
	}
}

func isStillImage(t assets.Type) bool {
	return t == assets.TypeImage || t == assets.TypePlaceholder
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
