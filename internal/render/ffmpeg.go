package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/services"
	"reelforge/internal/timeline"
)

// Encoder drives an external encoding engine for one timeline. The progress
// callback, when non-nil, receives a 0.0-1.0 completion fraction as the
// engine reports it.
type Encoder interface {
	Encode(ctx context.Context, tl *timeline.Timeline, outputPath string, progress func(fraction float64)) error
}

// FFmpegEncoder runs ffmpeg as a subprocess with a generated filter graph.
type FFmpegEncoder struct {
	Binary       string
	ProbeBinary  string
	Options      Options
	Logger       *slog.Logger
	// ExtraArgs is prepended before the inputs, for tests and overrides.
	ExtraArgs []string
}

// Encode builds the filter graph for tl and blocks until ffmpeg exits.
// Structured progress lines on stdout are relayed to the callback;
// cancellation of ctx terminates the subprocess.
func (e *FFmpegEncoder) Encode(ctx context.Context, tl *timeline.Timeline, outputPath string, progress func(fraction float64)) error {
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	g := buildGraph(tl, e.Options)
	args := e.commandArgs(g, outputPath)

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "encode", "attach stdout pipe", err)
	}

	logger.InfoContext(ctx, "starting encode",
		logging.String("binary", binary),
		logging.Int("scenes", len(tl.Entries)),
		logging.String("output", outputPath))

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "encode", "start encoder", err)
	}

	e.relayProgress(stdout, tl.ScenesDuration(), progress)

	if err := cmd.Wait(); err != nil {
		detail := tailLines(stderr.String(), 12)
		return services.Wrap(services.ErrExternalTool, "render", "encode",
			fmt.Sprintf("encoder failed: %s", detail), err)
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

// commandArgs assembles the full ffmpeg argument list. ffmpeg ignores any
// option trailing the last output file, so the progress flags must come
// before the output path.
func (e *FFmpegEncoder) commandArgs(g graph, outputPath string) []string {
	args := []string{"-y", "-hide_banner"}
	args = append(args, e.ExtraArgs...)
	args = append(args, g.inputArgs...)
	args = append(args,
		"-filter_complex", g.filter,
		"-progress", "pipe:1",
		"-nostats",
	)
	args = append(args, encodeArgs(e.Options, outputPath)...)
	return args
}

// relayProgress parses ffmpeg -progress key=value output and converts
// out_time_us into a completion fraction of the visual duration. ffmpeg
// reports out_time_ms in microseconds as well, so both keys share a parser.
func (e *FFmpegEncoder) relayProgress(r io.Reader, totalSeconds float64, progress func(float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			if progress == nil || totalSeconds <= 0 {
				continue
			}
			us, err := strconv.ParseInt(value, 10, 64)
			if err != nil || us < 0 {
				continue
			}
			fraction := (float64(us) / 1e6) / totalSeconds
			if fraction > 1 {
				fraction = 1
			}
			progress(fraction)
		case "progress":
			if value == "end" && progress != nil {
				progress(1)
			}
		}
	}
}

// ProbeDuration asks ffprobe for a media file's duration in seconds.
func (e *FFmpegEncoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	binary := e.ProbeBinary
	if binary == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "render", "probe", "ffprobe failed", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "render", "probe", "parse duration", err)
	}
	return duration, nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
