package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/assets"
	"reelforge/internal/jobs"
	"reelforge/internal/notifications"
	"reelforge/internal/pipeline"
	"reelforge/internal/render"
	"reelforge/internal/script"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <script-file>",
		Short: "Run the full script-to-video pipeline for a script file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			doc, err := script.ParseFile(args[0])
			if err != nil {
				return err
			}

			provider, err := assets.NewPexelsClient(assets.PexelsConfig{
				APIKey:          cfg.Provider.APIKey,
				BaseURL:         cfg.Provider.BaseURL,
				RequestTimeout:  time.Duration(cfg.Provider.RequestTimeout) * time.Second,
				DownloadTimeout: time.Duration(cfg.Provider.DownloadTimeout) * time.Second,
			})
			if err != nil {
				return err
			}

			resolver, err := assets.NewResolver(assets.ResolverConfig{
				Provider:         provider,
				Synthesizer:      assets.GradientSynthesizer{},
				FallbackImageURL: cfg.Provider.FallbackImage,
				ResultLimit:      cfg.Provider.ResultLimit,
				Workers:          cfg.Pipeline.ResolverWorkers,
				FrameWidth:       cfg.Output.Width,
				FrameHeight:      cfg.Output.Height,
				Logger:           logger,
			})
			if err != nil {
				return err
			}

			encoder := &render.FFmpegEncoder{
				Binary:      cfg.FFmpegBinary(),
				ProbeBinary: cfg.FFprobeBinary(),
				Options: render.Options{
					Width:      cfg.Output.Width,
					Height:     cfg.Output.Height,
					FPS:        cfg.Output.FPS,
					VideoCodec: cfg.Output.VideoCodec,
					AudioCodec: cfg.Output.AudioCodec,
					CRF:        cfg.Output.CRF,
					Preset:     cfg.Output.Preset,
				},
				Logger: logger,
			}
			renderer := &render.Renderer{
				Encoder:   encoder,
				Prober:    encoder,
				OutputDir: cfg.Paths.OutputDir,
				Logger:    logger,
			}

			store, err := jobs.OpenStore(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(cfg, resolver, renderer, store, notifications.NewService(cfg), logger)
			result, err := p.Run(runCtx, doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Artifact Kind", "Scenes", "Duration"},
				[][]string{{
					result.JobID,
					string(result.ArtifactKind),
					fmt.Sprintf("%d", len(result.Timeline.Entries)),
					fmt.Sprintf("%.1fs", result.Timeline.TotalDuration),
				}},
			))
			fmt.Fprintf(out, "Artifact: %s\n", result.ArtifactPath)
			if result.ArtifactKind != render.KindVideo {
				fmt.Fprintf(out, "Note: encoding degraded; deliverable is a %s\n", result.ArtifactKind)
			}
			return nil
		},
	}
}
