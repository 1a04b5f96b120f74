package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent pipeline jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.OpenStore(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			listed, err := store.ListJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(listed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(listed))
			for _, job := range listed {
				rows = append(rows, []string{
					shortID(job.ID),
					job.Title,
					string(job.Status),
					fmt.Sprintf("%d%%", job.Progress),
					job.ArtifactKind,
					job.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Status", "Progress", "Kind", "Created"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to list")
	cmd.AddCommand(newJobsClearCommand(ctx))
	return cmd
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded job history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.OpenStore(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.ClearJobs(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job record(s)\n", removed)
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job's stages, warnings, and errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.OpenStore(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s\n", job.ID)
			fmt.Fprintf(out, "Title:    %s\n", job.Title)
			fmt.Fprintf(out, "Status:   %s (%d%%)\n", job.Status, job.Progress)
			if job.ArtifactPath != "" {
				fmt.Fprintf(out, "Artifact: %s (%s)\n", job.ArtifactPath, job.ArtifactKind)
			}

			if len(job.Stages) > 0 {
				rows := make([][]string, 0, len(job.Stages))
				for _, stage := range job.Stages {
					rows = append(rows, []string{
						stage.Name,
						string(stage.Status),
						stageDuration(stage),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Stage", "Status", "Duration"}, rows))
			}

			if len(job.Warnings) > 0 {
				fmt.Fprintf(out, "Warnings (%d):\n", len(job.Warnings))
				for _, warning := range job.Warnings {
					fmt.Fprintf(out, "  - %s\n", warning)
				}
			}
			if len(job.Errors) > 0 {
				fmt.Fprintf(out, "Errors (%d):\n", len(job.Errors))
				for _, errText := range job.Errors {
					fmt.Fprintf(out, "  - %s\n", errText)
				}
			}
			return nil
		},
	}
}

func stageDuration(stage jobs.StageRecord) string {
	if stage.FinishedAt == nil {
		return "running"
	}
	return stage.FinishedAt.Sub(stage.StartedAt).Round(time.Millisecond).String()
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
