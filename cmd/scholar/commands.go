package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/ingest"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/injector"
)

var errEnvironmentNotReady = errors.New("environment is not ready")

func (c *cli) setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Check configuration and Qdrant connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.validate(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			if !report.OverallStatus {
				return errEnvironmentNotReady
			}
			return nil
		},
	}
}

func (c *cli) processCommand() *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "process [dir]",
		Short: "Chunk school JSON files and index them in Qdrant",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := c.app()
			if err != nil {
				return err
			}
			defer cleanup()

			return c.process(cmd.Context(), cmd, app, c.dir(args), keep)
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep existing points instead of recreating the collection")
	return cmd
}

func (c *cli) testCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test [question]",
		Short: "Ask a question against the indexed knowledge base",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := c.app()
			if err != nil {
				return err
			}
			defer cleanup()

			question := strings.Join(args, " ")
			if question == "" {
				question = DefaultTestQuestion
			}
			return c.ask(cmd.Context(), cmd, app, question)
		},
	}
}

func (c *cli) fullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "Run setup, process and test in sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.full(cmd.Context(), cmd)
		},
	}
}

func (c *cli) countryCommand() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "country <file>...",
		Short: "Index plain text or markdown country guides",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := c.app()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := app.Country.Ingest(cmd.Context(), args, country)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range res.Files {
				fmt.Fprintf(out, "%s (%s): %d chunks\n", f.File, f.Country, f.Chunks)
			}
			fmt.Fprintf(out, "Indexed %d points into %s in %s\n", res.Index.Points, res.Index.Collection, res.Index.Duration)
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "Country name for all files (defaults to each file name)")
	return cmd
}

// statsReport stats --json 的输出，附带失败文件与诊断信息
type statsReport struct {
	ingest.Stats
	Failures   []ingest.FileFailure `json:"failures"`
	Diagnostic string               `json:"diagnostic,omitempty"`
}

func (c *cli) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [dir]",
		Short: "Chunk school JSON files and print statistics without indexing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := injector.NewIngestor(c.config, c.logger).Ingest(cmd.Context(), c.dir(args))
			if err != nil {
				return err
			}
			stats := ingest.Analyze(res.Chunks)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(statsReport{
					Stats:      stats,
					Failures:   res.Failures,
					Diagnostic: res.Diagnostic,
				})
			}

			if res.Diagnostic != "" {
				fmt.Fprintln(out, res.Diagnostic)
			}
			printStats(cmd, stats)
			for _, f := range res.Failures {
				fmt.Fprintf(out, "failed: %s: %s\n", f.File, f.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}

func (c *cli) full(ctx context.Context, cmd *cobra.Command) error {
	report, err := c.validate(ctx, cmd)
	if err != nil {
		return err
	}
	if !report.OverallStatus {
		return errEnvironmentNotReady
	}

	app, cleanup, err := c.app()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := c.process(ctx, cmd, app, c.config.Data.SchoolsDirectory, false); err != nil {
		return err
	}
	return c.ask(ctx, cmd, app, DefaultTestQuestion)
}

func (c *cli) process(ctx context.Context, cmd *cobra.Command, app *injector.App, dir string, keep bool) error {
	out := cmd.OutOrStdout()

	res, err := app.Process.Process(ctx, dir, keep)
	if res != nil && res.Ingest != nil {
		for _, f := range res.Ingest.Failures {
			fmt.Fprintf(out, "failed: %s: %s\n", f.File, f.Error)
		}
	}
	if err != nil {
		return err
	}

	printStats(cmd, res.Stats)
	fmt.Fprintf(out, "Indexed %d points into %s in %s\n", res.Index.Points, res.Index.Collection, res.Index.Duration)

	info, err := app.Data.Store.CollectionInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Collection %s: points=%d segments=%d status=%s\n",
		info.Name, info.PointsCount, info.SegmentsCount, info.Status)
	return nil
}

func (c *cli) ask(ctx context.Context, cmd *cobra.Command, app *injector.App, question string) error {
	out := cmd.OutOrStdout()

	answer, err := app.Query.Answer(ctx, &types.QueryRequest{Question: question})
	if err != nil {
		return err
	}
	if answer.Error != "" {
		return errors.New(answer.Error)
	}

	fmt.Fprintf(out, "Question: %s\n\n%s\n", question, answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, s := range answer.Sources {
			fmt.Fprintf(out, "  - %s / %s / %s (%.3f)\n", s.University, s.Section, s.Field, s.Score)
		}
	}
	return nil
}

func (c *cli) dir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return c.config.Data.SchoolsDirectory
}

func printStats(cmd *cobra.Command, s ingest.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Chunks: %d\n", s.TotalChunks)
	fmt.Fprintf(out, "Universities: %d\n", s.UniversityCount)
	fmt.Fprintf(out, "Sections: %d\n", s.SectionCount)
	fmt.Fprintf(out, "Fields: %d\n", s.FieldCount)
	fmt.Fprintf(out, "Content length: min=%d avg=%.1f max=%d\n", s.MinContentLength, s.AvgContentLength, s.MaxContentLength)
	if s.TotalTokens > 0 {
		fmt.Fprintf(out, "Tokens: %d\n", s.TotalTokens)
	}
}
