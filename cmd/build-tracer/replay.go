// Package main provides the build-tracer CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/config"
	tracererrors "github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/feature"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/timeline"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Trace notifications read from a file",
	Long: `Read one build-finished notification, or a list of them, from a YAML or
JSON file and export each eligible build as a trace. Tracers are flushed
before the command returns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		builds, err := readBuildsFile(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return replay(cmd.Context(), cmd.OutOrStdout(), cfg, builds)
	},
}

// timelineCmd represents the timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline <file>",
	Short: "Print the stage timeline of notifications without exporting",
	Long: `Compute the stage intervals of every build in a YAML or JSON notification
file from its inline statistics and print them. Nothing is exported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		builds, err := readBuildsFile(args[0])
		if err != nil {
			return err
		}
		return printTimelines(cmd.OutOrStdout(), builds, time.Now())
	},
}

// replayFlags holds the flags for the replay command
type replayFlags struct {
	force bool
}

var replayOpts replayFlags

func init() {
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(timelineCmd)

	replayCmd.Flags().BoolVarP(&replayOpts.force, "force", "f", false, "trace builds that are not eligible for tracing")
}

func replay(ctx context.Context, out io.Writer, cfg *config.Config, builds []*build.Build) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	l := a.listener()

	var errs []error
	for _, b := range builds {
		if !replayOpts.force && !feature.IsEligible(b) {
			fmt.Fprintf(out, "build %d: skipped, not eligible\n", b.BuildID)
			continue
		}
		n, err := l.Trace(ctx, b)
		if err != nil {
			fmt.Fprintf(out, "build %d: failed: %v\n", b.BuildID, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "build %d: %d spans -> %s\n", b.BuildID, n, endpointOf(b, a.cfg.Tracing.DefaultEndpoint))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	errs = append(errs, a.close(shutdownCtx))
	return errors.Join(errs...)
}

func endpointOf(b *build.Build, fallback string) string {
	if ep := feature.ReporterURL(b); ep != "" {
		return ep
	}
	return fallback
}

// printTimelines writes the intervals of each build as a table.
func printTimelines(out io.Writer, builds []*build.Build, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, b := range builds {
		if i > 0 {
			fmt.Fprintln(w)
		}
		snap, err := b.Snapshot(b.Statistics, b.Finish(now))
		if err != nil {
			return err
		}
		intervals, err := timeline.Build(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "build %d (%s)\n", b.BuildID, b.ExternalID())
		fmt.Fprintln(w, "STAGE\tSTART\tFINISH\tDURATION")
		for _, iv := range intervals {
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\n", iv.Name, iv.Start, iv.Finish, iv.Duration())
		}
	}
	return w.Flush()
}

// readBuildsFile reads the notifications of a replay file.
func readBuildsFile(path string) ([]*build.Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tracererrors.ValidationError(fmt.Sprintf("failed to read %s", path), err)
	}
	return parseBuilds(data)
}

// parseBuilds decodes a single notification or a list of them. JSON input
// is accepted as YAML.
func parseBuilds(data []byte) ([]*build.Build, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, tracererrors.ValidationError("failed to parse notifications", err)
	}
	if len(doc.Content) == 0 {
		return nil, tracererrors.ValidationError("no notifications found", nil)
	}

	var builds []*build.Build
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		if err := root.Decode(&builds); err != nil {
			return nil, tracererrors.ValidationError("failed to decode notifications", err)
		}
	} else {
		var b build.Build
		if err := root.Decode(&b); err != nil {
			return nil, tracererrors.ValidationError("failed to decode notification", err)
		}
		builds = append(builds, &b)
	}

	for i, b := range builds {
		if b == nil {
			return nil, tracererrors.ValidationError(fmt.Sprintf("notification %d is empty", i), nil)
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	return builds, nil
}
