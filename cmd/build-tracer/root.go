// Package main provides the build-tracer CLI application.
package main

import (
	"github.com/spf13/cobra"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "build-tracer",
	Short: "Turn finished CI builds into distributed traces",
	Long: `build-tracer reconstructs the stage timeline of finished CI builds and
exports it as an OpenTelemetry trace to the collector configured on the
build's tracing feature.`,
	Version:      version.FullString(),
	SilenceUsage: true,
}

// rootFlags holds the persistent flags
type rootFlags struct {
	config   string
	logLevel string
}

var rootOpts rootFlags

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", "", "config file (default is ./build-tracer.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", "", "override the configured log level")
}
