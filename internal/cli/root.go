package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/modrules-dev/modrules/internal/branding"
	"github.com/modrules-dev/modrules/internal/config"
	"github.com/spf13/cobra"
)

type buildInfo struct {
	version string
	commit  string
	date    string
}

// app carries state shared by every command of one invocation.
type app struct {
	build  buildInfo
	logger *slog.Logger
}

func newRootCmd(build buildInfo) *cobra.Command {
	a := &app{build: build, logger: slog.New(slog.DiscardHandler)}

	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` resolves a plugin module's build inputs for a target platform:
include paths, upstream modules and, where the platform has a native SDK,
the per-architecture prebuilt libraries and the plugin manifest property.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Load()
			if !cmd.Flags().Changed("log-level") {
				logLevel = config.Get(config.KeyLogLevel)
			}
			if !cmd.Flags().Changed("log-format") {
				logFormat = config.Get(config.KeyLogFormat)
			}
			a.logger = newLogger(logLevel, logFormat, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(
		newResolveCmd(a),
		newValidateCmd(a),
		newPlatformsCmd(a),
		newDescriptorCmd(a),
		newConfigCmd(),
		newVersionCmd(a),
	)
	return rootCmd
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(buildInfo{version: version, commit: commit, date: date})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
