package cli

import (
	"fmt"

	"github.com/modrules-dev/modrules/internal/manifest"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <descriptor>...",
		Short: "Validate module descriptor files",
		Long: `Validate YAML or HCL module descriptors against the descriptor schema,
the module invariants (no duplicate modules, one library per architecture)
and their requires constraint.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				result, err := manifest.Check(path, a.build.version)
				if err != nil {
					return fmt.Errorf("validating %s: %w", path, err)
				}
				if result.Valid {
					fmt.Fprintf(out, "ok      %s\n", path)
					continue
				}

				invalid++
				fmt.Fprintf(out, "invalid %s\n", path)
				for _, issue := range result.Issues {
					loc := issue.Path
					if loc == "" {
						loc = "/"
					}
					fmt.Fprintf(out, "  %s: %s (%s)\n", loc, issue.Message, issue.Keyword)
				}
				a.logger.Debug("descriptor invalid", "path", path, "issues", len(result.Issues))
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d descriptors invalid", invalid, len(args))
			}
			return nil
		},
	}
}
