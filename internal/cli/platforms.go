package cli

import (
	"github.com/modrules-dev/modrules/internal/manifest"
	"github.com/modrules-dev/modrules/internal/platform"
	"github.com/modrules-dev/modrules/internal/rules"
	"github.com/spf13/cobra"
)

func newPlatformsCmd(a *app) *cobra.Command {
	var descriptor, format string

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List target platforms and their architectures",
		Long: `List every supported target platform with its fixed architecture set.
Platforms for which the module descriptor declares a native SDK are marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := manifest.Load(descriptor, a.build.version)
			if err != nil {
				return err
			}
			resolver, err := rules.New(desc, rules.WithLogger(a.logger))
			if err != nil {
				return err
			}

			native := make(map[platform.Platform]bool)
			for _, p := range resolver.NativePlatforms() {
				native[p] = true
			}

			var rows []platformRow
			for _, p := range platform.All() {
				rows = append(rows, platformRow{
					Platform:      p,
					Architectures: p.Architectures(),
					NativeSDK:     native[p],
				})
			}
			return renderPlatforms(cmd.OutOrStdout(), rows, outputFormat(format))
		},
	}
	cmd.Flags().StringVarP(&descriptor, "descriptor", "d", "", "Module descriptor file (.yaml, .yml, .json, .hcl)")
	cmd.Flags().StringVarP(&format, "format", "o", "", "Output format (text, json, yaml)")
	return cmd
}
