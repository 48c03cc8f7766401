package cli

import (
	"fmt"

	"github.com/modrules-dev/modrules/internal/manifest"
	"github.com/spf13/cobra"
)

func newDescriptorCmd(a *app) *cobra.Command {
	var descriptor, format string

	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Print the effective module descriptor",
		Long: `Print the module descriptor in file form. Without --descriptor this is the
built-in GooglePAD module, a starting point for writing your own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := manifest.Load(descriptor, a.build.version)
			if err != nil {
				return err
			}
			if format == "" {
				format = "yaml"
			}
			ok, err := writeStructured(cmd.OutOrStdout(), manifest.FromDescriptor(desc), format)
			if !ok {
				return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&descriptor, "descriptor", "d", "", "Module descriptor file (.yaml, .yml, .json, .hcl)")
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "Output format (json, yaml)")
	return cmd
}
