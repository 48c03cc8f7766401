package cli

import (
	"fmt"
	"path/filepath"

	"github.com/modrules-dev/modrules/internal/config"
	"github.com/modrules-dev/modrules/internal/manifest"
	"github.com/modrules-dev/modrules/internal/platform"
	"github.com/modrules-dev/modrules/internal/rules"
	"github.com/spf13/cobra"
)

type resolveOptions struct {
	moduleRoot string
	engineRoot string
	platform   string
	arch       string
	descriptor string
	format     string
}

func newResolveCmd(a *app) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a module's build configuration for a target platform",
		Long: `Resolve the include paths, module dependencies, native libraries and build
properties of a plugin module for one target platform.

The module descriptor is the built-in GooglePAD module unless --descriptor
names a YAML or HCL file. The platform defaults to the configured platform,
then to the host.`,
		Example: `  modrules resolve --module-root Plugins/Runtime/GooglePAD/Source/GooglePAD --platform Android --engine-root .
  modrules resolve --module-root . --descriptor GooglePAD.modrules.hcl --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.moduleRoot, "module-root", "", "Module directory (required)")
	cmd.Flags().StringVar(&opts.engineRoot, "engine-root", "", "Engine root the manifest property is relative to")
	cmd.Flags().StringVarP(&opts.platform, "platform", "p", "", "Target platform ("+joinNames()+")")
	cmd.Flags().StringVar(&opts.arch, "arch", "", "Target architecture (context only, never prunes libraries)")
	cmd.Flags().StringVarP(&opts.descriptor, "descriptor", "d", "", "Module descriptor file (.yaml, .yml, .json, .hcl)")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "", "Output format (text, json, yaml)")
	_ = cmd.MarkFlagRequired("module-root")
	return cmd
}

func runResolve(cmd *cobra.Command, a *app, opts *resolveOptions) error {
	desc, err := manifest.Load(opts.descriptor, a.build.version)
	if err != nil {
		return err
	}

	resolver, err := rules.New(desc, rules.WithLogger(a.logger))
	if err != nil {
		return err
	}

	target, err := targetFromOptions(opts)
	if err != nil {
		return err
	}

	moduleRoot, err := filepath.Abs(opts.moduleRoot)
	if err != nil {
		return fmt.Errorf("resolving module root %s: %w", opts.moduleRoot, err)
	}

	a.logger.Info("resolving module",
		"module", desc.Name,
		"module_root", moduleRoot,
		"platform", target.Platform.String(),
		"engine_root", target.EngineRoot,
	)

	cfg, err := resolver.Resolve(moduleRoot, target)
	if err != nil {
		return err
	}

	return renderResolved(cmd.OutOrStdout(), cfg, outputFormat(opts.format))
}

// targetFromOptions applies flag > config > host precedence for the platform
// and flag > config for the engine root.
func targetFromOptions(opts *resolveOptions) (rules.Target, error) {
	var target rules.Target

	name := opts.platform
	if name == "" {
		name = config.Get(config.KeyPlatform)
	}
	if name == "" {
		p, _, err := platform.Host()
		if err != nil {
			return target, fmt.Errorf("no --platform given and %w", err)
		}
		target.Platform = p
	} else {
		p, err := platform.Parse(name)
		if err != nil {
			return target, err
		}
		target.Platform = p
	}

	target.Architecture = platform.Arch(opts.arch)

	engineRoot := opts.engineRoot
	if engineRoot == "" {
		engineRoot = config.Get(config.KeyEngineRoot)
	}
	if engineRoot != "" {
		abs, err := filepath.Abs(engineRoot)
		if err != nil {
			return target, fmt.Errorf("resolving engine root %s: %w", engineRoot, err)
		}
		target.EngineRoot = abs
	}
	return target, nil
}

func outputFormat(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Get(config.KeyFormat)
}
