package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/modrules-dev/modrules/internal/platform"
	"github.com/modrules-dev/modrules/internal/rules"
	"go.yaml.in/yaml/v3"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	noneStyle    = lipgloss.NewStyle().Faint(true)
)

// writeStructured emits v as JSON or YAML. It reports false for any other
// format so the caller can fall back to text.
func writeStructured(w io.Writer, v any, format string) (bool, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return true, err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("marshaling YAML: %w", err)
		}
		return true, enc.Close()
	}
	return false, nil
}

func renderResolved(w io.Writer, cfg *rules.ResolvedConfig, format string) error {
	if ok, err := writeStructured(w, cfg, format); ok {
		return err
	}
	if format != "" && format != "text" {
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.Module+" · "+cfg.Platform.String()) + "\n")

	writeList(&b, "Public include paths", cfg.PublicIncludePaths)
	writeList(&b, "Private include paths", cfg.PrivateIncludePaths)
	writeList(&b, "Public dependencies", cfg.PublicDependencies)
	writeList(&b, "Private dependencies", cfg.PrivateDependencies)
	writeList(&b, "Dynamically loaded", cfg.DynamicallyLoaded)

	libs := make([]string, len(cfg.NativeLibraries))
	for i, l := range cfg.NativeLibraries {
		libs[i] = fmt.Sprintf("%s %s", keyStyle.Render(fmt.Sprintf("%-12s", l.Arch)), l.Path)
	}
	writeList(&b, "Native libraries", libs)

	props := make([]string, len(cfg.Properties))
	for i, p := range cfg.Properties {
		props[i] = fmt.Sprintf("%s = %s", keyStyle.Render(p.Key), p.Value)
	}
	writeList(&b, "Properties", props)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString("\n" + headingStyle.Render(heading) + "\n")
	if len(items) == 0 {
		b.WriteString("  " + noneStyle.Render("(none)") + "\n")
		return
	}
	for _, item := range items {
		b.WriteString("  " + item + "\n")
	}
}

// platformRow is the structured form of one `platforms` entry.
type platformRow struct {
	Platform      platform.Platform `json:"platform" yaml:"platform"`
	Architectures []platform.Arch   `json:"architectures" yaml:"architectures"`
	NativeSDK     bool              `json:"native_sdk" yaml:"native_sdk"`
}

func renderPlatforms(w io.Writer, rows []platformRow, format string) error {
	if ok, err := writeStructured(w, rows, format); ok {
		return err
	}
	if format != "" && format != "text" {
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}

	var b strings.Builder
	for _, r := range rows {
		archs := make([]string, len(r.Architectures))
		for i, a := range r.Architectures {
			archs[i] = string(a)
		}
		marker := ""
		if r.NativeSDK {
			marker = "  " + titleStyle.Render("native sdk")
		}
		fmt.Fprintf(&b, "%s %s%s\n", headingStyle.Render(fmt.Sprintf("%-11s", r.Platform)), strings.Join(archs, ", "), marker)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinNames() string {
	return strings.Join(platform.Names(), ", ")
}
