package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/modrules-dev/modrules/internal/platform"
	"github.com/modrules-dev/modrules/internal/rules"
	"go.yaml.in/yaml/v3"
)

// Format is the syntax of a descriptor file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// DetectFormat picks the decoder from the file extension. JSON is parsed by
// the YAML decoder.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported descriptor extension %q in %s", filepath.Ext(path), path)
	}
}

// ParseFile reads and decodes a descriptor file.
func ParseFile(path string) (*DescriptorFile, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path, format)
}

// Parse decodes descriptor data. path is used for diagnostics only.
func Parse(data []byte, path string, format Format) (*DescriptorFile, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data, path)
	case FormatHCL:
		return parseHCL(data, path)
	default:
		return nil, fmt.Errorf("unknown descriptor format %q", format)
	}
}

func parseYAML(data []byte, path string) (*DescriptorFile, error) {
	var f DescriptorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", path, err)
	}
	return &f, nil
}

func parseHCL(data []byte, path string) (*DescriptorFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing descriptor %s: %w", path, diags)
	}

	var f DescriptorFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("decoding descriptor %s: %w", path, diags)
	}
	return &f, nil
}

// ToDescriptor converts the file into a validated rules.ModuleDescriptor.
func (f *DescriptorFile) ToDescriptor() (rules.ModuleDescriptor, error) {
	desc := rules.ModuleDescriptor{
		Name:                f.Name,
		PublicIncludePaths:  orEmpty(f.PublicIncludePaths),
		PrivateIncludePaths: orEmpty(f.PrivateIncludePaths),
		PublicDependencies:  orEmpty(f.PublicDependencies),
		PrivateDependencies: orEmpty(f.PrivateDependencies),
		DynamicallyLoaded:   orEmpty(f.DynamicallyLoaded),
	}

	for i, s := range f.NativeSDKs {
		p, err := platform.Parse(s.Platform)
		if err != nil {
			return rules.ModuleDescriptor{}, fmt.Errorf("native_sdks[%d]: %w", i, err)
		}

		libs := make(map[platform.Arch]string)
		if s.Library != "" {
			libs = rules.LibraryFor(p, s.Library)
		}
		for arch, file := range s.Libraries {
			libs[platform.Arch(arch)] = file
		}

		desc.NativeSDKs = append(desc.NativeSDKs, rules.NativeSDK{
			Platform:       p,
			Name:           s.Name,
			ThirdPartyRoot: s.ThirdPartyRoot,
			IncludeDir:     s.IncludeDir,
			LibDir:         s.LibDir,
			Libraries:      libs,
			ManifestFile:   s.ManifestFile,
			PropertyKey:    s.PropertyKey,
		})
	}

	if err := desc.Validate(); err != nil {
		return rules.ModuleDescriptor{}, err
	}
	return desc, nil
}

// FromDescriptor renders a module descriptor in file form, e.g. to print the
// built-in default as a starting point.
func FromDescriptor(desc rules.ModuleDescriptor) *DescriptorFile {
	f := &DescriptorFile{
		Name:                desc.Name,
		PublicIncludePaths:  desc.PublicIncludePaths,
		PrivateIncludePaths: desc.PrivateIncludePaths,
		PublicDependencies:  desc.PublicDependencies,
		PrivateDependencies: desc.PrivateDependencies,
		DynamicallyLoaded:   desc.DynamicallyLoaded,
	}
	for _, s := range desc.NativeSDKs {
		sf := SDKFile{
			Platform:       s.Platform.String(),
			Name:           s.Name,
			ThirdPartyRoot: s.ThirdPartyRoot,
			IncludeDir:     s.IncludeDir,
			LibDir:         s.LibDir,
			ManifestFile:   s.ManifestFile,
			PropertyKey:    s.PropertyKey,
		}
		if common, ok := commonLibrary(s.Platform, s.Libraries); ok {
			sf.Library = common
		} else {
			sf.Libraries = make(map[string]string, len(s.Libraries))
			for arch, file := range s.Libraries {
				sf.Libraries[string(arch)] = file
			}
		}
		f.NativeSDKs = append(f.NativeSDKs, sf)
	}
	return f
}

// commonLibrary reports the file name shared by every architecture of p.
func commonLibrary(p platform.Platform, libs map[platform.Arch]string) (string, bool) {
	archs := p.Architectures()
	if len(libs) != len(archs) || len(archs) == 0 {
		return "", false
	}
	first := libs[archs[0]]
	for _, a := range archs {
		if file, ok := libs[a]; !ok || file != first {
			return "", false
		}
	}
	return first, true
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
