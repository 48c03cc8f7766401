package rules

import (
	"fmt"
	"maps"
	"slices"

	"github.com/modrules-dev/modrules/internal/platform"
)

// Default sub-directory layout of a native SDK, relative to the module root.
// DefaultThirdPartyRoot follows the engine plugin layout, where ThirdParty sits
// next to the module directory under Source/.
const (
	DefaultThirdPartyRoot = "../ThirdParty"
	DefaultIncludeDir     = "include"
	DefaultLibDir         = "libs"
)

// ModuleDescriptor is the declarative record of one plugin module: its
// include paths, upstream modules and any platform native SDKs.
type ModuleDescriptor struct {
	Name                string      `json:"name" yaml:"name"`
	PublicIncludePaths  []string    `json:"public_include_paths" yaml:"public_include_paths"`
	PrivateIncludePaths []string    `json:"private_include_paths" yaml:"private_include_paths"`
	PublicDependencies  []string    `json:"public_dependencies" yaml:"public_dependencies"`
	PrivateDependencies []string    `json:"private_dependencies" yaml:"private_dependencies"`
	DynamicallyLoaded   []string    `json:"dynamically_loaded" yaml:"dynamically_loaded"`
	NativeSDKs          []NativeSDK `json:"native_sdks,omitempty" yaml:"native_sdks,omitempty"`
}

// NativeSDK describes a prebuilt third-party SDK linked on one platform.
// Libraries is keyed by architecture and holds the shared library file name
// found under <LibDir>/<arch>/.
type NativeSDK struct {
	Platform       platform.Platform        `json:"platform" yaml:"platform"`
	Name           string                   `json:"name" yaml:"name"`
	ThirdPartyRoot string                   `json:"third_party_root,omitempty" yaml:"third_party_root,omitempty"`
	IncludeDir     string                   `json:"include_dir,omitempty" yaml:"include_dir,omitempty"`
	LibDir         string                   `json:"lib_dir,omitempty" yaml:"lib_dir,omitempty"`
	Libraries      map[platform.Arch]string `json:"libraries" yaml:"libraries"`
	ManifestFile   string                   `json:"manifest_file" yaml:"manifest_file"`
	PropertyKey    string                   `json:"property_key" yaml:"property_key"`
}

// LibraryFor builds an arch-keyed table that uses the same file name for every
// architecture of p.
func LibraryFor(p platform.Platform, fileName string) map[platform.Arch]string {
	libs := make(map[platform.Arch]string)
	for _, a := range p.Architectures() {
		libs[a] = fileName
	}
	return libs
}

// DefaultDescriptor returns the GooglePAD plugin module: Play Asset Delivery
// backed by the play-core native SDK on Android.
func DefaultDescriptor() ModuleDescriptor {
	return ModuleDescriptor{
		Name:                "GooglePAD",
		PublicIncludePaths:  []string{"Runtime/Launch/Public"},
		PrivateIncludePaths: []string{"GooglePAD/Private"},
		PublicDependencies:  []string{"Core"},
		PrivateDependencies: []string{"CoreUObject", "Engine", "Slate", "SlateCore"},
		DynamicallyLoaded:   []string{},
		NativeSDKs: []NativeSDK{{
			Platform:     platform.Android,
			Name:         "play-core-native-sdk",
			Libraries:    LibraryFor(platform.Android, "libplaycore.so"),
			ManifestFile: "GooglePAD_APL.xml",
			PropertyKey:  "AndroidPlugin",
		}},
	}
}

// Validate checks the descriptor's invariants. It does not touch the
// filesystem.
func (d ModuleDescriptor) Validate() error {
	if d.Name == "" {
		return configErr(KindDescriptor, "", "module name is required")
	}

	lists := []struct {
		field string
		names []string
	}{
		{"public_dependencies", d.PublicDependencies},
		{"private_dependencies", d.PrivateDependencies},
		{"dynamically_loaded", d.DynamicallyLoaded},
	}
	for _, l := range lists {
		if dup, ok := firstDuplicate(l.names); ok {
			return configErr(KindDescriptor, "", "%s: duplicate module %q", l.field, dup)
		}
		if slices.Contains(l.names, "") {
			return configErr(KindDescriptor, "", "%s: empty module name", l.field)
		}
	}

	seen := make(map[platform.Platform]bool)
	for i, sdk := range d.NativeSDKs {
		if err := sdk.validate(); err != nil {
			return configErr(KindDescriptor, "", "native_sdks[%d]: %v", i, err)
		}
		if seen[sdk.Platform] {
			return configErr(KindDescriptor, "", "native_sdks[%d]: second SDK for platform %s", i, sdk.Platform)
		}
		seen[sdk.Platform] = true
	}
	return nil
}

func (s NativeSDK) validate() error {
	if !s.Platform.Valid() {
		return fmt.Errorf("invalid platform %v", s.Platform)
	}
	if s.Name == "" {
		return fmt.Errorf("sdk name is required")
	}
	if s.ManifestFile == "" {
		return fmt.Errorf("manifest_file is required")
	}
	if s.PropertyKey == "" {
		return fmt.Errorf("property_key is required")
	}
	for arch, file := range s.Libraries {
		if !s.Platform.Supports(arch) {
			return fmt.Errorf("architecture %q is not supported on %s", arch, s.Platform)
		}
		if file == "" {
			return fmt.Errorf("empty library file for %s", arch)
		}
	}
	for _, arch := range s.Platform.Architectures() {
		if _, ok := s.Libraries[arch]; !ok {
			return fmt.Errorf("no library for %s", arch)
		}
	}
	return nil
}

// withDefaults fills omitted layout directories.
func (s NativeSDK) withDefaults() NativeSDK {
	if s.ThirdPartyRoot == "" {
		s.ThirdPartyRoot = DefaultThirdPartyRoot
	}
	if s.IncludeDir == "" {
		s.IncludeDir = DefaultIncludeDir
	}
	if s.LibDir == "" {
		s.LibDir = DefaultLibDir
	}
	return s
}

// clone returns a deep copy so the resolver never aliases caller memory.
func (d ModuleDescriptor) clone() ModuleDescriptor {
	out := ModuleDescriptor{
		Name:                d.Name,
		PublicIncludePaths:  cloneList(d.PublicIncludePaths),
		PrivateIncludePaths: cloneList(d.PrivateIncludePaths),
		PublicDependencies:  cloneList(d.PublicDependencies),
		PrivateDependencies: cloneList(d.PrivateDependencies),
		DynamicallyLoaded:   cloneList(d.DynamicallyLoaded),
	}
	for _, sdk := range d.NativeSDKs {
		sdk.Libraries = maps.Clone(sdk.Libraries)
		out.NativeSDKs = append(out.NativeSDKs, sdk)
	}
	return out
}

// cloneList copies s, mapping nil to an empty slice so resolved output
// always serializes lists as [].
func cloneList(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n, true
		}
		seen[n] = true
	}
	return "", false
}
