package rules

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modrules-dev/modrules/internal/platform"
)

// Target is the build target identity for one resolution call.
// Architecture is context only: it is checked against the platform but never
// prunes native bindings. EngineRoot is needed only by platforms that
// register a plugin manifest property.
type Target struct {
	Platform     platform.Platform `json:"platform" yaml:"platform"`
	Architecture platform.Arch     `json:"architecture,omitempty" yaml:"architecture,omitempty"`
	EngineRoot   string            `json:"engine_root,omitempty" yaml:"engine_root,omitempty"`
}

// NativeLibraryBinding is one prebuilt library to link for one architecture.
type NativeLibraryBinding struct {
	Arch platform.Arch `json:"arch" yaml:"arch"`
	Path string        `json:"path" yaml:"path"`
}

// BuildPropertyEntry is a side-channel key/value pair for packaging tools.
type BuildPropertyEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// ResolvedConfig is what the build orchestrator merges into the module's
// build configuration.
type ResolvedConfig struct {
	Module              string                 `json:"module" yaml:"module"`
	Platform            platform.Platform      `json:"platform" yaml:"platform"`
	PublicIncludePaths  []string               `json:"public_include_paths" yaml:"public_include_paths"`
	PrivateIncludePaths []string               `json:"private_include_paths" yaml:"private_include_paths"`
	PublicDependencies  []string               `json:"public_dependencies" yaml:"public_dependencies"`
	PrivateDependencies []string               `json:"private_dependencies" yaml:"private_dependencies"`
	DynamicallyLoaded   []string               `json:"dynamically_loaded" yaml:"dynamically_loaded"`
	NativeLibraries     []NativeLibraryBinding `json:"native_libraries" yaml:"native_libraries"`
	Properties          []BuildPropertyEntry   `json:"properties" yaml:"properties"`
}

// Property returns the value registered under key.
func (c *ResolvedConfig) Property(key string) (string, bool) {
	for _, p := range c.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (c *ResolvedConfig) addProperty(key, value string) error {
	if _, exists := c.Property(key); exists {
		return configErr(KindProperty, "", "property %q registered twice", key)
	}
	c.Properties = append(c.Properties, BuildPropertyEntry{Key: key, Value: value})
	return nil
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStat replaces os.Stat for the module root check.
func WithStat(stat func(string) (fs.FileInfo, error)) Option {
	return func(r *Resolver) {
		if stat != nil {
			r.stat = stat
		}
	}
}

// Resolver turns a module descriptor into per-target build configuration.
// It holds only read-only state and is safe for concurrent use.
type Resolver struct {
	desc   ModuleDescriptor
	sdks   map[platform.Platform]NativeSDK
	logger *slog.Logger
	stat   func(string) (fs.FileInfo, error)
}

// New validates desc and returns a Resolver that owns a private copy of it.
func New(desc ModuleDescriptor, opts ...Option) (*Resolver, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		desc:   desc.clone(),
		sdks:   make(map[platform.Platform]NativeSDK),
		logger: slog.New(slog.DiscardHandler),
		stat:   os.Stat,
	}
	for _, sdk := range r.desc.NativeSDKs {
		r.sdks[sdk.Platform] = sdk.withDefaults()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Descriptor returns a copy of the resolver's descriptor.
func (r *Resolver) Descriptor() ModuleDescriptor {
	return r.desc.clone()
}

// NativePlatforms returns the platforms that carry a native SDK, in
// platform declaration order.
func (r *Resolver) NativePlatforms() []platform.Platform {
	var out []platform.Platform
	for _, p := range platform.All() {
		if _, ok := r.sdks[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Resolve produces the build configuration of the module rooted at
// moduleRoot for target. Only moduleRoot is checked on disk; SDK and library
// paths are declared, never stat'ed.
func (r *Resolver) Resolve(moduleRoot string, target Target) (*ResolvedConfig, error) {
	if err := r.checkModuleRoot(moduleRoot); err != nil {
		return nil, err
	}
	moduleRoot = filepath.Clean(moduleRoot)

	pr, err := r.rulesFor(target.Platform)
	if err != nil {
		return nil, err
	}
	if target.Architecture != "" && !target.Platform.Supports(target.Architecture) {
		return nil, configErr(KindArchitecture, "", "architecture %q is not supported on %s", target.Architecture, target.Platform)
	}

	cfg := r.base(target.Platform)
	if err := pr.apply(cfg, moduleRoot, target); err != nil {
		return nil, err
	}

	r.logger.Debug("resolved module",
		"module", cfg.Module,
		"platform", target.Platform.String(),
		"native_libraries", len(cfg.NativeLibraries),
		"properties", len(cfg.Properties),
	)
	return cfg, nil
}

func (r *Resolver) checkModuleRoot(moduleRoot string) error {
	if moduleRoot == "" {
		return configErr(KindModuleRoot, "", "module root is empty")
	}
	info, err := r.stat(moduleRoot)
	if err != nil {
		return &ConfigurationError{Kind: KindModuleRoot, Path: moduleRoot, Err: err}
	}
	if !info.IsDir() {
		return configErr(KindModuleRoot, moduleRoot, "not a directory")
	}
	return nil
}

// base is the platform-independent part of every resolution.
func (r *Resolver) base(p platform.Platform) *ResolvedConfig {
	return &ResolvedConfig{
		Module:              r.desc.Name,
		Platform:            p,
		PublicIncludePaths:  cloneList(r.desc.PublicIncludePaths),
		PrivateIncludePaths: cloneList(r.desc.PrivateIncludePaths),
		PublicDependencies:  cloneList(r.desc.PublicDependencies),
		PrivateDependencies: cloneList(r.desc.PrivateDependencies),
		DynamicallyLoaded:   cloneList(r.desc.DynamicallyLoaded),
		NativeLibraries:     []NativeLibraryBinding{},
		Properties:          []BuildPropertyEntry{},
	}
}

// platformRules is closed over plainRules and nativeSDKRules.
type platformRules interface {
	apply(cfg *ResolvedConfig, moduleRoot string, target Target) error
	sealed()
}

// rulesFor lists every platform explicitly; a new platform constant fails
// here until it is given a case.
func (r *Resolver) rulesFor(p platform.Platform) (platformRules, error) {
	switch p {
	case platform.Win64, platform.Mac, platform.Linux, platform.LinuxArm64,
		platform.IOS, platform.TVOS, platform.Android:
		if sdk, ok := r.sdks[p]; ok {
			return nativeSDKRules{sdk: sdk, logger: r.logger}, nil
		}
		return plainRules{}, nil
	default:
		return nil, configErr(KindPlatform, "", "unsupported platform %v", p)
	}
}

type plainRules struct{}

func (plainRules) apply(*ResolvedConfig, string, Target) error { return nil }

func (plainRules) sealed() {}

type nativeSDKRules struct {
	sdk    NativeSDK
	logger *slog.Logger
}

func (nativeSDKRules) sealed() {}

func (n nativeSDKRules) apply(cfg *ResolvedConfig, moduleRoot string, target Target) error {
	sdkRoot := filepath.Join(moduleRoot, n.sdk.ThirdPartyRoot, n.sdk.Name)
	includeRoot := filepath.Join(sdkRoot, n.sdk.IncludeDir)
	libRoot := filepath.Join(sdkRoot, n.sdk.LibDir)

	// Every supported architecture is declared; the packager drops the
	// slices it does not need.
	for _, arch := range target.Platform.Architectures() {
		file, ok := n.sdk.Libraries[arch]
		if !ok {
			return configErr(KindArchitecture, libRoot, "%s has no library for %s", n.sdk.Name, arch)
		}
		cfg.NativeLibraries = append(cfg.NativeLibraries, NativeLibraryBinding{
			Arch: arch,
			Path: filepath.Join(libRoot, string(arch), file),
		})
	}

	cfg.PrivateIncludePaths = append(cfg.PrivateIncludePaths, includeRoot)

	rel, err := relativePath(target.EngineRoot, moduleRoot)
	if err != nil {
		return err
	}
	if err := cfg.addProperty(n.sdk.PropertyKey, filepath.Join(rel, n.sdk.ManifestFile)); err != nil {
		return err
	}

	n.logger.Debug("native sdk bound",
		"sdk", n.sdk.Name,
		"sdk_root", sdkRoot,
		"architectures", len(cfg.NativeLibraries),
	)
	return nil
}

// relativePath expresses target relative to base. Both must be absolute, or
// both relative, and on the same volume.
func relativePath(base, target string) (string, error) {
	if base == "" {
		return "", configErr(KindRelativePath, target, "engine root is empty")
	}
	if filepath.IsAbs(base) != filepath.IsAbs(target) {
		return "", configErr(KindRelativePath, target, "cannot relate to engine root %s: one path is absolute and the other is not", base)
	}
	if !strings.EqualFold(filepath.VolumeName(base), filepath.VolumeName(target)) {
		return "", configErr(KindRelativePath, target, "engine root %s is on a different volume", base)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", &ConfigurationError{Kind: KindRelativePath, Path: target, Err: err}
	}
	return rel, nil
}
