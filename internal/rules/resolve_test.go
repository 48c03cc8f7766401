package rules

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/modrules-dev/modrules/internal/platform"
)

const (
	padModuleRoot = "/engine/Plugins/Runtime/GooglePAD/Source/GooglePAD"
	padEngineRoot = "/engine"
)

type dirInfo struct{ name string }

func (d dirInfo) Name() string       { return d.name }
func (d dirInfo) Size() int64        { return 0 }
func (d dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (d dirInfo) ModTime() time.Time { return time.Time{} }
func (d dirInfo) IsDir() bool        { return true }
func (d dirInfo) Sys() any           { return nil }

// statDirs reports every path in dirs as an existing directory.
func statDirs(dirs ...string) func(string) (fs.FileInfo, error) {
	return func(path string) (fs.FileInfo, error) {
		for _, d := range dirs {
			if filepath.Clean(path) == filepath.Clean(d) {
				return dirInfo{name: filepath.Base(d)}, nil
			}
		}
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
}

func newPADResolver(t *testing.T, desc ModuleDescriptor) *Resolver {
	t.Helper()
	r, err := New(desc, WithStat(statDirs(padModuleRoot)))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return r
}

func android() Target {
	return Target{Platform: platform.Android, EngineRoot: padEngineRoot}
}

func TestResolve_AndroidGooglePAD(t *testing.T) {
	r := newPADResolver(t, DefaultDescriptor())

	cfg, err := r.Resolve(padModuleRoot, android())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	sdkRoot := "/engine/Plugins/Runtime/GooglePAD/Source/ThirdParty/play-core-native-sdk"
	want := &ResolvedConfig{
		Module:              "GooglePAD",
		Platform:            platform.Android,
		PublicIncludePaths:  []string{"Runtime/Launch/Public"},
		PrivateIncludePaths: []string{"GooglePAD/Private", sdkRoot + "/include"},
		PublicDependencies:  []string{"Core"},
		PrivateDependencies: []string{"CoreUObject", "Engine", "Slate", "SlateCore"},
		DynamicallyLoaded:   []string{},
		NativeLibraries: []NativeLibraryBinding{
			{Arch: platform.ArmeabiV7a, Path: sdkRoot + "/libs/armeabi-v7a/libplaycore.so"},
			{Arch: platform.Arm64V8a, Path: sdkRoot + "/libs/arm64-v8a/libplaycore.so"},
			{Arch: platform.X86, Path: sdkRoot + "/libs/x86/libplaycore.so"},
			{Arch: platform.X86_64, Path: sdkRoot + "/libs/x86_64/libplaycore.so"},
		},
		Properties: []BuildPropertyEntry{
			{Key: "AndroidPlugin", Value: "Plugins/Runtime/GooglePAD/Source/GooglePAD/GooglePAD_APL.xml"},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ThirdPartyRootOverride(t *testing.T) {
	desc := DefaultDescriptor()
	desc.NativeSDKs[0].ThirdPartyRoot = "../../ThirdParty"
	r := newPADResolver(t, desc)

	cfg, err := r.Resolve(padModuleRoot, android())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	var arm64 string
	for _, b := range cfg.NativeLibraries {
		if b.Arch == platform.Arm64V8a {
			arm64 = b.Path
		}
	}
	wantLib := "/engine/Plugins/Runtime/GooglePAD/ThirdParty/play-core-native-sdk/libs/arm64-v8a/libplaycore.so"
	if arm64 != wantLib {
		t.Errorf("arm64-v8a binding = %q, want %q", arm64, wantLib)
	}

	wantInclude := "/engine/Plugins/Runtime/GooglePAD/ThirdParty/play-core-native-sdk/include"
	found := false
	for _, p := range cfg.PrivateIncludePaths {
		if p == wantInclude {
			found = true
		}
	}
	if !found {
		t.Errorf("PrivateIncludePaths = %v, missing %q", cfg.PrivateIncludePaths, wantInclude)
	}
}

func TestResolve_PlainPlatforms(t *testing.T) {
	r := newPADResolver(t, DefaultDescriptor())
	desc := DefaultDescriptor()

	for _, p := range platform.All() {
		if p == platform.Android {
			continue
		}
		t.Run(p.String(), func(t *testing.T) {
			// No engine root: plain platforms never need one.
			cfg, err := r.Resolve(padModuleRoot, Target{Platform: p})
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if len(cfg.NativeLibraries) != 0 {
				t.Errorf("NativeLibraries = %v, want none", cfg.NativeLibraries)
			}
			if len(cfg.Properties) != 0 {
				t.Errorf("Properties = %v, want none", cfg.Properties)
			}
			if diff := cmp.Diff(desc.PrivateIncludePaths, cfg.PrivateIncludePaths); diff != "" {
				t.Errorf("PrivateIncludePaths changed (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(desc.PublicDependencies, cfg.PublicDependencies); diff != "" {
				t.Errorf("PublicDependencies changed (-want +got):\n%s", diff)
			}

			again, err := r.Resolve(padModuleRoot, Target{Platform: p})
			if err != nil {
				t.Fatalf("second Resolve error: %v", err)
			}
			if diff := cmp.Diff(cfg, again); diff != "" {
				t.Errorf("repeated Resolve differs (-first +second):\n%s", diff)
			}
		})
	}
}

func TestResolve_ArchitectureDoesNotPrune(t *testing.T) {
	r := newPADResolver(t, DefaultDescriptor())
	target := android()
	target.Architecture = platform.Arm64V8a

	cfg, err := r.Resolve(padModuleRoot, target)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(cfg.NativeLibraries) != 4 {
		t.Errorf("NativeLibraries len = %d, want 4", len(cfg.NativeLibraries))
	}
}

func TestResolve_Errors(t *testing.T) {
	desc := DefaultDescriptor()

	tests := []struct {
		name       string
		desc       ModuleDescriptor
		moduleRoot string
		target     Target
		kind       Kind
	}{
		{"empty module root", desc, "", android(), KindModuleRoot},
		{"missing module root", desc, "/engine/Plugins/Missing", android(), KindModuleRoot},
		{"unknown platform", desc, padModuleRoot, Target{Platform: platform.Unknown}, KindPlatform},
		{"out of range platform", desc, padModuleRoot, Target{Platform: platform.Platform(42)}, KindPlatform},
		{"unsupported arch context", desc, padModuleRoot, Target{Platform: platform.Android, Architecture: platform.Arm64, EngineRoot: padEngineRoot}, KindArchitecture},
		{"empty engine root", desc, padModuleRoot, Target{Platform: platform.Android}, KindRelativePath},
		{"relative engine root", desc, padModuleRoot, Target{Platform: platform.Android, EngineRoot: "../../Engine"}, KindRelativePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPADResolver(t, tt.desc)
			cfg, err := r.Resolve(tt.moduleRoot, tt.target)
			if err == nil {
				t.Fatalf("expected error, got config %+v", cfg)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("errors.Is(err, ErrConfiguration) = false for %v", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if cfgErr.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q (%v)", cfgErr.Kind, tt.kind, err)
			}
		})
	}
}

// The resolver still reports an incomplete library table even though New
// rejects one, in case the table changes after validation.
func TestResolve_IncompleteLibraryTable(t *testing.T) {
	r := newPADResolver(t, DefaultDescriptor())
	delete(r.sdks[platform.Android].Libraries, platform.X86)

	_, err := r.Resolve(padModuleRoot, android())
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != KindArchitecture {
		t.Fatalf("err = %v, want architecture ConfigurationError", err)
	}
	if !strings.Contains(err.Error(), "no library for x86") {
		t.Errorf("error %q does not name x86", err)
	}
}

func TestResolve_RealFilesystem(t *testing.T) {
	engine := t.TempDir()
	moduleRoot := filepath.Join(engine, "Plugins", "Runtime", "GooglePAD", "Source", "GooglePAD")
	if err := os.MkdirAll(moduleRoot, 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}

	r, err := New(DefaultDescriptor())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	// The SDK tree does not exist; resolution only declares paths.
	cfg, err := r.Resolve(moduleRoot, Target{Platform: platform.Android, EngineRoot: engine})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(cfg.NativeLibraries) != 4 {
		t.Errorf("NativeLibraries len = %d, want 4", len(cfg.NativeLibraries))
	}
	value, ok := cfg.Property("AndroidPlugin")
	if !ok {
		t.Fatal("AndroidPlugin property missing")
	}
	want := filepath.Join("Plugins", "Runtime", "GooglePAD", "Source", "GooglePAD", "GooglePAD_APL.xml")
	if value != want {
		t.Errorf("AndroidPlugin = %q, want %q", value, want)
	}

	_, err = r.Resolve(filepath.Join(engine, "nope"), Target{Platform: platform.Android, EngineRoot: engine})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("missing module root: err = %v, want ConfigurationError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing module root should wrap fs.ErrNotExist, got %v", err)
	}
}

func TestResolve_ModuleRootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "GooglePAD.Build.yaml")
	if err := os.WriteFile(file, []byte("name: x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	r, err := New(DefaultDescriptor())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	_, err = r.Resolve(file, Target{Platform: platform.Linux})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != KindModuleRoot {
		t.Errorf("err = %v, want module-root ConfigurationError", err)
	}
}

func TestResolve_ResultsAreIndependent(t *testing.T) {
	desc := DefaultDescriptor()
	r := newPADResolver(t, desc)

	// Mutating the caller's descriptor after New has no effect.
	desc.PrivateIncludePaths[0] = "mutated"
	desc.NativeSDKs[0].Libraries[platform.X86] = "mutated.so"

	first, err := r.Resolve(padModuleRoot, android())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	first.PrivateIncludePaths[0] = "mutated"
	first.NativeLibraries[0].Path = "mutated"
	first.PublicDependencies = append(first.PublicDependencies, "Extra")

	second, err := r.Resolve(padModuleRoot, android())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if second.PrivateIncludePaths[0] != "GooglePAD/Private" {
		t.Errorf("PrivateIncludePaths[0] = %q", second.PrivateIncludePaths[0])
	}
	if len(second.PublicDependencies) != 1 {
		t.Errorf("PublicDependencies = %v", second.PublicDependencies)
	}
	for _, b := range second.NativeLibraries {
		if !strings.HasSuffix(b.Path, "libplaycore.so") {
			t.Errorf("binding %s = %q", b.Arch, b.Path)
		}
	}
}

func TestResolve_Concurrent(t *testing.T) {
	r := newPADResolver(t, DefaultDescriptor())
	want, err := r.Resolve(padModuleRoot, android())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*ResolvedConfig, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Resolve(padModuleRoot, android())
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if diff := cmp.Diff(want, results[i]); diff != "" {
			t.Errorf("goroutine %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestNativePlatforms(t *testing.T) {
	r := newPADResolver(t, DefaultDescriptor())
	got := r.NativePlatforms()
	if len(got) != 1 || got[0] != platform.Android {
		t.Errorf("NativePlatforms() = %v, want [Android]", got)
	}
}

func TestRelativePath(t *testing.T) {
	tests := []struct {
		base, target string
		want         string
		wantErr      bool
	}{
		{"/engine", "/engine/Plugins/X", "Plugins/X", false},
		{"/engine", "/engine", ".", false},
		{"/engine/Source", "/engine/Plugins/X", "../Plugins/X", false},
		{"Engine", "Engine/Plugins", "Plugins", false},
		{"../../Engine", "Plugins", "", true},
		{"", "/engine", "", true},
		{"Engine", "/engine", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.base+"->"+tt.target, func(t *testing.T) {
			got, err := relativePath(tt.base, tt.target)
			if tt.wantErr {
				if err == nil {
					t.Errorf("relativePath(%q, %q) = %q, want error", tt.base, tt.target, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("relativePath error: %v", err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("relativePath(%q, %q) = %q, want %q", tt.base, tt.target, got, tt.want)
			}
		})
	}
}
