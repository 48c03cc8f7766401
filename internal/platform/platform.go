package platform

import (
	"fmt"
	"strings"
)

// Platform identifies a build target. The set is closed: Parse rejects
// anything outside it and Valid reports false for out-of-range values.
type Platform int

const (
	Unknown Platform = iota
	Win64
	Mac
	Linux
	LinuxArm64
	IOS
	TVOS
	Android
)

// Arch is an ABI label as used in native library directory layouts.
type Arch string

const (
	ArmeabiV7a Arch = "armeabi-v7a"
	Arm64V8a   Arch = "arm64-v8a"
	X86        Arch = "x86"
	X86_64     Arch = "x86_64"
	Arm64      Arch = "arm64"
)

type platformInfo struct {
	name  string
	archs []Arch
}

// info is indexed by Platform. Architecture order is significant: it is the
// order native library bindings are emitted in.
var info = [...]platformInfo{
	Unknown:    {name: "Unknown"},
	Win64:      {name: "Win64", archs: []Arch{X86_64}},
	Mac:        {name: "Mac", archs: []Arch{X86_64, Arm64}},
	Linux:      {name: "Linux", archs: []Arch{X86_64}},
	LinuxArm64: {name: "LinuxArm64", archs: []Arch{Arm64}},
	IOS:        {name: "IOS", archs: []Arch{Arm64}},
	TVOS:       {name: "TVOS", archs: []Arch{Arm64}},
	Android:    {name: "Android", archs: []Arch{ArmeabiV7a, Arm64V8a, X86, X86_64}},
}

// All returns every known platform in declaration order.
func All() []Platform {
	out := make([]Platform, 0, len(info)-1)
	for p := Win64; int(p) < len(info); p++ {
		out = append(out, p)
	}
	return out
}

// Valid reports whether p is a member of the closed platform set.
func (p Platform) Valid() bool {
	return p > Unknown && int(p) < len(info)
}

func (p Platform) String() string {
	if p < Unknown || int(p) >= len(info) {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return info[p].name
}

// Architectures returns a copy of the fixed architecture list for p.
func (p Platform) Architectures() []Arch {
	if !p.Valid() {
		return nil
	}
	out := make([]Arch, len(info[p].archs))
	copy(out, info[p].archs)
	return out
}

// Supports reports whether a is one of p's architectures.
func (p Platform) Supports(a Arch) bool {
	if !p.Valid() {
		return false
	}
	for _, have := range info[p].archs {
		if have == a {
			return true
		}
	}
	return false
}

// MarshalText encodes the platform by name.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid platform %d", int(p))
	}
	return []byte(info[p].name), nil
}

// UnmarshalText decodes a platform name, case-insensitively.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Parse maps a platform name to a Platform. Matching ignores case.
func Parse(name string) (Platform, error) {
	trimmed := strings.TrimSpace(name)
	for _, p := range All() {
		if strings.EqualFold(info[p].name, trimmed) {
			return p, nil
		}
	}
	return Unknown, fmt.Errorf("unknown platform %q (expected one of %s)", name, strings.Join(Names(), ", "))
}

// Names returns the names of all platforms in declaration order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.String()
	}
	return names
}
