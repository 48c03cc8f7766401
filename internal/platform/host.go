package platform

import (
	"fmt"
	"runtime"
)

// Host returns the platform and architecture of the running process.
// Used as the default target when none is given.
func Host() (Platform, Arch, error) {
	return fromGo(runtime.GOOS, runtime.GOARCH)
}

func fromGo(goos, goarch string) (Platform, Arch, error) {
	arch, err := archFromGo(goarch)
	if err != nil {
		return Unknown, "", err
	}

	p := Unknown
	switch goos {
	case "windows":
		p = Win64
	case "darwin":
		p = Mac
	case "linux":
		p = Linux
		if arch == Arm64 {
			p = LinuxArm64
		}
	case "android":
		p = Android
		// Go reports arm64 where the Android ABI name is arm64-v8a.
		if arch == Arm64 {
			arch = Arm64V8a
		}
	case "ios":
		p = IOS
	}
	if p == Unknown || !p.Supports(arch) {
		return Unknown, "", fmt.Errorf("no platform for %s/%s", goos, goarch)
	}
	return p, arch, nil
}

func archFromGo(goarch string) (Arch, error) {
	switch goarch {
	case "amd64":
		return X86_64, nil
	case "arm64":
		return Arm64, nil
	case "386":
		return X86, nil
	case "arm":
		return ArmeabiV7a, nil
	}
	return "", fmt.Errorf("unsupported architecture %s", goarch)
}
