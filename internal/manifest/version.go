package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckRequires reports whether toolVersion satisfies the descriptor's
// requires constraint (e.g. ">= 0.3.0, < 2"). An empty constraint and
// development builds ("dev" or empty version) always pass.
func CheckRequires(constraint, toolVersion string) error {
	if strings.TrimSpace(constraint) == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("parsing requires constraint %q: %w", constraint, err)
	}

	if toolVersion == "" || toolVersion == "dev" {
		return nil
	}
	v, err := parseSemver(toolVersion)
	if err != nil {
		return fmt.Errorf("parsing tool version %q: %w", toolVersion, err)
	}

	if ok, errs := c.Validate(v); !ok {
		reasons := make([]string, len(errs))
		for i, e := range errs {
			reasons[i] = e.Error()
		}
		return fmt.Errorf("tool version %s does not satisfy %q: %s", v, constraint, strings.Join(reasons, "; "))
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
