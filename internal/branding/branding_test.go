package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if CLIName() != "modrules" {
		t.Errorf("CLIName() = %q, want %q", CLIName(), "modrules")
	}
	if HomeDir() != ".modrules" {
		t.Errorf("HomeDir() = %q, want %q", HomeDir(), ".modrules")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("engine_root"); got != "MODRULES_ENGINE_ROOT" {
		t.Errorf("EnvVar(engine_root) = %q, want %q", got, "MODRULES_ENGINE_ROOT")
	}
}
