package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSecretFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	return path
}

func TestLoadInlineValue(t *testing.T) {
	secret, err := Load(Source{Name: "smtp password", Value: "  hunter2  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "hunter2" {
		t.Fatalf("expected trimmed secret, got %q", secret)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeSecretFile(t, "token-from-file\n")

	secret, err := Load(Source{Name: "api key", Value: "inline-loses", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "token-from-file" {
		t.Fatalf("expected file to take precedence, got %q", secret)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Source{Name: "api key", File: filepath.Join(t.TempDir(), "absent")})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected secret name in error, got %q", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeSecretFile(t, "   \n")

	_, err := Load(Source{Name: "api key", File: path})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestLoadUnconfigured(t *testing.T) {
	_, err := Load(Source{Name: "gemini api key"})
	if err == nil || !strings.Contains(err.Error(), "gemini api key is not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}

	// The name falls back to a generic label.
	_, err = Load(Source{})
	if err == nil || !strings.Contains(err.Error(), "secret is not configured") {
		t.Fatalf("expected generic label, got %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	secret, err := LoadOptional(Source{Name: "smtp password"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "" {
		t.Fatalf("expected empty secret, got %q", secret)
	}

	// A configured but broken file still fails.
	_, err = LoadOptional(Source{Name: "smtp password", File: filepath.Join(t.TempDir(), "absent")})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}

	secret, err = LoadOptional(Source{Name: "smtp password", Value: "hunter2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "hunter2" {
		t.Fatalf("expected inline secret, got %q", secret)
	}
}
