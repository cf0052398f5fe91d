package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret comes from. Inline values suit local runs
// and tests; files suit mounted credentials. When File is set it takes
// precedence over Value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value.
	File string
}

func (s Source) label() string {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return "secret"
	}
	return name
}

// Load resolves the secret value and fails when nothing usable is
// configured. The returned secret is always trimmed.
func Load(src Source) (string, error) {
	secret, err := resolve(src)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", src.label())
	}
	return secret, nil
}

// LoadOptional resolves the secret but treats an unconfigured source as
// absent, returning an empty value without error. A file that is set but
// unreadable or empty still fails: that points at a broken deployment, not a
// feature left switched off.
func LoadOptional(src Source) (string, error) {
	return resolve(src)
}

func resolve(src Source) (string, error) {
	file := strings.TrimSpace(src.File)
	if file == "" {
		return strings.TrimSpace(src.Value), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s from file %q: %w", src.label(), file, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", src.label(), file)
	}

	return secret, nil
}
