package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves theme names to schemes.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader with standard paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "stepshot", "themes"),
		SystemDir: "/usr/share/stepshot/themes",
	}
}

// Load resolves a theme by name or path. Order:
// 1. An existing file path.
// 2. Built-in schemes (light, dark).
// 3. ConfigDir, then SystemDir, by "<name>.theme" filename.
// An empty name yields the default scheme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}

	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	switch strings.ToLower(name) {
	case "light":
		return Light(), nil
	case "dark":
		return Dark(), nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}

	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return parseFile(path)
		}
	}

	return nil, fmt.Errorf("theme '%s' not found", name)
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
