package config

import (
	"os"
	"path/filepath"
)

// Loader handles locating and loading the configuration file.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Explicit path, wins over the search order
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the configuration file and applies environment overrides on
// top. Missing files are not an error; defaults apply.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		parsed, err := Parse(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overrides file values with STEPSHOT_* environment variables.
// Flags are applied later by the command layer, so the precedence is
// flag, then environment, then file, then default.
func ApplyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("STEPSHOT_PROVIDER", &cfg.Provider)
	set("STEPSHOT_MODEL", &cfg.Model)
	set("STEPSHOT_API_KEY_ENV", &cfg.APIKeyEnv)
	set("STEPSHOT_LANGUAGE", &cfg.Language)
	set("STEPSHOT_SESSION_DIR", &cfg.SessionDir)
	set("STEPSHOT_SAVE_DIR", &cfg.SaveDir)
	set("STEPSHOT_THEME", &cfg.Theme)
}

// GetConfigPath returns the path to the configuration file, or empty
// string if none exists.
func (l *Loader) GetConfigPath() string {
	// 1. Explicit override
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// 2. Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".stepshotrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	// 3. XDG config path
	home, _ := os.UserHomeDir()
	for _, name := range []string{"config.rc", "stepshot.rc"} {
		xdgPath := filepath.Join(home, ".config", "stepshot", name)
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	return ""
}
