// Package config loads and persists the rc-style configuration file.
package config

import (
	"fmt"
	"image/color"
	"reflect"
	"sort"
	"strings"

	"github.com/example/stepshot/internal/theme"
)

// Notify holds per-event notification toggles.
type Notify struct {
	Capture  bool
	Generate bool
	Save     bool
	Export   bool
}

// Config holds the application configuration.
type Config struct {
	Provider   string // guide generation backend: anthropic, openai, gemini
	Model      string // provider model override
	APIKeyEnv  string // environment variable holding the API key
	Language   string // guide output language, empty means English
	SessionDir string // where sessions are stored
	SaveDir    string // where exports land
	Theme      string // editor color scheme name or path
	Notify     Notify
	Palette    []color.RGBA // annotation stroke colors, in toolbar order
	Themes     map[string]*theme.Theme
}

// DefaultPalette returns the annotation colors offered when the config
// file does not define a [palette] section.
func DefaultPalette() []color.RGBA {
	return []color.RGBA{
		{226, 36, 36, 255},  // red
		{245, 130, 32, 255}, // orange
		{250, 210, 1, 255},  // yellow
		{52, 168, 83, 255},  // green
		{26, 115, 232, 255}, // blue
		{155, 81, 224, 255}, // purple
		{0, 0, 0, 255},
		{255, 255, 255, 255},
	}
}

// New creates a Config with defaults. Provider and model stay empty so
// flag and environment fallbacks can apply.
func New() *Config {
	return &Config{
		Palette: DefaultPalette(),
		Themes:  make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and renders the configuration in the
// same rc format Parse reads.
func (c *Config) String() string {
	var sb strings.Builder

	writeKey := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", key, value)
		}
	}
	writeKey("provider", c.Provider)
	writeKey("model", c.Model)
	writeKey("api_key_env", c.APIKeyEnv)
	writeKey("language", c.Language)
	writeKey("session_dir", c.SessionDir)
	writeKey("save_dir", c.SaveDir)
	writeKey("theme", c.Theme)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "generate = %v\n", c.Notify.Generate)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	sb.WriteString("\n")

	if len(c.Palette) > 0 {
		sb.WriteString("[palette]\n")
		hexes := make([]string, len(c.Palette))
		for i, col := range c.Palette {
			hexes[i] = theme.FormatColor(col)
		}
		fmt.Fprintf(&sb, "colors = %s\n", strings.Join(hexes, ","))
		sb.WriteString("\n")
	}

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		val := reflect.ValueOf(t).Elem()
		typ := val.Type()
		for i := 0; i < typ.NumField(); i++ {
			field := val.Field(i)
			if field.Type() != reflect.TypeOf(color.RGBA{}) {
				continue
			}
			fmt.Fprintf(&sb, "%s: %s\n", typ.Field(i).Name, theme.FormatColor(field.Interface().(color.RGBA)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
