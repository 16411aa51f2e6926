package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/example/stepshot/internal/config"
	"github.com/example/stepshot/internal/notify"
	"github.com/example/stepshot/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs      *flag.FlagSet
	program string

	notifier *notify.Notifier
	config   *config.Config

	captureAlerts  bool
	generateAlerts bool
	saveAlerts     bool
	exportAlerts   bool

	themeName    string
	activeTheme  *theme.Theme
	providerFlag string
	modelFlag    string
	languageFlag string
	sessionDir   string
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("stepshot", flag.ExitOnError),
		program:  "stepshot",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a screenshot")
	r.fs.BoolVar(&r.generateAlerts, "notify-generate", cfg.Notify.Generate, "show a desktop notification when guide generation finishes")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a session")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after writing an export file")

	// Flag defaults stay empty; fallback to config happens in the
	// accessors so the precedence is flag, env, file, default.
	r.fs.StringVar(&r.themeName, "theme", "", "editor color scheme (light, dark, or a theme file)")
	r.fs.StringVar(&r.providerFlag, "provider", "", "guide generation backend: anthropic, openai, or gemini")
	r.fs.StringVar(&r.modelFlag, "model", "", "provider model override")
	r.fs.StringVar(&r.languageFlag, "language", "", "guide output language")
	r.fs.StringVar(&r.sessionDir, "session-dir", "", "directory holding stored sessions")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) provider() string {
	if r.providerFlag != "" {
		return r.providerFlag
	}
	return r.config.Provider
}

func (r *root) model() string {
	if r.modelFlag != "" {
		return r.modelFlag
	}
	return r.config.Model
}

func (r *root) language() string {
	if r.languageFlag != "" {
		return r.languageFlag
	}
	return r.config.Language
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventCapture, r.captureAlerts)
		r.notifier.Enable(notify.EventGenerate, r.generateAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
	}

	themeName := r.themeName
	if themeName == "" {
		themeName = r.config.Theme
	}
	if cfgTheme, ok := r.config.Themes[themeName]; ok {
		r.activeTheme = cfgTheme
	} else {
		t, loadErr := theme.NewLoader().Load(themeName)
		if loadErr != nil {
			if themeName != "" {
				fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, loadErr)
			}
			t = theme.Default()
		}
		r.activeTheme = t
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "capture":
		cmd, err = parseCaptureCmd(subArgs, r)
	case "generate":
		cmd, err = parseGenerateCmd(subArgs, r)
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "import":
		cmd, err = parseImportCmd(subArgs, r)
	case "session":
		cmd, err = parseSessionCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifyCapture(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Capture(detail, img)
}

func (r *root) notifyGenerate(title string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Generate(title)
}

func (r *root) notifySave(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(detail)
}

func (r *root) notifyExport(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Export(path)
}

func buildVersion() string {
	parts := []string{version}
	if commit != "" {
		parts = append(parts, commit)
	}
	if date != "" {
		parts = append(parts, date)
	}
	return strings.Join(parts, " ")
}
