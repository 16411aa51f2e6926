// Package notify raises desktop notifications for long-running or
// background operations: captures arriving from the click watcher,
// generation finishing, and files being written.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/stepshot/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture fires when a screenshot is captured.
	EventCapture Event = "capture"
	// EventGenerate fires when a guide generation call completes.
	EventGenerate Event = "generate"
	// EventSave fires when a session is persisted.
	EventSave Event = "save"
	// EventExport fires when an export file is written.
	EventExport Event = "export"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Stepshot",
		Events: map[Event]EventPreference{
			EventCapture:  {Template: "Captured %s"},
			EventGenerate: {Template: "Generated guide %s"},
			EventSave:     {Template: "Saved %s"},
			EventExport:   {Template: "Exported %s"},
		},
	}
}

// LoadPreferences reads notification overrides from environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("STEPSHOT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	apply("STEPSHOT_NOTIFY_CAPTURE_TEXT", EventCapture)
	apply("STEPSHOT_NOTIFY_GENERATE_TEXT", EventGenerate)
	apply("STEPSHOT_NOTIFY_SAVE_TEXT", EventSave)
	apply("STEPSHOT_NOTIFY_EXPORT_TEXT", EventExport)
	return prefs
}

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier using the provided preferences. All events start
// disabled; configuration enables them.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Capture sends a capture notification with an optional image preview.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCapture, detail, opts)
}

// Generate sends a generation-complete notification carrying the guide
// title.
func (n *Notifier) Generate(title string) {
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	n.dispatch(EventGenerate, title, platform.Options{})
}

// Save sends a save notification including the session title.
func (n *Notifier) Save(detail string) {
	n.dispatch(EventSave, detail, platform.Options{})
}

// Export sends an export notification including the written filename.
func (n *Notifier) Export(path string) {
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := platform.Notify(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func (n *Notifier) template(event Event) string {
	if n == nil {
		return ""
	}
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "stepshot-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
