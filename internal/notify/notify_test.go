package notify

import "testing"

func TestLoadPreferencesDefaults(t *testing.T) {
	prefs := LoadPreferences()
	if prefs.Title != "Stepshot" {
		t.Fatalf("title = %q", prefs.Title)
	}
	if prefs.Events[EventSave].Template != "Saved %s" {
		t.Fatalf("save template = %q", prefs.Events[EventSave].Template)
	}
}

func TestLoadPreferencesEnvOverrides(t *testing.T) {
	t.Setenv("STEPSHOT_NOTIFY_TITLE", "My Guides")
	t.Setenv("STEPSHOT_NOTIFY_EXPORT_TEXT", "Wrote %s to disk")
	prefs := LoadPreferences()
	if prefs.Title != "My Guides" {
		t.Fatalf("title = %q", prefs.Title)
	}
	if prefs.Events[EventExport].Template != "Wrote %s to disk" {
		t.Fatalf("export template = %q", prefs.Events[EventExport].Template)
	}
	if prefs.Events[EventCapture].Template != "Captured %s" {
		t.Fatalf("capture template should keep its default, got %q", prefs.Events[EventCapture].Template)
	}
}

func TestEventsStartDisabled(t *testing.T) {
	n := New(DefaultPreferences())
	for _, event := range []Event{EventCapture, EventGenerate, EventSave, EventExport} {
		if n.enabledFor(event) {
			t.Fatalf("event %s should start disabled", event)
		}
	}
	n.Enable(EventSave, true)
	if !n.enabledFor(EventSave) {
		t.Fatal("enable did not take effect")
	}
	if n.enabledFor(EventExport) {
		t.Fatal("enable leaked to another event")
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.Enable(EventSave, true)
	n.Save("session")
	n.Generate("")
}
