// Package capture grabs screenshots and observes external pointer clicks.
// Both capabilities are optional: on unsupported platforms every entry
// point returns ErrUnavailable and the caller degrades to manual image
// import.
package capture

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrUnavailable is returned when no capture backend can serve the request
// on this platform.
var ErrUnavailable = errors.New("screen capture unavailable")

// Options configures a screenshot request.
type Options struct {
	// Interactive asks the desktop portal to let the user pick a region.
	Interactive bool
	// IncludeCursor embeds the pointer in the captured image.
	IncludeCursor bool
}

// Click is one external pointer-down event in screen coordinates.
type Click struct {
	X, Y int
	Time time.Time
}

// Screenshot captures the desktop. The portal backend is preferred; a
// direct X11 root grab is the fallback when the portal is absent.
func Screenshot(opts Options) (*image.RGBA, error) {
	return platformScreenshot(opts)
}

// Available reports whether some capture backend can plausibly work.
func Available() bool {
	return platformAvailable()
}

// Watch emits external pointer-down events until ctx is cancelled. The
// returned channel is closed when watching stops.
func Watch(ctx context.Context) (<-chan Click, error) {
	return platformWatch(ctx)
}
