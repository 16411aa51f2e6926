//go:build linux

package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

func portalScreenshot(opts Options) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "dbus close: %v\n", cerr)
		}
	}()

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	var handle dbus.ObjectPath
	call := obj.Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", portalOptions(opts))
	if call.Err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot response: %w", err)
	}

	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)
	rule := fmt.Sprintf("type='signal',interface='org.freedesktop.portal.Request',member='Response',path='%s'", handle)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	uri, err := awaitPortalResponse(sigc, handle, portalTimeout)
	if err != nil {
		return nil, err
	}
	img, err := loadPNG(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return nil, fmt.Errorf("portal screenshot image: %w", err)
	}
	return img, nil
}

// portalTimeout bounds the wait for the portal's Response signal. The
// interactive picker needs user time, so this is generous.
const portalTimeout = 2 * time.Minute

// awaitPortalResponse waits for the Request.Response signal matching handle
// and returns the screenshot uri it carries. A portal that never answers
// must not hang the process.
func awaitPortalResponse(sigc <-chan *dbus.Signal, handle dbus.ObjectPath, timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case sig, ok := <-sigc:
			if !ok {
				return "", fmt.Errorf("portal screenshot: signal channel closed")
			}
			if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
				continue
			}
			if len(sig.Body) >= 2 {
				if res, ok := sig.Body[1].(map[string]dbus.Variant); ok {
					if uriVar, ok := res["uri"]; ok {
						if uri, ok := uriVar.Value().(string); ok {
							return uri, nil
						}
					}
				}
			}
			return "", fmt.Errorf("portal screenshot: response missing image data")
		case <-deadline.C:
			return "", fmt.Errorf("portal screenshot: no response within %s", timeout)
		}
	}
}

func portalOptions(opts Options) map[string]dbus.Variant {
	cursorMode := "hidden"
	if opts.IncludeCursor {
		cursorMode = "embedded"
	}
	return map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(opts.Interactive),
		"modal":        dbus.MakeVariant(opts.Interactive),
		"cursor_mode":  dbus.MakeVariant(cursorMode),
		"handle_token": dbus.MakeVariant(fmt.Sprintf("stepshot-%d", time.Now().UnixNano())),
	}
}

func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "close %s: %v\n", path, cerr)
		}
	}()
	// The portal leaves the screenshot file behind; remove it once decoded.
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "remove %s: %v\n", path, err)
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)
	return rgba, nil
}
