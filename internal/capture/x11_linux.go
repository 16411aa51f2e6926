//go:build linux

package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

func platformAvailable() bool {
	return os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" || os.Getenv("DISPLAY") != ""
}

func platformScreenshot(opts Options) (*image.RGBA, error) {
	img, portalErr := portalScreenshot(opts)
	if portalErr == nil {
		return img, nil
	}
	img, x11Err := x11Screenshot()
	if x11Err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("portal: %v; x11: %w", portalErr, x11Err)
}

// x11Screenshot grabs the whole root window over the X protocol.
func x11Screenshot() (*image.RGBA, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil, fmt.Errorf("xproto screen unavailable")
	}

	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(screen.Root),
		0, 0, screen.WidthInPixels, screen.HeightInPixels, ^uint32(0)).Reply()
	if err != nil {
		return nil, fmt.Errorf("root pixels: %w", err)
	}
	return xImageToRGBA(setup, reply, int(screen.WidthInPixels), int(screen.HeightInPixels))
}

func xImageToRGBA(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("screen has empty geometry")
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, fmt.Errorf("screen pixels: empty image data")
	}

	bitsPerPixel := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == reply.Depth {
			bitsPerPixel = int(format.BitsPerPixel)
			break
		}
	}
	if bitsPerPixel == 0 {
		return nil, fmt.Errorf("unsupported screen depth %d", reply.Depth)
	}
	bytesPerPixel := bitsPerPixel / 8
	if bytesPerPixel < 3 {
		return nil, fmt.Errorf("unsupported pixel format %d bpp", bitsPerPixel)
	}

	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) {
		return nil, fmt.Errorf("screen pixels: unexpected stride")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			off := x * bytesPerPixel
			if off+3 > len(row) {
				break
			}
			b := row[off]
			g := row[off+1]
			r := row[off+2]
			a := byte(0xFF)
			if bytesPerPixel >= 4 && off+3 < len(row) {
				a = row[off+3]
			}
			pix := img.PixOffset(x, y)
			img.Pix[pix+0] = r
			img.Pix[pix+1] = g
			img.Pix[pix+2] = b
			img.Pix[pix+3] = a
		}
	}
	return img, nil
}

// watchInterval is how often the pointer is polled for button state.
const watchInterval = 50 * time.Millisecond

// platformWatch polls the X pointer and reports button-1 press edges. The
// X server does not deliver global button events to unprivileged clients,
// so edge detection on QueryPointer is the portable approach.
func platformWatch(ctx context.Context) (<-chan Click, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	root := screen.Root

	out := make(chan Click, 16)
	go func() {
		defer close(out)
		defer conn.Close()
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		pressed := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			reply, err := xproto.QueryPointer(conn, root).Reply()
			if err != nil {
				return
			}
			down := reply.Mask&xproto.ButtonMask1 != 0
			if down && !pressed {
				select {
				case out <- Click{X: int(reply.RootX), Y: int(reply.RootY), Time: time.Now()}:
				default:
					// Drop when the consumer lags; clicks are advisory.
				}
			}
			pressed = down
		}
	}()
	return out, nil
}
