package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/stepshot/internal/capture"
	"github.com/example/stepshot/internal/session"
)

// Indirection for tests.
var (
	captureScreenshotFn = capture.Screenshot
	captureWatchFn      = capture.Watch
)

type captureCmd struct {
	output        string
	sessionArg    string
	interactive   bool
	includeCursor bool
	watch         bool
	watchLimit    int
	*root
	fs *flag.FlagSet
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c := &captureCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "screenshot.png", "write the capture to this file path")
	fs.StringVar(&c.sessionArg, "session", "", "append the capture to this session instead of writing a file (created if missing)")
	fs.BoolVar(&c.interactive, "interactive", false, "let the desktop portal offer area selection")
	fs.BoolVar(&c.includeCursor, "include-cursor", false, "embed the cursor in the capture when supported")
	fs.BoolVar(&c.watch, "watch", false, "capture a screenshot on every external mouse click until interrupted")
	fs.IntVar(&c.watchLimit, "watch-limit", 0, "stop watch mode after this many captures (0 = until interrupted)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	if c.watch {
		return c.runWatch()
	}
	img, err := captureScreenshotFn(c.captureOptions())
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return c.store(img, 0)
}

func (c *captureCmd) captureOptions() capture.Options {
	return capture.Options{
		Interactive:   c.interactive,
		IncludeCursor: c.includeCursor,
	}
}

// runWatch appends a screenshot for every observed external click. Clicks
// land slightly before the resulting UI change, so the grab happens after
// a short settle delay.
func (c *captureCmd) runWatch() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	clicks, err := captureWatchFn(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch for clicks: %w", err)
	}
	fmt.Fprintln(os.Stderr, "watching for clicks; press Ctrl+C to stop")

	n := 0
	for range clicks {
		time.Sleep(300 * time.Millisecond)
		img, err := captureScreenshotFn(c.captureOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "capture: %v\n", err)
			continue
		}
		n++
		if err := c.store(img, n); err != nil {
			return err
		}
		if c.watchLimit > 0 && n >= c.watchLimit {
			break
		}
	}
	fmt.Fprintf(os.Stderr, "captured %d screenshot(s)\n", n)
	return nil
}

// store writes the capture to a session or to the output path. seq is
// nonzero in watch mode and numbers the output files.
func (c *captureCmd) store(img *image.RGBA, seq int) error {
	data, err := encodePNGBytes(img)
	if err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	if c.sessionArg != "" {
		id, err := parseSessionID(c.sessionArg)
		if err != nil {
			return err
		}
		st, err := openStore(c.root)
		if err != nil {
			return err
		}
		sess, err := st.Load(id)
		if errors.Is(err, session.ErrNotFound) {
			// First capture into an unused id bootstraps the session.
			sess = &session.Session{ID: id}
		} else if err != nil {
			return err
		}
		name := fmt.Sprintf("capture-%d.png", len(sess.Images)+1)
		sess.Images = append(sess.Images, session.Image{
			Name:         name,
			Type:         "image/png",
			LastModified: time.Now().UnixMilli(),
			Data:         data,
		})
		if err := st.Save(sess); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "added %s to session %d\n", name, sess.ID)
		c.root.notifyCapture(name, img)
		return nil
	}

	path := c.output
	if seq > 0 {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + fmt.Sprintf("-%d", seq) + ext
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", path)
	c.root.notifyCapture(path, img)
	return nil
}
