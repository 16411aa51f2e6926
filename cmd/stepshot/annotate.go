package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/example/stepshot/internal/editor"
	"github.com/example/stepshot/internal/session"
)

type annotateCmd struct {
	file       string
	sessionArg string
	index      int
	output     string
	*root
	fs *flag.FlagSet
}

func (c *annotateCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	c := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "image file to annotate")
	fs.StringVar(&c.sessionArg, "session", "", "session holding the image to annotate")
	fs.IntVar(&c.index, "index", 1, "1-based image index within the session")
	fs.StringVar(&c.output, "output", "", "output path when annotating a file (default: overwrite as PNG)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if (c.file == "") == (c.sessionArg == "") {
		return nil, fmt.Errorf("exactly one of -file or -session is required")
	}
	return c, nil
}

func (c *annotateCmd) Run() error {
	if c.file != "" {
		return c.runFile()
	}
	return c.runSession()
}

func (c *annotateCmd) runFile() error {
	img, err := loadImageFile(c.file)
	if err != nil {
		return err
	}
	decoded, err := decodeSessionImage(img)
	if err != nil {
		return err
	}
	output := c.output
	if output == "" {
		output = c.file
	}
	ed := editor.New(toRGBA(decoded),
		editor.WithOutput(output),
		editor.WithTitle(fmt.Sprintf("Stepshot - %s", img.Name)),
		editor.WithPalette(c.root.config.Palette),
		editor.WithTheme(c.root.activeTheme),
		editor.WithSaveFunc(func(flat *image.RGBA) error {
			data, err := encodePNGBytes(flat)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			c.root.notifySave(output)
			return nil
		}),
	)
	ed.Run()
	return nil
}

func (c *annotateCmd) runSession() error {
	id, err := parseSessionID(c.sessionArg)
	if err != nil {
		return err
	}
	st, err := openStore(c.root)
	if err != nil {
		return err
	}
	sess, err := st.Load(id)
	if err != nil {
		return err
	}
	if c.index < 1 || c.index > len(sess.Images) {
		return fmt.Errorf("session %d has %d image(s); index %d is out of range", id, len(sess.Images), c.index)
	}
	img := sess.Images[c.index-1]
	decoded, err := decodeSessionImage(img)
	if err != nil {
		return err
	}
	ed := editor.New(toRGBA(decoded),
		editor.WithOutput(""),
		editor.WithTitle(fmt.Sprintf("Stepshot - %s", img.Name)),
		editor.WithPalette(c.root.config.Palette),
		editor.WithTheme(c.root.activeTheme),
		editor.WithSaveFunc(func(flat *image.RGBA) error {
			data, err := encodePNGBytes(flat)
			if err != nil {
				return err
			}
			// Annotations bake into the stored image; the raster becomes
			// PNG regardless of the original encoding.
			sess.Images[c.index-1] = session.Image{
				Name:         img.Name,
				Type:         "image/png",
				LastModified: time.Now().UnixMilli(),
				Data:         data,
			}
			if err := st.Save(sess); err != nil {
				return err
			}
			c.root.notifySave(fmt.Sprintf("session %d image %d", id, c.index))
			return nil
		}),
	)
	ed.Run()
	return nil
}
