package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/stepshot/internal/export"
	"github.com/example/stepshot/internal/session"
)

type exportCmd struct {
	sessionArg string
	format     string
	output     string
	*root
	fs *flag.FlagSet
}

func (c *exportCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.sessionArg, "session", "", "session id to export")
	fs.StringVar(&c.format, "format", "pdf", "output format: pdf or json")
	fs.StringVar(&c.output, "output", "", "output file path (default: derived from the guide title)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.sessionArg == "" {
		return nil, &UsageError{of: c}
	}
	if c.format != "pdf" && c.format != "json" {
		return nil, fmt.Errorf("unknown export format %q (want pdf or json)", c.format)
	}
	return c, nil
}

func (c *exportCmd) Run() error {
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

	path := c.output
	if path == "" {
		path = filepath.Join(c.root.config.SaveDir, export.SafeName(sess.Title)+"."+c.format)
	}

	switch c.format {
	case "pdf":
		err = export.WritePDF(path, sess)
	case "json":
		var data []byte
		data, err = session.Export(sess)
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
	}
	if err != nil {
		return fmt.Errorf("export session %d: %w", id, err)
	}

	fmt.Fprintf(os.Stderr, "exported session %d to %s\n", id, path)
	c.root.notifyExport(path)
	return nil
}
