package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/stepshot/internal/session"
)

type importCmd struct {
	file string
	*root
	fs *flag.FlagSet
}

func (c *importCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseImportCmd(args []string, r *root) (*importCmd, error) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	c := &importCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.file = fs.Arg(0)
	return c, nil
}

func (c *importCmd) Run() error {
	data, err := os.ReadFile(c.file)
	if err != nil {
		return err
	}
	sess, err := session.Import(data)
	if err != nil {
		return fmt.Errorf("import %s: %w", c.file, err)
	}
	st, err := openStore(c.root)
	if err != nil {
		return err
	}
	// Imported guides always get a fresh id so they never clobber an
	// existing session.
	sess.ID = 0
	if err := st.Save(sess); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "imported %q as session %d\n", sess.Title, sess.ID)
	return nil
}
