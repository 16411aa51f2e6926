package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/stepshot/internal/document"
	"github.com/example/stepshot/internal/session"
)

type sessionCmd struct {
	yes bool
	*root
	fs *flag.FlagSet

	in  io.Reader
	out io.Writer
}

func (c *sessionCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseSessionCmd(args []string, r *root) (*sessionCmd, error) {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	c := &sessionCmd{root: r, fs: fs, in: os.Stdin, out: os.Stdout}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.yes, "y", false, "delete without asking for confirmation")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *sessionCmd) Run() error {
	st, err := openStore(c.root)
	if err != nil {
		return err
	}
	args := c.fs.Args()
	switch args[0] {
	case "new":
		return c.runNew(st, args[1:])
	case "list":
		return c.runList(st)
	case "show":
		if len(args) != 2 {
			return &UsageError{of: c}
		}
		return c.runShow(st, args[1])
	case "delete":
		if len(args) != 2 {
			return &UsageError{of: c}
		}
		return c.runDelete(st, args[1])
	default:
		return fmt.Errorf("unknown session command: %s", args[0])
	}
}

func (c *sessionCmd) runNew(st *session.Store, titleWords []string) error {
	sess := &session.Session{Title: strings.Join(titleWords, " ")}
	if err := st.Save(sess); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created session %d\n", sess.ID)
	return nil
}

func (c *sessionCmd) runList(st *session.Store) error {
	sessions, err := st.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(c.out, "no sessions stored")
		return nil
	}
	fmt.Fprintf(c.out, "%-14s %-20s %7s %7s  %s\n", "ID", "MODIFIED", "IMAGES", "STEPS", "TITLE")
	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(c.out, "%-14d %-20s %7d %7d  %s\n",
			s.ID, s.ModifiedAt.Local().Format("2006-01-02 15:04"), len(s.Images), textSteps(s.Steps), title)
	}
	return nil
}

func (c *sessionCmd) runShow(st *session.Store, arg string) error {
	id, err := parseSessionID(arg)
	if err != nil {
		return err
	}
	sess, err := st.Load(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "# %s\n", sess.Title)
	fmt.Fprintf(c.out, "id %d, created %s, modified %s\n\n",
		sess.ID, sess.CreatedAt.Local().Format("2006-01-02 15:04"), sess.ModifiedAt.Local().Format("2006-01-02 15:04"))
	for i, step := range sess.Steps {
		if step.Type == document.StepImage {
			fmt.Fprintf(c.out, "%3d. [image %s]\n", i, step.Content)
			continue
		}
		fmt.Fprintf(c.out, "%3d. %s\n", i, step.Content)
	}
	for i, img := range sess.Images {
		fmt.Fprintf(c.out, "image %d: %s (%s, %d bytes)\n", i+1, img.Name, img.Type, len(img.Data))
	}
	return nil
}

func (c *sessionCmd) runDelete(st *session.Store, arg string) error {
	id, err := parseSessionID(arg)
	if err != nil {
		return err
	}
	if !c.yes {
		fmt.Fprintf(c.out, "delete session %d? [y/N] ", id)
		scanner := bufio.NewScanner(c.in)
		if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
			fmt.Fprintln(c.out, "aborted")
			return nil
		}
	}
	if err := st.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted session %d\n", id)
	return nil
}

func textSteps(steps []document.Step) int {
	n := 0
	for _, s := range steps {
		if s.Type == document.StepText {
			n++
		}
	}
	return n
}
