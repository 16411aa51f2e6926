package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/stepshot/internal/document"
	"github.com/example/stepshot/internal/generate"
	"github.com/example/stepshot/internal/history"
	"github.com/example/stepshot/internal/session"
)

type editCmd struct {
	sessionArg string
	*root
	fs *flag.FlagSet

	in  io.Reader
	out io.Writer

	// Set by tests to avoid real provider construction.
	client generate.Client
}

func (c *editCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r, fs: fs, in: os.Stdin, out: os.Stdout}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.sessionArg, "session", "", "session id to edit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.sessionArg == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *editCmd) Run() error {
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

	hist := history.New(sess.Document(), document.Equal)
	c.printDoc(hist.Present())

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, rest := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return scanner.Err()
		case "show":
			c.printDoc(hist.Present())
		case "undo":
			if !hist.Undo() {
				fmt.Fprintln(c.out, "nothing to undo")
				continue
			}
			c.printDoc(hist.Present())
		case "redo":
			if !hist.Redo() {
				fmt.Fprintln(c.out, "nothing to redo")
				continue
			}
			c.printDoc(hist.Present())
		case "save":
			sess.SetDocument(hist.Present())
			if err := st.Save(sess); err != nil {
				fmt.Fprintf(c.out, "save: %v\n", err)
				continue
			}
			fmt.Fprintf(c.out, "saved session %d\n", sess.ID)
			c.root.notifySave(sess.Title)
		case "title":
			d := hist.Present().Clone()
			d.Title = strings.TrimSpace(strings.TrimPrefix(line, "title"))
			hist.Set(d)
		case "text":
			if len(rest) < 2 {
				fmt.Fprintln(c.out, "usage: text <step> <text>")
				continue
			}
			idx, err := strconv.Atoi(rest[0])
			if err != nil {
				fmt.Fprintf(c.out, "bad step index %q\n", rest[0])
				continue
			}
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, "text")), rest[0]))
			hist.Set(document.WithStepText(hist.Present(), idx, text))
		case "insert":
			block := -1
			if len(rest) > 0 {
				b, err := strconv.Atoi(rest[0])
				if err != nil {
					fmt.Fprintf(c.out, "bad block index %q\n", rest[0])
					continue
				}
				block = b
			}
			d, at := document.InsertBlock(hist.Present(), block)
			hist.Set(d)
			fmt.Fprintf(c.out, "inserted empty step at %d\n", at)
		case "delete":
			if len(rest) != 1 {
				fmt.Fprintln(c.out, "usage: delete <step>")
				continue
			}
			idx, err := strconv.Atoi(rest[0])
			if err != nil {
				fmt.Fprintf(c.out, "bad step index %q\n", rest[0])
				continue
			}
			hist.Set(document.DeleteBlock(hist.Present(), idx))
		case "merge":
			if len(rest) < 2 {
				fmt.Fprintln(c.out, "usage: merge <step> <step...>")
				continue
			}
			indices := make([]int, 0, len(rest))
			ok := true
			for _, f := range rest {
				idx, err := strconv.Atoi(f)
				if err != nil {
					fmt.Fprintf(c.out, "bad step index %q\n", f)
					ok = false
					break
				}
				indices = append(indices, idx)
			}
			if !ok {
				continue
			}
			d, err := document.MergeBlocks(hist.Present(), indices)
			if err != nil {
				fmt.Fprintf(c.out, "merge: %v\n", err)
				continue
			}
			hist.Set(d)
		case "reorder":
			if len(rest) != 2 {
				fmt.Fprintln(c.out, "usage: reorder <from> <to>")
				continue
			}
			from, err1 := strconv.Atoi(rest[0])
			to, err2 := strconv.Atoi(rest[1])
			if err1 != nil || err2 != nil {
				fmt.Fprintln(c.out, "usage: reorder <from> <to>")
				continue
			}
			hist.Set(document.ReorderBlocks(hist.Present(), from, to))
		case "regen":
			if len(rest) < 1 {
				fmt.Fprintln(c.out, "usage: regen <step> [mode]")
				continue
			}
			idx, err := strconv.Atoi(rest[0])
			if err != nil {
				fmt.Fprintf(c.out, "bad step index %q\n", rest[0])
				continue
			}
			mode := ""
			if len(rest) > 1 {
				mode = rest[1]
			}
			d, err := c.regenerate(sess, hist.Present(), idx, mode)
			if err != nil {
				fmt.Fprintf(c.out, "regen: %v\n", err)
				continue
			}
			hist.Set(d)
			c.printDoc(hist.Present())
		default:
			fmt.Fprintf(c.out, "unknown command %q\n", cmd)
		}
	}
	return scanner.Err()
}

// regenerate rewrites one text step using the provider, passing the
// neighboring step texts and the block's first image as context.
func (c *editCmd) regenerate(sess *session.Session, d document.Document, idx int, mode string) (document.Document, error) {
	if idx < 0 || idx >= len(d.Steps) || d.Steps[idx].Type != document.StepText {
		return d, fmt.Errorf("step %d is not a text step", idx)
	}

	client := c.client
	if client == nil {
		var err error
		client, err = newGenerator(c.root)
		if err != nil {
			return d, err
		}
	}

	prev, next := "", ""
	for i := idx - 1; i >= 0; i-- {
		if d.Steps[i].Type == document.StepText {
			prev = d.Steps[i].Content
			break
		}
	}
	for i := idx + 1; i < len(d.Steps); i++ {
		if d.Steps[i].Type == document.StepText {
			next = d.Steps[i].Content
			break
		}
	}

	var img image.Image
	for i := idx + 1; i < len(d.Steps) && d.Steps[i].Type == document.StepImage; i++ {
		n, err := strconv.Atoi(d.Steps[i].Content)
		if err != nil || n < 1 || n > len(sess.Images) {
			break
		}
		decoded, err := decodeSessionImage(sess.Images[n-1])
		if err != nil {
			return d, err
		}
		img = decoded
		break
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	text, err := client.Regenerate(ctx, img, c.language(), prev, d.Steps[idx].Content, next, mode)
	if err != nil {
		return d, err
	}
	return document.WithStepText(d, idx, text), nil
}

func (c *editCmd) printDoc(d document.Document) {
	fmt.Fprintf(c.out, "# %s\n", d.Title)
	for i, step := range d.Steps {
		if step.Type == document.StepImage {
			fmt.Fprintf(c.out, "%3d. [image %s]\n", i, step.Content)
			continue
		}
		fmt.Fprintf(c.out, "%3d. %s\n", i, step.Content)
	}
}
