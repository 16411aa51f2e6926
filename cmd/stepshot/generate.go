package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/example/stepshot/internal/document"
	"github.com/example/stepshot/internal/generate"
)

type generateCmd struct {
	sessionArg  string
	incremental bool
	timeout     time.Duration
	*root
	fs *flag.FlagSet

	// Set by tests to avoid real provider construction.
	client generate.Client
}

func (c *generateCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseGenerateCmd(args []string, r *root) (*generateCmd, error) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	c := &generateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.sessionArg, "session", "", "session id to generate a guide for")
	fs.BoolVar(&c.incremental, "incremental", false, "only describe images not yet referenced by a step")
	fs.DurationVar(&c.timeout, "timeout", 5*time.Minute, "overall provider deadline")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.sessionArg == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *generateCmd) Run() error {
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
	if len(sess.Images) == 0 {
		return fmt.Errorf("session %d has no images to describe", id)
	}

	client := c.client
	if client == nil {
		client, err = newGenerator(c.root)
		if err != nil {
			return err
		}
	}

	images := make([]image.Image, len(sess.Images))
	for i, si := range sess.Images {
		decoded, err := decodeSessionImage(si)
		if err != nil {
			return err
		}
		images[i] = decoded
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if c.incremental {
		gen := func(ctx context.Context, imageIndex int, prevText, nextText string) ([]document.Step, error) {
			return client.GenerateIncremental(ctx, images[imageIndex-1], c.language(), prevText, nextText)
		}
		doc, err := document.MergeIncremental(ctx, sess.Document(), len(sess.Images), gen)
		if err != nil {
			return fmt.Errorf("incremental generation: %w", err)
		}
		sess.SetDocument(doc)
	} else {
		guide, err := client.Generate(ctx, images, c.language())
		if err != nil {
			return fmt.Errorf("generation: %w", err)
		}
		sess.SetDocument(document.Document{Title: guide.Title, Steps: guide.Steps})
	}

	if err := st.Save(sess); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "generated %q with %d step(s)\n", sess.Title, len(sess.Steps))
	c.root.notifyGenerate(sess.Title)
	return nil
}
