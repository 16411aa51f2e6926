// Package document holds the ordered step list of a guide and its
// structural edits. Undo is layered on top by snapshotting whole Document
// values through a history; nothing here mutates in place.
package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// StepType discriminates text steps from image references.
type StepType string

const (
	StepText  StepType = "text"
	StepImage StepType = "image"
)

// Step is one entry in a guide. For image steps Content is the 1-based
// decimal index into the session's image list; the images themselves are a
// coarser-grained resource kept outside undo history.
type Step struct {
	Type    StepType `json:"type"`
	Content string   `json:"content"`
}

// Document is one undoable snapshot of the guide.
type Document struct {
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// ImageIndexPlaceholder is the token incremental generation emits in image
// steps before the real index is known. MergeIncremental substitutes it.
const ImageIndexPlaceholder = "{index}"

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{Title: d.Title}
	if d.Steps != nil {
		out.Steps = make([]Step, len(d.Steps))
		copy(out.Steps, d.Steps)
	}
	return out
}

// Equal reports whether two documents hold the same title and steps. Used
// as the history's equality gate.
func Equal(a, b Document) bool {
	if a.Title != b.Title || len(a.Steps) != len(b.Steps) {
		return false
	}
	for i := range a.Steps {
		if a.Steps[i] != b.Steps[i] {
			return false
		}
	}
	return true
}

// Block is a text step plus its immediately following run of image steps,
// the atomic unit of merging and reordering.
type Block struct {
	Text      string
	TextIndex int
	Images    []Step
}

// steps flattens the block back to its step sequence.
func (b Block) steps() []Step {
	out := make([]Step, 0, 1+len(b.Images))
	out = append(out, Step{Type: StepText, Content: b.Text})
	out = append(out, b.Images...)
	return out
}

// ImageIndices returns the parsed indices of the block's image steps,
// skipping any that do not parse.
func (b Block) ImageIndices() []int {
	var out []int
	for _, s := range b.Images {
		if n, err := strconv.Atoi(s.Content); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Blocks groups steps into blocks, starting a new block at each text step.
// Leading image steps with no preceding text step are malformed and are
// dropped.
func Blocks(steps []Step) []Block {
	var out []Block
	for i, s := range steps {
		switch s.Type {
		case StepText:
			out = append(out, Block{Text: s.Content, TextIndex: i})
		case StepImage:
			if len(out) == 0 {
				continue
			}
			last := &out[len(out)-1]
			last.Images = append(last.Images, s)
		}
	}
	return out
}

func flatten(blocks []Block) []Step {
	var out []Step
	for _, b := range blocks {
		out = append(out, b.steps()...)
	}
	return out
}

// InsertBlock inserts an empty text step after the block at blockIndex and
// returns the new document plus the inserted step's index so the caller can
// open it for editing. blockIndex -1 inserts before the first block.
func InsertBlock(d Document, blockIndex int) (Document, int) {
	blocks := Blocks(d.Steps)
	pos := 0
	if blockIndex >= 0 && blockIndex < len(blocks) {
		b := blocks[blockIndex]
		pos = b.TextIndex + 1 + len(b.Images)
	} else if blockIndex >= len(blocks) {
		pos = len(d.Steps)
	}
	out := d.Clone()
	out.Steps = append(out.Steps[:pos:pos], append([]Step{{Type: StepText}}, d.Steps[pos:]...)...)
	return out, pos
}

// DeleteBlock removes the text step at textIndex and its trailing image
// steps. Indices that do not name a text step leave the document unchanged.
func DeleteBlock(d Document, textIndex int) Document {
	if textIndex < 0 || textIndex >= len(d.Steps) || d.Steps[textIndex].Type != StepText {
		return d
	}
	end := textIndex + 1
	for end < len(d.Steps) && d.Steps[end].Type == StepImage {
		end++
	}
	out := d.Clone()
	out.Steps = append(out.Steps[:textIndex:textIndex], d.Steps[end:]...)
	return out
}

// MergeBlocks joins the blocks whose text steps sit at the given indices
// into one: texts space-joined in ascending index order, image steps
// concatenated preserving relative order, placed at the first block's
// location. At least two blocks are required.
func MergeBlocks(d Document, textIndices []int) (Document, error) {
	if len(textIndices) < 2 {
		return d, fmt.Errorf("merge needs at least 2 blocks, got %d", len(textIndices))
	}
	want := map[int]bool{}
	for _, i := range textIndices {
		want[i] = true
	}
	blocks := Blocks(d.Steps)
	mergedAt := -1
	var out []Block
	var texts []string
	var images []Step
	matched := 0
	for _, b := range blocks {
		if !want[b.TextIndex] {
			out = append(out, b)
			continue
		}
		matched++
		texts = append(texts, b.Text)
		images = append(images, b.Images...)
		if mergedAt < 0 {
			mergedAt = len(out)
			out = append(out, Block{})
		}
	}
	if matched != len(want) {
		return d, fmt.Errorf("merge indices do not all name text steps")
	}
	out[mergedAt] = Block{Text: strings.Join(texts, " "), Images: images}
	res := d.Clone()
	res.Steps = flatten(out)
	return res, nil
}

// ReorderBlocks moves the whole block at position from (in block order) to
// position to, shifting the others.
func ReorderBlocks(d Document, from, to int) Document {
	blocks := Blocks(d.Steps)
	if from < 0 || from >= len(blocks) || to < 0 || to >= len(blocks) || from == to {
		return d
	}
	moved := blocks[from]
	rest := append(blocks[:from:from], blocks[from+1:]...)
	out := make([]Block, 0, len(blocks))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	res := d.Clone()
	res.Steps = flatten(out)
	return res
}

// WithStepText returns a copy of d with the text step at index replaced.
func WithStepText(d Document, index int, text string) Document {
	if index < 0 || index >= len(d.Steps) || d.Steps[index].Type != StepText {
		return d
	}
	out := d.Clone()
	out.Steps[index].Content = text
	return out
}

// IncrementalGenerator produces the steps describing one image, given the
// text of the nearest already-described neighbors for context. Image steps
// in the result carry ImageIndexPlaceholder as content.
type IncrementalGenerator func(ctx context.Context, imageIndex int, prevText, nextText string) ([]Step, error)

// MergeIncremental generates blocks for every image in 1..imageCount that
// no existing image step references, then reassembles the step list in
// image-index order, interleaving the pre-existing blocks with the new
// ones. Text-only blocks keep their position relative to the image-bearing
// block before them. A generator failure aborts the merge with the prior
// document intact.
func MergeIncremental(ctx context.Context, d Document, imageCount int, gen IncrementalGenerator) (Document, error) {
	blocks := Blocks(d.Steps)

	// Anchor each existing block at its first referenced image index.
	// Text-only blocks inherit the anchor of the previous block so they
	// travel with it; leading text-only blocks anchor at 0.
	type unit struct {
		anchor int
		steps  []Step
	}
	var units []unit
	referenced := map[int]string{} // image index -> owning block text
	prevAnchor := 0
	for _, b := range blocks {
		anchor := prevAnchor
		if idx := b.ImageIndices(); len(idx) > 0 {
			anchor = idx[0]
			for _, n := range idx {
				referenced[n] = b.Text
			}
		}
		units = append(units, unit{anchor: anchor, steps: b.steps()})
		prevAnchor = anchor
	}

	for i := 1; i <= imageCount; i++ {
		if _, ok := referenced[i]; ok {
			continue
		}
		prevText, nextText := neighborTexts(referenced, i, imageCount)
		steps, err := gen(ctx, i, prevText, nextText)
		if err != nil {
			return d, fmt.Errorf("generate step for image %d: %w", i, err)
		}
		resolved := make([]Step, len(steps))
		for j, s := range steps {
			if s.Type == StepImage && s.Content == ImageIndexPlaceholder {
				s.Content = strconv.Itoa(i)
			}
			resolved[j] = s
		}
		units = append(units, unit{anchor: i, steps: resolved})
	}

	// Stable by anchor: existing blocks come before generated ones at the
	// same anchor because they were appended first.
	for i := 1; i < len(units); i++ {
		for j := i; j > 0 && units[j-1].anchor > units[j].anchor; j-- {
			units[j-1], units[j] = units[j], units[j-1]
		}
	}

	out := d.Clone()
	out.Steps = nil
	for _, u := range units {
		out.Steps = append(out.Steps, u.steps...)
	}
	return out, nil
}

// neighborTexts finds the text of the nearest referenced image below and
// above index i.
func neighborTexts(referenced map[int]string, i, imageCount int) (string, string) {
	var prev, next string
	for j := i - 1; j >= 1; j-- {
		if t, ok := referenced[j]; ok {
			prev = t
			break
		}
	}
	for j := i + 1; j <= imageCount; j++ {
		if t, ok := referenced[j]; ok {
			next = t
			break
		}
	}
	return prev, next
}
