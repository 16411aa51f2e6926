// Package editor hosts the interactive annotation window: a shiny event
// loop translating device-space input into canvas-space gestures for the
// annotation machine, with a toolbar, palette, and live composited
// preview.
package editor

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"strings"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/stepshot/internal/annotation"
	"github.com/example/stepshot/internal/clipboard"
	"github.com/example/stepshot/internal/config"
	"github.com/example/stepshot/internal/geom"
	"github.com/example/stepshot/internal/raster"
	"github.com/example/stepshot/internal/theme"
)

// toolButton pairs a toolbar label with the machine tool it selects.
type toolButton struct {
	label string
	tool  annotation.Tool
}

var toolButtons = []toolButton{
	{"S:Select", annotation.ToolSelect},
	{"X:Rect", annotation.ToolRect},
	{"O:Circle", annotation.ToolCircle},
	{"A:Arrow", annotation.ToolArrow},
	{"B:Pencil", annotation.ToolPencil},
	{"T:Text", annotation.ToolText},
	{"N:Number", annotation.ToolNumber},
	{"U:Blur", annotation.ToolBlur},
	{"E:Erase", annotation.ToolEraser},
	{"R:Crop", annotation.ToolCrop},
}

var strokeWidths = []int{1, 2, 3, 5, 8}

// Editor owns one annotation window over a base raster.
type Editor struct {
	base    *image.RGBA
	output  string
	title   string
	palette []color.RGBA
	th      *theme.Theme
	saveFn  func(*image.RGBA) error
	onClose func()
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithOutput sets the PNG path used by the default save action.
func WithOutput(path string) Option { return func(e *Editor) { e.output = path } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(e *Editor) { e.title = title } }

// WithPalette sets the stroke colors offered in the toolbar.
func WithPalette(p []color.RGBA) Option {
	return func(e *Editor) {
		if len(p) > 0 {
			e.palette = p
		}
	}
}

// WithTheme sets the window color scheme.
func WithTheme(t *theme.Theme) Option {
	return func(e *Editor) {
		if t != nil {
			e.th = t
		}
	}
}

// WithSaveFunc replaces the default save-to-file action. Used when the
// edited image belongs to a session rather than a standalone file.
func WithSaveFunc(fn func(*image.RGBA) error) Option {
	return func(e *Editor) { e.saveFn = fn }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// New creates an editor over img.
func New(img *image.RGBA, opts ...Option) *Editor {
	e := &Editor{
		base:    img,
		output:  "annotated.png",
		title:   "Stepshot",
		palette: config.DefaultPalette(),
		th:      theme.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.saveFn == nil {
		out := e.output
		e.saveFn = func(img *image.RGBA) error { return writePNG(out, img) }
	}
	return e
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Run executes the UI loop using shiny's driver. It blocks until the
// window closes.
func (e *Editor) Run() { driver.Main(e.Main) }

func (e *Editor) Main(s screen.Screen) {
	if e.onClose != nil {
		defer e.onClose()
	}

	tw := toolbarWidth(e.title)

	width := e.base.Bounds().Dx() + tw
	height := e.base.Bounds().Dy()
	if height < minWindowHeight {
		height = minWindowHeight
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: e.title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	b, err := s.NewBuffer(image.Point{width, height})
	if err != nil {
		log.Fatalf("new buffer: %v", err)
	}
	defer func() { b.Release() }()

	store := annotation.NewStore()
	m := annotation.NewMachine(store, raster.MeasureText)

	colorIdx := 0
	widthIdx := 1
	m.Opts.Color = e.palette[colorIdx]
	m.Opts.LineWidth = strokeWidths[widthIdx]

	zoom := fitZoom(e.base, width-tw, height)
	var off image.Point

	hoverTool := -1
	hoverSwatch := -1
	hoverWidth := -1

	var message string
	var messageUntil time.Time
	flash := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(2 * time.Second)
		log.Print(msg)
	}

	var pressed bool
	var textActive bool
	var textID int64
	var textInput string
	var textOriginal string

	toCanvas := func(ex, ey int) geom.Point {
		return geom.Point{
			X: (float64(ex-tw) - float64(off.X)) / zoom,
			Y: (float64(ey) - float64(off.Y)) / zoom,
		}
	}

	finishText := func(commit bool) {
		if !textActive {
			return
		}
		if commit && strings.TrimSpace(textInput) != "" {
			id := textID
			content := textInput
			store.Amend(id, func(a annotation.Annotation) {
				if t, ok := a.(*annotation.Text); ok {
					t.Text = content
				}
			})
		} else if textOriginal == "" {
			// A fresh text annotation with nothing typed leaves no mark.
			store.Delete(textID)
		}
		textActive = false
		textInput = ""
		textID = 0
	}

	doSave := func() {
		finishText(true)
		flat := raster.Flatten(e.base, store.Committed())
		if err := e.saveFn(flat); err != nil {
			log.Printf("save: %v", err)
			flash(fmt.Sprintf("save failed: %v", err))
			return
		}
		if e.output != "" {
			flash(fmt.Sprintf("saved %s", e.output))
		} else {
			flash("saved")
		}
	}

	doCopy := func() {
		flat := raster.Flatten(e.base, store.Committed())
		if err := clipboard.WriteImage(flat); err != nil {
			log.Printf("copy: %v", err)
			flash(fmt.Sprintf("copy failed: %v", err))
			return
		}
		flash("image copied to clipboard")
	}

	applyCrop := func() {
		rect, ok := m.CropRect()
		if !ok {
			return
		}
		e.base = raster.ApplyCrop(e.base, rect)
		// Committed coordinates no longer line up with the cropped raster,
		// and the crop itself is not undoable.
		store.Reset(nil)
		m.CancelCrop()
		zoom = fitZoom(e.base, width-tw, height)
		off = image.Point{}
		flash("cropped")
	}

	repaint := func() { w.Send(paint.Event{}) }

	for {
		ev := w.NextEvent()
		switch ev := ev.(type) {
		case lifecycle.Event:
			if ev.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width = ev.WidthPx
			height = ev.HeightPx
			b.Release()
			b, err = s.NewBuffer(image.Point{width, height})
			if err != nil {
				log.Fatalf("new buffer: %v", err)
			}
			repaint()
		case paint.Event:
			fr := frame{
				editor:      e,
				dst:         b.RGBA(),
				toolbarW:    tw,
				width:       width,
				height:      height,
				store:       store,
				machine:     m,
				zoom:        zoom,
				offset:      off,
				colorIdx:    colorIdx,
				widthIdx:    widthIdx,
				hoverTool:   hoverTool,
				hoverSwatch: hoverSwatch,
				hoverWidth:  hoverWidth,
				textActive:  textActive,
				textID:      textID,
				textInput:   textInput,
			}
			if message != "" && time.Now().Before(messageUntil) {
				fr.message = message
			}
			fr.draw()
			w.Upload(image.Point{}, b, b.Bounds())
			w.Publish()
		case mouse.Event:
			ex, ey := int(ev.X), int(ev.Y)
			if ex < tw && !pressed {
				hit := toolbarHit(ey, len(e.palette))
				hoverTool, hoverSwatch, hoverWidth = hit.tool, hit.swatch, hit.width
				if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
					switch {
					case hit.tool >= 0 && hit.tool < len(toolButtons):
						finishText(true)
						m.Tool = toolButtons[hit.tool].tool
						store.Select(0)
					case hit.swatch >= 0 && hit.swatch < len(e.palette):
						colorIdx = hit.swatch
						m.Opts.Color = e.palette[colorIdx]
					case hit.width >= 0 && hit.width < len(strokeWidths):
						widthIdx = hit.width
						m.Opts.LineWidth = strokeWidths[widthIdx]
					}
				}
				repaint()
				continue
			}
			hoverTool, hoverSwatch, hoverWidth = -1, -1, -1

			p := toCanvas(ex, ey)
			switch {
			case ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress:
				finishText(true)
				pressed = true
				if m.Tool == annotation.ToolText {
					// Clicking an existing label re-opens it for editing
					// instead of stacking a new one on top.
					if id := store.HitAt(p, raster.MeasureText); id != 0 {
						if t, ok := store.ByID(id).(*annotation.Text); ok {
							store.Select(id)
							textActive = true
							textID = id
							textInput = t.Text
							textOriginal = t.Text
							repaint()
							continue
						}
					}
				}
				if id := m.PointerDown(p); id != 0 {
					textActive = true
					textID = id
					textInput = ""
					textOriginal = ""
				}
				repaint()
			case ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirRelease:
				pressed = false
				m.PointerUp(p)
				repaint()
			case ev.Direction == mouse.DirNone && pressed:
				m.PointerMove(p)
				repaint()
			}
		case key.Event:
			if ev.Direction != key.DirPress {
				continue
			}
			if textActive {
				switch ev.Code {
				case key.CodeReturnEnter:
					finishText(true)
					repaint()
				case key.CodeEscape:
					finishText(false)
					repaint()
				case key.CodeDeleteBackspace:
					if len(textInput) > 0 {
						runes := []rune(textInput)
						textInput = string(runes[:len(runes)-1])
						repaint()
					}
				default:
					if ev.Rune > 0 {
						textInput += string(ev.Rune)
						repaint()
					}
				}
				continue
			}
			if ev.Modifiers&key.ModControl != 0 {
				switch unicode.ToLower(ev.Rune) {
				case 'z':
					if store.Undo() {
						repaint()
					}
				case 'y':
					if store.Redo() {
						repaint()
					}
				case 's':
					doSave()
					repaint()
				case 'c':
					doCopy()
					repaint()
				}
				continue
			}
			switch ev.Code {
			case key.CodeReturnEnter:
				applyCrop()
				repaint()
				continue
			case key.CodeEscape:
				if _, ok := m.CropRect(); ok || m.Tool == annotation.ToolCrop {
					m.CancelCrop()
				} else {
					store.Select(0)
				}
				repaint()
				continue
			case key.CodeDeleteBackspace, key.CodeDeleteForward:
				m.DeleteSelected()
				repaint()
				continue
			case key.CodeLeftArrow:
				off.X += panStep
				repaint()
				continue
			case key.CodeRightArrow:
				off.X -= panStep
				repaint()
				continue
			case key.CodeUpArrow:
				off.Y += panStep
				repaint()
				continue
			case key.CodeDownArrow:
				off.Y -= panStep
				repaint()
				continue
			}
			switch unicode.ToLower(ev.Rune) {
			case 's':
				m.Tool = annotation.ToolSelect
			case 'x':
				m.Tool = annotation.ToolRect
			case 'o':
				m.Tool = annotation.ToolCircle
			case 'a':
				m.Tool = annotation.ToolArrow
			case 'b':
				m.Tool = annotation.ToolPencil
			case 't':
				m.Tool = annotation.ToolText
			case 'n':
				m.Tool = annotation.ToolNumber
			case 'u':
				m.Tool = annotation.ToolBlur
			case 'e':
				m.Tool = annotation.ToolEraser
			case 'r':
				m.Tool = annotation.ToolCrop
			case '+', '=':
				zoom = clampZoom(zoom * 1.25)
			case '-':
				zoom = clampZoom(zoom / 1.25)
			case 'q':
				return
			default:
				continue
			}
			repaint()
		}
	}
}
