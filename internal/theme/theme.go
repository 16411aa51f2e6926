// Package theme supplies the editor chrome colors. Annotation stroke
// colors come from the configured palette, not from here.
package theme

import (
	"image/color"
)

// Theme defines the color scheme for the editor window.
type Theme struct {
	Name string

	// Window
	Background color.RGBA
	Foreground color.RGBA

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Status banner
	BannerBackground color.RGBA
	BannerText       color.RGBA

	// Canvas backdrop behind transparent regions
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Selection outline and handle fill
	SelectionAccent color.RGBA
}

// Light returns the default light scheme.
func Light() *Theme {
	return &Theme{
		Name:                  "light",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{230, 230, 230, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{90, 90, 90, 255},
		BannerBackground:      color.RGBA{50, 50, 50, 230},
		BannerText:            color.RGBA{255, 255, 255, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		SelectionAccent:       color.RGBA{30, 120, 255, 255},
	}
}

// Dark returns the built-in dark scheme.
func Dark() *Theme {
	return &Theme{
		Name:                  "dark",
		Background:            color.RGBA{40, 40, 44, 255},
		Foreground:            color.RGBA{230, 230, 230, 255},
		ToolbarBackground:     color.RGBA{52, 52, 58, 255},
		ButtonBackground:      color.RGBA{70, 70, 78, 255},
		ButtonBackgroundHover: color.RGBA{88, 88, 98, 255},
		ButtonBackgroundPress: color.RGBA{110, 110, 122, 255},
		ButtonText:            color.RGBA{235, 235, 235, 255},
		ButtonBorder:          color.RGBA{20, 20, 22, 255},
		BannerBackground:      color.RGBA{15, 15, 18, 230},
		BannerText:            color.RGBA{240, 240, 240, 255},
		CheckerLight:          color.RGBA{58, 58, 64, 255},
		CheckerDark:           color.RGBA{48, 48, 52, 255},
		SelectionAccent:       color.RGBA{80, 160, 255, 255},
	}
}

// Default returns the scheme used when nothing is configured.
func Default() *Theme { return Light() }
