//go:build !linux

package capture

import (
	"context"
	"image"
)

func platformAvailable() bool { return false }

func platformScreenshot(Options) (*image.RGBA, error) {
	return nil, ErrUnavailable
}

func platformWatch(context.Context) (<-chan Click, error) {
	return nil, ErrUnavailable
}
