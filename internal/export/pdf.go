// Package export renders a finished guide to files on disk.
package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/stepshot/internal/document"
	"github.com/example/stepshot/internal/session"
)

const (
	pageBottomMargin = 15.0
	imageSpacing     = 4.0
)

// WritePDF renders the session as an A4 document: the title, then numbered
// text paragraphs interleaved with their screenshots. Images are scaled to
// the content width at most, aspect ratio preserved, and moved to the next
// page when they do not fit the current one.
func WritePDF(path string, s *session.Session) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, pageBottomMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(s.Title), "", "L", false)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 12)

	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	maxW := pageW - left - right

	stepNo := 0
	for _, step := range s.Steps {
		switch step.Type {
		case document.StepText:
			stepNo++
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", stepNo, step.Content)), "", "L", false)
			pdf.Ln(2)
		case document.StepImage:
			idx, err := strconv.Atoi(step.Content)
			if err != nil || idx < 1 || idx > len(s.Images) {
				return fmt.Errorf("step references image %q which does not exist", step.Content)
			}
			if err := placeImage(pdf, s.Images[idx-1], idx, maxW, pageH); err != nil {
				return err
			}
		}
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func placeImage(pdf *gofpdf.Fpdf, img session.Image, idx int, maxW, pageH float64) error {
	imgType, err := pdfImageType(img.Type)
	if err != nil {
		return fmt.Errorf("image %q: %w", img.Name, err)
	}
	name := fmt.Sprintf("img-%d", idx)
	opt := gofpdf.ImageOptions{ImageType: imgType}
	info := pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(img.Data))
	if pdf.Err() {
		return fmt.Errorf("image %q: %v", img.Name, pdf.Error())
	}

	w, h := info.Extent()
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if pdf.GetY()+h > pageH-pageBottomMargin {
		pdf.AddPage()
	}
	left, _, _, _ := pdf.GetMargins()
	pdf.ImageOptions(name, left, pdf.GetY(), w, h, false, opt, 0, "")
	pdf.SetY(pdf.GetY() + h + imageSpacing)
	return nil
}

func pdfImageType(mime string) (string, error) {
	switch mime {
	case "image/png", "":
		return "PNG", nil
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", fmt.Errorf("unsupported image type %q", mime)
}
