// Package export renders a book to PDF and reads/writes book documents.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"

	// Decoders for formats gofpdf cannot embed directly; they are re-encoded as PNG.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jung-kurt/gofpdf"

	"github.com/mrlokans/storybook/internal/entities"
	"github.com/mrlokans/storybook/internal/images"
)

// Layout in millimetres on an A4 landscape sheet: one spread per sheet.
const (
	sheetW  = 297.0
	sheetH  = 210.0
	margin  = 12.0
	gutter  = 8.0
	footerH = 8.0
)

// PDFOptions controls rendering.
type PDFOptions struct {
	Author       string
	PageNumbers  bool
	SkipBadImage bool // render a placeholder instead of failing on undecodable images
}

// DefaultPDFOptions are used by the web export.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{Author: "Storybook", PageNumbers: true, SkipBadImage: true}
}

// RenderPDF writes the book as a PDF: front cover, one sheet per page (picture left,
// text right) and a back cover.
func RenderPDF(book *entities.Book, w io.Writer, opt PDFOptions) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(book.DisplayTitle(), true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r := &renderer{pdf: pdf, tr: tr, opt: opt}

	if err := r.cover(book); err != nil {
		return err
	}
	for i, page := range book.Pages {
		if err := r.page(i+1, page); err != nil {
			return err
		}
	}
	r.back()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	opt    PDFOptions
	images int
}

func (r *renderer) cover(book *entities.Book) error {
	r.pdf.AddPage()

	titleH := 30.0
	if book.Cover.Image != "" {
		box := rect{x: margin, y: margin, w: sheetW - 2*margin, h: sheetH - 2*margin - titleH - gutter}
		if err := r.image(book.Cover.Image, book.Cover.ImageScale, box); err != nil {
			return fmt.Errorf("cover image: %w", err)
		}
	}

	r.pdf.SetFont("Helvetica", "B", 32)
	r.pdf.SetXY(margin, sheetH-margin-titleH)
	r.pdf.CellFormat(sheetW-2*margin, titleH, r.tr(book.DisplayTitle()), "", 0, "C", false, 0, "")
	return nil
}

func (r *renderer) page(number int, page entities.Page) error {
	r.pdf.AddPage()

	half := (sheetW - 2*margin - gutter) / 2
	left := rect{x: margin, y: margin, w: half, h: sheetH - 2*margin - footerH}
	right := rect{x: margin + half + gutter, y: margin, w: half, h: left.h}

	if page.HasImage() {
		if err := r.image(page.Image, page.ImageScale, left); err != nil {
			return fmt.Errorf("page %d image: %w", number, err)
		}
	} else {
		r.placeholder(left)
	}

	r.pdf.SetFont("Helvetica", "", 16)
	r.pdf.SetXY(right.x, right.y+right.h/4)
	r.pdf.MultiCell(right.w, 9, r.tr(page.Text), "", "L", false)

	if r.opt.PageNumbers {
		r.pdf.SetFont("Helvetica", "", 10)
		r.pdf.SetXY(margin, sheetH-margin-footerH)
		r.pdf.CellFormat(sheetW-2*margin, footerH, strconv.Itoa(number), "", 0, "C", false, 0, "")
	}
	return nil
}

func (r *renderer) back() {
	r.pdf.AddPage()
	r.pdf.SetFont("Helvetica", "I", 28)
	r.pdf.SetXY(margin, sheetH/2-10)
	r.pdf.CellFormat(sheetW-2*margin, 20, "The End", "", 0, "C", false, 0, "")
}

type rect struct{ x, y, w, h float64 }

// image draws a data URI centred in box, fitted to the box and then scaled. Overflow from
// scales above 1 is clipped to the box.
func (r *renderer) image(uri string, scale float64, box rect) error {
	imageType, data, err := pdfImage(uri)
	if err != nil {
		if r.opt.SkipBadImage {
			r.placeholder(box)
			return nil
		}
		return err
	}

	r.images++
	name := "img" + strconv.Itoa(r.images)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if info == nil || r.pdf.Err() {
		return fmt.Errorf("register image: %w", r.pdf.Error())
	}

	iw, ih := info.Width(), info.Height()
	fit := min(box.w/iw, box.h/ih) * entities.ClampScale(scale)
	w, h := iw*fit, ih*fit
	x := box.x + (box.w-w)/2
	y := box.y + (box.h-h)/2

	r.pdf.ClipRect(box.x, box.y, box.w, box.h, false)
	r.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	r.pdf.ClipEnd()
	return nil
}

func (r *renderer) placeholder(box rect) {
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetLineWidth(0.3)
	r.pdf.Rect(box.x, box.y, box.w, box.h, "D")
}

// pdfImage returns image bytes in a format gofpdf can embed, with its gofpdf type name.
func pdfImage(uri string) (string, []byte, error) {
	mime, data, err := images.DecodeDataURI(uri)
	if err != nil {
		return "", nil, err
	}

	var imageType string
	switch mime {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg", "image/jpg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return "", nil, fmt.Errorf("decode %s: %w", mime, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", nil, fmt.Errorf("re-encode %s as png: %w", mime, err)
		}
		imageType, data = "PNG", buf.Bytes()
	}

	if err := embeddable(imageType, data); err != nil {
		return "", nil, fmt.Errorf("%s image: %w", mime, err)
	}
	return imageType, data, nil
}

// embeddable parses the image on a scratch document. A failed registration leaves a
// gofpdf document in a permanent error state, so the real one only sees images that parse.
func embeddable(imageType string, data []byte) error {
	scratch := gofpdf.New("P", "mm", "A4", "")
	scratch.RegisterImageOptionsReader("check", gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
	if scratch.Err() {
		return scratch.Error()
	}
	return nil
}
