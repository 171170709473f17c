// Command generate_demo writes a demo book document built from a public domain fable.
// Usage: go run cmd/generate_demo/main.go [-o path/to/demo.yaml]
//
// The document can be rendered with `storybook render` or inspected as a reference for
// the export format.
package main

import (
	"bytes"
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/mrlokans/storybook/internal/export"
	"github.com/mrlokans/storybook/internal/images"
	"github.com/mrlokans/storybook/internal/storybook"
)

const defaultDemoPath = "./demo/tortoise-and-hare.yaml"

type demoPage struct {
	text  string
	color color.RGBA
	scale float64
}

func main() {
	output := flag.String("o", defaultDemoPath, "path of the book document to write (.yaml or .json)")
	flag.Parse()

	format, err := export.FormatFromPath(*output)
	if err != nil {
		log.Fatalf("Unsupported output: %v", err)
	}

	log.Printf("Generating demo book at %s...", *output)

	book := storybook.Reset()
	storybook.SetTitle(book, "The Tortoise and the Hare")
	storybook.SetCoverImage(book, swatch(color.RGBA{R: 120, G: 170, B: 90, A: 255}))

	for _, p := range getFablePages() {
		picture := ""
		if p.color.A != 0 {
			picture = swatch(p.color)
		}
		if _, ok := storybook.AddPage(book, picture, p.scale, p.text); !ok {
			log.Fatalf("Failed to add page %q", p.text)
		}
	}

	if err := book.Validate(); err != nil {
		log.Fatalf("Generated book is invalid: %v", err)
	}

	var buf bytes.Buffer
	if err := export.EncodeBook(book, format, &buf); err != nil {
		log.Fatalf("Failed to encode book: %v", err)
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}

	log.Printf("Demo book written: %d pages", len(book.Pages))
}

// swatch draws a small gradient placeholder picture in the given colour.
func swatch(c color.RGBA) string {
	const w, h = 64, 48
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		shade := uint8(255 * y / h / 3)
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: sub(c.R, shade), G: sub(c.G, shade), B: sub(c.B, shade), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode picture: %v", err)
	}
	return images.EncodeDataURI("image/png", buf.Bytes())
}

func sub(a, b uint8) uint8 {
	if a < b {
		return 0
	}
	return a - b
}

// getFablePages returns Aesop's fable, one page per scene.
func getFablePages() []demoPage {
	meadow := color.RGBA{R: 140, G: 200, B: 110, A: 255}
	road := color.RGBA{R: 210, G: 180, B: 130, A: 255}
	dusk := color.RGBA{R: 230, G: 150, B: 90, A: 255}

	return []demoPage{
		{text: "A Hare was making fun of the Tortoise one day for being so slow.", color: meadow, scale: 1},
		{text: `"Do you ever get anywhere?" he asked with a mocking laugh.`, scale: 1},
		{text: `"Yes," replied the Tortoise, "and I get there sooner than you think. I'll run you a race and prove it."`, color: meadow, scale: 1.2},
		{text: "The Hare was much amused at the idea of running a race with the Tortoise, but for the fun of the thing he agreed.", color: road, scale: 1},
		{text: "So the Fox, who had consented to act as judge, marked the distance and started the runners off.", color: road, scale: 0.8},
		{text: "The Hare was soon far out of sight, and to make the Tortoise feel very deeply how ridiculous it was for him to try a race with a Hare, he lay down beside the course to take a nap until the Tortoise should catch up.", color: meadow, scale: 1},
		{text: "The Tortoise meanwhile kept going slowly but steadily, and, after a time, passed the place where the Hare was sleeping.", color: dusk, scale: 1.5},
		{text: "The Hare slept on very peacefully; and when at last he did wake up, the Tortoise was near the goal.", color: dusk, scale: 1},
		{text: "The Hare now ran his swiftest, but he could not overtake the Tortoise in time.", color: road, scale: 1},
		{text: "The race is not always to the swift.", scale: 1},
	}
}
