package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/storybook/internal/export"
)

type renderOptions struct {
	output        string
	author        string
	noPageNumbers bool
	strict        bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <book.yaml|book.json>",
		Short: "Render a saved book document to PDF",
		Long: `Renders a book document, as downloaded from /export.json or /export.yaml,
into a PDF with a cover, one sheet per page and a back cover.`,
		Example: `  storybook render my-book.yaml -o my-book.pdf
  storybook render my-book.json --author "Grandma" --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF file to write (default: input name with .pdf)")
	cmd.Flags().StringVar(&opts.author, "author", "", "Author recorded in the PDF metadata")
	cmd.Flags().BoolVar(&opts.noPageNumbers, "no-page-numbers", false, "Omit page numbers")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on images that cannot be decoded instead of drawing a placeholder")

	return cmd
}

func runRender(input string, opts renderOptions) error {
	book, err := export.LoadBook(input)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	}

	pdfOpts := export.DefaultPDFOptions()
	if opts.author != "" {
		pdfOpts.Author = opts.author
	}
	pdfOpts.PageNumbers = !opts.noPageNumbers
	pdfOpts.SkipBadImage = !opts.strict

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := export.RenderPDF(book, f, pdfOpts); err != nil {
		f.Close()
		_ = os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Rendered %q (%d pages) to %s\n", book.DisplayTitle(), len(book.Pages), output)
	return nil
}
