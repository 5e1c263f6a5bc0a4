// Package docx builds small Word documents on top of go-docx: headings,
// paragraphs, grid tables and inline JPEG pictures. Archive canonicalization
// is left to the caller.
package docx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	godocx "github.com/fumiama/go-docx"
)

// EMUPerInch converts inches to DrawingML English Metric Units.
const EMUPerInch = 914400

// tableWidth is the printable width of an A4 page in twentieths of a point.
const tableWidth = 9000

type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
	AlignRight  Align = "end"
)

// Run is a span of uniformly formatted text. SizePt of 0 keeps the default size.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	SizePt int
}

// TableOptions controls emphasis in a grid table.
type TableOptions struct {
	BoldHeader      bool
	BoldFirstColumn bool
}

// headingSizes maps a heading level to its point size; level 0 is the title.
var headingSizes = []int{20, 16, 14}

type Document struct {
	f      *godocx.Docx
	images int
}

func New() *Document {
	return &Document{f: godocx.New().WithDefaultTheme()}
}

// Heading adds a bold title (level 0) or section heading.
func (d *Document) Heading(text string, level int, align Align) {
	if level < 0 {
		level = 0
	}
	if level >= len(headingSizes) {
		level = len(headingSizes) - 1
	}
	d.Paragraph(align, Run{Text: text, Bold: true, SizePt: headingSizes[level]})
}

// Paragraph adds runs to one paragraph. A newline inside a run starts a new
// paragraph with the same alignment.
func (d *Document) Paragraph(align Align, runs ...Run) {
	p := d.paragraph(align)
	for _, run := range runs {
		for i, line := range strings.Split(run.Text, "\n") {
			if i > 0 {
				p = d.paragraph(align)
			}
			format(p.AddText(line), run)
		}
	}
}

// Text adds a plain left-aligned paragraph.
func (d *Document) Text(text string) {
	d.Paragraph(AlignLeft, Run{Text: text})
}

// Blank adds an empty paragraph.
func (d *Document) Blank() {
	d.f.AddParagraph()
}

// Table adds a bordered table sized by its first row.
func (d *Document) Table(rows [][]string, opts TableOptions) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	cols := len(rows[0])
	tbl := d.f.AddTable(len(rows), cols, tableWidth, nil)
	for r, row := range rows {
		for c := 0; c < cols; c++ {
			var text string
			if c < len(row) {
				text = row[c]
			}
			run := tbl.TableRows[r].TableCells[c].AddParagraph().AddText(text)
			if (opts.BoldHeader && r == 0) || (opts.BoldFirstColumn && c == 0) {
				run.Bold()
			}
		}
	}
}

// Picture embeds JPEG data inline at the given size in EMU.
func (d *Document) Picture(jpegData []byte, widthEMU, heightEMU int64, align Align) error {
	run, err := d.paragraph(align).AddInlineDrawing(jpegData)
	if err != nil {
		return fmt.Errorf("add picture: %w", err)
	}
	for _, child := range run.Children {
		if drawing, ok := child.(*godocx.Drawing); ok && drawing.Inline != nil {
			drawing.Inline.Size(widthEMU, heightEMU)
		}
	}
	d.images++
	return nil
}

// Images reports how many pictures were embedded.
func (d *Document) Images() int { return d.images }

// Bytes serializes the document as a docx archive.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) paragraph(align Align) *godocx.Paragraph {
	p := d.f.AddParagraph()
	if align != AlignLeft {
		p.Justification(string(align))
	}
	return p
}

func format(r *godocx.Run, run Run) {
	if run.Bold {
		r.Bold()
	}
	if run.Italic {
		r.Italic()
	}
	if run.SizePt > 0 {
		r.Size(strconv.Itoa(run.SizePt * 2))
	}
}
