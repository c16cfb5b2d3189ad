// Package render draws a timetable grid as a PNG image or an XLSX sheet.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/pkg/timeslot"
)

// Layout in CSS pixels; multiplied by the pixel ratio when drawing.
const (
	periodColWidth = 40
	dayColWidth    = 120
	headerHeight   = 32
	rowHeight      = 56
	extraRowHeight = 32
	cellPadding    = 4
	fontSize       = 11
	lineGap        = 3
)

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	gridLine   = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	headerFill = color.RGBA{R: 0xf7, G: 0xf7, B: 0xf7, A: 0xff}
	textColor  = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	metaColor  = color.RGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xff}
)

// Renderer rasterises timetables. Font faces keep glyph caches, so a
// Renderer must not be used from several goroutines at once.
type Renderer struct {
	face  *fallbackFace
	scale int
}

// NewRenderer loads the TrueType/OpenType font at fontPath and puts it in
// front of the built-in Hangul and Latin fonts. An empty fontPath uses the
// built-in fonts only.
func NewRenderer(fontPath string, pixelRatio int) (*Renderer, error) {
	if fontPath == "" {
		return NewRendererFromFont(nil, pixelRatio)
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return NewRendererFromFont(data, pixelRatio)
}

// NewRendererFromFont builds a renderer from raw font bytes. Nil data
// selects the built-in fonts.
func NewRendererFromFont(data []byte, pixelRatio int) (*Renderer, error) {
	if pixelRatio < 1 {
		pixelRatio = 1
	}
	fonts, err := builtinFonts()
	if err != nil {
		return nil, err
	}
	if data != nil {
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		fonts = append([]*opentype.Font{parsed}, fonts...)
	}
	face, err := newFallbackFace(fonts, float64(fontSize*pixelRatio))
	if err != nil {
		return nil, err
	}
	return &Renderer{face: face, scale: pixelRatio}, nil
}

// Size returns the image dimensions for a timetable.
func (r *Renderer) Size(t *domain.Timetable) (int, int) {
	w := periodColWidth + len(timeslot.Days)*dayColWidth
	h := headerHeight + t.VisibleRows()*rowHeight + len(t.Extras())*extraRowHeight
	return w * r.scale, h * r.scale
}

// Image draws the timetable.
func (r *Renderer) Image(t *domain.Timetable) *image.RGBA {
	w, h := r.Size(t)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), background)

	s := r.scale
	rows := t.VisibleRows()
	gridBottom := (headerHeight + rows*rowHeight) * s

	fill(img, image.Rect(0, 0, w, headerHeight*s), headerFill)
	fill(img, image.Rect(0, headerHeight*s, periodColWidth*s, gridBottom), headerFill)
	for i, day := range timeslot.Days {
		x0 := (periodColWidth + i*dayColWidth) * s
		r.centered(img, image.Rect(x0, 0, x0+dayColWidth*s, headerHeight*s), day.String(), textColor)
	}
	for p := 1; p <= rows; p++ {
		y0 := (headerHeight + (p-1)*rowHeight) * s
		r.centered(img, image.Rect(0, y0, periodColWidth*s, y0+rowHeight*s), strconv.Itoa(p), textColor)
	}

	for i, day := range timeslot.Days {
		for p := 1; p <= rows; p++ {
			cell := t.Cell(domain.Key{Day: day, Period: p})
			if cell.Kind != domain.CellHead {
				continue
			}
			course, ok := t.Course(cell.CourseID)
			if !ok {
				continue
			}
			x0 := (periodColWidth + i*dayColWidth) * s
			y0 := (headerHeight + (p-1)*rowHeight) * s
			rect := image.Rect(x0, y0, x0+dayColWidth*s, y0+cell.RowSpan*rowHeight*s)
			fill(img, rect, course.Color.RGBA())
			r.label(img, rect, domain.LabelFor(&course))
		}
	}

	r.gridLines(img, t, rows)

	for i, course := range t.Extras() {
		y0 := gridBottom + i*extraRowHeight*s
		rect := image.Rect(0, y0, w, y0+extraRowHeight*s)
		fill(img, rect, course.Color.RGBA())
		r.centered(img, rect, domain.ExtraLabel(&course), textColor)
		fill(img, image.Rect(0, rect.Max.Y-s, w, rect.Max.Y), gridLine)
	}

	return img
}

// WritePNG encodes the timetable image to w.
func (r *Renderer) WritePNG(w io.Writer, t *domain.Timetable) error {
	if err := png.Encode(w, r.Image(t)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Renderer) gridLines(img *image.RGBA, t *domain.Timetable, rows int) {
	s := r.scale
	bottom := (headerHeight + rows*rowHeight) * s
	right := (periodColWidth + len(timeslot.Days)*dayColWidth) * s

	fill(img, image.Rect(0, 0, s, bottom), gridLine)
	for i := range timeslot.Days {
		x := (periodColWidth + (i+1)*dayColWidth) * s
		fill(img, image.Rect(x-s, 0, x, bottom), gridLine)
	}
	fill(img, image.Rect((periodColWidth-1)*s, 0, periodColWidth*s, bottom), gridLine)

	fill(img, image.Rect(0, 0, right, s), gridLine)
	fill(img, image.Rect(0, headerHeight*s-s, right, headerHeight*s), gridLine)
	fill(img, image.Rect(0, bottom-s, right, bottom), gridLine)

	// row separators skip cells covered by a head cell above
	for p := 1; p < rows; p++ {
		y := (headerHeight + p*rowHeight) * s
		fill(img, image.Rect(0, y-s, periodColWidth*s, y), gridLine)
		for i, day := range timeslot.Days {
			if t.Cell(domain.Key{Day: day, Period: p + 1}).Kind == domain.CellCovered {
				continue
			}
			x0 := (periodColWidth + i*dayColWidth) * s
			fill(img, image.Rect(x0, y-s, x0+dayColWidth*s, y), gridLine)
		}
	}
}

type textLine struct {
	text string
	col  color.Color
}

func (r *Renderer) label(img *image.RGBA, rect image.Rectangle, label domain.CellLabel) {
	pad := cellPadding * r.scale
	maxWidth := rect.Dx() - 2*pad
	lineHeight := r.face.Metrics().Height.Ceil() + lineGap*r.scale
	y := rect.Min.Y + pad + r.face.Metrics().Ascent.Ceil()

	lines := []textLine{{label.Title, textColor}, {label.Meta, metaColor}}
	for _, p := range label.Places {
		lines = append(lines, textLine{p, metaColor})
	}

	for _, line := range lines {
		if y > rect.Max.Y-pad {
			break
		}
		r.text(img, rect.Min.X+pad, y, r.truncate(line.text, maxWidth), line.col)
		y += lineHeight
	}
}

func (r *Renderer) centered(img *image.RGBA, rect image.Rectangle, s string, col color.Color) {
	s = r.truncate(s, rect.Dx()-2*cellPadding*r.scale)
	width := font.MeasureString(r.face, s).Ceil()
	m := r.face.Metrics()
	x := rect.Min.X + (rect.Dx()-width)/2
	y := rect.Min.Y + (rect.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	r.text(img, x, y, s, col)
}

func (r *Renderer) text(img *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// truncate shortens s with an ellipsis until it fits maxWidth pixels.
func (r *Renderer) truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || font.MeasureString(r.face, s).Ceil() <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "…"
		if font.MeasureString(r.face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return ""
}

func fill(img *image.RGBA, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}
