package render

import (
	_ "embed"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// NanumBarunGothic (SIL OFL, see fonts/OFL.txt) carries the Hangul
// syllables but no Latin glyphs; Go Regular covers those.
//
//go:embed fonts/NanumBarunGothic.ttf
var hangulTTF []byte

var builtinFonts = sync.OnceValues(func() ([]*opentype.Font, error) {
	hangul, err := opentype.Parse(hangulTTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded hangul font: %w", err)
	}
	latin, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded latin font: %w", err)
	}
	return []*opentype.Font{hangul, latin}, nil
})

// fallbackFace draws each rune with the first font that has a glyph for
// it. The last face is used when none does.
type fallbackFace struct {
	fonts []*opentype.Font
	faces []font.Face

	mu  sync.Mutex
	buf sfnt.Buffer
}

func newFallbackFace(fonts []*opentype.Font, size float64) (*fallbackFace, error) {
	ff := &fallbackFace{fonts: fonts}
	for _, f := range fonts {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create font face: %w", err)
		}
		ff.faces = append(ff.faces, face)
	}
	return ff, nil
}

func (f *fallbackFace) pick(r rune) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fnt := range f.fonts {
		if x, err := fnt.GlyphIndex(&f.buf, r); err == nil && x != 0 {
			return f.faces[i]
		}
	}
	return f.faces[len(f.faces)-1]
}

func (f *fallbackFace) Close() error {
	var first error
	for _, face := range f.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *fallbackFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return f.pick(r).Glyph(dot, r)
}

func (f *fallbackFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return f.pick(r).GlyphBounds(r)
}

func (f *fallbackFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return f.pick(r).GlyphAdvance(r)
}

func (f *fallbackFace) Kern(r0, r1 rune) fixed.Int26_6 {
	face := f.pick(r0)
	if face != f.pick(r1) {
		return 0
	}
	return face.Kern(r0, r1)
}

func (f *fallbackFace) Metrics() font.Metrics {
	m := f.faces[0].Metrics()
	for _, face := range f.faces[1:] {
		other := face.Metrics()
		if other.Ascent > m.Ascent {
			m.Ascent = other.Ascent
		}
		if other.Descent > m.Descent {
			m.Descent = other.Descent
		}
		if other.Height > m.Height {
			m.Height = other.Height
		}
	}
	return m
}
