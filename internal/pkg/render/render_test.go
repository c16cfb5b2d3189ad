package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/domain"
)

func sampleTimetable(t *testing.T) *domain.Timetable {
	t.Helper()
	tt := domain.NewTimetable()
	for _, c := range []models.Course{
		{ID: "A1", Name: "Data Structures", Time: "월1~3", Credits: models.CreditsOf(3), Professor: "Kim", Place: "E301호", Color: models.Color{Hue: 10}},
		{ID: "B2", Name: "Operating Systems", Time: "수9", Credits: models.CreditsOf(3), Professor: "Lee", Color: models.Color{Hue: 200}},
		{ID: "C3", Name: "Chapel", Time: "", Credits: models.CreditsOf(0), Color: models.Color{Hue: 90}},
	} {
		require.NoError(t, tt.Add(c))
	}
	return tt
}

func TestRenderer_PNG(t *testing.T) {
	r, err := NewRenderer("", 2)
	require.NoError(t, err)

	tt := sampleTimetable(t)
	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf, tt))

	img, err := png.Decode(&buf)
	require.NoError(t, err)

	w, h := r.Size(tt)
	assert.Equal(t, (periodColWidth+5*dayColWidth)*2, w)
	assert.Equal(t, (headerHeight+9*rowHeight+extraRowHeight)*2, h)
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())

	// a pixel well inside the Monday 1~3 block carries the course colour
	x := (periodColWidth + dayColWidth - 10) * 2
	y := (headerHeight + 2*rowHeight + rowHeight - 5) * 2
	gotR, gotG, gotB, _ := img.At(x, y).RGBA()
	want := models.Color{Hue: 10}.RGBA()
	assert.Equal(t, uint32(want.R), gotR>>8)
	assert.Equal(t, uint32(want.G), gotG>>8)
	assert.Equal(t, uint32(want.B), gotB>>8)
}

func TestRenderer_EmptyTimetable(t *testing.T) {
	r, err := NewRenderer("", 1)
	require.NoError(t, err)

	w, h := r.Size(domain.NewTimetable())
	assert.Equal(t, periodColWidth+5*dayColWidth, w)
	assert.Equal(t, headerHeight+domain.MinVisibleRows*rowHeight, h)
}

func TestNewRenderer_MissingFont(t *testing.T) {
	_, err := NewRenderer("/nonexistent/font.ttf", 2)
	assert.Error(t, err)

	_, err = NewRendererFromFont([]byte("not a font"), 2)
	assert.Error(t, err)
}

func TestRenderer_Truncate(t *testing.T) {
	r, err := NewRenderer("", 1)
	require.NoError(t, err)

	assert.Equal(t, "short", r.truncate("short", 100))
	long := "a very long course title that will not fit"
	got := r.truncate(long, 70)
	assert.Less(t, len([]rune(got)), len([]rune(long)))
	assert.LessOrEqual(t, font.MeasureString(r.face, got).Ceil(), 70)
	assert.Contains(t, got, "…")
}

func TestRenderer_DrawsHangul(t *testing.T) {
	r, err := NewRenderer("", 1)
	require.NoError(t, err)

	for _, ch := range "월화수목금자료구조" {
		_, _, _, adv, ok := r.face.Glyph(fixed.P(0, 20), ch)
		require.True(t, ok, string(ch))
		assert.Greater(t, adv.Ceil(), 0, string(ch))
	}

	tt := domain.NewTimetable()
	require.NoError(t, tt.Add(models.Course{ID: "K1", Name: "자료구조", Time: "화1", Professor: "김교수", Color: models.Color{Hue: 30}}))
	img := r.Image(tt)

	// 월 and 화 headers must be drawn with different glyphs.
	mon := image.Rect(periodColWidth, 0, periodColWidth+dayColWidth, headerHeight)
	tue := mon.Add(image.Pt(dayColWidth, 0))
	assert.Greater(t, inked(img, mon), 0)
	assert.Greater(t, inked(img, tue), 0)
	assert.False(t, sameTile(img, mon, tue), "day headers render identically")

	// the Korean course title leaves ink in its block
	block := image.Rect(periodColWidth+dayColWidth+cellPadding, headerHeight+cellPadding,
		periodColWidth+2*dayColWidth-cellPadding, headerHeight+rowHeight/2)
	fill := models.Color{Hue: 30}.RGBA()
	var marked int
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			if img.RGBAAt(x, y) != fill {
				marked++
			}
		}
	}
	assert.Greater(t, marked, 0)
}

func TestRenderer_CustomFontKeepsFallbacks(t *testing.T) {
	r, err := NewRendererFromFont(goregular.TTF, 1)
	require.NoError(t, err)
	require.Len(t, r.face.faces, 3)

	// Go Regular has no Hangul, so 월 comes from the built-in font.
	assert.Equal(t, r.face.faces[1], r.face.pick('월'))
	assert.Equal(t, r.face.faces[0], r.face.pick('A'))
}

// inked counts pixels in rect that differ from the header fill.
func inked(img *image.RGBA, rect image.Rectangle) int {
	var n int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c != headerFill && c != gridLine {
				n++
			}
		}
	}
	return n
}

func sameTile(img *image.RGBA, a, b image.Rectangle) bool {
	for y := 0; y < a.Dy(); y++ {
		for x := 0; x < a.Dx(); x++ {
			if img.RGBAAt(a.Min.X+x, a.Min.Y+y) != img.RGBAAt(b.Min.X+x, b.Min.Y+y) {
				return false
			}
		}
	}
	return true
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTimetable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "월", v)

	v, err = f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures\nA1·Kim\nE301호", v)

	merged, err := f.GetMergeCells(SheetName)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.Contains(t, ranges, "B2:B4")
	assert.Contains(t, ranges, "A11:F11")

	v, err = f.GetCellValue(SheetName, "A11")
	require.NoError(t, err)
	assert.Equal(t, "Chapel (미지정)", v)

	v, err = f.GetCellValue(SheetName, "B13")
	require.NoError(t, err)
	assert.Equal(t, "6", v)
}
