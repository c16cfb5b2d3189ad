package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Course is one lecture offering as delivered by the lecture API.
// JSON keys follow the upstream payload.
type Course struct {
	ID         string  `json:"강좌번호"`
	Name       string  `json:"과목명"`
	Department string  `json:"학부(과)"`
	Grade      FlexInt `json:"학년"`
	Time       string  `json:"수업시간"`
	Credits    Credits `json:"학점"`
	Professor  string  `json:"교수명"`
	Notice     string  `json:"비고,omitempty"`
	Type       string  `json:"이수구분,omitempty"`
	Place      string  `json:"장소,omitempty"`
	Color      Color   `json:"color"`
}

// ProfessorLabel returns the professor name, or 미지정 when blank.
func (c *Course) ProfessorLabel() string {
	if p := strings.TrimSpace(c.Professor); p != "" {
		return c.Professor
	}
	return "미지정"
}

// SearchText is the lower-cased haystack used for free text search.
func (c *Course) SearchText() string {
	return strings.ToLower(fmt.Sprintf("%s %s %s %d학년 %s %s %s학점",
		c.Name, c.ID, c.Department, c.Grade, c.Professor, c.Time, c.Credits))
}

// Catalog is a full course list snapshot.
type Catalog struct {
	FetchedAt string   `json:"time"`
	Courses   []Course `json:"api"`
}

// AssignColors gives every course its pastel cell colour.
func (c *Catalog) AssignColors() {
	for i := range c.Courses {
		c.Courses[i].Color = ColorFor(c.Courses[i].ID)
	}
}

// FlexInt decodes a JSON number or a numeric string. Strings are parsed
// like parseInt: leading digits count, anything else is zero.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexInt(leadingInt(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flexint: %w", err)
	}
	*f = FlexInt(int(n))
	return nil
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && s[end] == '-')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Credits is the 학점 value. Value follows parseInt, so "3학점" still adds
// three to a total; Numeric is set only when the whole value is a number.
type Credits struct {
	Value   int
	Numeric bool
	raw     string
}

// CreditsOf returns a numeric credit value.
func CreditsOf(n int) Credits {
	return Credits{Value: n, Numeric: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Credits) UnmarshalJSON(data []byte) error {
	*c = Credits{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		c.raw = s
		c.Value = leadingInt(s)
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		c.Numeric = err == nil && n == math.Trunc(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("credits: %w", err)
	}
	c.Value = int(n)
	c.Numeric = n == math.Trunc(n)
	return nil
}

// MarshalJSON keeps non-numeric upstream text so snapshots round-trip.
func (c Credits) MarshalJSON() ([]byte, error) {
	switch {
	case c.Numeric:
		return json.Marshal(c.Value)
	case c.raw != "":
		return json.Marshal(c.raw)
	default:
		return []byte("null"), nil
	}
}

func (c Credits) String() string {
	if !c.Numeric && c.raw != "" {
		return c.raw
	}
	return strconv.Itoa(c.Value)
}

// Color is a pastel cell colour, hsl(hue, 93%, 93%).
type Color struct {
	Hue int
}

const (
	colorSaturation = 0.93
	colorLightness  = 0.93
)

// ColorFor derives a stable colour from a course ID.
func ColorFor(id string) Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return Color{Hue: int(h.Sum32() % 360)}
}

// String renders the CSS form.
func (c Color) String() string {
	return fmt.Sprintf("hsl(%d, 93%%, 93%%)", c.Hue)
}

// MarshalJSON writes the CSS form.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON reads the CSS form back. Anything unparsable leaves hue 0.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var hue int
	if _, err := fmt.Sscanf(s, "hsl(%d,", &hue); err == nil {
		c.Hue = hue
	}
	return nil
}

// RGBA converts to an opaque RGBA colour for rasterising.
func (c Color) RGBA() color.RGBA {
	h := float64(((c.Hue % 360) + 360) % 360)
	s, l := colorSaturation, colorLightness

	chroma := (1 - math.Abs(2*l-1)) * s
	x := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - chroma/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = chroma, x, 0
	case h < 120:
		r, g, b = x, chroma, 0
	case h < 180:
		r, g, b = 0, chroma, x
	case h < 240:
		r, g, b = 0, x, chroma
	case h < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 0xff}
}

// Hex returns RRGGBB, used by spreadsheet fills.
func (c Color) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("%02X%02X%02X", rgba.R, rgba.G, rgba.B)
}
