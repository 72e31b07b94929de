package pubtheme

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	ogWidth   = 1200
	ogHeight  = 630
	ogPadding = 32 // outer margin around the card
	ogInset   = 40 // padding inside the card
	ogRadius  = 12
)

var (
	ogDarkBackground  = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	ogLightBackground = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	ogMuted           = color.RGBA{0x64, 0x74, 0x8b, 0xff}
)

type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font

	mu    sync.Mutex
	faces map[string]font.Face
}

var (
	fontsOnce sync.Once
	fonts     *fontSet
	fontsErr  error
)

func loadFonts() (*fontSet, error) {
	fontsOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		fonts = &fontSet{regular: regular, bold: bold, faces: make(map[string]font.Face)}
	})
	return fonts, fontsErr
}

func (fs *fontSet) face(bold bool, size float64) (font.Face, error) {
	key := strconv.FormatBool(bold) + "/" + strconv.FormatFloat(size, 'f', -1, 64)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}
	src := fs.regular
	if bold {
		src = fs.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	fs.faces[key] = f
	return f, nil
}

// RenderOGImage draws the social preview card for p as a 1200x630 PNG.
func RenderOGImage(w io.Writer, p OGPost) error {
	fs, err := loadFonts()
	if err != nil {
		return err
	}

	bg := ogLightBackground
	card, ink := color.RGBA{0xff, 0xff, 0xff, 0xff}, color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	if p.IsDefaultModeDark {
		bg = ogDarkBackground
		card, ink = color.RGBA{0, 0, 0, 0xff}, color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	if c, ok := parseHexColor(p.BgColor); ok {
		bg = c
	}
	faded := mix(ink, card, 0.6)

	img := image.NewRGBA(image.Rect(0, 0, ogWidth, ogHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	cardRect := image.Rect(ogPadding, ogPadding, ogWidth-ogPadding, ogHeight-ogPadding)
	draw.DrawMask(img, cardRect, image.NewUniform(card), image.Point{},
		roundedMask{r: cardRect, radius: ogRadius}, cardRect.Min, draw.Over)

	left := cardRect.Min.X + ogInset
	top := cardRect.Min.Y + ogInset
	textWidth := cardRect.Dx() - 2*ogInset

	// Author and domain, top left.
	authorFace, err := fs.face(true, 24)
	if err != nil {
		return err
	}
	domainFace, err := fs.face(false, 24)
	if err != nil {
		return err
	}
	drawText(img, authorFace, ink, left, top+24, p.Author)
	drawText(img, domainFace, faded, left, top+24+32, p.Domain)

	// Footer row: reactions left, read time right.
	metaFace, err := fs.face(false, 24)
	if err != nil {
		return err
	}
	baseline := cardRect.Max.Y - ogInset
	if p.Reactions > 0 {
		drawText(img, metaFace, ogMuted, left, baseline, "♥ "+strconv.Itoa(p.Reactions))
	}
	if p.ReadTime > 0 {
		s := strconv.Itoa(p.ReadTime) + " min read"
		wd := font.MeasureString(metaFace, s).Ceil()
		drawText(img, metaFace, ogMuted, cardRect.Max.X-ogInset-wd, baseline, s)
	}

	// Title, centered in the space between header and footer.
	size := TitleSize(p.Title)
	titleFace, err := fs.face(true, size)
	if err != nil {
		return err
	}
	lines := wrapText(titleFace, p.Title, textWidth)
	lineHeight := int(size * 1.25)
	areaTop, areaBottom := top+24+32+24, baseline-24-24
	y := areaTop + (areaBottom-areaTop-lineHeight*len(lines))/2 + int(size)
	for _, line := range lines {
		wd := font.MeasureString(titleFace, line).Ceil()
		drawText(img, titleFace, ink, left+(textWidth-wd)/2, y, line)
		y += lineHeight
	}

	return png.Encode(w, img)
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrapText breaks s into lines no wider than width. A single word wider than
// width gets a line of its own.
func wrapText(face font.Face, s string, width int) []string {
	words := strings.Fields(s)
	var lines []string
	var cur string
	for _, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if cur != "" && font.MeasureString(face, next).Ceil() > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// roundedMask is an alpha mask covering r with rounded corners.
type roundedMask struct {
	r      image.Rectangle
	radius int
}

func (m roundedMask) ColorModel() color.Model { return color.AlphaModel }
func (m roundedMask) Bounds() image.Rectangle { return m.r }

func (m roundedMask) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.r)) {
		return color.Alpha{}
	}
	rad := m.radius
	cx, cy := x, y
	switch {
	case x < m.r.Min.X+rad:
		cx = m.r.Min.X + rad
	case x >= m.r.Max.X-rad:
		cx = m.r.Max.X - rad - 1
	}
	switch {
	case y < m.r.Min.Y+rad:
		cy = m.r.Min.Y + rad
	case y >= m.r.Max.Y-rad:
		cy = m.r.Max.Y - rad - 1
	}
	dx, dy := x-cx, y-cy
	if dx*dx+dy*dy > rad*rad {
		return color.Alpha{}
	}
	return color.Alpha{A: 0xff}
}

// parseHexColor parses "#rgb" or "#rrggbb".
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, true
}

// mix returns a blended toward b, keeping weight of a.
func mix(a, b color.RGBA, weight float64) color.RGBA {
	f := func(x, y uint8) uint8 { return uint8(float64(x)*weight + float64(y)*(1-weight)) }
	return color.RGBA{f(a.R, b.R), f(a.G, b.G), f(a.B, b.B), 0xff}
}

func (a *App) handleOGImage(c echo.Context) error {
	if a.ogLimiter != nil && !a.ogLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	p, err := DecodeOGPost(c.QueryParam("og"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid og parameter")
	}
	var buf bytes.Buffer
	if err := RenderOGImage(&buf, p); err != nil {
		return fmt.Errorf("render og image: %w", err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
