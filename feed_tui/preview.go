package feedtui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// renderHalfBlocks draws img into a cols x rows cell grid, two pixels per cell
// using the upper half block with separate foreground and background colors.
func renderHalfBlocks(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	// keep the aspect ratio; a cell is roughly twice as tall as it is wide
	w := cols
	h := w * b.Dy() / b.Dx()
	if h > rows*2 {
		h = rows * 2
		w = h * b.Dx() / b.Dy()
	}
	if h%2 == 1 {
		h++
	}
	if w < 1 || h < 2 {
		return ""
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := small.RGBAAt(x, y)
			bottom := small.RGBAAt(x, y+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom)).
				Render("▀"))
		}
		if y+2 < h {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	const digits = "0123456789abcdef"
	buf := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		buf[1+i*2] = digits[v>>4]
		buf[2+i*2] = digits[v&0x0f]
	}
	return lipgloss.Color(string(buf))
}
