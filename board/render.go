package board

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ShowBoard writes an ASCII rendering of the position to w (os.Stderr if w
// is nil). The vertex that was just played is bracketed.
func (b *Board) ShowBoard(w io.Writer) {
	if w == nil {
		w = defaultShowBoardWriter
	}
	printXLabel(w)
	for y := BSIZE; y >= 1; y-- {
		fmt.Fprintf(w, "%2d", y)
		for x := 1; x <= BSIZE; x++ {
			v := xy2ev(x, y)
			fmt.Fprint(w, cellString(b.state[v], v == b.prevMove))
		}
		fmt.Fprintf(w, "%2d\n", y)
	}
	printXLabel(w)
	fmt.Fprintln(w)
}

func cellString(s intersection, last bool) string {
	switch s {
	case iWhite:
		if last {
			return "[O]"
		}
		return " O "
	case iBlack:
		if last {
			return "[X]"
		}
		return " X "
	case iEmpty:
		return " . "
	default:
		return " ? "
	}
}

func printXLabel(w io.Writer) {
	fmt.Fprint(w, "  ")
	for x := 0; x < BSIZE; x++ {
		fmt.Fprintf(w, " %c ", xLabels[x])
	}
	fmt.Fprintln(w)
}

const (
	cellPx   = 32
	marginPx = 24
)

var defaultShowBoardWriter io.Writer = os.Stderr

// RenderPNG rasterises the current position to a PNG image, stones as
// filled circles labelled with the move number they were played on, mostly
// useful for --render debugging dumps. Font rasterisation is done with
// freetype against the bundled Go core font.
func (b *Board) RenderPNG(w io.Writer) error {
	size := marginPx*2 + cellPx*(BSIZE-1)
	img := image.NewRGBA(image.Rect(0, 0, size+cellPx, size+cellPx))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0xdc, 0xb3, 0x5c, 0xff}}, image.Point{}, draw.Src)

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return errors.Wrap(err, "board: parse font")
	}
	fc := freetype.NewContext()
	fc.SetFont(f)
	fc.SetFontSize(12)
	fc.SetDst(img)
	fc.SetClip(img.Bounds())
	fc.SetSrc(image.Black)

	for x := 1; x <= BSIZE; x++ {
		for y := 1; y <= BSIZE; y++ {
			px := marginPx + (x-1)*cellPx
			py := marginPx + (BSIZE-y)*cellPx
			drawLine(img, px, marginPx, px, size-marginPx+marginPx)
			drawLine(img, marginPx, py, size-marginPx+marginPx, py)
		}
	}

	moveNo := make(map[int]int, len(b.history))
	for i, mv := range b.history {
		moveNo[mv] = i + 1
	}

	for x := 1; x <= BSIZE; x++ {
		for y := 1; y <= BSIZE; y++ {
			v := xy2ev(x, y)
			s := b.state[v]
			if !s.isStone() {
				continue
			}
			px := marginPx + (x-1)*cellPx
			py := marginPx + (BSIZE-y)*cellPx
			stoneColor := color.RGBA{0x10, 0x10, 0x10, 0xff}
			if s.color() == White {
				stoneColor = color.RGBA{0xf5, 0xf5, 0xf5, 0xff}
			}
			drawDisc(img, px, py, cellPx/2-2, stoneColor)
			pt := fixed.Point26_6{X: fixed.I(px - 4), Y: fixed.I(py + 4)}
			fc.SetSrc(&image.Uniform{C: invert(stoneColor)})
			_, _ = fc.DrawString(fmt.Sprint(moveNo[v]), pt)
		}
	}

	return png.Encode(w, img)
}

func invert(c color.RGBA) color.RGBA {
	return color.RGBA{255 - c.R, 255 - c.G, 255 - c.B, 255}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int) {
	if x0 == x1 {
		for y := y0; y <= y1; y++ {
			img.Set(x0, y, color.Black)
		}
		return
	}
	for x := x0; x <= x1; x++ {
		img.Set(x, y0, color.Black)
	}
}

func drawDisc(img *image.RGBA, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}
