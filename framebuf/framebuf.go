// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package framebuf draws on 1 bit framebuffers in the SSD1306 memory layout.
//
// A Buffer wraps an image1bit.VerticalLSB, usually the one returned by
// ssd1306.Dev.Framebuffer(), and adds the drawing primitives small OLED
// programs need: fill, pixels, lines, scrolling and text. Drawing never
// touches the display; call Show on the device afterward.
//
// Coordinates outside the buffer are clipped.
package framebuf

import (
	"image"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Buffer is a drawing surface over a 1 bit image.
type Buffer struct {
	img *image1bit.VerticalLSB
}

// New returns a Buffer with its own w by h image, all pixels off.
func New(w, h int) *Buffer {
	return &Buffer{img: image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))}
}

// Wrap returns a Buffer drawing on img.
func Wrap(img *image1bit.VerticalLSB) *Buffer {
	return &Buffer{img: img}
}

// Image returns the underlying image.
func (b *Buffer) Image() *image1bit.VerticalLSB {
	return b.img
}

// Bounds returns the drawable area.
func (b *Buffer) Bounds() image.Rectangle {
	return b.img.Rect
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c image1bit.Bit) {
	v := byte(0)
	if c {
		v = 0xff
	}
	for i := range b.img.Pix {
		b.img.Pix[i] = v
	}
}

// Pixel sets the pixel at x, y.
func (b *Buffer) Pixel(x, y int, c image1bit.Bit) {
	if !(image.Point{X: x, Y: y}).In(b.img.Rect) {
		return
	}
	b.img.SetBit(x, y, c)
}

// At returns the pixel at x, y. Pixels outside the buffer are off.
func (b *Buffer) At(x, y int) image1bit.Bit {
	if !(image.Point{X: x, Y: y}).In(b.img.Rect) {
		return image1bit.Off
	}
	return b.img.BitAt(x, y)
}

// HLine draws a line across the whole width at row y.
func (b *Buffer) HLine(y int, c image1bit.Bit) {
	for x := b.img.Rect.Min.X; x < b.img.Rect.Max.X; x++ {
		b.Pixel(x, y, c)
	}
}

// VLine draws a line across the whole height at column x.
func (b *Buffer) VLine(x int, c image1bit.Bit) {
	for y := b.img.Rect.Min.Y; y < b.img.Rect.Max.Y; y++ {
		b.Pixel(x, y, c)
	}
}

// Rect fills r with c.
func (b *Buffer) Rect(r image.Rectangle, c image1bit.Bit) {
	draw.Draw(b.img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// Scroll moves the content by dx, dy pixels. Positive values move right and
// down. The uncovered area is cleared.
func (b *Buffer) Scroll(dx, dy int) {
	src := image1bit.NewVerticalLSB(b.img.Rect)
	copy(src.Pix, b.img.Pix)
	r := b.img.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := image1bit.Off
			if p := (image.Point{X: x - dx, Y: y - dy}); p.In(r) {
				c = src.BitAt(p.X, p.Y)
			}
			b.img.SetBit(x, y, c)
		}
	}
}

// Text draws s with a 7x13 pixel font. x, y is the top left corner of the
// first character. It returns the horizontal advance in pixels.
func (b *Buffer) Text(s string, x, y int, c image1bit.Bit) int {
	f := basicfont.Face7x13
	drawer := font.Drawer{
		Dst:  b.img,
		Src:  &image.Uniform{c},
		Face: f,
		Dot:  fixed.P(x, y+f.Ascent),
	}
	drawer.DrawString(s)
	return drawer.Dot.X.Round() - x
}

var (
	regularOnce sync.Once
	regular     *truetype.Font
	regularErr  error
)

func regularFont() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// TrueType draws s with the Go regular font at size points. x, y is the top
// left corner of the text. The antialiased rendering is thresholded at 50%.
func (b *Buffer) TrueType(s string, x, y int, size float64, c image1bit.Bit) error {
	f, err := regularFont()
	if err != nil {
		return err
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size})
	defer face.Close()

	r := b.img.Rect
	dc := gg.NewContext(r.Dx(), r.Dy())
	dc.SetFontFace(face)
	dc.SetRGB(1, 1, 1)
	ascent := float64(face.Metrics().Ascent.Ceil())
	dc.DrawString(s, float64(x-r.Min.X), float64(y-r.Min.Y)+ascent)
	mask := dc.Image()
	mb := mask.Bounds()
	for py := mb.Min.Y; py < mb.Max.Y; py++ {
		for px := mb.Min.X; px < mb.Max.X; px++ {
			if _, _, _, a := mask.At(px, py).RGBA(); a >= 0x8000 {
				b.img.SetBit(px+r.Min.X, py+r.Min.Y, c)
			}
		}
	}
	return nil
}
