// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package console

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// OLEDOpts represents the options of the pixel display emulator.
type OLEDOpts struct {
	W int
	H int
	// Out is where the display is rendered. Defaults to stdout.
	Out     io.Writer
	Palette *ansi256.Palette
	// On is the color of lit pixels. Defaults to white.
	On color.NRGBA
}

// OLED is a monochrome pixel display emulator that outputs to the console,
// one color block per pixel.
type OLED struct {
	w       io.Writer
	palette ansi256.Palette
	on      color.NRGBA
	fb      *image1bit.VerticalLSB

	buf bytes.Buffer
}

// NewOLED returns an OLED that displays at the console. A zero size selects a
// 128x64 panel.
func NewOLED(opts *OLEDOpts) *OLED {
	if opts == nil {
		opts = &OLEDOpts{}
	}
	w, h := opts.W, opts.H
	if w <= 0 || h <= 0 {
		w, h = 128, 64
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	out := opts.Out
	if out == nil {
		out = colorable.NewColorableStdout()
	}
	on := opts.On
	if on == (color.NRGBA{}) {
		on = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	}
	return &OLED{
		w:       out,
		palette: *p,
		on:      on,
		fb:      image1bit.NewVerticalLSB(image.Rect(0, 0, w, h)),
	}
}

func (o *OLED) String() string {
	return fmt.Sprintf("Console OLED %s", o.fb.Rect.Max)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so it is not corrupted.
func (o *OLED) Halt() error {
	_, err := o.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (o *OLED) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (o *OLED) Bounds() image.Rectangle {
	return o.fb.Rect
}

// Framebuffer returns the image shown by Show.
func (o *OLED) Framebuffer() *image1bit.VerticalLSB {
	return o.fb
}

// Draw implements display.Drawer.
func (o *OLED) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if src != image.Image(o.fb) {
		draw.Src.Draw(o.fb, r, src, sp)
	}
	return o.Show()
}

// Write accepts the content of image1bit.VerticalLSB.Pix and shows it.
func (o *OLED) Write(pixels []byte) (int, error) {
	if len(pixels) != len(o.fb.Pix) {
		return 0, fmt.Errorf("console: invalid pixel stream length; expected %d bytes, got %d bytes", len(o.fb.Pix), len(pixels))
	}
	copy(o.fb.Pix, pixels)
	return len(pixels), o.Show()
}

// Show renders the framebuffer.
func (o *OLED) Show() error {
	// This code is designed to minimize the amount of memory allocated per call.
	o.buf.Reset()
	off := o.palette.Block(color.NRGBA{0, 0, 0, 0xff})
	on := o.palette.Block(o.on)
	r := o.fb.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		_, _ = o.buf.WriteString("\033[0m")
		for x := r.Min.X; x < r.Max.X; x++ {
			if o.fb.BitAt(x, y) {
				_, _ = o.buf.WriteString(on)
			} else {
				_, _ = o.buf.WriteString(off)
			}
		}
		_, _ = o.buf.WriteString("\033[0m\n")
	}
	_, err := o.buf.WriteTo(o.w)
	return err
}

var _ display.Drawer = &OLED{}
