// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package console implements display emulators that output to a terminal
// (stdout) using ANSI color codes.
//
// LCD is an HD44780 controller: pass it to hd44780.New in place of a real
// transport. OLED is a 1 bit display.Drawer the size of an SSD1306 panel.
//
// Useful while the display is still in the mail, and in tests.
package console

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/GermanBionicSystems/displays/hd44780"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// ErrNotFourBit is returned when a byte is sent before the controller was
// switched to 4 bit mode.
var ErrNotFourBit = errors.New("console: byte sent before 4 bit mode was selected")

// LCDOpts represents the options of the character LCD emulator.
type LCDOpts struct {
	Lines int
	Cols  int
	// W is where the display is rendered. Defaults to stdout.
	W       io.Writer
	Palette *ansi256.Palette
}

var (
	backlightOn  = color.NRGBA{0x30, 0x90, 0xff, 0xff}
	backlightOff = color.NRGBA{0x20, 0x20, 0x20, 0xff}
)

// LCD emulates an HD44780 controller. It decodes the instructions and keeps
// the display and character generator RAM.
type LCD struct {
	w       io.Writer
	palette ansi256.Palette
	lines   int
	cols    int

	ddram [0x80]byte
	cgram [0x40]byte
	// addr is the address counter. It points in cgram when inCGRAM is set.
	addr    byte
	inCGRAM bool

	fourBit   bool
	increment bool
	backlight bool
	display   bool
	cursor    bool
	blink     bool

	buf bytes.Buffer
}

// NewLCD returns an LCD emulator. Lines and Cols select how much of the
// display RAM is rendered. They are capped the way hd44780.New caps them, nil
// opts selects hd44780.DefaultOpts geometry.
func NewLCD(opts *LCDOpts) *LCD {
	if opts == nil {
		opts = &LCDOpts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	l := &LCD{
		w:         w,
		palette:   *p,
		lines:     geometry(opts.Lines, hd44780.DefaultOpts.Lines, hd44780.MaxLines),
		cols:      geometry(opts.Cols, hd44780.DefaultOpts.Cols, hd44780.MaxCols),
		increment: true,
	}
	l.clear()
	return l
}

func geometry(v, def, max int) int {
	switch {
	case v == 0:
		return def
	case v < 1:
		return 1
	case v > max:
		return max
	}
	return v
}

func (l *LCD) String() string {
	return fmt.Sprintf("Console LCD %dx%d", l.lines, l.cols)
}

// Reset implements hd44780.Transport.
func (l *LCD) Reset() error {
	return nil
}

// WriteNibble implements hd44780.Transport. A single nibble is a function set
// instruction with the lower 4 bits low.
func (l *LCD) WriteNibble(value byte) error {
	if value&hd44780.CmdFunction != 0 {
		l.fourBit = value&hd44780.Function8Bit == 0
	}
	return nil
}

// Send implements hd44780.Transport.
func (l *LCD) Send(value byte, mode hd44780.Mode) error {
	if !l.fourBit {
		return ErrNotFourBit
	}
	if mode == hd44780.Data {
		l.data(value)
		return nil
	}
	l.instruction(value)
	return nil
}

// SetBacklight implements hd44780.Backlighter.
func (l *LCD) SetBacklight(on bool) error {
	l.backlight = on
	return nil
}

// Backlight returns whether the backlight is on.
func (l *LCD) Backlight() bool {
	return l.backlight
}

// Control returns the display, cursor and blink bits last set.
func (l *LCD) Control() (display, cursor, blink bool) {
	return l.display, l.cursor, l.blink
}

// Address returns the address counter and whether it points in CGRAM.
func (l *LCD) Address() (addr byte, cgram bool) {
	return l.addr, l.inCGRAM
}

// Text returns the characters of line row.
func (l *LCD) Text(row int) string {
	b := make([]byte, l.cols)
	for col := range b {
		b[col] = l.ddram[hd44780.Address(row, col)]
	}
	return string(b)
}

// Glyph returns the rows of a user defined character.
func (l *LCD) Glyph(slot int) [8]byte {
	var g [8]byte
	copy(g[:], l.cgram[(slot&7)<<3:])
	return g
}

// Render draws the display to the terminal. Characters are shown on a
// backlight colored frame; user defined characters are shown as '#'.
func (l *LCD) Render() error {
	bl := backlightOff
	if l.backlight {
		bl = backlightOn
	}
	edge := l.palette.Block(bl)
	l.buf.Reset()
	_, _ = l.buf.WriteString("\033[0m")
	_, _ = l.buf.WriteString(strings.Repeat(edge, l.cols+2))
	_, _ = l.buf.WriteString("\033[0m\n")
	for row := range l.lines {
		_, _ = l.buf.WriteString(edge)
		_, _ = l.buf.WriteString("\033[0m")
		for col := range l.cols {
			a := hd44780.Address(row, col)
			c := byte(' ')
			if l.display {
				c = printable(l.ddram[a])
			}
			if l.display && (l.cursor || l.blink) && !l.inCGRAM && a == l.addr {
				// Underline the cursor, blink it when asked.
				mode := "4"
				if l.blink {
					mode = "4;5"
				}
				_, _ = fmt.Fprintf(&l.buf, "\033[%sm%c\033[0m", mode, c)
				continue
			}
			_ = l.buf.WriteByte(c)
		}
		_, _ = l.buf.WriteString(edge)
		_, _ = l.buf.WriteString("\033[0m\n")
	}
	_, _ = l.buf.WriteString(strings.Repeat(edge, l.cols+2))
	_, _ = l.buf.WriteString("\033[0m\n")
	_, err := l.buf.WriteTo(l.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (l *LCD) Halt() error {
	_, err := l.w.Write([]byte("\033[0m"))
	return err
}

func printable(c byte) byte {
	switch {
	case c < 8:
		return '#'
	case c < 0x20 || c > 0x7e:
		return '?'
	}
	return c
}

func (l *LCD) clear() {
	for i := range l.ddram {
		l.ddram[i] = ' '
	}
	l.addr = 0
	l.inCGRAM = false
}

func (l *LCD) instruction(v byte) {
	switch {
	case v&hd44780.CmdSetDDRAM != 0:
		l.addr = v &^ hd44780.CmdSetDDRAM
		l.inCGRAM = false
	case v&hd44780.CmdSetCGRAM != 0:
		l.addr = v &^ hd44780.CmdSetCGRAM
		l.inCGRAM = true
	case v&hd44780.CmdFunction != 0:
		l.fourBit = v&hd44780.Function8Bit == 0
	case v&hd44780.CmdShift != 0:
		if v&hd44780.ShiftDisplay == 0 {
			l.step(v&hd44780.ShiftRight != 0)
		}
	case v&hd44780.CmdControl != 0:
		l.display = v&hd44780.ControlDisplay != 0
		l.cursor = v&hd44780.ControlCursor != 0
		l.blink = v&hd44780.ControlBlink != 0
	case v&hd44780.CmdEntry != 0:
		l.increment = v&hd44780.EntryIncrement != 0
	case v&hd44780.CmdHome != 0:
		l.addr = 0
		l.inCGRAM = false
	case v&hd44780.CmdClear != 0:
		l.clear()
	}
}

func (l *LCD) data(v byte) {
	if l.inCGRAM {
		l.cgram[l.addr&0x3f] = v & 0x1f
	} else {
		l.ddram[l.addr&0x7f] = v
	}
	l.step(l.increment)
}

// step moves the address counter. DDRAM addresses wrap at 0x80, CGRAM
// addresses at 0x40.
func (l *LCD) step(forward bool) {
	mask := byte(0x7f)
	if l.inCGRAM {
		mask = 0x3f
	}
	if forward {
		l.addr = (l.addr + 1) & mask
	} else {
		l.addr = (l.addr - 1) & mask
	}
}

var _ hd44780.Transport = &LCD{}
var _ hd44780.Backlighter = &LCD{}
