// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 in 4 bit
// mode, as found on character LCDs of up to 4 lines of 40 columns.
//
// The driver only knows which instructions to send. Getting them to the
// controller is the job of a Transport: a port expander backpack (PCF8574 over
// I²C, 74HC595 over SPI) or GPIO lines.
//
// The controller is never read, so the driver keeps its own copy of the cursor
// position and re-addresses the controller whenever text wraps to another
// line.
//
// A Dev is not safe for concurrent use.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

const packageName = "hd44780"

var (
	// ErrNotReady is returned by a Dev that was not initialized by New.
	ErrNotReady = errors.New("hd44780: display not initialized")
	// ErrOutOfRange is returned when moving the cursor off the display.
	ErrOutOfRange = errors.New("hd44780: position out of range")

	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Opts holds the construction parameters of a display.
type Opts struct {
	// Lines and Cols are the display geometry. Values above MaxLines and
	// MaxCols are capped, 0 selects the DefaultOpts value.
	Lines int
	Cols  int
	// NoBacklight leaves the backlight off after initialization.
	NoBacklight bool
	// Cursor shows the cursor after initialization, Blink makes it blink.
	Cursor bool
	Blink  bool
}

// DefaultOpts is a 2 line by 16 column display, backlight on, cursor hidden.
var DefaultOpts = Opts{Lines: 2, Cols: 16}

type state int

const (
	stateUninitialized state = iota
	statePoweringUp
	stateModeReset
	stateFourBit
	stateConfigured
	stateReady
)

func (s state) String() string {
	switch s {
	case statePoweringUp:
		return "PoweringUp"
	case stateModeReset:
		return "ModeReset"
	case stateFourBit:
		return "FourBitModeSelected"
	case stateConfigured:
		return "Configured"
	case stateReady:
		return "Ready"
	default:
		return "Uninitialized"
	}
}

// Dev is an HD44780 display.
//
// Implements periph.io/x/conn/display.TextDisplay and display.DisplayBacklight.
// Rows and columns are zero based: MinRow() and MinCol() return 0.
type Dev struct {
	t     Transport
	cur   cursor
	flags flags
	state state
}

func clamp(v, def, max int) int {
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

// New initializes the controller behind t and returns the display, cleared,
// with the cursor at (0, 0).
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("hd44780: nil Transport")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	lines := clamp(opts.Lines, DefaultOpts.Lines, MaxLines)
	cols := clamp(opts.Cols, DefaultOpts.Cols, MaxCols)
	d := &Dev{t: t, cur: cursor{lines: lines, cols: cols}}
	if err := d.init(opts); err != nil {
		return nil, wrap(err)
	}
	return d, nil
}

// init runs the "initializing by instruction" sequence of the datasheet
// (figure 24). The order and delays must not change.
func (d *Dev) init(opts *Opts) error {
	d.state = statePoweringUp
	if err := d.t.Reset(); err != nil {
		return err
	}
	sleep(delayPowerUp)

	// The controller may be in 8 bit mode, or halfway through a 4 bit transfer.
	// Three resets bring it into 8 bit mode whatever the starting point.
	d.state = stateModeReset
	for _, delay := range []time.Duration{delayFirstReset, delayReset, delayReset} {
		if err := d.t.WriteNibble(FunctionReset); err != nil {
			return err
		}
		sleep(delay)
	}
	if err := d.t.WriteNibble(CmdFunction); err != nil {
		return err
	}
	sleep(delayReset)
	d.state = stateFourBit

	if err := d.setControl(flags{}); err != nil {
		return err
	}
	d.state = stateConfigured
	if err := d.setBacklight(true); err != nil {
		return err
	}
	if err := d.clear(); err != nil {
		return err
	}
	if err := d.command(entryCommand()); err != nil {
		return err
	}
	f := d.flags
	f.cursor = false
	if err := d.setControl(f); err != nil {
		return err
	}
	f.display = true
	if err := d.setControl(f); err != nil {
		return err
	}
	if err := d.command(functionCommand(d.cur.lines)); err != nil {
		return err
	}

	if opts.NoBacklight {
		if err := d.setBacklight(false); err != nil {
			return err
		}
	}
	if opts.Cursor || opts.Blink {
		f.cursor = opts.Cursor
		f.blink = opts.Blink
		if err := d.setControl(f); err != nil {
			return err
		}
	}
	d.state = stateReady
	return nil
}

func (d *Dev) ready() error {
	if d.state != stateReady {
		return ErrNotReady
	}
	return nil
}

// Position returns the cursor position.
func (d *Dev) Position() Position {
	return d.cur.pos
}

// Recent returns the cursor position before the last MoveTo or PrintAt.
func (d *Dev) Recent() Position {
	return d.cur.recent
}

// Not supported by this device. Returns display.ErrNotImplemented
func (d *Dev) AutoScroll(enabled bool) error {
	return ErrNotImplemented
}

// Clears the screen and moves the cursor to the first position.
func (d *Dev) Clear() error {
	if err := d.ready(); err != nil {
		return err
	}
	return wrap(d.clear())
}

// Return the number of columns the display supports
func (d *Dev) Cols() int {
	return d.cur.cols
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	if err := d.ready(); err != nil {
		return err
	}
	f := d.flags
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			f.cursor = false
			f.blink = false
		case display.CursorUnderline:
			f.cursor = true
		case display.CursorBlink, display.CursorBlock:
			f.blink = true
		default:
			return fmt.Errorf("%s: unexpected cursor: %d", packageName, mode)
		}
	}
	return wrap(d.setControl(f))
}

// CursorOn shows the cursor.
func (d *Dev) CursorOn() error {
	return d.changeControl(func(f *flags) { f.cursor = true })
}

// CursorOff hides the cursor, including a blinking one.
func (d *Dev) CursorOff() error {
	return d.changeControl(func(f *flags) {
		f.cursor = false
		f.blink = false
	})
}

// BlinkOn shows the cursor and makes it blink.
func (d *Dev) BlinkOn() error {
	return d.changeControl(func(f *flags) {
		f.cursor = true
		f.blink = true
	})
}

// BlinkOff stops the cursor blinking. The cursor stays visible.
func (d *Dev) BlinkOff() error {
	return d.changeControl(func(f *flags) { f.blink = false })
}

// Turn the display on / off. The display RAM is preserved when off.
func (d *Dev) Display(on bool) error {
	return d.changeControl(func(f *flags) { f.display = on })
}

// Halt clears the display, turns it off, and turns the backlight off.
func (d *Dev) Halt() error {
	if err := d.ready(); err != nil {
		return err
	}
	err := d.clear()
	if err == nil {
		err = d.changeControl(func(f *flags) { f.display = false })
	}
	if err == nil {
		err = d.setBacklight(false)
	}
	return wrap(err)
}

// Move the cursor home (MinRow(),MinCol())
func (d *Dev) Home() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(CmdHome); err != nil {
		return wrap(err)
	}
	d.cur.moveTo(Position{}, false)
	return nil
}

// Return the min column position.
func (d *Dev) MinCol() int {
	return 0
}

// Return the min row position.
func (d *Dev) MinRow() int {
	return 0
}

// Move the cursor one position in direction dir. The cursor wraps at the
// display edges like text does.
func (d *Dev) Move(dir display.CursorDirection) error {
	if err := d.ready(); err != nil {
		return err
	}
	c := d.cur
	switch dir {
	case display.Forward:
		c.advance()
	case display.Backward:
		c.retreat()
	case display.Up:
		c.vertical(-1)
	case display.Down:
		c.vertical(1)
	default:
		return fmt.Errorf("%s: unexpected direction: %d", packageName, dir)
	}
	return wrap(d.moveTo(c.pos, false))
}

// MoveTo moves the cursor to row, col. The position it leaves is returned by
// Recent afterwards.
func (d *Dev) MoveTo(row, col int) error {
	if err := d.ready(); err != nil {
		return err
	}
	return wrap(d.moveTo(Position{Row: row, Col: col}, true))
}

// Return the number of rows the display supports.
func (d *Dev) Rows() int {
	return d.cur.lines
}

// Return info about the display.
func (d *Dev) String() string {
	return fmt.Sprintf("HD44780{%v} - Rows: %d, Cols: %d, %s", d.t, d.cur.lines, d.cur.cols, d.state)
}

// WriteByte writes the character c at the cursor and advances it. '\n' moves
// to the start of the next line without writing anything. Text wraps from the
// end of a line to the next one, and from the last line to the first.
//
// Codes 0 to 7 are the glyphs set with DefineGlyph.
func (d *Dev) WriteByte(c byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	return wrap(d.putByte(c))
}

// Write writes p as character codes, see WriteByte.
func (d *Dev) Write(p []byte) (n int, err error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	n, err = d.write(p)
	return n, wrap(err)
}

// Write a string output to the display.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// PrintAt writes text starting at row, col, then puts the cursor back where it
// was, so that following writes continue from there.
func (d *Dev) PrintAt(row, col int, text string) (int, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	saved := d.cur.pos
	if err := d.moveTo(Position{Row: row, Col: col}, true); err != nil {
		return 0, wrap(err)
	}
	n, err := d.write([]byte(text))
	if err != nil {
		return n, wrap(err)
	}
	return n, wrap(d.moveTo(saved, false))
}

// DefineGlyph stores a 5x8 character in CGRAM slot (0-7, wrapping). Each byte
// of bitmap is one row, top first, using the lower 5 bits. The glyph is
// written as character code slot.
func (d *Dev) DefineGlyph(slot int, bitmap [8]byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(setCGRAMCommand(slot)); err != nil {
		return wrap(err)
	}
	sleep(delayCGRAM)
	for _, row := range bitmap {
		if err := d.t.Send(row, Data); err != nil {
			return wrap(err)
		}
		sleep(delayCGRAM)
	}
	// Data writes go to CGRAM until a DDRAM address is set.
	return wrap(d.address())
}

// Backlight turns the display's backlight on for any intensity above 0. It
// does nothing when the transport has no backlight control.
func (d *Dev) Backlight(intensity display.Intensity) error {
	if err := d.ready(); err != nil {
		return err
	}
	return wrap(d.setBacklight(intensity > 0))
}

// BacklightOn turns the backlight on.
func (d *Dev) BacklightOn() error {
	return d.Backlight(0xff)
}

// BacklightOff turns the backlight off.
func (d *Dev) BacklightOff() error {
	return d.Backlight(0)
}

func (d *Dev) command(cmd byte) error {
	return d.t.Send(cmd, Instruction)
}

func (d *Dev) clear() error {
	if err := d.command(CmdClear); err != nil {
		return err
	}
	if err := d.command(CmdHome); err != nil {
		return err
	}
	d.cur.moveTo(Position{}, false)
	return nil
}

// address points the controller at the tracked cursor position.
func (d *Dev) address() error {
	return d.command(setDDRAMCommand(d.cur.pos))
}

func (d *Dev) moveTo(p Position, remember bool) error {
	if !d.cur.contains(p) {
		return fmt.Errorf("%w: %s on %dx%d", ErrOutOfRange, p, d.cur.lines, d.cur.cols)
	}
	if err := d.command(setDDRAMCommand(p)); err != nil {
		return err
	}
	d.cur.moveTo(p, remember)
	return nil
}

func (d *Dev) putByte(c byte) error {
	if c == '\n' {
		next := d.cur
		next.newline()
		if err := d.command(setDDRAMCommand(next.pos)); err != nil {
			return err
		}
		d.cur = next
		return nil
	}
	if err := d.t.Send(c, Data); err != nil {
		return err
	}
	if d.cur.advance() {
		return d.address()
	}
	return nil
}

func (d *Dev) write(p []byte) (int, error) {
	for n, c := range p {
		if err := d.putByte(c); err != nil {
			return n, err
		}
	}
	return len(p), nil
}

// changeControl applies change to a copy of the flags and sends them. The
// flags are only kept once the controller accepted them.
func (d *Dev) changeControl(change func(*flags)) error {
	if err := d.ready(); err != nil {
		return err
	}
	f := d.flags
	change(&f)
	return wrap(d.setControl(f))
}

func (d *Dev) setControl(f flags) error {
	if err := d.command(controlCommand(f)); err != nil {
		return err
	}
	d.flags = f
	return nil
}

func (d *Dev) setBacklight(on bool) error {
	if bl, ok := d.t.(Backlighter); ok {
		if err := bl.SetBacklight(on); err != nil {
			return err
		}
	}
	d.flags.backlight = on
	return nil
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
