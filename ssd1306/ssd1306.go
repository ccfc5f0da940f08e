// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

// https://learn.adafruit.com/ssd1306-oled-displays-with-raspberry-pi-and-beaglebone-black?view=all

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const packageName = "ssd1306"

const (
	_CHARGEPUMP          = 0x8D
	_COLUMNADDR          = 0x21
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGEADDR            = 0x22
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

// DefaultAddress is the I²C address of most modules. Some use 0x3D.
const DefaultAddress uint16 = 0x3c

// DefaultOpts is a 128x64 module powered by its internal charge pump.
var DefaultOpts = Opts{
	W:    128,
	H:    64,
	Addr: DefaultAddress,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// ExternalVCC is set for panels powered from an external supply, which
	// disables the charge pump and shortens the pre-charge period.
	ExternalVCC bool
	// MirrorVertical corresponds to the COM remap configuration in the OLED panel
	// hardware. Try toggling this if the display is flipped vertically.
	MirrorVertical bool
	// MirrorHorizontal corresponds to the SEG remap configuration in the OLED panel
	// hardware. Try toggling this if the display is flipped horizontally.
	MirrorHorizontal bool
	// The I2C address of the display. 0 selects DefaultAddress.
	Addr uint16
}

func (o *Opts) validate() error {
	if o.W < 8 || o.W > 128 || o.W&7 != 0 {
		return fmt.Errorf("%s: invalid width %d", packageName, o.W)
	}
	if o.H < 8 || o.H > 64 || o.H&7 != 0 {
		return fmt.Errorf("%s: invalid height %d", packageName, o.H)
	}
	return nil
}

var sleep = time.Sleep

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// NewSPI returns a Dev object that communicates over SPI to a SSD1306 display
// controller.
//
// # Wiring
//
// Connect SDA to SPI_MOSI, SCK to SPI_CLK, CS to SPI_CS, and D/C to the dc
// GPIO pin. 3-wire SPI is not supported.
//
// reset is the RES pin. When not nil, the controller is reset before it is
// initialized. Pass nil if RES is tied high.
func NewSPI(p spi.Port, dc, reset gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("ssd1306: a D/C pin is required")
	}
	o, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, wrap(err)
	}
	if reset != nil {
		if err := powerOn(reset); err != nil {
			return nil, wrap(err)
		}
	}
	// The serial clock cycle time is 100ns.
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, wrap(err)
	}
	return newDev(c, o, true, dc)
}

// NewI2C returns a Dev object that communicates over I²C to a SSD1306 display
// controller.
func NewI2C(bus i2c.Bus, opts *Opts) (*Dev, error) {
	o, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	if o.Addr == 0 {
		o.Addr = DefaultAddress
	}
	// Maximum clock speed is 1/2.5µs = 400KHz.
	return newDev(&i2c.Dev{Bus: bus, Addr: o.Addr}, o, false, nil)
}

func normalize(opts *Opts) (Opts, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	return o, o.validate()
}

// powerOn pulses RES low.
func powerOn(reset gpio.PinOut) error {
	if err := reset.Out(gpio.High); err != nil {
		return err
	}
	sleep(time.Millisecond)
	if err := reset.Out(gpio.Low); err != nil {
		return err
	}
	sleep(10 * time.Millisecond)
	return reset.Out(gpio.High)
}

// Dev is an open handle to the display controller.
//
// The display shows the content of a framebuffer owned by the Dev. Draw into
// Framebuffer(), then call Show().
type Dev struct {
	c    conn.Conn
	dc   gpio.PinOut
	spi  bool
	opts Opts

	// Display size controlled by the SSD1306.
	rect image.Rectangle
	// See page 25 of the datasheet for the GDDRAM pages structure: each byte
	// is a column of 8 vertical pixels, LSB on top.
	fb *image1bit.VerticalLSB
}

// newDev is the common initialization code that is independent of the
// communication protocol (I²C or SPI) being used.
func newDev(c conn.Conn, opts Opts, usingSPI bool, dc gpio.PinOut) (*Dev, error) {
	d := &Dev{
		c:    c,
		spi:  usingSPI,
		dc:   dc,
		opts: opts,
		rect: image.Rect(0, 0, opts.W, opts.H),
	}
	d.fb = image1bit.NewVerticalLSB(d.rect)
	if err := d.sendCommand(initCommands(&opts)); err != nil {
		return nil, wrap(err)
	}
	if err := d.Show(); err != nil {
		return nil, err
	}
	return d, nil
}

// initCommands returns the initialization sequence. Page 64 of the datasheet
// has the recommended flow, page 28 lists all the commands.
func initCommands(opts *Opts) []byte {
	// See page 40.
	segRemap := byte(_SETSEGMENTREMAP)
	if opts.MirrorHorizontal {
		segRemap = _SEGREMAP
	}
	comScan := byte(_COMSCANDEC)
	if opts.MirrorVertical {
		comScan = _COMSCANINC
	}
	comPins := byte(0x12)
	if opts.H == 32 {
		comPins = 0x02
	}
	precharge := byte(0xF1)
	chargePump := byte(0x14)
	if opts.ExternalVCC {
		precharge = 0x22
		chargePump = 0x10
	}
	return []byte{
		_DISPLAYOFF,
		_MEMORYMODE, 0x00, // Horizontal addressing
		_SETSTARTLINE | 0x00,
		segRemap, // Column 127 mapped to SEG0
		_SETMULTIPLEX, byte(opts.H - 1),
		comScan, // Scan from COM[N] to COM0
		_SETDISPLAYOFFSET, 0x00,
		_SETCOMPINS, comPins,
		_SETDISPLAYCLOCKDIV, 0x80, // Power on reset value
		_SETPRECHARGE, precharge,
		_SETVCOMDETECT, 0x30, // 0.83*Vcc
		_SETCONTRAST, 0xFF,
		_DISPLAYALLON_RESUME, // Output follows RAM content
		_NORMALDISPLAY,
		_CHARGEPUMP, chargePump, // Page 62
		_DISPLAYON,
	}
}

func (d *Dev) String() string {
	if d.spi {
		return fmt.Sprintf("SSD1306.Dev{%s, %s, %s}", d.c, d.dc, d.rect.Max)
	}
	return fmt.Sprintf("SSD1306.Dev{%s, %s}", d.c, d.rect.Max)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Framebuffer returns the image shown by Show. Changes are only visible
// after the next Show.
func (d *Dev) Framebuffer() *image1bit.VerticalLSB {
	return d.fb
}

// Draw implements display.Drawer.
//
// It draws src into the framebuffer and shows it. On a slow bus (I²C) it may
// be preferable to draw into Framebuffer() and call Show() less often.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if src != image.Image(d.fb) {
		draw.Src.Draw(d.fb, r, src, sp)
	}
	return d.Show()
}

// Write replaces the framebuffer with pixels and shows it.
//
// The format is unusual as each byte represent 8 vertical pixels at a time.
// The format is horizontal bands of 8 pixels high.
//
// This function accepts the content of image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.fb.Pix) {
		return 0, fmt.Errorf("%s: invalid pixel stream length; expected %d bytes, got %d bytes", packageName, len(d.fb.Pix), len(pixels))
	}
	copy(d.fb.Pix, pixels)
	if err := d.Show(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Show sends the whole framebuffer to the display.
func (d *Dev) Show() error {
	x0, x1 := 0, d.rect.Dx()-1
	if d.rect.Dx() == 64 {
		// 64 pixel wide panels use the middle columns of the controller.
		x0 += 32
		x1 += 32
	}
	pages := d.rect.Dy() / 8
	cmd := []byte{
		_COLUMNADDR, byte(x0), byte(x1),
		_PAGEADDR, 0, byte(pages - 1),
	}
	if err := d.sendCommand(cmd); err != nil {
		return wrap(err)
	}
	return wrap(d.sendData(d.fb.Pix))
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return wrap(d.sendCommand([]byte{_SETCONTRAST, level}))
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	b := []byte{_NORMALDISPLAY}
	if blackOnWhite {
		b[0] = _INVERTDISPLAY
	}
	return wrap(d.sendCommand(b))
}

// PowerOff turns the panel off. The display RAM is kept.
func (d *Dev) PowerOff() error {
	return wrap(d.sendCommand([]byte{_DISPLAYOFF}))
}

// PowerOn turns the panel back on.
func (d *Dev) PowerOn() error {
	return wrap(d.sendCommand([]byte{_DISPLAYON}))
}

// Halt turns off the display.
func (d *Dev) Halt() error {
	return d.PowerOff()
}

func (d *Dev) sendData(c []byte) error {
	if d.spi {
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	// A single transaction, as some hardware I²C controllers require.
	return d.c.Tx(append([]byte{i2cData}, c...), nil)
}

func (d *Dev) sendCommand(c []byte) error {
	if d.spi {
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
