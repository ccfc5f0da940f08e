// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcd writes text to a character LCD or an OLED display.
//
// Each argument is printed on its own line, starting at -row and -col:
//
//	lcd -lines 4 -cols 20 "Hello" "world"
//	lcd -oled -h 32 "Hello"
//	lcd -console "no hardware"
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/GermanBionicSystems/displays/console"
	"github.com/GermanBionicSystems/displays/framebuf"
	"github.com/GermanBionicSystems/displays/hd44780"
	"github.com/GermanBionicSystems/displays/ssd1306"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

type config struct {
	oled      bool
	bus       string
	addr      uint
	useSPI    bool
	spiPort   string
	dc        string
	reset     string
	emulate   bool
	lines     int
	cols      int
	row       int
	col       int
	blink     bool
	off       bool
	w         int
	h         int
	extVCC    bool
	ttf       float64
	text      []string
	verbosity bool
}

func parseFlags() *config {
	c := &config{}
	flag.BoolVar(&c.oled, "oled", false, "Drive an SSD1306 OLED instead of an HD44780 LCD")
	flag.StringVar(&c.bus, "bus", "", "I²C bus (default: first available)")
	flag.UintVar(&c.addr, "addr", 0, "I²C address (default: 0x27 for the LCD, 0x3c for the OLED)")
	flag.BoolVar(&c.useSPI, "spi", false, "Use SPI: Adafruit backpack for the LCD, 4-wire SPI for the OLED")
	flag.StringVar(&c.spiPort, "spi-port", "", "SPI port (default: first available)")
	flag.StringVar(&c.dc, "dc", "GPIO24", "OLED Data/Command GPIO pin (DC) on SPI")
	flag.StringVar(&c.reset, "reset", "", "OLED reset GPIO pin on SPI")
	flag.BoolVar(&c.emulate, "console", false, "Render to the terminal instead of hardware")
	flag.IntVar(&c.lines, "lines", hd44780.DefaultOpts.Lines, "LCD lines")
	flag.IntVar(&c.cols, "cols", hd44780.DefaultOpts.Cols, "LCD columns")
	flag.IntVar(&c.row, "row", 0, "First row (LCD) or pixel row (OLED)")
	flag.IntVar(&c.col, "col", 0, "First column (LCD) or pixel column (OLED)")
	flag.BoolVar(&c.blink, "blink", false, "Show a blinking cursor on the LCD")
	flag.BoolVar(&c.off, "off", false, "Turn the display and backlight off, then exit")
	flag.IntVar(&c.w, "w", ssd1306.DefaultOpts.W, "OLED width")
	flag.IntVar(&c.h, "h", ssd1306.DefaultOpts.H, "OLED height")
	flag.BoolVar(&c.extVCC, "external-vcc", false, "OLED is powered from an external supply")
	flag.Float64Var(&c.ttf, "ttf", 0, "OLED TrueType font size in points (default: 7x13 bitmap font)")
	flag.BoolVar(&c.verbosity, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [line...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	c.text = flag.Args()
	return c
}

func main() {
	c := parseFlags()
	if c.verbosity {
		log.SetLevel(log.DebugLevel)
	}
	if !c.emulate {
		state, err := host.Init()
		if err != nil {
			log.Fatalln("Unable to initialize periph:", err)
		}
		log.Debugf("loaded %d drivers", len(state.Loaded))
	}
	var err error
	if c.oled {
		err = runOLED(c)
	} else {
		err = runLCD(c)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func openI2C(name string) (i2c.BusCloser, error) {
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I²C: %w", err)
	}
	log.WithField("bus", bus).Debug("opened I²C bus")
	return bus, nil
}

// release closes a resource opened on a path that then failed, and returns
// the original error.
func release(err error, closer func() error) error {
	if cerr := closer(); cerr != nil {
		log.WithError(cerr).Warn("failed to close")
	}
	return err
}

func openLCD(c *config) (*hd44780.Dev, func() error, error) {
	opts := &hd44780.Opts{Lines: c.lines, Cols: c.cols, Blink: c.blink}
	if c.emulate {
		emu := console.NewLCD(&console.LCDOpts{Lines: c.lines, Cols: c.cols})
		dev, err := hd44780.New(emu, opts)
		if err != nil {
			return nil, nil, err
		}
		return dev, emu.Render, nil
	}
	if c.useSPI {
		p, err := spireg.Open(c.spiPort)
		if err != nil {
			return nil, nil, err
		}
		conn, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
		if err != nil {
			return nil, nil, release(err, p.Close)
		}
		dev, err := hd44780.NewAdafruitSPIBackpack(conn, opts)
		if err != nil {
			return nil, nil, release(err, p.Close)
		}
		return dev, p.Close, nil
	}
	bus, err := openI2C(c.bus)
	if err != nil {
		return nil, nil, err
	}
	dev, err := hd44780.NewPCF857xBackpack(bus, uint16(c.addr), opts)
	if err != nil {
		return nil, nil, release(err, bus.Close)
	}
	return dev, bus.Close, nil
}

func runLCD(c *config) error {
	dev, done, err := openLCD(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := done(); err != nil {
			log.Warn(err)
		}
	}()
	log.WithFields(log.Fields{"device": dev, "rows": dev.Rows(), "cols": dev.Cols()}).Info("LCD ready")
	if c.off {
		return dev.Halt()
	}
	for ix, line := range c.text {
		if _, err := dev.PrintAt(c.row+ix, c.col, line); err != nil {
			if errors.Is(err, hd44780.ErrOutOfRange) {
				log.WithField("line", line).Warn("no room left on the display")
				break
			}
			return err
		}
	}
	log.WithField("position", dev.Position()).Debug("text written")
	return nil
}

// pixelDisplay is implemented by ssd1306.Dev and console.OLED.
type pixelDisplay interface {
	Framebuffer() *image1bit.VerticalLSB
	Show() error
	Halt() error
}

func openOLED(c *config) (pixelDisplay, func() error, error) {
	opts := &ssd1306.Opts{W: c.w, H: c.h, ExternalVCC: c.extVCC, Addr: uint16(c.addr)}
	if c.emulate {
		return console.NewOLED(&console.OLEDOpts{W: c.w, H: c.h}), func() error { return nil }, nil
	}
	if c.useSPI {
		p, err := spireg.Open(c.spiPort)
		if err != nil {
			return nil, nil, err
		}
		dc := gpioreg.ByName(c.dc)
		if dc == nil {
			return nil, nil, release(fmt.Errorf("unknown D/C pin %q", c.dc), p.Close)
		}
		var reset gpio.PinOut
		if c.reset != "" {
			if reset = gpioreg.ByName(c.reset); reset == nil {
				return nil, nil, release(fmt.Errorf("unknown reset pin %q", c.reset), p.Close)
			}
		}
		dev, err := ssd1306.NewSPI(p, dc, reset, opts)
		if err != nil {
			return nil, nil, release(err, p.Close)
		}
		return dev, p.Close, nil
	}
	bus, err := openI2C(c.bus)
	if err != nil {
		return nil, nil, err
	}
	dev, err := ssd1306.NewI2C(bus, opts)
	if err != nil {
		return nil, nil, release(err, bus.Close)
	}
	return dev, bus.Close, nil
}

func runOLED(c *config) error {
	dev, done, err := openOLED(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := done(); err != nil {
			log.Warn(err)
		}
	}()
	log.WithField("device", dev).Info("OLED ready")
	if c.off {
		return dev.Halt()
	}
	fb := framebuf.Wrap(dev.Framebuffer())
	fb.Fill(image1bit.Off)
	y := c.row
	for _, line := range c.text {
		if c.ttf > 0 {
			if err := fb.TrueType(line, c.col, y, c.ttf, image1bit.On); err != nil {
				return err
			}
			// Points to pixels at 72 DPI, plus some leading.
			y += int(c.ttf * 1.2)
			continue
		}
		fb.Text(line, c.col, y, image1bit.On)
		y += 13
	}
	return dev.Show()
}
