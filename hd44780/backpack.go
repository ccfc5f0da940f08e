// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"github.com/GermanBionicSystems/displays/mcp23xxx"
	"github.com/GermanBionicSystems/displays/nxp74hc595"
	"github.com/GermanBionicSystems/displays/pcf857x"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// DefaultAddress is the I²C address of a PCF8574 backpack with the address
// jumpers open.
const DefaultAddress uint16 = 0x27

// Layout gives the port bit numbers the controller lines are wired to. R/W is
// left out, it must be wired to a bit that is never set, or to ground.
type Layout struct {
	RS        uint8
	E         uint8
	Backlight uint8
	// Data are the bits for D4, D5, D6 and D7.
	Data [4]uint8
}

var (
	// PCF8574Layout is the wiring of the common LCD1602/LCD2004 I²C backpacks:
	// RS bit 0, R/W bit 1, E bit 2, backlight bit 3, D4-D7 bits 4-7.
	PCF8574Layout = Layout{RS: 0, E: 2, Backlight: 3, Data: [4]uint8{4, 5, 6, 7}}

	// AdafruitI2CLayout is the wiring of the MCP23008 on the I²C side of the
	// Adafruit I²C/SPI backpack.
	AdafruitI2CLayout = Layout{RS: 1, E: 2, Backlight: 7, Data: [4]uint8{3, 4, 5, 6}}

	// AdafruitSPILayout is the wiring of the 74HC595 on the SPI side of the
	// Adafruit I²C/SPI backpack. The data lines are in reverse order.
	AdafruitSPILayout = Layout{RS: 1, E: 2, Backlight: 7, Data: [4]uint8{6, 5, 4, 3}}
)

// Backpack is a Transport over an 8 bit port expander. Each nibble costs two
// port writes: one with E high, then the same value with E low, as the
// controller latches on the falling edge of E.
type Backpack struct {
	port      Port
	layout    Layout
	backlight bool
}

// NewBackpack returns a Transport writing through port with the given wiring.
func NewBackpack(port Port, layout Layout) *Backpack {
	return &Backpack{port: port, layout: layout}
}

// NewPCF857xBackpack returns a display on a PCF8574 I²C backpack. Use
// DefaultAddress unless the address jumpers were changed; 0 selects it.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
func NewPCF857xBackpack(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	if address == 0 {
		address = DefaultAddress
	}
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, wrap(err)
	}
	return New(NewBackpack(pcf, PCF8574Layout), opts)
}

// NewAdafruitI2CBackpack returns a display on the I²C side of the Adafruit
// I²C/SPI backpack, which uses an MCP23008 I/O expander. 0 selects the
// MCP23008 default address, 0x20.
//
// # Product Information
//
// https://www.adafruit.com/product/292
func NewAdafruitI2CBackpack(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	if address == 0 {
		address = mcp23xxx.DefaultAddress
	}
	mcp, err := mcp23xxx.NewI2C(bus, address, 0)
	if err != nil {
		return nil, wrap(err)
	}
	return New(NewBackpack(mcp, AdafruitI2CLayout), opts)
}

// NewAdafruitSPIBackpack returns a display on the SPI side of the Adafruit
// I²C/SPI backpack, which uses a 74HC595 serial to parallel shift register.
//
// # Product Information
//
// https://www.adafruit.com/product/292
func NewAdafruitSPIBackpack(conn spi.Conn, opts *Opts) (*Dev, error) {
	chip, err := nxp74hc595.New(conn)
	if err != nil {
		return nil, wrap(err)
	}
	return New(NewBackpack(chip, AdafruitSPILayout), opts)
}

// Reset writes 0 to the port.
func (b *Backpack) Reset() error {
	return b.port.WritePort(0)
}

// WriteNibble strobes the upper nibble of value with RS low and the backlight
// bit clear.
func (b *Backpack) WriteNibble(value byte) error {
	return b.strobe(b.data(value >> 4))
}

// Send implements Transport.
func (b *Backpack) Send(value byte, mode Mode) error {
	for _, nibble := range [2]byte{value >> 4, value & 0x0f} {
		v := b.data(nibble)
		if mode == Data {
			v |= 1 << b.layout.RS
		}
		if b.backlight {
			v |= 1 << b.layout.Backlight
		}
		if err := b.strobe(v); err != nil {
			return err
		}
	}
	settle(value, mode)
	return nil
}

// SetBacklight implements Backlighter. The backlight bit is kept and sent
// with every following write.
func (b *Backpack) SetBacklight(on bool) error {
	var v byte
	if on {
		v = 1 << b.layout.Backlight
	}
	if err := b.port.WritePort(v); err != nil {
		return err
	}
	b.backlight = on
	return nil
}

func (b *Backpack) String() string {
	return fmt.Sprintf("Backpack{%v}", b.port)
}

// data spreads the 4 bits of nibble onto the data lines.
func (b *Backpack) data(nibble byte) byte {
	var v byte
	for ix, bit := range b.layout.Data {
		if nibble&(1<<ix) != 0 {
			v |= 1 << bit
		}
	}
	return v
}

func (b *Backpack) strobe(v byte) error {
	if err := b.port.WritePort(v | 1<<b.layout.E); err != nil {
		return err
	}
	return b.port.WritePort(v)
}

var _ Transport = &Backpack{}
var _ Backlighter = &Backpack{}
var _ Port = &pcf857x.Dev{}
var _ Port = &nxp74hc595.Dev{}
var _ Port = &mcp23xxx.Dev{}
