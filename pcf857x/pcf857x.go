// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x provides a driver for the TI/NXP PCF857X I²C I/O Expander.
// These devices provide 8 pins (PCF8574) or 16 pins (PCF8575) of
// "quasi-bidirectional" input/output. The PCF8574 is the chip found on most
// LCD "backpacks" sold as LCD2004 or LCD1602, where it drives an HD44780
// controller in 4-bit mode.
//
// The PCF8575 is functionally identical to the PCF8574. Reads and writes are 2
// bytes wide, while they're one byte wide with the PCF8574.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I²C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// # Notes
//
// This chip doesn't implement normal i2c register architectures. You write 8 or
// 16 bits out, and that sets the corresponding pins, or you read 8/16 bits and
// get the state of the pins.
//
// Setting a pin to Low activates an Open Drain to ground. Reading a pin
// consists of writing a High out to it, and then reading it to see if it is
// still high, or if it has been pulled low.
package pcf857x

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	// DefaultAddress is the address with all address pins low. Most LCD
	// backpacks leave the jumpers open, which gives 0x27.
	DefaultAddress uint16 = 0x20
)

// Dev is representation of a PCF857x device.
type Dev struct {
	chipType Variant
	width    int
	mask     uint16

	mu    sync.Mutex
	d     *i2c.Dev
	value uint16
}

// New creates a new PCF857x io expander and returns it. chip should be one of
// the Variant constants above.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, chipType: chip}
	switch chip {
	case PCF8574:
		dev.width = 8
	case PCF8575:
		dev.width = 16
	default:
		return nil, fmt.Errorf("pcf857x: unknown variant %q", chip)
	}
	dev.mask = uint16((1 << dev.width) - 1)
	return dev, nil
}

// Width returns the number of I/O lines of the device.
func (dev *Dev) Width() int {
	return dev.width
}

// Value returns the last value written to the port.
func (dev *Dev) Value() uint16 {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// WritePort sets the lower 8 I/O lines to value. On a PCF8575 the upper lines
// keep their last written state.
//
// Every call results in a bus write, even if value is unchanged. Protocols
// strobed through the expander, like the HD44780 enable line, depend on it.
func (dev *Dev) WritePort(value byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.write((dev.value & 0xff00) | uint16(value))
}

// Write sets all I/O lines of the device to value.
func (dev *Dev) Write(value uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.write(value)
}

// write performs the low-level write to the device. dev.mu must be held.
func (dev *Dev) write(value uint16) error {
	value &= dev.mask
	w := make([]byte, dev.width/8)
	for ix := range w {
		w[ix] = byte(value >> (ix * 8))
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = value
	return nil
}

// Read returns the state of the I/O lines identified by mask. The lines in
// mask are first driven High so that an external device can pull them low.
func (dev *Dev) Read(mask uint16) (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	mask &= dev.mask
	if err := dev.write(dev.value | mask); err != nil {
		return 0, err
	}
	r := make([]byte, dev.width/8)
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	var result uint16
	for ix, b := range r {
		result |= uint16(b) << (ix * 8)
	}
	return result & mask, nil
}

// Halt drives all I/O lines low.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.write(0)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}
