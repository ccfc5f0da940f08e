// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "time"

// Mode selects the controller register a byte goes to. It is the level of the
// RS line.
type Mode bool

const (
	Instruction Mode = false
	Data        Mode = true
)

func (m Mode) String() string {
	if m == Data {
		return "Data"
	}
	return "Instruction"
}

// Transport moves bytes to the controller over a 4 bit interface. The R/W line,
// when wired, is always held low: the controller is never read.
type Transport interface {
	// Reset drives every line low.
	Reset() error
	// WriteNibble latches the upper 4 bits of value as an instruction. It is
	// only used while forcing the controller into 4 bit mode, when the lower
	// nibble must not be sent.
	WriteNibble(value byte) error
	// Send writes value as two nibbles, upper first. Instructions that need
	// time to complete (clear, home) must return only after they have.
	Send(value byte, mode Mode) error
}

// Backlighter is implemented by transports that can switch the backlight.
// On transports without it, backlight control does nothing.
type Backlighter interface {
	SetBacklight(on bool) error
}

// Port is an 8 bit output port, such as the PCF8574 I²C expander or the
// 74HC595 shift register found on LCD backpacks. Every WritePort must reach
// the bus.
type Port interface {
	WritePort(value byte) error
}

const (
	delayPowerUp    = 20 * time.Millisecond
	delayFirstReset = 5 * time.Millisecond
	delayReset      = time.Millisecond
	// Clear and home take up to 4.1ms. Nothing else needs more than the bus
	// latency.
	delaySettle = 5 * time.Millisecond
	delayCGRAM  = 40 * time.Microsecond
	delayEnable = 2 * time.Microsecond
	delayGPIO   = 40 * time.Microsecond
)

var sleep = time.Sleep

// settle waits after clear and home, the only instructions with values up to 3.
func settle(value byte, mode Mode) {
	if mode == Instruction && value <= 0x03 {
		sleep(delaySettle)
	}
}
