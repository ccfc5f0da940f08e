// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the address with A0-A2 low.
const DefaultAddress uint16 = 0x20

// MCP23008 registers, with IOCON.BANK at its reset value.
const (
	regIODIR byte = 0x00
	regIPOL  byte = 0x01
	regGPPU  byte = 0x06
	regGPIO  byte = 0x09
	regOLAT  byte = 0x0a
)

// Dev is an MCP23008 with its direction register fixed at power up.
type Dev struct {
	mu     sync.Mutex
	d      *i2c.Dev
	inputs byte
	value  byte
}

// NewI2C returns an MCP23008 on bus. The lines set in inputs are configured
// as inputs with their pull-ups enabled, all others as outputs driven low.
func NewI2C(bus i2c.Bus, address uint16, inputs byte) (*Dev, error) {
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, inputs: inputs}
	for _, w := range [][]byte{
		{regOLAT, 0},
		{regIPOL, 0},
		{regGPPU, inputs},
		{regIODIR, inputs},
	} {
		if err := dev.d.Tx(w, nil); err != nil {
			return nil, fmt.Errorf("mcp23xxx: %w", err)
		}
	}
	return dev, nil
}

// WritePort sets the output lines to value. Bits of input lines are ignored
// by the chip.
//
// Every call results in a bus write.
func (dev *Dev) WritePort(value byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := dev.d.Tx([]byte{regGPIO, value}, nil); err != nil {
		return fmt.Errorf("mcp23xxx: %w", err)
	}
	dev.value = value
	return nil
}

// Value returns the last value written to the port.
func (dev *Dev) Value() byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// ReadPort returns the level of all 8 lines.
func (dev *Dev) ReadPort() (byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	r := make([]byte, 1)
	if err := dev.d.Tx([]byte{regGPIO}, r); err != nil {
		return 0, fmt.Errorf("mcp23xxx: %w", err)
	}
	return r[0], nil
}

// Halt drives all output lines low.
func (dev *Dev) Halt() error {
	return dev.WritePort(0)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("MCP23008_%x", dev.d.Addr)
}
