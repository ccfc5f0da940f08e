// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23xxx provides a driver for the MCP23008 I²C GPIO expander, as
// used as an 8 bit output port on the I²C side of the Adafruit I²C/SPI LCD
// backpack.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/20001952C.pdf
package mcp23xxx
