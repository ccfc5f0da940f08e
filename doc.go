// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package displays is a container for small display drivers built on
// periph.io.
//
// hd44780 drives character LCDs through a PCF8574 (pcf857x), MCP23008
// (mcp23xxx) or 74HC595 (nxp74hc595) backpack, or GPIO lines. ssd1306 drives
// monochrome OLED panels over I²C or SPI; framebuf draws on their framebuffer.
// console emulates both in a terminal, and cmd/lcd writes text to either.
package displays
