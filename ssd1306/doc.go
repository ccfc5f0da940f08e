// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 controls a monochrome OLED display via a SSD1306
// controller.
//
// The driver sends a fixed initialization table derived from the panel size
// and power supply, then shows a framebuffer it owns. Drawing is done on the
// framebuffer, an image1bit.VerticalLSB whose memory layout is the one of the
// controller: horizontal bands of 8 pixels high, one byte per column.
// Every Show sends the whole framebuffer in one bus transaction.
//
// The device can be driven on either I²C or SPI with 4 wires. On SPI, the D/C
// pin selects between commands and pixel data, and the optional RES pin is
// pulsed low before initialization.
//
// Panels 64 pixels wide are wired to the middle columns of the controller;
// the driver offsets the column window by 32 for them.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package ssd1306
