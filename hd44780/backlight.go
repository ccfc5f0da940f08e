// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// Polarity is the pin level that turns a backlight on.
type Polarity bool

const (
	ActiveHigh Polarity = true
	// ActiveLow is for modules that switch the backlight through a PNP
	// transistor.
	ActiveLow Polarity = false
)

// GPIOMonoBacklight is a backlight switched by a single GPIO pin. It
// implements display.DisplayBacklight.
type GPIOMonoBacklight struct {
	blPin    gpio.PinOut
	polarity Polarity
}

// NewBacklight returns an active high backlight on blPin.
func NewBacklight(blPin gpio.PinOut) *GPIOMonoBacklight {
	return NewBacklightPolarity(blPin, ActiveHigh)
}

// NewBacklightPolarity returns a backlight on blPin that is lit when the pin
// is at the level given by polarity.
func NewBacklightPolarity(blPin gpio.PinOut, polarity Polarity) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{blPin: blPin, polarity: polarity}
}

// Backlight turns the backlight on for any intensity above 0, off otherwise.
func (bl *GPIOMonoBacklight) Backlight(intensity display.Intensity) error {
	on := intensity > 0
	return bl.blPin.Out(gpio.Level(on == bool(bl.polarity)))
}

var _ display.DisplayBacklight = &GPIOMonoBacklight{}
