// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// Position is a zero based cursor location.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// cursor mirrors the controller's address counter in row/column form, and
// keeps the position before the last remembered move.
type cursor struct {
	lines  int
	cols   int
	pos    Position
	recent Position
}

func (c *cursor) contains(p Position) bool {
	return p.Row >= 0 && p.Row < c.lines && p.Col >= 0 && p.Col < c.cols
}

// moveTo sets the position. With remember set, the position it replaces
// becomes the recent one.
func (c *cursor) moveTo(p Position, remember bool) {
	if remember {
		c.recent = c.pos
	}
	c.pos = p
}

// advance steps past a written character and reports whether the cursor
// wrapped onto another line. The controller does not wrap by itself, so the
// caller has to re-address it when this returns true.
func (c *cursor) advance() bool {
	c.pos.Col++
	if c.pos.Col < c.cols {
		return false
	}
	c.newline()
	return true
}

// newline moves to the start of the next line, wrapping from the last line to
// the first.
func (c *cursor) newline() {
	c.pos.Col = 0
	c.pos.Row++
	if c.pos.Row >= c.lines {
		c.pos.Row = 0
	}
}

func (c *cursor) retreat() {
	if c.pos.Col > 0 {
		c.pos.Col--
		return
	}
	c.pos.Col = c.cols - 1
	c.pos.Row--
	if c.pos.Row < 0 {
		c.pos.Row = c.lines - 1
	}
}

// vertical moves delta lines up (negative) or down, wrapping around.
func (c *cursor) vertical(delta int) {
	c.pos.Row = ((c.pos.Row+delta)%c.lines + c.lines) % c.lines
}
