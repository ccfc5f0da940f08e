// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// HD44780 instruction set. The values are bit masks, the flags of each group
// are OR'ed into the instruction they belong to.
const (
	CmdClear    byte = 0x01 // Clear display, address counter to 0.
	CmdHome     byte = 0x02 // Return home, undo display shift.
	CmdEntry    byte = 0x04 // Entry mode set.
	CmdControl  byte = 0x08 // Display on/off control.
	CmdShift    byte = 0x10 // Cursor or display shift.
	CmdFunction byte = 0x20 // Function set.
	CmdSetCGRAM byte = 0x40 // Set CGRAM address.
	CmdSetDDRAM byte = 0x80 // Set DDRAM address.
)

// Entry mode flags.
const (
	EntryIncrement byte = 0x02
	EntryShift     byte = 0x01
)

// Display control flags.
const (
	ControlDisplay byte = 0x04
	ControlCursor  byte = 0x02
	ControlBlink   byte = 0x01
)

// Cursor/display shift flags. Without ShiftDisplay the cursor moves.
const (
	ShiftDisplay byte = 0x08
	ShiftRight   byte = 0x04
)

// Function set flags. Without Function8Bit the interface is 4 bits wide.
const (
	Function8Bit   byte = 0x10
	Function2Lines byte = 0x08
	Function10Dots byte = 0x04
	// FunctionReset is sent three times when initializing by instruction.
	FunctionReset byte = 0x30
)

// Geometry limits of the controller.
const (
	MaxLines = 4
	MaxCols  = 40

	glyphSlots = 8
)

// Address returns the DDRAM address of a zero based row and column. Lines 1
// and 3 start at 0x40, lines 2 and 3 are offset by a further 0x14, which is
// how 4 line modules are wired to a 2 line controller.
func Address(row, col int) byte {
	addr := byte(col) & 0x3f
	if row&1 != 0 {
		addr += 0x40
	}
	if row&2 != 0 {
		addr += 0x14
	}
	return addr
}

// flags is the controller state sent with CmdControl plus the backlight,
// which travels on the transport.
type flags struct {
	backlight bool
	display   bool
	cursor    bool
	blink     bool
}

func entryCommand() byte {
	return CmdEntry | EntryIncrement
}

// controlCommand packs all three display control bits. Changing any one of
// them means resending the others.
func controlCommand(f flags) byte {
	cmd := CmdControl
	if f.display {
		cmd |= ControlDisplay
	}
	if f.cursor {
		cmd |= ControlCursor
	}
	if f.blink {
		cmd |= ControlBlink
	}
	return cmd
}

func setDDRAMCommand(p Position) byte {
	return CmdSetDDRAM | Address(p.Row, p.Col)
}

// setCGRAMCommand selects the first row of a glyph slot. Slots wrap modulo 8.
func setCGRAMCommand(slot int) byte {
	return CmdSetCGRAM | byte(slot&(glyphSlots-1))<<3
}

func functionCommand(lines int) byte {
	cmd := CmdFunction
	if lines > 1 {
		cmd |= Function2Lines
	}
	return cmd
}
