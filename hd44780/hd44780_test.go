// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

var errBus = errors.New("bus NACK")

// fakeTransport logs what the driver asks of the transport. Once fail is set,
// budget calls succeed and the following ones return fail.
type fakeTransport struct {
	ops    []string
	fail   error
	budget int
}

func (f *fakeTransport) call(op string) error {
	if f.fail != nil {
		if f.budget == 0 {
			return f.fail
		}
		f.budget--
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeTransport) Reset() error {
	return f.call("reset")
}

func (f *fakeTransport) WriteNibble(value byte) error {
	return f.call(fmt.Sprintf("nibble 0x%02x", value))
}

func (f *fakeTransport) Send(value byte, mode Mode) error {
	if mode == Data {
		return f.call(fmt.Sprintf("D 0x%02x", value))
	}
	return f.call(fmt.Sprintf("I 0x%02x", value))
}

func (f *fakeTransport) SetBacklight(on bool) error {
	if on {
		return f.call("backlight on")
	}
	return f.call("backlight off")
}

// noBacklight hides SetBacklight.
type noBacklight struct {
	t Transport
}

func (n noBacklight) Reset() error                     { return n.t.Reset() }
func (n noBacklight) WriteNibble(value byte) error     { return n.t.WriteNibble(value) }
func (n noBacklight) Send(value byte, mode Mode) error { return n.t.Send(value, mode) }

// recordSleep replaces sleep for the duration of the test.
func recordSleep(t *testing.T) *[]time.Duration {
	var slept []time.Duration
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = time.Sleep })
	return &slept
}

func newTestDev(t *testing.T, opts *Opts) (*Dev, *fakeTransport) {
	recordSleep(t)
	f := &fakeTransport{}
	dev, err := New(f, opts)
	if err != nil {
		t.Fatal(err)
	}
	f.ops = nil
	return dev, f
}

func checkOps(t *testing.T, f *fakeTransport, want ...string) {
	t.Helper()
	if diff := cmp.Diff(f.ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("transport ops (-got +want):\n%s", diff)
	}
	f.ops = nil
}

func TestInit(t *testing.T) {
	slept := recordSleep(t)
	f := &fakeTransport{}
	dev, err := New(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkOps(t, f,
		"reset",
		"nibble 0x30", "nibble 0x30", "nibble 0x30", "nibble 0x20",
		"I 0x08", "backlight on", "I 0x01", "I 0x02", "I 0x06", "I 0x08", "I 0x0c",
		"I 0x28",
	)
	want := []time.Duration{20 * time.Millisecond, 5 * time.Millisecond, time.Millisecond, time.Millisecond, time.Millisecond}
	if diff := cmp.Diff(*slept, want); diff != "" {
		t.Errorf("sleeps (-got +want):\n%s", diff)
	}
	if dev.Position() != (Position{}) {
		t.Errorf("Position()=%s", dev.Position())
	}
	if dev.state != stateReady {
		t.Errorf("state=%s", dev.state)
	}
}

func TestInitOpts(t *testing.T) {
	recordSleep(t)
	f := &fakeTransport{}
	if _, err := New(f, &Opts{Lines: 1, Cols: 8, NoBacklight: true, Cursor: true, Blink: true}); err != nil {
		t.Fatal(err)
	}
	got := f.ops[len(f.ops)-3:]
	want := []string{"I 0x20", "backlight off", "I 0x0f"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("trailing init ops (-got +want):\n%s", diff)
	}
}

func TestInitFault(t *testing.T) {
	recordSleep(t)
	for budget := range 6 {
		f := &fakeTransport{fail: errBus, budget: budget}
		dev, err := New(f, nil)
		if !errors.Is(err, errBus) {
			t.Errorf("budget %d: expected errBus, received %v", budget, err)
		}
		if dev != nil {
			t.Errorf("budget %d: expected nil Dev", budget)
		}
	}
	if _, err := New(nil, nil); err == nil {
		t.Error("expected error for nil transport")
	}
}

func TestGeometry(t *testing.T) {
	for _, tc := range []struct {
		lines, cols         int
		wantRows, wantCols int
	}{
		{0, 0, 2, 16},
		{4, 20, 4, 20},
		{6, 80, MaxLines, MaxCols},
		{-3, -1, 1, 1},
		{1, 40, 1, 40},
	} {
		dev, _ := newTestDev(t, &Opts{Lines: tc.lines, Cols: tc.cols})
		if dev.Rows() != tc.wantRows || dev.Cols() != tc.wantCols {
			t.Errorf("Opts{%d, %d}: got %dx%d, expected %dx%d", tc.lines, tc.cols, dev.Rows(), dev.Cols(), tc.wantRows, tc.wantCols)
		}
		if dev.MinRow() != 0 || dev.MinCol() != 0 {
			t.Error("expected zero based rows and columns")
		}
	}
}

func TestAddress(t *testing.T) {
	want := [4][3]byte{
		{0x00, 0x01, 0x27},
		{0x40, 0x41, 0x67},
		{0x14, 0x15, 0x3b},
		{0x54, 0x55, 0x7b},
	}
	for row := range 4 {
		for ix, col := range []int{0, 1, 39} {
			if got := Address(row, col); got != want[row][ix] {
				t.Errorf("Address(%d, %d)=0x%02x, expected 0x%02x", row, col, got, want[row][ix])
			}
		}
	}
}

func TestWriteWrap(t *testing.T) {
	dev, f := newTestDev(t, nil)
	n, err := dev.WriteString("ABCDEFGHIJKLMNOPQ")
	if err != nil || n != 17 {
		t.Fatalf("WriteString()=%d, %v", n, err)
	}
	var want []string
	for c := byte('A'); c <= 'P'; c++ {
		want = append(want, fmt.Sprintf("D 0x%02x", c))
	}
	want = append(want, "I 0xc0", "D 0x51")
	checkOps(t, f, want...)
	if got := dev.Position(); got != (Position{Row: 1, Col: 1}) {
		t.Errorf("Position()=%s, expected (1,1)", got)
	}

	// The last line wraps to the first.
	if _, err := dev.WriteString(strings.Repeat("x", 15)); err != nil {
		t.Fatal(err)
	}
	if last := f.ops[len(f.ops)-1]; last != "I 0x80" {
		t.Errorf("expected re-address to line 0, received %q", last)
	}
	if got := dev.Position(); got != (Position{}) {
		t.Errorf("Position()=%s, expected (0,0)", got)
	}
}

func TestNewline(t *testing.T) {
	dev, f := newTestDev(t, &Opts{Lines: 4, Cols: 20})
	if _, err := dev.WriteString("ab\ncd"); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "D 0x61", "D 0x62", "I 0xc0", "D 0x63", "D 0x64")
	if got := dev.Position(); got != (Position{Row: 1, Col: 2}) {
		t.Errorf("Position()=%s", got)
	}
	if err := dev.MoveTo(3, 5); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteByte('\n'); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "I 0xd9", "I 0x80")

	// A rejected newline keeps the cursor where the controller still is.
	if err := dev.MoveTo(1, 3); err != nil {
		t.Fatal(err)
	}
	f.fail = errBus
	if err := dev.WriteByte('\n'); !errors.Is(err, errBus) {
		t.Errorf("WriteByte()=%v", err)
	}
	if got := dev.Position(); got != (Position{Row: 1, Col: 3}) {
		t.Errorf("Position()=%s, expected (1,3)", got)
	}
}

func TestPrintAt(t *testing.T) {
	dev, f := newTestDev(t, nil)
	if err := dev.MoveTo(0, 3); err != nil {
		t.Fatal(err)
	}
	n, err := dev.PrintAt(1, 5, "X")
	if err != nil || n != 1 {
		t.Fatalf("PrintAt()=%d, %v", n, err)
	}
	checkOps(t, f, "I 0x83", "I 0xc5", "D 0x58", "I 0x83")
	if got := dev.Position(); got != (Position{Row: 0, Col: 3}) {
		t.Errorf("Position()=%s", got)
	}
	if got := dev.Recent(); got != (Position{Row: 0, Col: 3}) {
		t.Errorf("Recent()=%s", got)
	}

	// Text running past the end of the line continues on the next one, then
	// the saved position is restored.
	if err := dev.MoveTo(1, 2); err != nil {
		t.Fatal(err)
	}
	f.ops = nil
	if n, err := dev.PrintAt(0, 14, "abcd"); err != nil || n != 4 {
		t.Fatalf("PrintAt()=%d, %v", n, err)
	}
	checkOps(t, f, "I 0x8e", "D 0x61", "D 0x62", "I 0xc0", "D 0x63", "D 0x64", "I 0xc2")
	if got := dev.Position(); got != (Position{Row: 1, Col: 2}) {
		t.Errorf("Position()=%s, expected (1,2)", got)
	}

	if _, err := dev.PrintAt(2, 0, "X"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, received %v", err)
	}
	checkOps(t, f)
}

func TestMoveTo(t *testing.T) {
	dev, f := newTestDev(t, nil)
	if err := dev.MoveTo(1, 15); err != nil {
		t.Fatal(err)
	}
	if err := dev.MoveTo(0, 2); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "I 0xcf", "I 0x82")
	if got := dev.Recent(); got != (Position{Row: 1, Col: 15}) {
		t.Errorf("Recent()=%s", got)
	}
	for _, p := range []Position{{2, 0}, {-1, 0}, {0, 16}, {0, -1}} {
		if err := dev.MoveTo(p.Row, p.Col); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("MoveTo%s: expected ErrOutOfRange, received %v", p, err)
		}
	}
	checkOps(t, f)
	if got := dev.Position(); got != (Position{Row: 0, Col: 2}) {
		t.Errorf("Position()=%s", got)
	}
}

func TestMove(t *testing.T) {
	dev, f := newTestDev(t, nil)
	for _, tc := range []struct {
		dir  display.CursorDirection
		want Position
		op   string
	}{
		{display.Backward, Position{1, 15}, "I 0xcf"},
		{display.Forward, Position{0, 0}, "I 0x80"},
		{display.Forward, Position{0, 1}, "I 0x81"},
		{display.Up, Position{1, 1}, "I 0xc1"},
		{display.Down, Position{0, 1}, "I 0x81"},
	} {
		if err := dev.Move(tc.dir); err != nil {
			t.Fatal(err)
		}
		if got := dev.Position(); got != tc.want {
			t.Errorf("Move(%d): Position()=%s, expected %s", tc.dir, got, tc.want)
		}
		checkOps(t, f, tc.op)
	}
	if err := dev.Move(display.CursorDirection(42)); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestClear(t *testing.T) {
	dev, f := newTestDev(t, nil)
	if _, err := dev.WriteString("hi"); err != nil {
		t.Fatal(err)
	}
	f.ops = nil
	if err := dev.Clear(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "I 0x01", "I 0x02")
	if got := dev.Position(); got != (Position{}) {
		t.Errorf("Position()=%s", got)
	}
	if err := dev.MoveTo(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := dev.Home(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "I 0xc1", "I 0x02")
	if got := dev.Position(); got != (Position{}) {
		t.Errorf("Position()=%s", got)
	}
}

func TestCursorFlags(t *testing.T) {
	dev, f := newTestDev(t, nil)
	for _, tc := range []struct {
		name string
		fn   func() error
		want string
	}{
		{"CursorOn", dev.CursorOn, "I 0x0e"},
		{"BlinkOn", dev.BlinkOn, "I 0x0f"},
		{"BlinkOff", dev.BlinkOff, "I 0x0e"},
		{"CursorOff", dev.CursorOff, "I 0x0c"},
		{"BlinkOn", dev.BlinkOn, "I 0x0f"},
		{"CursorOff", dev.CursorOff, "I 0x0c"},
		{"BlinkOn", dev.BlinkOn, "I 0x0f"},
		{"Display(false)", func() error { return dev.Display(false) }, "I 0x0b"},
		{"Display(true)", func() error { return dev.Display(true) }, "I 0x0f"},
		{"Cursor(CursorOff)", func() error { return dev.Cursor(display.CursorOff) }, "I 0x0c"},
		{"Cursor(CursorUnderline)", func() error { return dev.Cursor(display.CursorUnderline) }, "I 0x0e"},
		{"Cursor(CursorBlink)", func() error { return dev.Cursor(display.CursorBlink) }, "I 0x0f"},
	} {
		if err := tc.fn(); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if diff := cmp.Diff(f.ops, []string{tc.want}); diff != "" {
			t.Errorf("%s ops (-got +want):\n%s", tc.name, diff)
		}
		f.ops = nil
	}
	if err := dev.Cursor(display.CursorMode(99)); err == nil {
		t.Error("expected error for unknown cursor mode")
	}
}

func TestDefineGlyph(t *testing.T) {
	dev, f := newTestDev(t, nil)
	slept := recordSleep(t)
	if err := dev.MoveTo(1, 2); err != nil {
		t.Fatal(err)
	}
	bitmap := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	if err := dev.DefineGlyph(9, bitmap); err != nil {
		t.Fatal(err)
	}
	want := []string{"I 0xc2", "I 0x48"}
	for _, b := range bitmap {
		want = append(want, fmt.Sprintf("D 0x%02x", b))
	}
	want = append(want, "I 0xc2")
	checkOps(t, f, want...)
	if len(*slept) != 9 {
		t.Errorf("expected 9 sleeps, received %v", *slept)
	}
	for _, d := range *slept {
		if d != 40*time.Microsecond {
			t.Errorf("unexpected sleep %s", d)
		}
	}
	if got := dev.Position(); got != (Position{Row: 1, Col: 2}) {
		t.Errorf("Position()=%s", got)
	}
}

func TestBacklight(t *testing.T) {
	dev, f := newTestDev(t, nil)
	if err := dev.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if err := dev.BacklightOn(); err != nil {
		t.Fatal(err)
	}
	if err := dev.BacklightOff(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "backlight off", "backlight on", "backlight off")

	recordSleep(t)
	plain := &fakeTransport{}
	dev, err := New(noBacklight{plain}, nil)
	if err != nil {
		t.Fatal(err)
	}
	plain.ops = nil
	if err := dev.BacklightOn(); err != nil {
		t.Errorf("expected backlight to be ignored, received %v", err)
	}
	checkOps(t, plain)
}

func TestFault(t *testing.T) {
	dev, f := newTestDev(t, nil)
	f.fail, f.budget = errBus, 1
	n, err := dev.WriteString("abc")
	if n != 1 || !errors.Is(err, errBus) {
		t.Errorf("WriteString()=%d, %v", n, err)
	}
	if err != nil && !strings.HasPrefix(err.Error(), packageName+": ") {
		t.Errorf("expected wrapped error, received %q", err)
	}
	if got := dev.Position(); got != (Position{Row: 0, Col: 1}) {
		t.Errorf("Position()=%s", got)
	}

	// A rejected control change is not kept.
	f.budget = 0
	if err := dev.BlinkOn(); !errors.Is(err, errBus) {
		t.Errorf("BlinkOn()=%v", err)
	}
	if err := dev.MoveTo(1, 1); !errors.Is(err, errBus) {
		t.Errorf("MoveTo()=%v", err)
	}
	if got := dev.Position(); got != (Position{Row: 0, Col: 1}) {
		t.Errorf("Position()=%s", got)
	}
	f.fail = nil
	f.ops = nil
	if err := dev.CursorOn(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "I 0x0e")
}

func TestNotReady(t *testing.T) {
	var dev Dev
	for name, err := range map[string]error{
		"Clear":     dev.Clear(),
		"Home":      dev.Home(),
		"MoveTo":    dev.MoveTo(0, 0),
		"WriteByte": dev.WriteByte('a'),
		"CursorOn":  dev.CursorOn(),
		"Backlight": dev.Backlight(1),
		"Halt":      dev.Halt(),
		"Glyph":     dev.DefineGlyph(0, [8]byte{}),
	} {
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("%s: expected ErrNotReady, received %v", name, err)
		}
	}
	if _, err := dev.WriteString("a"); !errors.Is(err, ErrNotReady) {
		t.Errorf("WriteString: expected ErrNotReady, received %v", err)
	}
	if err := dev.AutoScroll(true); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("AutoScroll: expected ErrNotImplemented, received %v", err)
	}
}

func TestHalt(t *testing.T) {
	dev, f := newTestDev(t, nil)
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	checkOps(t, f, "I 0x01", "I 0x02", "I 0x08", "backlight off")
	if s := dev.String(); !strings.Contains(s, "Rows: 2, Cols: 16") {
		t.Errorf("String()=%q", s)
	}
}

func writes(addr uint16, values ...byte) []i2ctest.IO {
	ops := make([]i2ctest.IO, len(values))
	for ix, v := range values {
		ops[ix] = i2ctest.IO{Addr: addr, W: []byte{v}}
	}
	return ops
}

func TestPCF857xBackpack(t *testing.T) {
	slept := recordSleep(t)
	bus := &i2ctest.Record{}
	dev, err := NewPCF857xBackpack(bus, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := writes(DefaultAddress,
		0x00,
		0x34, 0x30, 0x34, 0x30, 0x34, 0x30, 0x24, 0x20,
		0x04, 0x00, 0x84, 0x80, // display off
		0x08,                   // backlight
		0x0c, 0x08, 0x1c, 0x18, // clear
		0x0c, 0x08, 0x2c, 0x28, // home
		0x0c, 0x08, 0x6c, 0x68, // entry mode
		0x0c, 0x08, 0x8c, 0x88, // cursor off
		0x0c, 0x08, 0xcc, 0xc8, // display on
		0x2c, 0x28, 0x8c, 0x88, // function set
	)
	if diff := cmp.Diff(bus.Ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("init ops (-got +want):\n%s", diff)
	}
	wantSleep := []time.Duration{
		20 * time.Millisecond, 5 * time.Millisecond, time.Millisecond, time.Millisecond, time.Millisecond,
		5 * time.Millisecond, 5 * time.Millisecond,
	}
	if diff := cmp.Diff(*slept, wantSleep); diff != "" {
		t.Errorf("sleeps (-got +want):\n%s", diff)
	}

	bus.Ops = nil
	if err := dev.WriteByte('A'); err != nil {
		t.Fatal(err)
	}
	if err := dev.BacklightOff(); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteByte('A'); err != nil {
		t.Fatal(err)
	}
	want = writes(DefaultAddress, 0x4d, 0x49, 0x1d, 0x19, 0x00, 0x45, 0x41, 0x15, 0x11)
	if diff := cmp.Diff(bus.Ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("data ops (-got +want):\n%s", diff)
	}
}

// portLog records port writes and rejects them while fail is set.
type portLog struct {
	writes []byte
	fail   error
}

func (p *portLog) WritePort(v byte) error {
	if p.fail != nil {
		return p.fail
	}
	p.writes = append(p.writes, v)
	return nil
}

func TestBackpackBacklightFault(t *testing.T) {
	recordSleep(t)
	p := &portLog{}
	b := NewBackpack(p, PCF8574Layout)
	if err := b.SetBacklight(true); err != nil {
		t.Fatal(err)
	}
	p.fail = errBus
	if err := b.SetBacklight(false); !errors.Is(err, errBus) {
		t.Errorf("SetBacklight()=%v", err)
	}
	p.fail = nil
	p.writes = nil
	if err := b.Send('A', Data); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p.writes, []byte{0x4d, 0x49, 0x1d, 0x19}); diff != "" {
		t.Errorf("writes (-got +want):\n%s", diff)
	}
}

func TestAdafruitSPIBackpack(t *testing.T) {
	recordSleep(t)
	record := &spitest.Record{}
	defer record.Close()
	conn, err := record.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	dev, err := NewAdafruitSPIBackpack(conn, &Opts{Lines: 4, Cols: 20})
	if err != nil {
		t.Fatal(err)
	}
	record.Ops = nil
	if err := dev.WriteByte('A'); err != nil {
		t.Fatal(err)
	}
	want := []conntest.IO{{W: []byte{0x96}}, {W: []byte{0x92}}, {W: []byte{0xc6}}, {W: []byte{0xc2}}}
	if diff := cmp.Diff(record.Ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ops (-got +want):\n%s", diff)
	}
}

// fakeGroup is a gpio.Group logging the values written to it.
type fakeGroup struct {
	pins   []gpiotest.Pin
	values []gpio.GPIOValue
}

func newFakeGroup(n int) *fakeGroup {
	g := &fakeGroup{pins: make([]gpiotest.Pin, n)}
	for ix := range g.pins {
		g.pins[ix].N = fmt.Sprintf("D%d", ix+4)
		g.pins[ix].Num = ix
	}
	return g
}

func (g *fakeGroup) Pins() []pin.Pin {
	result := make([]pin.Pin, len(g.pins))
	for ix := range g.pins {
		result[ix] = &g.pins[ix]
	}
	return result
}

func (g *fakeGroup) ByOffset(offset int) pin.Pin {
	return &g.pins[offset]
}

func (g *fakeGroup) ByName(name string) pin.Pin {
	for ix := range g.pins {
		if g.pins[ix].N == name {
			return &g.pins[ix]
		}
	}
	return nil
}

func (g *fakeGroup) ByNumber(number int) pin.Pin {
	return g.ByOffset(number)
}

func (g *fakeGroup) Out(value, mask gpio.GPIOValue) error {
	g.values = append(g.values, value&mask)
	return nil
}

func (g *fakeGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, nil
}

func (g *fakeGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, nil
}

func (g *fakeGroup) Halt() error {
	return nil
}

func (g *fakeGroup) String() string {
	return "fakeGroup"
}

func TestGPIO(t *testing.T) {
	recordSleep(t)
	group := newFakeGroup(4)
	rs := &gpiotest.Pin{N: "RS"}
	e := &gpiotest.Pin{N: "E"}
	blPin := &gpiotest.Pin{N: "BL"}
	dev, err := NewGPIO(group, rs, e, NewBacklight(blPin), nil)
	if err != nil {
		t.Fatal(err)
	}
	if blPin.L != gpio.High {
		t.Error("expected backlight on")
	}
	group.values = nil
	if err := dev.WriteByte('A'); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(group.values, []gpio.GPIOValue{0x4, 0x1}); diff != "" {
		t.Errorf("data lines (-got +want):\n%s", diff)
	}
	if rs.L != gpio.High || e.L != gpio.Low {
		t.Errorf("RS=%s E=%s", rs.L, e.L)
	}
	if err := dev.BacklightOff(); err != nil {
		t.Fatal(err)
	}
	if blPin.L != gpio.Low {
		t.Error("expected backlight off")
	}

	if _, err := NewGPIO(newFakeGroup(3), rs, e, nil, nil); err == nil {
		t.Error("expected error for short data group")
	}
	if _, err := NewGPIO(group, nil, e, nil, nil); err == nil {
		t.Error("expected error for missing RS")
	}
}

func TestBacklightPolarity(t *testing.T) {
	p := &gpiotest.Pin{N: "BL"}
	bl := NewBacklightPolarity(p, ActiveLow)
	if err := bl.Backlight(0xff); err != nil {
		t.Fatal(err)
	}
	if p.L != gpio.Low {
		t.Error("active low backlight: expected Low for on")
	}
	if err := bl.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if p.L != gpio.High {
		t.Error("active low backlight: expected High for off")
	}
}

func TestAdafruitI2CBackpack(t *testing.T) {
	recordSleep(t)
	bus := &i2ctest.Record{}
	dev, err := NewAdafruitI2CBackpack(bus, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	bus.Ops = nil
	if err := dev.WriteByte('A'); err != nil {
		t.Fatal(err)
	}
	// 0x4 on D4-D7 is bit 5, 0x1 is bit 3. RS is bit 1, backlight bit 7.
	want := []i2ctest.IO{
		{Addr: 0x20, W: []byte{0x09, 0xa6}},
		{Addr: 0x20, W: []byte{0x09, 0xa2}},
		{Addr: 0x20, W: []byte{0x09, 0x8e}},
		{Addr: 0x20, W: []byte{0x09, 0x8a}},
	}
	if diff := cmp.Diff(bus.Ops, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ops (-got +want):\n%s", diff)
	}
}
