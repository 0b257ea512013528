// Package joypad implements the P1 ($FF00) register and the
// high-to-low-transition Joypad interrupt. Grounded on the teacher's
// internal/joypad package.
package joypad

import (
	"github.com/cartboy/goboycore/internal/interrupts"
	"github.com/cartboy/goboycore/internal/types"
)

// Controller tracks the eight physical buttons and the two row-select
// bits written to P1.
type Controller struct {
	// pressed[i] is true while the button is held down.
	pressed [8]bool

	selectDirection bool // P1 bit 4 (active-low select, stored inverted)
	selectButton    bool // P1 bit 5

	irq *interrupts.Controller
}

// NewController returns a Controller with no buttons held.
func NewController(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq}
}

// SetButton updates a button's state, requesting the Joypad interrupt
// on any high-to-low transition of a currently-selected input line
// (spec §6).
func (c *Controller) SetButton(b types.Button, pressed bool) {
	wasLow := c.lineLow(b)
	c.pressed[b] = pressed
	if !wasLow && c.lineLow(b) {
		c.irq.Request(interrupts.Joypad)
	}
}

// lineLow reports whether button b currently pulls its P1 line low:
// it's pressed and its row (direction or button) is selected.
func (c *Controller) lineLow(b types.Button) bool {
	if !c.pressed[b] {
		return false
	}
	if b <= types.ButtonDown {
		return c.selectDirection
	}
	return c.selectButton
}

// Read returns the P1 register: bits 6-7 always 1, bits 4-5 echo the
// last written select bits, bits 0-3 reflect the active-low state of
// the selected row (or all 1s if no row is selected).
func (c *Controller) Read() uint8 {
	v := uint8(0xC0)
	if !c.selectDirection {
		v |= 1 << 4
	}
	if !c.selectButton {
		v |= 1 << 5
	}
	nibble := uint8(0x0F)
	if c.selectDirection {
		nibble &= c.directionNibble()
	}
	if c.selectButton {
		nibble &= c.buttonNibble()
	}
	return v | nibble
}

func (c *Controller) directionNibble() uint8 {
	n := uint8(0x0F)
	for i, b := 0, types.ButtonRight; i < 4; i, b = i+1, b+1 {
		if c.pressed[b] {
			n &^= 1 << i
		}
	}
	return n
}

func (c *Controller) buttonNibble() uint8 {
	n := uint8(0x0F)
	for i, b := 0, types.ButtonA; i < 4; i, b = i+1, b+1 {
		if c.pressed[b] {
			n &^= 1 << i
		}
	}
	return n
}

// Write updates the row-select bits (4 and 5); the lower nibble is
// read-only from the CPU's perspective.
func (c *Controller) Write(value uint8) {
	wasDir, wasBtn := c.selectDirection, c.selectButton
	c.selectDirection = value&(1<<4) == 0
	c.selectButton = value&(1<<5) == 0

	// selecting a new row can itself expose an already-low line,
	// which real hardware also reports as an interrupt-triggering edge.
	if !wasDir && c.selectDirection {
		c.checkRowEdge(types.ButtonRight, types.ButtonDown)
	}
	if !wasBtn && c.selectButton {
		c.checkRowEdge(types.ButtonA, types.ButtonStart)
	}
}

func (c *Controller) checkRowEdge(first, last types.Button) {
	for b := first; b <= last; b++ {
		if c.pressed[b] {
			c.irq.Request(interrupts.Joypad)
			return
		}
	}
}
