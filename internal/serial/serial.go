// Package serial implements the SB/SC link-cable registers. No link
// partner is modeled (spec.md scopes accessories/link-cable transfer
// out); a transfer still completes after shifting eight bits with the
// Game Boy's own internal clock, shifting in 0xFF as real hardware
// does with nothing connected, and raising the Serial interrupt.
package serial

import "github.com/cartboy/goboycore/internal/interrupts"

const ticksPerBit = 512 // 8192 Hz internal clock = 4194304/512

// Controller holds the SB/SC registers and the in-progress transfer
// clock, grounded on the teacher's internal/serial package shape.
type Controller struct {
	sb uint8
	sc uint8

	transferring bool
	bitsLeft     uint8
	clock        uint32

	irq *interrupts.Controller
}

// NewController returns an idle serial controller.
func NewController(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq}
}

// Tick advances the internal-clock transfer, if one is active.
func (c *Controller) Tick(tCycles uint32) {
	if !c.transferring {
		return
	}
	c.clock += tCycles
	for c.clock >= ticksPerBit && c.transferring {
		c.clock -= ticksPerBit
		c.sb = c.sb<<1 | 1 // shift in 1 (no partner present)
		c.bitsLeft--
		if c.bitsLeft == 0 {
			c.transferring = false
			c.sc &^= 0x80
			c.irq.Request(interrupts.Serial)
		}
	}
}

func (c *Controller) Read(addr uint16) uint8 {
	if addr == 0xFF01 {
		return c.sb
	}
	return c.sc | 0x7E
}

func (c *Controller) Write(addr uint16, v uint8) {
	if addr == 0xFF01 {
		c.sb = v
		return
	}
	c.sc = v & 0x81
	if v&0x80 != 0 && v&0x01 != 0 {
		c.transferring = true
		c.bitsLeft = 8
		c.clock = 0
	}
}
