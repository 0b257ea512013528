package cpu

import (
	"github.com/cartboy/goboycore/internal/bus"
	"github.com/cartboy/goboycore/internal/interrupts"
)

type mode uint8

const (
	modeNormal mode = iota
	modeHalt
	modeStop
)

// CPU is a Sharp LR35902 core. It never schedules discrete events;
// every memory access ticks the Bus by exactly one M-cycle, so an
// instruction's total duration emerges from the accesses and internal
// delays it actually performs rather than from a separate cycle-count
// table.
type CPU struct {
	Registers
	PC, SP uint16

	bus *bus.Bus
	irq *interrupts.Controller

	mode mode

	// haltBug is set when HALT is executed with IME clear and an
	// interrupt already pending: the next fetch reads the following
	// byte without advancing PC, duplicating it.
	haltBug bool

	// err is set once and never cleared when an undefined opcode is
	// fetched; Step becomes a no-op forever after (spec §7
	// UnsupportedOpcode, modeled as freeze-in-place).
	err error

	cyclesThisStep uint32
}

// Err reports the sticky error that froze the CPU, or nil if it is
// still running normally.
func (c *CPU) Err() error { return c.err }

// NewCPU returns a CPU wired to bus, with registers and PC/SP in their
// post-boot-ROM state (boot ROM emulation is out of scope; execution
// begins directly at the cartridge entry point, spec.md Non-goals).
func NewCPU(b *bus.Bus) *CPU {
	c := &CPU{bus: b, irq: b.IRQ}
	c.PC = 0x0100
	c.SP = 0xFFFE
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	return c
}

// mCycle accounts for one machine cycle: always 4 T-cycles, in either
// speed mode. CPU instruction timing is unaffected by KEY1 double
// speed — every instruction still costs the same number of M-cycles
// it always has (spec.md §4.1: Step's return value is always a
// multiple of 4). Double speed instead means those M-cycles happen at
// twice the wall-clock rate, which only the PPU's dot clock needs to
// account for (spec §5); Timer/Serial/APU continue ticking 1:1 off
// this same un-halved count, matching DIV's "continues at the CPU's
// new rate" behavior.
func (c *CPU) mCycle() {
	c.tick(4)
}

func (c *CPU) tick(tCycles uint32) {
	c.bus.Tick(tCycles)
	c.cyclesThisStep += tCycles
}

// fetch reads the byte at PC, advancing PC unless a HALT bug duplicate
// fetch is pending, and accounts one M-cycle.
func (c *CPU) fetch() uint8 {
	v := c.bus.Read(c.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	c.mCycle()
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readMem(addr uint16) uint8 {
	v := c.bus.Read(addr)
	c.mCycle()
	return v
}

func (c *CPU) writeMem(addr uint16, v uint8) {
	c.bus.Write(addr, v)
	c.mCycle()
}

// internalTick accounts one M-cycle of internal-only work: no bus
// access happens, but real hardware still spends the time.
func (c *CPU) internalTick() { c.mCycle() }

func (c *CPU) push(v uint16) {
	c.SP--
	c.writeMem(c.SP, uint8(v>>8))
	c.SP--
	c.writeMem(c.SP, uint8(v))
}

func (c *CPU) pop() uint16 {
	lo := c.readMem(c.SP)
	c.SP++
	hi := c.readMem(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes exactly one instruction (or, in HALT/STOP, one
// internal tick while waiting) and returns the number of T-cycles it
// took.
func (c *CPU) Step() uint32 {
	c.cyclesThisStep = 0

	if c.err != nil {
		return 0
	}

	switch c.mode {
	case modeHalt:
		if c.irq.Pending() {
			c.mode = modeNormal
			break
		}
		c.internalTick()
		return c.cyclesThisStep
	case modeStop:
		if c.irq.Flag&(1<<uint8(interrupts.Joypad)) != 0 {
			c.mode = modeNormal
			break
		}
		c.internalTick()
		return c.cyclesThisStep
	}

	// The interrupt check uses IME as it stood at the end of the
	// previous step: an EI executed last step must not let an
	// already-pending interrupt preempt the very next instruction.
	// Only once that check has passed do we resolve EI's one-
	// instruction delay for the step after this one.
	if c.irq.Ready() {
		c.serviceInterrupt()
		return c.cyclesThisStep
	}
	c.irq.Tick()

	opcode := c.fetch()
	c.execute(opcode)
	return c.cyclesThisStep
}

// serviceInterrupt dispatches the highest-priority pending interrupt:
// 2 internal M-cycles, two M-cycles pushing PC, then a final internal
// M-cycle setting PC to the vector — 5 M-cycles / 20 T-cycles total,
// matching real hardware's interrupt latency.
func (c *CPU) serviceInterrupt() {
	kind, ok := c.irq.Highest()
	if !ok {
		return
	}
	c.internalTick()
	c.internalTick()
	c.irq.IME = false
	c.irq.Clear(kind)
	c.push(c.PC)
	c.PC = kind.Vector()
	c.internalTick()
}

func (c *CPU) execHALT() {
	if !c.irq.IME && c.irq.Pending() {
		c.haltBug = true
		return
	}
	c.mode = modeHalt
}

func (c *CPU) execSTOP() {
	c.fetch() // STOP's second byte is always discarded
	if c.bus.CommitSpeedSwitch() {
		// the switch itself stalls the CPU for roughly 2050 M-cycles on
		// real hardware; approximate it as one long internal wait.
		c.tick(2050 * 4)
		return
	}
	c.mode = modeStop
}
