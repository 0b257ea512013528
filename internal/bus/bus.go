// Package bus implements the Game Boy's 16-bit memory bus: it routes
// every CPU read and write to the right component (cartridge, VRAM,
// WRAM with CGB banking, OAM, HRAM, I/O registers, IE), and enforces
// the PPU-mode and OAM-DMA access restrictions. Grounded on the
// teacher's internal/mmu package, restructured around direct
// component references instead of a global hardware-register
// registry.
package bus

import (
	"github.com/cartboy/goboycore/internal/apu"
	"github.com/cartboy/goboycore/internal/cartridge"
	"github.com/cartboy/goboycore/internal/dma"
	"github.com/cartboy/goboycore/internal/host"
	"github.com/cartboy/goboycore/internal/interrupts"
	"github.com/cartboy/goboycore/internal/joypad"
	"github.com/cartboy/goboycore/internal/ppu"
	"github.com/cartboy/goboycore/internal/serial"
	"github.com/cartboy/goboycore/internal/timer"
	"github.com/cartboy/goboycore/internal/types"
)

// Bus wires every Game Boy subsystem onto the CPU's 16-bit address
// space.
type Bus struct {
	Cart    *cartridge.Cartridge
	PPU     *ppu.PPU
	APU     *apu.APU
	Timer   *timer.Controller
	IRQ     *interrupts.Controller
	Joypad  *joypad.Controller
	Serial  *serial.Controller
	OAMDMA  *dma.OAM
	HDMA    *dma.HDMA

	model types.Model

	wram     [8][0x1000]byte
	wramBank uint8 // SVBK, 1-7 (0 reads back as 1)

	oam  [160]byte
	hram [0x7F]byte

	doubleSpeed   bool
	speedSwitchReq bool
}

// New wires a Bus around an already-constructed cartridge and model.
// PPU/APU/Timer/Joypad/Serial/IRQ are created here so that the OAM
// backing array can be shared between the PPU and OAM DMA engine, the
// same way the teacher's MMU and video package share one array.
func New(model types.Model, cart *cartridge.Cartridge) *Bus {
	irq := interrupts.NewController()
	b := &Bus{
		Cart:     cart,
		IRQ:      irq,
		Timer:    timer.NewController(irq),
		Joypad:   joypad.NewController(irq),
		Serial:   serial.NewController(irq),
		model:    model,
		wramBank: 1,
	}
	b.PPU = ppu.New(model, irq, b.oam[:])
	b.APU = apu.New(nil, 44100)
	b.OAMDMA = dma.NewOAM(b.oam[:], b)
	b.HDMA = dma.NewHDMA(b, b.PPU)
	return b
}

// AttachAudioSink rewires the APU's output after construction; used
// once the hosting application supplies a sink (spec §6).
func (b *Bus) AttachAudioSink(sink host.AudioSink, sampleRate uint32) {
	b.APU.SetSink(sink, sampleRate)
}

// SetDoubleSpeed forces the speed mode directly, without the KEY1/STOP
// handshake that CommitSpeedSwitch performs for the CPU.
func (b *Bus) SetDoubleSpeed(v bool) {
	b.doubleSpeed = v
	b.PPU.SetDoubleSpeed(v)
}

// Tick fans the elapsed T-cycles out to every ticking subsystem,
// un-halved even in CGB double-speed mode: Timer/Serial/APU/DMA tick
// 1:1 off the CPU's own clock (so DIV "continues at the CPU's new
// rate" per spec §5), while only the PPU halves internally since its
// dot clock must stay wall-clock regardless of CPU speed.
func (b *Bus) Tick(tCycles uint32) {
	b.Timer.Tick(tCycles)
	b.Serial.Tick(tCycles)
	b.APU.Tick(tCycles)
	b.OAMDMA.Tick(tCycles)
	b.Cart.Tick(tCycles)

	b.PPU.Tick(tCycles)
	if b.PPU.JustEnteredHBlank() {
		b.HDMA.OnHBlank()
	}
}

// ReadDMA satisfies dma.SourceReader: DMA engines read through it to
// bypass the OAM-lockout/echo-RAM read policy that applies to
// ordinary CPU reads.
func (b *Bus) ReadDMA(addr uint16) uint8 {
	switch {
	case addr <= types.ROMBankNEnd:
		return b.Cart.Read(addr)
	case addr >= types.VRAMStart && addr <= types.VRAMEnd:
		return b.PPU.ReadVRAM(addr)
	case addr >= types.CartRAMStart && addr <= types.CartRAMEnd:
		return b.Cart.Read(addr)
	case addr >= types.WRAMStart && addr <= types.WRAMEnd:
		return b.readWRAM(addr)
	case addr >= types.EchoStart && addr <= types.EchoEnd:
		return b.readWRAM(addr - 0x2000)
	default:
		return 0xFF
	}
}

// WriteVRAM satisfies dma.VRAMWriter for HDMA.
func (b *Bus) WriteVRAM(addr uint16, v uint8) { b.PPU.WriteVRAM(addr, v) }

func (b *Bus) readWRAM(addr uint16) uint8 {
	off := addr - types.WRAMStart
	if off < 0x1000 {
		return b.wram[0][off]
	}
	bank := b.wramBank
	if bank == 0 {
		bank = 1
	}
	return b.wram[bank][off-0x1000]
}

func (b *Bus) writeWRAM(addr uint16, v uint8) {
	off := addr - types.WRAMStart
	if off < 0x1000 {
		b.wram[0][off] = v
		return
	}
	bank := b.wramBank
	if bank == 0 {
		bank = 1
	}
	b.wram[bank][off-0x1000] = v
}

// Read performs a CPU-visible read, applying the OAM-DMA lockout and
// PPU-mode VRAM/OAM access restrictions (spec §4.5/§4.6).
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= types.ROMBankNEnd:
		return b.Cart.Read(addr)
	case addr >= types.VRAMStart && addr <= types.VRAMEnd:
		if b.PPU.Mode() == ppu.Drawing {
			return 0xFF
		}
		return b.PPU.ReadVRAM(addr)
	case addr >= types.CartRAMStart && addr <= types.CartRAMEnd:
		return b.Cart.Read(addr)
	case addr >= types.WRAMStart && addr <= types.WRAMEnd:
		return b.readWRAM(addr)
	case addr >= types.EchoStart && addr <= types.EchoEnd:
		return b.readWRAM(addr - 0x2000)
	case addr >= types.OAMStart && addr <= types.OAMEnd:
		// OAM DMA owns the OAM bus for its whole transfer, not just the
		// copy window, mirroring real hardware's lockout (spec §4.6).
		if b.OAMDMA.Active() || b.PPU.Mode() == ppu.OAMScan || b.PPU.Mode() == ppu.Drawing {
			return 0xFF
		}
		return b.oam[addr-types.OAMStart]
	case addr >= types.ProhibitedStart && addr <= types.ProhibitedEnd:
		return 0xFF
	case addr == types.IE:
		return b.IRQ.Read(addr)
	case addr >= types.HRAMStart && addr <= types.HRAMEnd:
		return b.hram[addr-types.HRAMStart]
	default:
		return b.readIO(addr)
	}
}

// Write performs a CPU-visible write, subject to the same lockouts as
// Read.
func (b *Bus) Write(addr uint16, v uint8) {
	switch {
	case addr <= types.ROMBankNEnd:
		b.Cart.Write(addr, v)
	case addr >= types.VRAMStart && addr <= types.VRAMEnd:
		if b.PPU.Mode() != ppu.Drawing {
			b.PPU.WriteVRAM(addr, v)
		}
	case addr >= types.CartRAMStart && addr <= types.CartRAMEnd:
		b.Cart.Write(addr, v)
	case addr >= types.WRAMStart && addr <= types.WRAMEnd:
		b.writeWRAM(addr, v)
	case addr >= types.EchoStart && addr <= types.EchoEnd:
		b.writeWRAM(addr-0x2000, v)
	case addr >= types.OAMStart && addr <= types.OAMEnd:
		if !b.OAMDMA.Active() && b.PPU.Mode() != ppu.OAMScan && b.PPU.Mode() != ppu.Drawing {
			b.oam[addr-types.OAMStart] = v
		}
	case addr >= types.ProhibitedStart && addr <= types.ProhibitedEnd:
		// writes silently discarded
	case addr == types.IE:
		b.IRQ.Write(addr, v)
	case addr >= types.HRAMStart && addr <= types.HRAMEnd:
		b.hram[addr-types.HRAMStart] = v
	default:
		b.writeIO(addr, v)
	}
}

func (b *Bus) readIO(addr uint16) uint8 {
	switch addr {
	case types.P1:
		return b.Joypad.Read()
	case types.SB, types.SC:
		return b.Serial.Read(addr)
	case types.DIV, types.TIMA, types.TMA, types.TAC:
		return b.Timer.Read(addr)
	case types.IF:
		return b.IRQ.Read(addr)
	case types.DMA:
		return b.OAMDMA.Page()
	case types.KEY1:
		v := uint8(0)
		if b.doubleSpeed {
			v |= 0x80
		}
		if b.speedSwitchReq {
			v |= 0x01
		}
		return v | 0x7E
	case types.SVBK:
		if b.wramBank == 0 {
			return 0x01 | 0xF8
		}
		return b.wramBank | 0xF8
	case types.HDMA5:
		return b.HDMA.ReadControl()
	case types.RP:
		return 0xFF
	}
	if addr >= types.NR10 && addr <= types.WaveRAMEnd {
		return b.APU.Read(addr)
	}
	return b.PPU.Read(addr)
}

func (b *Bus) writeIO(addr uint16, v uint8) {
	switch addr {
	case types.P1:
		b.Joypad.Write(v)
		return
	case types.SB, types.SC:
		b.Serial.Write(addr, v)
		return
	case types.DIV, types.TIMA, types.TMA, types.TAC:
		b.Timer.Write(addr, v)
		return
	case types.IF:
		b.IRQ.Write(addr, v)
		return
	case types.DMA:
		b.OAMDMA.Start(v)
		return
	case types.KEY1:
		if b.model == types.CGB {
			b.speedSwitchReq = v&0x01 != 0
		}
		return
	case types.SVBK:
		if b.model == types.CGB {
			b.wramBank = v & 0x07
		}
		return
	case types.HDMA1:
		b.HDMA.SetSourceHigh(v)
		return
	case types.HDMA2:
		b.HDMA.SetSourceLow(v)
		return
	case types.HDMA3:
		b.HDMA.SetDestHigh(v)
		return
	case types.HDMA4:
		b.HDMA.SetDestLow(v)
		return
	case types.HDMA5:
		b.HDMA.WriteControl(v)
		return
	case types.RP:
		return
	}
	if addr >= types.NR10 && addr <= types.WaveRAMEnd {
		b.APU.Write(addr, v)
		return
	}
	b.PPU.Write(addr, v)
}

// CommitSpeedSwitch flips the double-speed flag if a switch was armed
// via KEY1, called by the CPU when executing STOP (spec §5). It
// reports whether a switch actually happened, so the CPU knows whether
// to pay the switch stall or enter STOP proper.
func (b *Bus) CommitSpeedSwitch() bool {
	if !b.speedSwitchReq {
		return false
	}
	b.doubleSpeed = !b.doubleSpeed
	b.speedSwitchReq = false
	b.PPU.SetDoubleSpeed(b.doubleSpeed)
	return true
}

// DoubleSpeed reports the current CPU clock speed mode.
func (b *Bus) DoubleSpeed() bool { return b.doubleSpeed }
