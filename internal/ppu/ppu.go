// Package ppu implements the Game Boy / Game Boy Color picture
// processing unit: the dot-stepped mode state machine, background,
// window and sprite rendering, and DMG/CGB palettes. Grounded on the
// teacher's internal/ppu package, restructured around a single
// dot-accurate Tick(tCycles) entry point per spec §4.5 rather than
// the teacher's scheduler-event/render-queue pipeline.
package ppu

import (
	"github.com/cartboy/goboycore/internal/interrupts"
	"github.com/cartboy/goboycore/internal/types"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsPerLine  = 456
	oamScanDots  = 80
	minDrawDots  = 172
	visibleLines = 144
	totalLines   = 154
)

// Mode is the current PPU scan mode (spec §3/§4.5).
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	Drawing
)

// LCDC bits.
const (
	lcdcBGWindowEnable = 1 << 0
	lcdcOBJEnable      = 1 << 1
	lcdcOBJSize        = 1 << 2
	lcdcBGTileMap      = 1 << 3
	lcdcBGWindowData   = 1 << 4
	lcdcWindowEnable   = 1 << 5
	lcdcWindowTileMap  = 1 << 6
	lcdcEnable         = 1 << 7
)

// STAT bits.
const (
	statLYCEqualLY   = 1 << 2
	statHBlankIntEn  = 1 << 3
	statVBlankIntEn  = 1 << 4
	statOAMIntEn     = 1 << 5
	statLYCIntEn     = 1 << 6
)

// Sprite is one entry selected during OAM scan for the current line.
type Sprite struct {
	Y, X, Tile, Attr uint8
	OAMIndex         int
}

// PPU holds all picture-processing state.
type PPU struct {
	model types.Model

	lcdc uint8
	stat uint8
	scy, scx uint8
	ly, lyc  uint8
	wy, wx   uint8
	windowLineCounter uint8
	windowWasActive   bool

	bgp, obp0, obp1 uint8

	vram     [2][0x2000]byte
	vramBank uint8 // CGB VBK, 0 or 1

	oam []byte // 160 bytes; shared backing array with dma.OAM

	// CGB color RAM
	bgPalette  [64]uint8
	objPalette [64]uint8
	bgpsIndex, ocpsIndex   uint8
	bgpsAutoInc, ocpsAutoInc bool
	opri uint8 // 0 = CGB priority (oam index), 1 = DMG priority (x coordinate)

	key0 uint8
	key1 uint8
	doubleSpeed      bool
	doubleSpeedCarry uint32

	dot  uint16
	mode Mode

	drawLenCache   uint16
	statLineHigh   bool

	scanlineSprites []Sprite

	Framebuffer [ScreenHeight][ScreenWidth][4]uint8 // RGBA8, alpha always 255

	// FrameComplete is set true when V-Blank begins, i.e. a full frame
	// has just been produced; it stays set until the caller clears it.
	FrameComplete bool

	justEnteredHBlank bool

	irq *interrupts.Controller

	// lcdWasOff tracks the enable bit to detect off->on transitions.
	lcdWasOff bool
}

// New returns a PPU with all VRAM/OAM zeroed and the LCD enabled,
// matching the documented post-boot state (spec §4.1).
func New(model types.Model, irq *interrupts.Controller, oam []byte) *PPU {
	p := &PPU{
		model: model,
		irq:   irq,
		oam:   oam,
		lcdc:  0x91,
		bgp:   0xFC,
		obp0:  0xFF,
		obp1:  0xFF,
		mode:  OAMScan,
		opri:  1,
	}
	return p
}

// SetDoubleSpeed is called by the bus whenever the CPU speed mode
// changes; the PPU's dot clock never speeds up (spec §5 double-speed).
func (p *PPU) SetDoubleSpeed(v bool) { p.doubleSpeed = v }

// JustEnteredHBlank reports (and clears) whether the PPU transitioned
// into mode 0 during the most recent Tick call, the signal HDMA uses
// to copy its next 16-byte block (spec §4.7).
func (p *PPU) JustEnteredHBlank() bool {
	v := p.justEnteredHBlank
	p.justEnteredHBlank = false
	return v
}

// Tick advances the PPU by tCycles of CPU clock time. Dots are always
// wall-clock T-cycles regardless of CPU speed mode (spec §5), so in
// double-speed mode only half as many dots elapse per tCycles passed
// in; doubleSpeedCarry absorbs an odd leftover T-cycle across calls
// rather than silently dropping it.
func (p *PPU) Tick(tCycles uint32) {
	if p.lcdc&lcdcEnable == 0 {
		return
	}
	dots := tCycles
	if p.doubleSpeed {
		dots += p.doubleSpeedCarry
		p.doubleSpeedCarry = dots & 1
		dots /= 2
	}
	for i := uint32(0); i < dots; i++ {
		p.tickDot()
	}
}

func (p *PPU) tickDot() {
	switch p.mode {
	case OAMScan:
		if p.dot == 0 {
			p.scanOAM()
		}
		p.dot++
		if p.dot >= oamScanDots {
			p.drawLenCache = p.computeDrawLength()
			p.setMode(Drawing)
		}
	case Drawing:
		p.dot++
		if p.dot >= oamScanDots+p.drawLenCache {
			p.renderScanline()
			p.setMode(HBlank)
			p.justEnteredHBlank = true
		}
	case HBlank:
		p.dot++
		if p.dot >= dotsPerLine {
			p.advanceLine()
		}
	case VBlank:
		p.dot++
		if p.dot >= dotsPerLine {
			p.advanceLine()
		}
	}
}

func (p *PPU) advanceLine() {
	p.dot = 0
	p.ly++
	if p.ly == visibleLines {
		p.setMode(VBlank)
		p.irq.Request(interrupts.VBlank)
		p.FrameComplete = true
	} else if p.ly >= totalLines {
		p.ly = 0
		p.windowLineCounter = 0
		p.setMode(OAMScan)
	} else if p.mode == VBlank {
		// stay in VBlank, just advance LY
	} else {
		p.setMode(OAMScan)
	}
	p.checkLYC()
	p.checkStatInterrupt()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.checkStatInterrupt()
}

func (p *PPU) checkLYC() {
	p.stat = (p.stat &^ statLYCEqualLY)
	if p.ly == p.lyc {
		p.stat |= statLYCEqualLY
	}
}

// checkStatInterrupt implements the rising-edge STAT interrupt rule
// (spec §4.5 "LY/LYC and STAT"): the interrupt fires once when the OR
// of enabled sources transitions low->high, not once per source.
func (p *PPU) checkStatInterrupt() {
	line := false
	if p.stat&statLYCIntEn != 0 && p.stat&statLYCEqualLY != 0 {
		line = true
	}
	switch p.mode {
	case HBlank:
		line = line || p.stat&statHBlankIntEn != 0
	case VBlank:
		line = line || p.stat&statVBlankIntEn != 0
	case OAMScan:
		line = line || p.stat&statOAMIntEn != 0
	}
	if line && !p.statLineHigh {
		p.irq.Request(interrupts.LCDStat)
	}
	p.statLineHigh = line
}

// computeDrawLength implements spec §4.5's mode-3 penalty model: the
// 172-dot minimum plus SCX%8, a one-time +6 for the window's first
// activation on the line, and 6 dots per selected sprite. The
// fetcher-alignment sub-correction is left unimplemented, as spec.md
// §9 Open Questions explicitly allows.
func (p *PPU) computeDrawLength() uint16 {
	length := uint16(minDrawDots) + uint16(p.scx%8)
	if p.windowActiveOnLine() {
		length += 6
	}
	length += uint16(len(p.scanlineSprites)) * 6
	return length
}

func (p *PPU) windowActiveOnLine() bool {
	return p.lcdc&lcdcWindowEnable != 0 && p.wy <= p.ly && p.wx <= 166
}

// ReadVRAM/WriteVRAM expose the currently-banked VRAM, and also
// satisfy dma.VRAMWriter for HDMA transfers (which always target the
// bank selected by VBK).
func (p *PPU) ReadVRAM(addr uint16) uint8  { return p.vram[p.vramBank][addr-0x8000] }
func (p *PPU) WriteVRAM(addr uint16, v uint8) { p.vram[p.vramBank][addr-0x8000] = v }

// ReadVRAMBank reads from an explicit bank, used by CGB tile-attribute
// lookups which always consult bank 1 regardless of VBK.
func (p *PPU) ReadVRAMBank(bank uint8, addr uint16) uint8 {
	return p.vram[bank&1][addr-0x8000]
}

// Mode returns the current PPU mode (used by the bus's OAM/VRAM access
// policy and by HDMA).
func (p *PPU) Mode() Mode { return p.mode }

// Enabled reports whether LCDC bit 7 is set.
func (p *PPU) Enabled() bool { return p.lcdc&lcdcEnable != 0 }

// Dot returns the current dot position within the active scanline,
// exposed mainly so callers can observe the dot clock's wall-clock
// rate independent of CPU speed mode.
func (p *PPU) Dot() uint16 { return p.dot }
