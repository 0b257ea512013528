package ppu

import "github.com/cartboy/goboycore/internal/types"

// Read dispatches a guest read of an LCD/PPU I/O register.
func (p *PPU) Read(addr uint16) uint8 {
	switch addr {
	case types.LCDC:
		return p.lcdc
	case types.STAT:
		return p.stat | 0x80
	case types.SCY:
		return p.scy
	case types.SCX:
		return p.scx
	case types.LY:
		return p.ly
	case types.LYC:
		return p.lyc
	case types.BGP:
		return p.bgp
	case types.OBP0:
		return p.obp0
	case types.OBP1:
		return p.obp1
	case types.WY:
		return p.wy
	case types.WX:
		return p.wx
	case types.VBK:
		return p.vramBank | 0xFE
	case types.KEY0:
		return p.key0
	case types.KEY1:
		v := p.key1 & 0x01
		if p.doubleSpeed {
			v |= 0x80
		}
		return v | 0x7E
	case types.BCPS:
		v := p.bgpsIndex
		if p.bgpsAutoInc {
			v |= 0x80
		}
		return v | 0x40
	case types.BCPD:
		return p.bgPalette[p.bgpsIndex]
	case types.OCPS:
		v := p.ocpsIndex
		if p.ocpsAutoInc {
			v |= 0x80
		}
		return v | 0x40
	case types.OCPD:
		return p.objPalette[p.ocpsIndex]
	case types.OPRI:
		return p.opri | 0xFE
	}
	if addr >= 0x8000 && addr <= 0x9FFF {
		return p.ReadVRAM(addr)
	}
	if addr >= 0xFE00 && addr <= 0xFE9F {
		return p.oam[addr-0xFE00]
	}
	return 0xFF
}

// Write dispatches a guest write to an LCD/PPU I/O register.
func (p *PPU) Write(addr uint16, v uint8) {
	switch addr {
	case types.LCDC:
		wasOn := p.lcdc&lcdcEnable != 0
		p.lcdc = v
		nowOn := p.lcdc&lcdcEnable != 0
		if wasOn && !nowOn {
			p.disableLCD()
		} else if !wasOn && nowOn {
			p.enableLCD()
		}
	case types.STAT:
		p.stat = p.stat&statLYCEqualLY | v&0x78
		p.checkStatInterrupt()
	case types.SCY:
		p.scy = v
	case types.SCX:
		p.scx = v
	case types.LY:
		// read-only
	case types.LYC:
		p.lyc = v
		p.checkLYC()
		p.checkStatInterrupt()
	case types.BGP:
		p.bgp = v
	case types.OBP0:
		p.obp0 = v
	case types.OBP1:
		p.obp1 = v
	case types.WY:
		p.wy = v
	case types.WX:
		p.wx = v
	case types.VBK:
		if p.model == types.CGB {
			p.vramBank = v & 1
		}
	case types.KEY0:
		p.key0 = v
	case types.KEY1:
		p.key1 = v & 0x01
	case types.BCPS:
		p.bgpsIndex = v & 0x3F
		p.bgpsAutoInc = v&0x80 != 0
	case types.BCPD:
		p.bgPalette[p.bgpsIndex] = v
		if p.bgpsAutoInc {
			p.bgpsIndex = (p.bgpsIndex + 1) & 0x3F
		}
	case types.OCPS:
		p.ocpsIndex = v & 0x3F
		p.ocpsAutoInc = v&0x80 != 0
	case types.OCPD:
		p.objPalette[p.ocpsIndex] = v
		if p.ocpsAutoInc {
			p.ocpsIndex = (p.ocpsIndex + 1) & 0x3F
		}
	case types.OPRI:
		p.opri = v & 1
	default:
		if addr >= 0x8000 && addr <= 0x9FFF {
			p.WriteVRAM(addr, v)
		} else if addr >= 0xFE00 && addr <= 0xFE9F {
			p.oam[addr-0xFE00] = v
		}
	}
}

func (p *PPU) disableLCD() {
	p.ly = 0
	p.dot = 0
	p.mode = HBlank
	p.windowLineCounter = 0
	p.checkLYC()
}

func (p *PPU) enableLCD() {
	p.ly = 0
	p.dot = 0
	p.setMode(OAMScan)
	p.checkLYC()
}

// LoadColorizationPalette seeds CRAM with a DMG colorization palette
// for a DMG cartridge running on CGB hardware (spec §4.5.1). It is a
// one-shot write — the ROM itself never touches CRAM in this mode.
func (p *PPU) LoadColorizationPalette(bg, obj0, obj1 [4]uint16) {
	write := func(store *[64]uint8, colors [4]uint16) {
		for i, c := range colors {
			store[i*2] = uint8(c)
			store[i*2+1] = uint8(c >> 8)
		}
	}
	write(&p.bgPalette, bg)
	write(&p.objPalette, obj0)
	var obj1Store [64]uint8
	write(&obj1Store, obj1)
	copy(p.objPalette[8:16], obj1Store[:8])
}
