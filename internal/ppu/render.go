package ppu

import "github.com/cartboy/goboycore/internal/types"

// tileAttr decodes a CGB VRAM-bank-1 background map attribute byte.
type tileAttr struct {
	palette  uint8
	bank     uint8
	xFlip    bool
	yFlip    bool
	priority bool // true: BG/window colors 1-3 drawn over sprites, unless LCDC bit 0 is clear
}

func decodeTileAttr(b uint8) tileAttr {
	return tileAttr{
		palette:  b & 0x07,
		bank:     (b >> 3) & 1,
		xFlip:    b&0x20 != 0,
		yFlip:    b&0x40 != 0,
		priority: b&0x80 != 0,
	}
}

// bgPixel is what the background/window fetch pipeline produces for
// one screen column before sprite mixing.
type bgPixel struct {
	colorIdx uint8
	attr     tileAttr
}

// renderScanline produces all 160 pixels of the current line (spec
// §4.5 "Drawing (mode 3)"), mixing background, window and sprites per
// the DMG and CGB priority rules.
func (p *PPU) renderScanline() {
	row := int(p.ly)
	if row >= ScreenHeight {
		return
	}

	windowOnLine := p.windowActiveOnLine()
	windowAdvanced := false

	for x := 0; x < ScreenWidth; x++ {
		bg := p.fetchBackgroundPixel(x)
		usedWindow := false
		if windowOnLine && int(p.wx)-7 <= x {
			bg = p.fetchWindowPixel(x)
			usedWindow = true
		}
		if usedWindow {
			windowAdvanced = true
		}

		sp, hasSprite := p.fetchSpritePixel(x, bg.colorIdx, bg.attr.priority)

		var color [4]uint8
		if p.model == types.CGB {
			switch {
			case hasSprite:
				color = p.objColor(sp.palette, sp.colorIdx)
			case p.lcdc&lcdcBGWindowEnable == 0:
				color = p.bgColor(bg.attr.palette, 0)
			default:
				color = p.bgColor(bg.attr.palette, bg.colorIdx)
			}
		} else {
			switch {
			case hasSprite:
				pal := p.obp0
				if sp.obpSelect == 1 {
					pal = p.obp1
				}
				color = p.dmgColor(pal, sp.colorIdx)
			case p.lcdc&lcdcBGWindowEnable != 0:
				color = p.dmgColor(p.bgp, bg.colorIdx)
			default:
				color = p.dmgColor(p.bgp, 0)
			}
		}

		p.Framebuffer[row][x] = color
	}

	if windowAdvanced {
		p.windowLineCounter++
	}
}

func (p *PPU) fetchBackgroundPixel(x int) bgPixel {
	scrolledX := (x + int(p.scx)) & 0xFF
	scrolledY := (int(p.ly) + int(p.scy)) & 0xFF
	mapBase := uint16(0x9800)
	if p.lcdc&lcdcBGTileMap != 0 {
		mapBase = 0x9C00
	}
	return p.fetchMapPixel(mapBase, scrolledX, scrolledY)
}

func (p *PPU) fetchWindowPixel(x int) bgPixel {
	wx := x - (int(p.wx) - 7)
	wy := int(p.windowLineCounter)
	mapBase := uint16(0x9800)
	if p.lcdc&lcdcWindowTileMap != 0 {
		mapBase = 0x9C00
	}
	return p.fetchMapPixel(mapBase, wx, wy)
}

func (p *PPU) fetchMapPixel(mapBase uint16, px, py int) bgPixel {
	tileCol := px / 8
	tileRow := py / 8
	mapAddr := mapBase + uint16(tileRow)*32 + uint16(tileCol)

	tileIdx := p.ReadVRAMBank(0, mapAddr)
	attrByte := uint8(0)
	if p.model == types.CGB {
		attrByte = p.ReadVRAMBank(1, mapAddr)
	}
	attr := decodeTileAttr(attrByte)

	rowInTile := py % 8
	if attr.yFlip {
		rowInTile = 7 - rowInTile
	}
	colInTile := px % 8
	if attr.xFlip {
		colInTile = 7 - colInTile
	}

	tileDataAddr := p.tileDataAddr(tileIdx, rowInTile)
	lo := p.ReadVRAMBank(attr.bank, tileDataAddr)
	hi := p.ReadVRAMBank(attr.bank, tileDataAddr+1)

	bit := 7 - colInTile
	colorIdx := (hi>>bit&1)<<1 | (lo >> bit & 1)

	return bgPixel{colorIdx: colorIdx, attr: attr}
}

// tileDataAddr resolves a tile index to its VRAM address for the
// selected addressing mode (LCDC bit 4): $8000 unsigned, or $8800
// signed relative to $9000.
func (p *PPU) tileDataAddr(tileIdx uint8, rowInTile int) uint16 {
	var base uint16
	if p.lcdc&lcdcBGWindowData != 0 {
		base = 0x8000 + uint16(tileIdx)*16
	} else {
		base = uint16(0x9000 + int(int8(tileIdx))*16)
	}
	return base + uint16(rowInTile)*2
}

type spritePixel struct {
	colorIdx  uint8
	palette   uint8 // CGB OBP0-7
	obpSelect uint8 // DMG: 0 or 1, selects OBP0/OBP1
}

// fetchSpritePixel returns the topmost opaque sprite pixel at column
// x, honoring DMG/CGB BG-priority rules (spec §4.5 "Drawing (mode
// 3)", sprite-priority subsection).
func (p *PPU) fetchSpritePixel(x int, bgColorIdx uint8, bgPriority bool) (spritePixel, bool) {
	if p.lcdc&lcdcOBJEnable == 0 {
		return spritePixel{}, false
	}

	height := 8
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	for _, s := range p.scanlineSprites {
		left := int(s.X) - 8
		if x < left || x >= left+8 {
			continue
		}

		col := x - left
		xFlip := s.Attr&0x20 != 0
		yFlip := s.Attr&0x40 != 0
		bgOverObj := s.Attr&0x80 != 0

		row := int(p.ly) - (int(s.Y) - 16)
		if yFlip {
			row = height - 1 - row
		}
		if !xFlip {
			col = 7 - col
		}

		tile := s.Tile
		if height == 16 {
			tile &^= 1
			if row >= 8 {
				tile |= 1
				row -= 8
			}
		}

		bank := uint8(0)
		if p.model == types.CGB {
			bank = (s.Attr >> 3) & 1
		}
		addr := uint16(0x8000) + uint16(tile)*16 + uint16(row)*2
		lo := p.ReadVRAMBank(bank, addr)
		hi := p.ReadVRAMBank(bank, addr+1)
		colorIdx := (hi>>uint(col)&1)<<1 | (lo >> uint(col) & 1)
		if colorIdx == 0 {
			continue
		}

		if p.model == types.CGB {
			masterPriority := p.lcdc&lcdcBGWindowEnable == 0
			if !masterPriority && (bgOverObj || bgPriority) && bgColorIdx != 0 {
				continue
			}
			return spritePixel{colorIdx: colorIdx, palette: s.Attr & 0x07}, true
		}

		if bgOverObj && bgColorIdx != 0 {
			continue
		}
		return spritePixel{colorIdx: colorIdx, obpSelect: (s.Attr >> 4) & 1}, true
	}

	return spritePixel{}, false
}
