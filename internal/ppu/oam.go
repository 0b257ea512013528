package ppu

import "sort"

const maxSpritesPerLine = 10

// scanOAM selects up to ten sprites visible on the current line
// (spec §4.5 "OAM scan (mode 2)"), in OAM order. Ordering within the
// selection (for priority during mixing) is resolved later in
// renderScanline per the DMG/CGB OPRI rule, not here: real hardware's
// scan itself is index-ordered, only *drawing priority* depends on X.
func (p *PPU) scanOAM() {
	p.scanlineSprites = p.scanlineSprites[:0]

	height := uint8(8)
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	for i := 0; i < 40 && len(p.scanlineSprites) < maxSpritesPerLine; i++ {
		base := i * 4
		y := p.oam[base]
		top := int(y) - 16
		line := int(p.ly) - top
		if line < 0 || line >= int(height) {
			continue
		}
		p.scanlineSprites = append(p.scanlineSprites, Sprite{
			Y:        y,
			X:        p.oam[base+1],
			Tile:     p.oam[base+2],
			Attr:     p.oam[base+3],
			OAMIndex: i,
		})
	}

	// Drawing-priority order: DMG, and CGB with OPRI=1, sort by smaller
	// X first with OAM index breaking ties. CGB with OPRI=0 uses OAM
	// index alone, which the scan above already produced in order.
	if p.opri == 1 {
		sort.SliceStable(p.scanlineSprites, func(a, b int) bool {
			return p.scanlineSprites[a].X < p.scanlineSprites[b].X
		})
	}
}
