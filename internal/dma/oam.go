// Package dma implements the two DMA engines in the Game Boy: OAM DMA
// (spec §4.6, both DMG and CGB) and CGB VRAM HDMA/GDMA (spec §4.7).
// Grounded on the teacher's internal/mmu and internal/io dma.go.
package dma

// SourceReader is satisfied by the bus: DMA engines read their source
// bytes through it, bypassing the "$FF while DMA is active" read
// policy that applies to ordinary CPU reads.
type SourceReader interface {
	ReadDMA(addr uint16) uint8
}

// OAM implements the classic $FF46 OAM DMA transfer: 160 bytes copied
// from $XX00 into OAM, one byte per M-cycle, 640 T-cycles total from
// the trigger write (spec §8 invariant 5). The first byte's M-cycle
// doubles as hardware's well-known 1-M-cycle start delay — it is not
// extra time on top of the 640, just the first of the 160 M-cycles
// during which OAM is locked out before anything has been copied yet.
type OAM struct {
	oam []byte // shared backing array with the bus's OAM memory

	source SourceReader
	page   uint8

	active    bool
	pos       int // next OAM offset to write, 0-159
	cycleDebt uint32
}

// NewOAM returns an OAM DMA engine writing into oam (160 bytes, owned
// by and shared with the bus) and reading source bytes through src.
func NewOAM(oam []byte, src SourceReader) *OAM {
	return &OAM{oam: oam, source: src}
}

// Start begins (or restarts) a transfer from page*0x100. A write to
// $FF46 during an active transfer restarts it cleanly (spec §4.6).
func (d *OAM) Start(page uint8) {
	d.page = page
	d.active = true
	d.pos = 0
	d.cycleDebt = 0
}

// Page returns the last page value written to $FF46 (the DMA register
// reads back the page, not a status bit).
func (d *OAM) Page() uint8 {
	return d.page
}

// Active reports whether a transfer is in progress — including the
// start-delay window, during which the bus must still apply the
// lockout (real hardware starts denying access from the trigger
// write, not from the first copied byte).
func (d *OAM) Active() bool {
	return d.active
}

// Tick advances the transfer by tCycles T-cycles.
func (d *OAM) Tick(tCycles uint32) {
	if !d.active {
		return
	}
	d.cycleDebt += tCycles
	for d.cycleDebt >= 4 && d.active {
		d.cycleDebt -= 4
		addr := uint16(d.page)<<8 + uint16(d.pos)
		d.oam[d.pos] = d.source.ReadDMA(addr)
		d.pos++
		if d.pos >= 160 {
			d.active = false
		}
	}
}
