package ppu

import (
	"testing"

	"github.com/cartboy/goboycore/internal/interrupts"
	"github.com/cartboy/goboycore/internal/types"
)

func newTestPPU() (*PPU, *interrupts.Controller) {
	irq := interrupts.NewController()
	oam := make([]byte, 160)
	p := New(types.DMG, irq, oam)
	return p, irq
}

func TestScanlineDotCountIsAlwaysFourFiftySix(t *testing.T) {
	p, _ := newTestPPU()
	p.scx = 3
	// tick one whole line's worth of dots and confirm LY advanced by
	// exactly one regardless of however mode 3 stretched.
	startLY := p.ly
	for i := 0; i < dotsPerLine; i++ {
		p.tickDot()
	}
	if p.ly != startLY+1 {
		t.Fatalf("LY = %d, want %d after 456 dots", p.ly, startLY+1)
	}
}

func TestLYCEqualLYSetsStatBit(t *testing.T) {
	p, _ := newTestPPU()
	p.lyc = 5
	p.ly = 5
	p.checkLYC()
	if p.stat&statLYCEqualLY == 0 {
		t.Errorf("STAT LYC=LY bit not set when LY==LYC")
	}
	p.ly = 6
	p.checkLYC()
	if p.stat&statLYCEqualLY != 0 {
		t.Errorf("STAT LYC=LY bit still set when LY!=LYC")
	}
}

func TestStatInterruptFiresOnceOnRisingEdge(t *testing.T) {
	p, irq := newTestPPU()
	p.stat = statLYCIntEn
	p.lyc = 0
	p.ly = 0
	p.checkLYC()
	p.checkStatInterrupt()
	if irq.Flag&(1<<uint8(interrupts.LCDStat)) == 0 {
		t.Fatalf("STAT interrupt not requested on rising edge")
	}
	irq.Clear(interrupts.LCDStat)

	// the line stays high (LY still equals LYC); re-checking must not
	// request the interrupt again.
	p.checkStatInterrupt()
	if irq.Flag&(1<<uint8(interrupts.LCDStat)) != 0 {
		t.Errorf("STAT interrupt re-fired without a falling edge first")
	}
}

func TestDrawLengthIncludesSCXSubTileAndSpritePenalty(t *testing.T) {
	p, _ := newTestPPU()
	p.scx = 5
	p.scanlineSprites = make([]Sprite, 2)
	got := p.computeDrawLength()
	want := uint16(minDrawDots) + 5 + 2*6
	if got != want {
		t.Errorf("computeDrawLength() = %d, want %d", got, want)
	}
}

func TestRGB555To888ExpandsTopBitsIntoLowBits(t *testing.T) {
	cases := map[uint8]uint8{
		0x00: 0x00,
		0x1F: 0xFF,
		0x10: 0x84, // 10000 -> 10000100
		0x01: 0x08, // 00001 -> 00001000
	}
	for in, want := range cases {
		if got := rgb555To888(in); got != want {
			t.Errorf("rgb555To888(%#02x) = %#02x, want %#02x", in, got, want)
		}
	}
}

func TestDMGColorMapsPaletteBitsToGrayscale(t *testing.T) {
	p, _ := newTestPPU()
	// BGP = 0xE4 = 11 10 01 00: index0->0, index1->1, index2->2, index3->3
	got := p.dmgColor(0xE4, 3)
	want := dmgShades[3]
	if got != want {
		t.Errorf("dmgColor(0xE4, 3) = %v, want %v", got, want)
	}
}

func TestVRAMBankingIsIndependentPerBank(t *testing.T) {
	p, _ := newTestPPU()
	p.model = types.CGB
	p.WriteVRAM(0x8000, 0x11)
	p.Write(types.VBK, 0x01)
	p.WriteVRAM(0x8000, 0x22)

	if got := p.ReadVRAMBank(0, 0x8000); got != 0x11 {
		t.Errorf("bank 0 = %#02x, want 0x11", got)
	}
	if got := p.ReadVRAMBank(1, 0x8000); got != 0x22 {
		t.Errorf("bank 1 = %#02x, want 0x22", got)
	}
}

func TestVBlankSetsFrameCompleteAndRequestsInterrupt(t *testing.T) {
	p, irq := newTestPPU()
	p.ly = visibleLines - 1
	p.mode = HBlank
	p.advanceLine()

	if !p.FrameComplete {
		t.Errorf("FrameComplete not set on entering VBlank")
	}
	if p.mode != VBlank {
		t.Errorf("mode = %v, want VBlank", p.mode)
	}
	if irq.Flag&(1<<uint8(interrupts.VBlank)) == 0 {
		t.Errorf("VBlank interrupt not requested")
	}
}

func TestDisablingLCDFreezesTickAndResetsLY(t *testing.T) {
	p, _ := newTestPPU()
	p.ly = 42
	p.Write(types.LCDC, 0x00) // disable
	if p.ly != 0 {
		t.Errorf("LY after LCD disable = %d, want 0", p.ly)
	}
	beforeDot := p.dot
	p.Tick(1000)
	if p.dot != beforeDot {
		t.Errorf("Tick advanced the PPU while LCD disabled")
	}
}
