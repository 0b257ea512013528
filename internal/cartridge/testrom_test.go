package cartridge

// nintendoLogo duplicates the header's required logo bytes so tests
// can build a ROM that passes New's validation without reaching into
// the unexported header internals.
var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// newTestROM builds a minimally valid ROM image of romBanks 16KiB
// banks, with cartType and ramSize code written into the header.
func newTestROM(cartType Type, romBanks int, ramSizeCode uint8) []byte {
	rom := make([]byte, romBanks*0x4000)
	copy(rom[0x104:0x104+len(nintendoLogo)], nintendoLogo[:])
	rom[0x147] = byte(cartType)
	rom[0x149] = ramSizeCode

	romSizeCode := uint8(0)
	for 0x8000<<romSizeCode < romBanks*0x4000 {
		romSizeCode++
	}
	rom[0x148] = romSizeCode
	return rom
}
