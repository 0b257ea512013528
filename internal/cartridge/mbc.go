package cartridge

// MBC is the memory bank controller interface every cartridge
// implements. The bus routes all of $0000-$7FFF (ROM, including MBC
// control writes) and $A000-$BFFF (cartridge RAM) through it.
//
// Grounded on the teacher's internal/cartridge/mbc.go, reshaped from
// the teacher's bus-splice-on-write model (copying bank bytes into a
// shared backing array) to an explicit read/write dispatch, which
// keeps MBC state entirely self-contained and matches spec §4.2's bus
// dispatch table.
type MBC interface {
	// Read returns the byte at the given guest address, which is
	// always in $0000-$7FFF or $A000-$BFFF.
	Read(addr uint16) uint8
	// Write handles a guest write in the same ranges: either a
	// control-register write (ROM region) or a cartridge-RAM write.
	Write(addr uint16, value uint8)
	// SaveRAM returns the cartridge's battery-backed RAM itself (the
	// backing slice, not a copy); Cartridge.SaveSRAM copies it.
	SaveRAM() []byte
	// LoadRAM restores previously saved cartridge RAM. The caller is
	// responsible for checking the length against SaveRAM's size.
	LoadRAM(data []byte)
}

// RTC is implemented by MBCs that additionally expose a real-time
// clock (MBC3 with $0F/$10 header types).
type RTC interface {
	SaveRTC() []byte
	LoadRTC(data []byte)
}

// Ticker is implemented by MBCs that need to advance internal state
// (currently only MBC3's RTC) with the passage of T-cycles.
type Ticker interface {
	Tick(tCycles uint32)
}

// romBankCount returns the number of 16KiB ROM banks backing rom,
// always a power of two per the header's declared size.
func romBankCount(rom []byte) int {
	n := len(rom) / 0x4000
	if n < 2 {
		n = 2
	}
	return n
}

// maskBank clamps a requested bank index to the available bank count,
// matching invariant #8 ("masks by rom_bank_count - 1"). bankCount
// must be a power of two.
func maskBank(bank, bankCount int) int {
	return bank & (bankCount - 1)
}

// romByte reads a byte from rom at bank*0x4000+offset, returning 0xFF
// if the bank is out of range for a truncated/synthetic ROM image.
func romByte(rom []byte, bank int, offset uint16) uint8 {
	idx := bank*0x4000 + int(offset)
	if idx < 0 || idx >= len(rom) {
		return 0xFF
	}
	return rom[idx]
}

func newMBC(h *Header, rom []byte) (MBC, error) {
	switch h.CartridgeType {
	case TypeROMOnly, TypeROMRAM, TypeROMRAMBattery:
		return newROMOnly(h, rom), nil
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery:
		return newMBC1(h, rom), nil
	case TypeMBC2, TypeMBC2Battery:
		return newMBC2(h, rom), nil
	case TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery, TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery:
		return newMBC3(h, rom), nil
	case TypeMBC5, TypeMBC5RAM, TypeMBC5RAMBattery, TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery:
		return newMBC5(h, rom), nil
	default:
		return nil, &InvalidCartridgeError{Reason: "unsupported MBC type", Detail: h.CartridgeType}
	}
}
