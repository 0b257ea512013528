package cartridge

import "fmt"

// CGBFlag classifies a cartridge's Game Boy Color support, read from
// header byte $0143.
type CGBFlag uint8

const (
	CGBNone CGBFlag = iota
	CGBEnhanced
	CGBOnly
)

// Type identifies the cartridge's memory bank controller, read from
// header byte $0147.
type Type uint8

const (
	TypeROMOnly          Type = 0x00
	TypeMBC1             Type = 0x01
	TypeMBC1RAM          Type = 0x02
	TypeMBC1RAMBattery   Type = 0x03
	TypeMBC2             Type = 0x05
	TypeMBC2Battery      Type = 0x06
	TypeROMRAM           Type = 0x08
	TypeROMRAMBattery    Type = 0x09
	TypeMBC3TimerBattery    Type = 0x0F
	TypeMBC3TimerRAMBattery Type = 0x10
	TypeMBC3             Type = 0x11
	TypeMBC3RAM          Type = 0x12
	TypeMBC3RAMBattery   Type = 0x13
	TypeMBC5             Type = 0x19
	TypeMBC5RAM          Type = 0x1A
	TypeMBC5RAMBattery   Type = 0x1B
	TypeMBC5Rumble       Type = 0x1C
	TypeMBC5RumbleRAM    Type = 0x1D
	TypeMBC5RumbleRAMBattery Type = 0x1E
)

// ramSizeTable maps header byte $0149 to the cartridge RAM size in bytes.
var ramSizeTable = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024, // listed in some older docs; treated as 2KiB for completeness
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// logo is the 48-byte Nintendo logo stored at $0104-$0133. Every
// licensed cartridge embeds this exact sequence; the boot ROM (not
// modeled here, per spec.md Non-goals) would otherwise refuse to run
// a ROM whose logo doesn't match.
var logo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the parsed cartridge header, $0100-$014F.
type Header struct {
	Title            string
	ManufacturerCode string
	CGBFlag          CGBFlag
	NewLicenseeCode  string
	SGBFlag          bool
	CartridgeType    Type
	ROMBanks         int
	ROMSize          int
	RAMSize          int
	OldLicenseeCode  uint8
	HeaderChecksum   uint8
	GlobalChecksum   uint16

	raw [0x50]byte
}

// parseHeader parses the 0x50-byte header region starting at $0100.
// It never fails on its own; validation (logo check, MBC support,
// size codes) happens in New so the caller gets one
// InvalidCartridgeError with full context.
func parseHeader(rom []byte) Header {
	var h Header
	copy(h.raw[:], rom[0x100:0x150])
	b := h.raw[:]

	switch b[0x43] {
	case 0x80:
		h.CGBFlag = CGBEnhanced
	case 0xC0:
		h.CGBFlag = CGBOnly
	default:
		h.CGBFlag = CGBNone
	}

	if h.CGBFlag == CGBNone {
		h.Title = trimTitle(b[0x34:0x44])
	} else {
		h.Title = trimTitle(b[0x34:0x43])
	}
	h.ManufacturerCode = string(b[0x3F:0x43])
	h.NewLicenseeCode = string(b[0x44:0x46])
	h.SGBFlag = b[0x46] == 0x03
	h.CartridgeType = Type(b[0x47])
	h.ROMBanks = 2 << b[0x48]
	h.ROMSize = 32 * 1024 * (1 << b[0x48])
	h.RAMSize = ramSizeTable[b[0x49]]
	h.OldLicenseeCode = b[0x4B]
	h.HeaderChecksum = b[0x4D]
	h.GlobalChecksum = uint16(b[0x4E])<<8 | uint16(b[0x4F])

	return h
}

func trimTitle(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

// IsCGB reports whether the cartridge requests or requires CGB hardware.
func (h *Header) IsCGB() bool {
	return h.CGBFlag == CGBEnhanced || h.CGBFlag == CGBOnly
}

// logoMatches reports whether the embedded Nintendo logo is intact.
func logoMatches(rom []byte) bool {
	if len(rom) < 0x134 {
		return false
	}
	for i, want := range logo {
		if rom[0x104+i] != want {
			return false
		}
	}
	return true
}

// headerChecksumOf computes the header checksum over $0134-$014C, the
// same algorithm the boot ROM uses to validate HeaderChecksum.
func headerChecksumOf(rom []byte) uint8 {
	var sum uint8
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

// TitleChecksum sums header bytes $0134-$0143 mod 256, used by the
// DMG colorization palette lookup (spec §4.5.1).
func (h *Header) TitleChecksum() uint8 {
	var sum uint8
	for i := 0x34; i < 0x44; i++ {
		sum += h.raw[i]
	}
	return sum
}

// FourthTitleByte disambiguates colorization palette collisions.
func (h *Header) FourthTitleByte() uint8 {
	return h.raw[0x37]
}

// IsNintendoLicensee reports whether the header's licensee code is
// Nintendo's, the gate for DMG colorization lookup (spec §4.5.1.1).
func (h *Header) IsNintendoLicensee() bool {
	if h.OldLicenseeCode == 0x01 {
		return true
	}
	return h.OldLicenseeCode == 0x33 && h.NewLicenseeCode == "01"
}

func (h *Header) String() string {
	return fmt.Sprintf("%s (%s) type=%#02x rom=%dKiB ram=%dKiB", h.Title, h.cgbString(), h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}

func (h *Header) cgbString() string {
	switch h.CGBFlag {
	case CGBOnly:
		return "CGB-only"
	case CGBEnhanced:
		return "CGB-enhanced"
	default:
		return "DMG"
	}
}
