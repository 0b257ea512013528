package cartridge

import "fmt"

// InvalidCartridgeError is returned from New when the ROM image can't
// be turned into a working cartridge: a corrupt/missing logo, an
// unsupported MBC type, or an impossible ROM/RAM size combination
// (spec §7 ErrInvalidCartridge). Construction never returns a partial
// Cartridge alongside this error.
type InvalidCartridgeError struct {
	Reason string
	Detail any
}

func (e *InvalidCartridgeError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("invalid cartridge: %s (%v)", e.Reason, e.Detail)
	}
	return fmt.Sprintf("invalid cartridge: %s", e.Reason)
}

// SramOverflowError is returned from Cartridge.LoadSRAM when
// the supplied blob's length doesn't match the cartridge's declared
// RAM size (spec §7 ErrSramOverflow).
type SramOverflowError struct {
	Got, Want int
}

func (e *SramOverflowError) Error() string {
	return fmt.Sprintf("sram overflow: got %d bytes, cartridge expects %d", e.Got, e.Want)
}
