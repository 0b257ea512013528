package cpu

import "fmt"

// UnsupportedOpcodeError is returned by Err once the CPU has fetched
// one of the eleven undefined opcodes ($D3,$DB,$DD,$E3,$E4,$EB,$EC,
// $ED,$F4,$FC,$FD). Real hardware locks up permanently when this
// happens; Step models the same outcome deterministically by freezing
// in place rather than executing anything further.
type UnsupportedOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("cpu: unsupported opcode %#02x at %#04x", e.Opcode, e.PC)
}
