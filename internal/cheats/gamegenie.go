// Package cheats implements Game Genie cartridge patching, a
// supplemental feature (spec.md doesn't mention it, but doesn't
// exclude it either — see SPEC_FULL.md). Grounded on the teacher's
// internal/cheats/gamegenie.go.
package cheats

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is one parsed nine-digit Game Genie code, formatted by the
// user as "ABC-DEF-GHI": AB is the replacement byte, FCDE is the
// target address XORed with $F000, and GI is the original byte the
// cartridge must hold (XORed with $BA and rotated left 2) for the
// patch to take effect.
type Code struct {
	Raw     string
	Name    string
	NewData uint8
	Address uint16
	OldData uint8
	Enabled bool
}

func rotl2(v uint8) uint8 {
	return v<<2 | v>>6
}

// Parse decodes a single "ABC-DEF-GHI" code.
func Parse(code string) (Code, error) {
	stripped := strings.ReplaceAll(code, "-", "")
	if len(stripped) != 9 {
		return Code{}, fmt.Errorf("cheats: invalid game genie code length: %d", len(stripped))
	}

	ab := stripped[0:2]
	cdef := stripped[2:6]
	// the address digits appear in the code as C,D,E,F — reorder to hex "FCDE"
	fcde := string(cdef[3]) + cdef[0:3]
	gi := string(stripped[6]) + string(stripped[8])

	newData, err := strconv.ParseUint(ab, 16, 8)
	if err != nil {
		return Code{}, err
	}
	addrWord, err := strconv.ParseUint(fcde, 16, 16)
	if err != nil {
		return Code{}, err
	}
	oldData, err := strconv.ParseUint(gi, 16, 8)
	if err != nil {
		return Code{}, err
	}

	return Code{
		Raw:     code,
		NewData: uint8(newData),
		Address: uint16(addrWord) ^ 0xF000,
		OldData: rotl2(uint8(oldData) ^ 0xBA),
		Enabled: true,
	}, nil
}

// Engine holds a small set of active codes and patches cartridge ROM
// reads at the bus level. It satisfies cartridge.ChannelPatcher.
type Engine struct {
	Codes []Code
}

// NewEngine returns an empty cheat engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Add parses and activates a code, naming it for later toggling.
func (e *Engine) Add(code, name string) error {
	c, err := Parse(code)
	if err != nil {
		return err
	}
	c.Name = name
	e.Codes = append(e.Codes, c)
	return nil
}

// SetEnabled toggles the named code.
func (e *Engine) SetEnabled(name string, enabled bool) {
	for i := range e.Codes {
		if e.Codes[i].Name == name {
			e.Codes[i].Enabled = enabled
		}
	}
}

// Patch returns the patched byte for a ROM read at addr given the
// cartridge's unmodified value. Matching hardware requires the
// cartridge's stored byte to equal OldData before the patch applies
// (this is what stops a three-code budget from corrupting unrelated
// ROM revisions); codes whose verification byte doesn't match are
// silently skipped, same as real Game Genie cartridges.
func (e *Engine) Patch(addr uint16, value uint8) uint8 {
	for _, c := range e.Codes {
		if c.Enabled && c.Address == addr && c.OldData == value {
			return c.NewData
		}
	}
	return value
}
