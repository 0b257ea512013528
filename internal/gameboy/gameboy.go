// Package gameboy assembles the CPU, bus and every subsystem it
// drives into the single entry point a host application embeds.
// Grounded on the teacher's top-level gameboy.GameBoy type.
package gameboy

import (
	"fmt"

	"github.com/cespare/xxhash"

	"github.com/cartboy/goboycore/internal/bus"
	"github.com/cartboy/goboycore/internal/cartridge"
	"github.com/cartboy/goboycore/internal/cheats"
	"github.com/cartboy/goboycore/internal/cpu"
	"github.com/cartboy/goboycore/internal/host"
	"github.com/cartboy/goboycore/internal/ppu"
	"github.com/cartboy/goboycore/internal/types"
	"github.com/cartboy/goboycore/pkg/log"
)

// Core is a complete, host-agnostic Game Boy / Game Boy Color
// emulation session: one cartridge, one CPU, one bus.
type Core struct {
	cart *cartridge.Cartridge
	bus  *bus.Bus
	cpu  *cpu.CPU
	log  log.Logger

	model types.Model

	cheats *cheats.Engine

	framebuffer   host.Framebuffer
	lastFrameHash uint64
	haveFrameHash bool

	pendingSink       host.AudioSink
	pendingSampleRate uint32
	pendingPalette    *cartridge.ColorizationPalette
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithModel forces DMG or CGB instead of auto-detecting from the
// cartridge header's CGB flag.
func WithModel(m types.Model) Option {
	return func(c *Core) { c.model = m }
}

// WithLogger attaches a structured logger; the default is a no-op.
func WithLogger(l log.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithFramebuffer attaches a host.Framebuffer; frames are pushed to it
// once per real frame, deduplicated by content hash.
func WithFramebuffer(fb host.Framebuffer) Option {
	return func(c *Core) { c.framebuffer = fb }
}

// WithAudioSink attaches a host.AudioSink that receives resampled
// stereo output.
func WithAudioSink(sink host.AudioSink, sampleRate uint32) Option {
	return func(c *Core) {
		c.pendingSink = sink
		c.pendingSampleRate = sampleRate
	}
}

// WithColorizationPalette overrides the DMG-on-CGB colorization
// palette the cartridge header would otherwise select (spec §4.5.1).
func WithColorizationPalette(p cartridge.ColorizationPalette) Option {
	return func(c *Core) { c.pendingPalette = &p }
}

// WithCheats attaches a Game Genie engine; codes added to e before or
// after construction take effect on the next ROM read.
func WithCheats(e *cheats.Engine) Option {
	return func(c *Core) { c.cheats = e }
}

// NewCore parses rom, selects a model, and wires a fresh CPU/bus ready
// to execute from the cartridge's entry point (boot ROM emulation is
// out of scope, spec.md Non-goals; execution begins directly at
// $0100 with post-boot register values).
func NewCore(rom []byte, opts ...Option) (*Core, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, fmt.Errorf("gameboy: %w", err)
	}

	c := &Core{cart: cart, log: log.NewNullLogger()}
	for _, opt := range opts {
		opt(c)
	}

	if c.model == types.Auto {
		if cart.Header.IsCGB() {
			c.model = types.CGB
		} else {
			c.model = types.DMG
		}
	}

	if c.cheats != nil {
		cart.AttachCheats(c.cheats)
	}

	if c.model == types.CGB && !cart.Header.IsCGB() && c.pendingPalette == nil {
		pal := cart.Header.SelectColorizationPalette(-1)
		c.pendingPalette = &pal
	}

	c.bus = bus.New(c.model, cart)
	if c.pendingPalette != nil {
		c.bus.PPU.LoadColorizationPalette(rgb555s(c.pendingPalette.BG), rgb555s(c.pendingPalette.OBJ0), rgb555s(c.pendingPalette.OBJ1))
	}
	if c.pendingSink != nil {
		c.bus.AttachAudioSink(c.pendingSink, c.pendingSampleRate)
	}
	c.cpu = cpu.NewCPU(c.bus)

	c.log.Infof("gameboy: loaded %q model=%s mbc=%s", cart.Header.Title, c.model, cart.Header.String())
	return c, nil
}

// StepInstruction executes exactly one CPU step (one instruction, or
// one tick of HALT/STOP wait) and returns the T-cycles it took.
func (c *Core) StepInstruction() uint32 {
	return c.cpu.Step()
}

// Err reports the error that froze the core, or nil if it is still
// running. Once set it never clears (spec §7 UnsupportedOpcode): the
// CPU has fetched one of the undefined opcodes and stopped stepping.
func (c *Core) Err() error {
	return c.cpu.Err()
}

// RunUntilFrame steps the CPU until the PPU completes a frame,
// presenting it to the attached host.Framebuffer (if any) unless its
// content is byte-identical to the previous frame.
func (c *Core) RunUntilFrame() {
	for {
		c.cpu.Step()
		if c.cpu.Err() != nil {
			return
		}
		if c.bus.PPU.FrameComplete {
			c.bus.PPU.FrameComplete = false
			c.presentFrame()
			return
		}
	}
}

func (c *Core) presentFrame() {
	if c.framebuffer == nil {
		return
	}
	h := xxhash.Sum64(framebufferBytes(&c.bus.PPU.Framebuffer))
	if c.haveFrameHash && h == c.lastFrameHash {
		return
	}
	c.lastFrameHash = h
	c.haveFrameHash = true
	c.framebuffer.Present(&c.bus.PPU.Framebuffer)
}

func rgb555s(p [4]cartridge.RGB555) [4]uint16 {
	var out [4]uint16
	for i, c := range p {
		out[i] = uint16(c)
	}
	return out
}

func framebufferBytes(fb *[ppu.ScreenHeight][ppu.ScreenWidth][4]uint8) []byte {
	b := make([]byte, 0, ppu.ScreenHeight*ppu.ScreenWidth*4)
	for _, row := range fb {
		for _, px := range row {
			b = append(b, px[0], px[1], px[2], px[3])
		}
	}
	return b
}

// SetButton updates one joypad button's held state.
func (c *Core) SetButton(b types.Button, pressed bool) {
	c.bus.Joypad.SetButton(b, pressed)
}

// Model reports the hardware model this Core is emulating.
func (c *Core) Model() types.Model { return c.model }

// SaveSRAM returns the cartridge's battery-backed RAM contents, or nil
// if the cartridge has none.
func (c *Core) SaveSRAM() []byte { return c.cart.SaveSRAM() }

// LoadSRAM restores previously saved battery-backed RAM.
func (c *Core) LoadSRAM(data []byte) error { return c.cart.LoadSRAM(data) }

// SaveRTC returns the MBC3 real-time clock state, or nil if the
// cartridge has none.
func (c *Core) SaveRTC() []byte { return c.cart.SaveRTC() }

// LoadRTC restores a previously saved real-time clock state.
func (c *Core) LoadRTC(data []byte) { c.cart.LoadRTC(data) }
