// Package host declares the collaborator interfaces a hosting
// application implements to drive a core: presenting finished frames
// and consuming audio samples. Button state is not an interface here;
// the host pushes it in through gameboy.Core.SetButton. None of these
// are implemented here — spec §1 explicitly scopes the GUI/hosting
// application itself out (spec §6).
package host

import "github.com/cartboy/goboycore/internal/ppu"

// Framebuffer receives one complete, fully-rendered frame at a time.
// Implementations must copy the contents before returning if they
// need to retain it past the call, since the core reuses the buffer.
type Framebuffer interface {
	Present(frame *[ppu.ScreenHeight][ppu.ScreenWidth][4]uint8)
}

// AudioSink receives one stereo sample pair at a time, at whatever
// sample rate the core was configured with.
type AudioSink interface {
	WriteSample(left, right float32)
}
