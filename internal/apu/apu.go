package apu

import "github.com/cartboy/goboycore/internal/host"

const (
	frameSequencerPeriod = 4194304 / 512 // T-cycles between 512 Hz frame sequencer steps
)

// APU is the Game Boy's sound generator. It owns all four channels,
// the shared frame sequencer, and the NR50/NR51/NR52 mixer; resampled
// stereo output is pushed to a host.AudioSink.
type APU struct {
	enabled bool

	ch1 *channel1
	ch2 *channel2
	ch3 *channel3
	ch4 *channel4

	frameSeqCounter uint32
	frameSeqStep    uint8
	firstHalf       bool

	vinLeft, vinRight       bool
	volumeLeft, volumeRight uint8
	leftEnable, rightEnable [4]bool

	sink           host.AudioSink
	sampleDivider  uint32
	sampleCounter  uint32
}

// New returns a powered-off APU. sampleRate controls how often
// resampled stereo pairs are pushed to sink; a typical host value is
// 44100 or 48000.
func New(sink host.AudioSink, sampleRate uint32) *APU {
	if sampleRate == 0 {
		sampleRate = 44100
	}
	return &APU{
		ch1:           newChannel1(),
		ch2:           newChannel2(),
		ch3:           newChannel3(),
		ch4:           newChannel4(),
		sink:          sink,
		sampleDivider: 4194304 / sampleRate,
	}
}

// SetSink rewires the audio output destination and resampling rate
// without disturbing channel state, for hosts that attach their
// AudioSink after construction.
func (a *APU) SetSink(sink host.AudioSink, sampleRate uint32) {
	if sampleRate == 0 {
		sampleRate = 44100
	}
	a.sink = sink
	a.sampleDivider = 4194304 / sampleRate
	a.sampleCounter = 0
}

// Tick advances every channel and the frame sequencer by tCycles
// T-cycles, producing resampled output along the way.
func (a *APU) Tick(tCycles uint32) {
	for i := uint32(0); i < tCycles; i++ {
		a.tickOnce()
	}
}

func (a *APU) tickOnce() {
	if !a.enabled {
		return
	}

	a.frameSeqCounter++
	if a.frameSeqCounter >= frameSequencerPeriod {
		a.frameSeqCounter = 0
		a.firstHalf = a.frameSeqStep&1 == 0

		switch a.frameSeqStep {
		case 0, 4:
			a.clockLength()
		case 2, 6:
			a.clockLength()
			a.ch1.sweepStep()
		case 7:
			a.ch1.volumeStep()
			a.ch2.volumeStep()
			a.ch4.volumeStep()
		}
		a.frameSeqStep = (a.frameSeqStep + 1) & 7
	}

	a.ch1.step()
	a.ch2.step()
	a.ch3.step()
	a.ch4.step()

	a.sampleCounter++
	if a.sampleCounter >= a.sampleDivider {
		a.sampleCounter = 0
		a.emitSample()
	}
}

func (a *APU) clockLength() {
	a.ch1.lengthStep()
	a.ch2.lengthStep()
	a.ch3.lengthStep()
	a.ch4.lengthStep()
}

func (a *APU) emitSample() {
	if a.sink == nil {
		return
	}
	amps := [4]float32{
		a.ch1.amplitude(),
		a.ch2.amplitude(),
		a.ch3.amplitude(),
		a.ch4.amplitude(),
	}
	var left, right float32
	for i, amp := range amps {
		if a.leftEnable[i] {
			left += amp
		}
		if a.rightEnable[i] {
			right += amp
		}
	}
	left = (float32(a.volumeLeft) / 7) * left / 4
	right = (float32(a.volumeRight) / 7) * right / 4
	a.sink.WriteSample(left, right)
}

// Read dispatches a guest read of an APU register ($FF10-$FF3F).
func (a *APU) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF10:
		return a.ch1.readNR10()
	case 0xFF11:
		return a.ch1.readNR11()
	case 0xFF12:
		return a.ch1.env.read()
	case 0xFF13:
		return 0xFF
	case 0xFF14:
		return a.ch1.readNR14()
	case 0xFF16:
		return a.ch2.readNR21()
	case 0xFF17:
		return a.ch2.env.read()
	case 0xFF18:
		return 0xFF
	case 0xFF19:
		return a.ch2.readNR24()
	case 0xFF1A:
		return a.ch3.readNR30()
	case 0xFF1B:
		return 0xFF
	case 0xFF1C:
		return a.ch3.readNR32()
	case 0xFF1D:
		return 0xFF
	case 0xFF1E:
		return a.ch3.readNR34()
	case 0xFF20:
		return 0xFF
	case 0xFF21:
		return a.ch4.env.read()
	case 0xFF22:
		return a.ch4.readNR43()
	case 0xFF23:
		return a.ch4.readNR44()
	case 0xFF24:
		return a.readNR50()
	case 0xFF25:
		return a.readNR51()
	case 0xFF26:
		return a.readNR52()
	}
	if addr >= 0xFF30 && addr <= 0xFF3F {
		return a.ch3.readWaveRAM(addr)
	}
	return 0xFF
}

// Write dispatches a guest write to an APU register.
func (a *APU) Write(addr uint16, v uint8) {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.ch3.writeWaveRAM(addr, v)
		return
	}
	if addr == 0xFF26 {
		a.writeNR52(v)
		return
	}
	if !a.enabled {
		// while powered off every register write except NR52 and wave
		// RAM is dropped, on DMG and CGB alike; the DMG exception that
		// keeps the length-load registers writable is not modeled.
		return
	}
	switch addr {
	case 0xFF10:
		a.ch1.writeNR10(v)
	case 0xFF11:
		a.ch1.writeNR11(v)
	case 0xFF12:
		a.ch1.env.write(v, &a.ch1.channel)
	case 0xFF13:
		a.ch1.writeNR13(v)
	case 0xFF14:
		a.ch1.writeNR14(v, a.firstHalf)
	case 0xFF16:
		a.ch2.writeNR21(v)
	case 0xFF17:
		a.ch2.env.write(v, &a.ch2.channel)
	case 0xFF18:
		a.ch2.writeNR23(v)
	case 0xFF19:
		a.ch2.writeNR24(v, a.firstHalf)
	case 0xFF1A:
		a.ch3.writeNR30(v)
	case 0xFF1B:
		a.ch3.writeNR31(v)
	case 0xFF1C:
		a.ch3.writeNR32(v)
	case 0xFF1D:
		a.ch3.writeNR33(v)
	case 0xFF1E:
		a.ch3.writeNR34(v, a.firstHalf)
	case 0xFF20:
		a.ch4.writeNR41(v)
	case 0xFF21:
		a.ch4.env.write(v, &a.ch4.channel)
	case 0xFF22:
		a.ch4.writeNR43(v)
	case 0xFF23:
		a.ch4.writeNR44(v, a.firstHalf)
	case 0xFF24:
		a.writeNR50(v)
	case 0xFF25:
		a.writeNR51(v)
	}
}

func (a *APU) writeNR50(v uint8) {
	a.volumeRight = v & 0x07
	a.volumeLeft = (v >> 4) & 0x07
	a.vinRight = v&0x08 != 0
	a.vinLeft = v&0x80 != 0
}

func (a *APU) readNR50() uint8 {
	b := a.volumeRight | a.volumeLeft<<4
	if a.vinRight {
		b |= 0x08
	}
	if a.vinLeft {
		b |= 0x80
	}
	return b
}

func (a *APU) writeNR51(v uint8) {
	for i := 0; i < 4; i++ {
		a.rightEnable[i] = v&(1<<i) != 0
		a.leftEnable[i] = v&(1<<(i+4)) != 0
	}
}

func (a *APU) readNR51() uint8 {
	b := uint8(0)
	for i := 0; i < 4; i++ {
		if a.rightEnable[i] {
			b |= 1 << i
		}
		if a.leftEnable[i] {
			b |= 1 << (i + 4)
		}
	}
	return b
}

func (a *APU) writeNR52(v uint8) {
	wantOn := v&0x80 != 0
	if a.enabled && !wantOn {
		*a.ch1 = channel1{channel: channel{lengthFull: 64}}
		*a.ch2 = channel2{channel: channel{lengthFull: 64}}
		*a.ch3 = channel3{channel: channel{lengthFull: 256}, waveRAM: a.ch3.waveRAM}
		*a.ch4 = channel4{channel: channel{lengthFull: 64}, lfsr: 0x7FFF}
		a.enabled = false
	} else if !a.enabled && wantOn {
		a.enabled = true
		a.frameSeqStep = 0
	}
}

func (a *APU) readNR52() uint8 {
	b := uint8(0x70)
	if a.enabled {
		b |= 0x80
	}
	if a.ch1.isAudible() {
		b |= 0x01
	}
	if a.ch2.isAudible() {
		b |= 0x02
	}
	if a.ch3.isAudible() {
		b |= 0x04
	}
	if a.ch4.isAudible() {
		b |= 0x08
	}
	return b
}
