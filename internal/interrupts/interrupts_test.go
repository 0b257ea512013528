package interrupts

import "testing"

func TestHighestPicksVBlankOverEverythingElse(t *testing.T) {
	c := NewController()
	c.Enable = sourceMask
	c.Request(Joypad)
	c.Request(Timer)
	c.Request(VBlank)

	k, ok := c.Highest()
	if !ok || k != VBlank {
		t.Fatalf("Highest() = (%v, %v), want (VBlank, true)", k, ok)
	}
}

func TestHighestRespectsFullPriorityOrder(t *testing.T) {
	c := NewController()
	c.Enable = sourceMask
	order := []Kind{VBlank, LCDStat, Timer, Serial, Joypad}
	for i := len(order) - 1; i >= 0; i-- {
		c.Request(order[i])
		k, ok := c.Highest()
		if !ok || k != order[i] {
			t.Fatalf("after requesting down to %v: Highest() = (%v, %v), want (%v, true)", order[i], k, ok, order[i])
		}
	}
}

func TestHighestIgnoresDisabledSources(t *testing.T) {
	c := NewController()
	c.Enable = 1 << uint8(Timer)
	c.Request(VBlank)
	c.Request(Timer)

	k, ok := c.Highest()
	if !ok || k != Timer {
		t.Fatalf("Highest() = (%v, %v), want (Timer, true) since VBlank is masked out", k, ok)
	}
}

func TestPendingIsIndependentOfIME(t *testing.T) {
	c := NewController()
	c.Enable = 1 << uint8(VBlank)
	c.Request(VBlank)
	c.IME = false

	if !c.Pending() {
		t.Errorf("Pending() should be true regardless of IME")
	}
	if c.Ready() {
		t.Errorf("Ready() must be false while IME is clear")
	}

	c.IME = true
	if !c.Ready() {
		t.Errorf("Ready() should be true once IME is set and a source is pending")
	}
}

func TestEIDelayRequiresATick(t *testing.T) {
	c := NewController()
	c.RequestEI()
	if c.IME {
		t.Fatalf("IME set immediately by RequestEI")
	}
	c.Tick()
	if !c.IME {
		t.Fatalf("IME should be set after Tick() following RequestEI")
	}
}

func TestDisableImmediateCancelsPendingEI(t *testing.T) {
	c := NewController()
	c.RequestEI()
	c.DisableImmediate()
	c.Tick()
	if c.IME {
		t.Errorf("DI right after EI must cancel the pending enable")
	}
}

func TestEnableImmediateSkipsTheDelay(t *testing.T) {
	c := NewController()
	c.EnableImmediate()
	if !c.IME {
		t.Errorf("EnableImmediate (RETI) should set IME with no delay")
	}
}

func TestClearLowersOnlyTheNamedBit(t *testing.T) {
	c := NewController()
	c.Request(VBlank)
	c.Request(Timer)
	c.Clear(VBlank)

	if c.Flag&(1<<uint8(VBlank)) != 0 {
		t.Errorf("VBlank bit still set after Clear")
	}
	if c.Flag&(1<<uint8(Timer)) == 0 {
		t.Errorf("Clear(VBlank) should not affect the Timer bit")
	}
}

func TestIFReadPullsUnusedBitsHigh(t *testing.T) {
	c := NewController()
	if got := c.Read(0xFF0F); got&0xE0 != 0xE0 {
		t.Errorf("IF read = %#02x, want top 3 bits set", got)
	}
}
