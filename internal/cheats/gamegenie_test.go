package cheats

import "testing"

func TestParseRejectsWrongLength(t *testing.T) {
	if _, err := Parse("ABC-DEF"); err == nil {
		t.Fatal("expected an error for a short code")
	}
}

func TestEngineAppliesMatchingCodeOnly(t *testing.T) {
	e := NewEngine()
	if err := e.Add("014-17D-27A", "test"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	c := e.Codes[0]

	// A read that doesn't match OldData must pass through unpatched.
	if got := e.Patch(c.Address, c.OldData^0xFF); got != c.OldData^0xFF {
		t.Errorf("non-matching read was patched: got %#02x", got)
	}

	// A read that matches OldData is replaced with NewData.
	if got := e.Patch(c.Address, c.OldData); got != c.NewData {
		t.Errorf("Patch() = %#02x, want %#02x", got, c.NewData)
	}
}

func TestSetEnabledDisablesPatch(t *testing.T) {
	e := NewEngine()
	if err := e.Add("014-17D-27A", "test"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c := e.Codes[0]
	e.SetEnabled("test", false)

	if got := e.Patch(c.Address, c.OldData); got != c.OldData {
		t.Errorf("disabled code still patched: got %#02x, want original %#02x", got, c.OldData)
	}
}
