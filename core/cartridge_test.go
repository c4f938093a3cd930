package core

import "testing"

func TestExpansionPort_OpenPortDefaults(t *testing.T) {
	port := NewExpansionPort()
	if !port.GAME() || !port.EXROM() {
		t.Error("empty expansion port should report GAME=true, EXROM=true (both pulled high)")
	}
	if port.Peek(0xDE00) != 0xFF {
		t.Errorf("empty port I/O1 read: expected open bus 0xFF, got 0x%02X", port.Peek(0xDE00))
	}
}

func TestExpansionPort_AttachRejectsNil(t *testing.T) {
	port := NewExpansionPort()
	if err := port.Attach(nil); err != ErrUnknownCartridgeFormat {
		t.Fatalf("expected ErrUnknownCartridgeFormat, got %v", err)
	}
}

func TestExpansionPort_AttachReflectsCartridgeLines(t *testing.T) {
	port := NewExpansionPort()
	rom := make([]byte, 8192)
	g := NewGenericRAM(rom)
	if err := port.Attach(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port.GAME() || !port.EXROM() {
		t.Errorf("GenericRAM should force Ultimax (GAME=false, EXROM=true); got GAME=%v EXROM=%v", port.GAME(), port.EXROM())
	}
}

func TestGenericRAM_PageSwitchedWindow(t *testing.T) {
	g := NewGenericRAM(nil)
	g.PokeIO2(0xDF00, 3) // select page 3
	g.PokeIO1(0xDE00, 0x42)
	if got := g.PeekIO1(0xDE00); got != 0x42 {
		t.Errorf("expected 0x42 in page 3, got 0x%02X", got)
	}

	g.PokeIO2(0xDF00, 0) // switch to page 0; same I/O offset now reads blank RAM
	if got := g.PeekIO1(0xDE00); got != 0 {
		t.Errorf("expected page 0 to be unwritten (0x00), got 0x%02X", got)
	}
}

func TestGenericRAM_DisableSwitch(t *testing.T) {
	g := NewGenericRAM(nil)
	g.SetSwitch(0)
	if got := g.PeekIO1(0xDE00); got != 0xFF {
		t.Errorf("disabled cartridge should read open bus 0xFF, got 0x%02X", got)
	}
}
