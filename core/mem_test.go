package core

import "testing"

func TestMemory_DefaultBankMapsBasicKernalChar(t *testing.T) {
	basic := make([]byte, 0x2000)
	basic[0] = 0xB1
	kernal := make([]byte, 0x2000)
	kernal[0] = 0xE1
	char := make([]byte, 0x1000)
	char[0] = 0xC1
	m := NewMemory(basic, kernal, char)

	// Power-on default: port data bits float high -> bankBits()==7
	// (LORAM=HIRAM=CHAREN=1), mapping BASIC at $A000, KERNAL at $E000.
	if got := m.Peek(0xA000); got != 0xB1 {
		t.Errorf("expected BASIC ROM at $A000, got 0x%02X", got)
	}
	if got := m.Peek(0xE000); got != 0xE1 {
		t.Errorf("expected KERNAL ROM at $E000, got 0x%02X", got)
	}
	// CHAREN=1 with HIRAM/LORAM set routes $D000 to I/O, not CHAR ROM.
	m.Poke(0xD020, 0x07)
}

func TestMemory_AllRAMConfigHidesROMs(t *testing.T) {
	basic := make([]byte, 0x2000)
	basic[0] = 0xB1
	kernal := make([]byte, 0x2000)
	kernal[0] = 0xE1
	m := NewMemory(basic, kernal, nil)

	m.Poke(0x0000, 0xFF) // DDR: all bits output
	m.Poke(0x0001, 0x00) // data: LORAM=HIRAM=CHAREN=0 -> bank 0, all RAM

	m.Poke(0xA000, 0x55)
	if got := m.Peek(0xA000); got != 0x55 {
		t.Errorf("expected RAM at $A000 in all-RAM config, got 0x%02X", got)
	}
	m.Poke(0xE000, 0x66)
	if got := m.Peek(0xE000); got != 0x66 {
		t.Errorf("expected RAM at $E000 in all-RAM config, got 0x%02X", got)
	}
}

func TestMemory_CharenRoutesD000ToIOInsteadOfChar(t *testing.T) {
	char := make([]byte, 0x1000)
	char[0] = 0xC1
	m := NewMemory(nil, nil, char)

	// Default bank: HIRAM=LORAM=CHAREN=1 -> $D000 routed to I/O, so a
	// write there must not land in the CHAR ROM shadow.
	vic := NewVICII(m, ModelPAL)
	m.AttachIO(IOPage{VIC: vic})
	m.Poke(0xD011, 0x1B)
	if got := vic.Peek(0xD011); got&0x7F != 0x1B {
		t.Errorf("expected write to $D011 to reach the VIC register, got 0x%02X", got)
	}

	// Now drop CHAREN (bit 2) while keeping LORAM/HIRAM -> CHAR ROM visible.
	m.Poke(0x0000, 0xFF)
	m.Poke(0x0001, 0x03) // LORAM=1,HIRAM=1,CHAREN=0
	if got := m.Peek(0xD000); got != 0xC1 {
		t.Errorf("expected CHAR ROM at $D000 with CHAREN=0, got 0x%02X", got)
	}
}

func TestMemory_UltimaxModeMapsCartHiAtResetVector(t *testing.T) {
	m := NewMemory(nil, nil, nil)
	// GenericRAM always runs Ultimax (GAME=0, EXROM=1): exromPin=true,
	// gamePin=false per pageMapping's ultimax := exrom==1 && game==0.
	rom := make([]byte, 8192)
	rom[0x1FFC] = 0xAB // addr 0xFFFC -> romImage[0xFFFC&0x1FFF] == romImage[0x1FFC]
	c := NewGenericRAM(rom)
	m.AttachCartridge(c)

	if got := m.Peek(0xFFFC); got != 0xAB {
		t.Errorf("expected cart HI ROM peek in Ultimax mode, got 0x%02X", got)
	}
}

func TestMemory_ColorRAMIsNibbleWide(t *testing.T) {
	m := NewMemory(nil, nil, nil)
	m.Poke(0x0000, 0xFF)
	m.Poke(0x0001, 0x07) // default bank, $D800-$DBFF -> color RAM
	m.Poke(0xD800, 0xFF)
	if got := m.Peek(0xD800); got != 0xFF {
		t.Errorf("expected color RAM nibble read-back as 0xFF (high nibble forced 1), got 0x%02X", got)
	}
	m.Poke(0xD801, 0x03)
	if got := m.colorRAM[1]; got != 0x03 {
		t.Errorf("expected only low nibble stored, got 0x%02X", got)
	}
}

func TestMemory_ResetClearsRAMButKeepsROM(t *testing.T) {
	basic := make([]byte, 0x2000)
	basic[0] = 0xB1
	m := NewMemory(basic, nil, nil)
	m.Poke(0x0000, 0xFF)
	m.Poke(0x0001, 0x00) // all RAM
	m.Poke(0x1000, 0x42)

	m.Reset()

	if got := m.ram[0x1000]; got != 0 {
		t.Errorf("expected RAM cleared after reset, got 0x%02X", got)
	}
	if got := m.basic[0]; got != 0xB1 {
		t.Errorf("expected ROM preserved across reset, got 0x%02X", got)
	}
}

func TestMemory_VICMemoryViewUsesCharROMInCharWindowBank0(t *testing.T) {
	char := make([]byte, 0x1000)
	char[0x123] = 0x9A
	m := NewMemory(nil, nil, char)

	got := m.VICMemoryView(0x0000, 0x1123)
	if got != 0x9A {
		t.Errorf("expected CHAR ROM substitution in VIC's char window, got 0x%02X", got)
	}
}

func TestMemory_VICMemoryViewUsesRAMOutsideCharWindow(t *testing.T) {
	m := NewMemory(nil, nil, nil)
	m.ram[0x0456] = 0x77
	got := m.VICMemoryView(0x0000, 0x0456)
	if got != 0x77 {
		t.Errorf("expected RAM passthrough outside char window, got 0x%02X", got)
	}
}

func TestMemory_PeekCartWithNoCartridgeAttachedIsOpenBus(t *testing.T) {
	m := NewMemory(nil, nil, nil)
	m.Poke(0x0000, 0xFF)
	m.Poke(0x0001, 0x00) // bank 0, not ultimax
	// Without a cartridge, peekCart's nil-cartridge guard answers with
	// the open-bus value.
	if m.cartridge != nil {
		t.Fatal("expected no cartridge attached by default")
	}
	if got := m.peekCart(0x8000, false); got != 0xFF {
		t.Errorf("expected open bus 0xFF from peekCart with no cartridge, got 0x%02X", got)
	}
}
