package core

// Cartridge is the generic expansion-port device contract. Concrete
// cartridges implement per-device logic; the core only needs this
// surface to decode the $DE00/$DF00 I/O windows and drive GAME/EXROM.
type Cartridge interface {
	Peek(addr uint16) uint8
	PeekIO1(addr uint16) uint8
	PeekIO2(addr uint16) uint8
	Poke(addr uint16, val uint8)
	PokeIO1(addr uint16, val uint8)
	PokeIO2(addr uint16, val uint8)

	// SetSwitch models a physical freeze/mode switch some cartridges
	// expose; position is cartridge-defined.
	SetSwitch(pos int)

	// GAME/EXROM report the cartridge-driven state of those two lines.
	GAME() bool
	EXROM() bool
}

// ExpansionPort decodes $DE00 (I/O1) and $DF00 (I/O2) and forwards to
// the attached cartridge, or returns open bus with an empty port.
type ExpansionPort struct {
	cart Cartridge
}

func NewExpansionPort() *ExpansionPort {
	return &ExpansionPort{}
}

// Attach inserts a cartridge image. Rejects nil instead of silently
// detaching; callers use Detach for that.
func (e *ExpansionPort) Attach(c Cartridge) error {
	if c == nil {
		return ErrUnknownCartridgeFormat
	}
	e.cart = c
	return nil
}

func (e *ExpansionPort) Detach() {
	e.cart = nil
}

func (e *ExpansionPort) Cartridge() Cartridge { return e.cart }

func (e *ExpansionPort) Peek(addr uint16) uint8 {
	if e.cart == nil {
		return 0xFF
	}
	switch {
	case addr >= 0xDE00 && addr < 0xDF00:
		return e.cart.PeekIO1(addr)
	case addr >= 0xDF00 && addr < 0xE000:
		return e.cart.PeekIO2(addr)
	default:
		return 0xFF
	}
}

func (e *ExpansionPort) SpyPeek(addr uint16) uint8 { return e.Peek(addr) }

func (e *ExpansionPort) Poke(addr uint16, val uint8) {
	if e.cart == nil {
		return
	}
	switch {
	case addr >= 0xDE00 && addr < 0xDF00:
		e.cart.PokeIO1(addr, val)
	case addr >= 0xDF00 && addr < 0xE000:
		e.cart.PokeIO2(addr, val)
	}
}

// GAME/EXROM report open-port defaults (both pulled high = no cartridge)
// when nothing is attached.
func (e *ExpansionPort) GAME() bool {
	if e.cart == nil {
		return true
	}
	return e.cart.GAME()
}

func (e *ExpansionPort) EXROM() bool {
	if e.cart == nil {
		return true
	}
	return e.cart.EXROM()
}

// GenericRAM is an Isepic-style cartridge: a page-switched 2KB RAM
// exposed through the I/O1 window while running in Ultimax mode, with
// the page register sitting in I/O2.
type GenericRAM struct {
	ram      [2048]uint8
	page     uint8 // current 8-byte page selected into the visible window
	enabled  bool  // mirrors a physical write-protect/enable switch
	romImage [8192]uint8
}

// NewGenericRAM constructs the cartridge with the given 8K ROM image
// (mapped at cartridge HI in Ultimax mode) and a blank 2KB RAM.
func NewGenericRAM(rom []byte) *GenericRAM {
	g := &GenericRAM{enabled: true}
	copy(g.romImage[:], rom)
	return g
}

func (g *GenericRAM) Peek(addr uint16) uint8 {
	if addr >= 0xE000 {
		return g.romImage[addr&0x1FFF]
	}
	return 0xFF
}

func (g *GenericRAM) PeekIO1(addr uint16) uint8 {
	if !g.enabled {
		return 0xFF
	}
	return g.ram[(uint16(g.page)<<3|addr&0x07)&0x7FF]
}

func (g *GenericRAM) PeekIO2(addr uint16) uint8 { return 0xFF }

func (g *GenericRAM) Poke(addr uint16, val uint8) {}

func (g *GenericRAM) PokeIO1(addr uint16, val uint8) {
	if !g.enabled {
		return
	}
	g.ram[(uint16(g.page)<<3|addr&0x07)&0x7FF] = val
}

// PokeIO2 selects the visible 8-byte page out of the 2KB RAM; the
// switch-over takes effect the same cycle as the write.
func (g *GenericRAM) PokeIO2(addr uint16, val uint8) {
	g.page = val & 0xFF
}

func (g *GenericRAM) SetSwitch(pos int) {
	g.enabled = pos != 0
}

// GenericRAM runs Ultimax: GAME=0, EXROM=1.
func (g *GenericRAM) GAME() bool  { return false }
func (g *GenericRAM) EXROM() bool { return true }
