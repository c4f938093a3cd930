package core

// peekSource and pokeTarget enumerate where a 4KB page's reads and
// writes are routed under the current bank configuration.
type peekSource int

const (
	srcRAM peekSource = iota
	srcBASIC
	srcKERNAL
	srcCHAR
	srcIO
	srcCartLo
	srcCartHi
	srcOpenBus
)

type pokeTarget int

const (
	tgtRAM pokeTarget = iota
	tgtIO
	tgtCartLo
	tgtCartHi
	tgtDiscard // ROM area: writes ignored
)

// Memory implements the C64 16-bit address space with the bank-switch
// overlay driven by EXROM/GAME and processor-port bits 0-2.
type Memory struct {
	ram      [0x10000]uint8 // full 64KB RAM
	basic    [0x2000]uint8  // 8KB BASIC ROM, mapped at $A000-$BFFF
	kernal   [0x2000]uint8  // 8KB KERNAL ROM, mapped at $E000-$FFFF
	char     [0x1000]uint8  // 4KB character ROM
	colorRAM [0x400]uint8   // 1KB x 4-bit color RAM ($D800-$DBFF)

	port       ProcessorPort
	cartridge  Cartridge // nil => no cartridge attached
	exromPin   bool      // true = EXROM not asserted (pulled high); cartridge-driven
	gamePin    bool      // true = GAME not asserted (pulled high); cartridge-driven

	// Per-page dispatch tables, keyed by (EXROM<<4)|(GAME<<3)|(port&7);
	// buildBankTables must run before the next CPU access whenever any
	// of those inputs changes.
	peekSrc    [32][16]peekSource
	pokeTgt    [32][16]pokeTarget
	ultimax    [32]bool

	io IOPage
}

// IOPage routes the $D000-$DFFF window to VIC, SID, color RAM, CIA1/2
// and the expansion port.
type IOPage struct {
	VIC  *VICII
	SID  *FastSID
	CIA1 *CIA
	CIA2 *CIA
	Port *ExpansionPort
}

// NewMemory constructs a Memory with the given ROM images. Missing ROM
// slices are left zeroed (useful for headless tests that never touch
// KERNAL/BASIC/CHAR regions).
func NewMemory(basic, kernal, char []byte) *Memory {
	m := &Memory{
		exromPin: true,
		gamePin:  true,
	}
	copy(m.basic[:], basic)
	copy(m.kernal[:], kernal)
	copy(m.char[:], char)
	m.port.reset()
	m.buildBankTables()
	return m
}

// AttachIO wires the VIC/SID/CIA instances once they exist; Memory is
// constructed before those components, so this is a second init step.
func (m *Memory) AttachIO(io IOPage) {
	m.io = io
}

// AttachCartridge plugs a cartridge into the expansion port and
// recomputes the lookup tables, since GAME/EXROM may change.
func (m *Memory) AttachCartridge(c Cartridge) {
	m.cartridge = c
	if c != nil {
		m.gamePin = c.GAME()
		m.exromPin = c.EXROM()
	} else {
		m.gamePin, m.exromPin = true, true
	}
	m.buildBankTables()
}

// buildBankTables regenerates the per-configuration page dispatch
// tables; it must be called whenever EXROM, GAME or processor-port bits
// 0-2 change.
func (m *Memory) buildBankTables() {
	for exrom := 0; exrom < 2; exrom++ {
		for game := 0; game < 2; game++ {
			for portBits := 0; portBits < 8; portBits++ {
				idx := (exrom << 4) | (game << 3) | portBits
				loram := portBits&1 != 0
				hiram := portBits&2 != 0
				charen := portBits&4 != 0
				ultimax := exrom == 1 && game == 0

				var peek [16]peekSource
				var poke [16]pokeTarget

				for page := 0; page < 16; page++ {
					peek[page], poke[page] = pageMapping(page, exrom == 1, game == 1, loram, hiram, charen, ultimax)
				}

				m.peekSrc[idx] = peek
				m.pokeTgt[idx] = poke
				m.ultimax[idx] = ultimax
			}
		}
	}
}

// pageMapping computes the peek source / poke target for one 4KB page
// given the full bank-select state, following the standard C64
// bank-switching matrix.
func pageMapping(page int, exrom, game, loram, hiram, charen, ultimax bool) (peekSource, pokeTarget) {
	if ultimax {
		switch {
		case page == 0: // $0000-$0FFF
			return srcRAM, tgtRAM
		case page >= 4 && page <= 7: // $4000-$7FFF
			return srcRAM, tgtRAM
		case page == 8 || page == 9: // $8000-$9FFF cart LO
			return srcCartLo, tgtCartLo
		case page >= 0xA && page <= 0xC: // $A000-$CFFF
			return srcRAM, tgtRAM
		case page == 0xD: // $D000-$DFFF I/O
			return srcIO, tgtIO
		case page >= 0xE: // $E000-$FFFF cart HI
			return srcCartHi, tgtCartHi
		default:
			return srcOpenBus, tgtDiscard
		}
	}

	switch {
	case page < 0xA: // $0000-$9FFF: always RAM (cart LO can override 8000-9FFF)
		if page == 8 || page == 9 {
			if !exrom && loram && hiram {
				// EXROM asserted with LORAM+HIRAM: cartridge ROM LO visible
				// at $8000 in both the 8K and 16K configurations.
				return srcCartLo, tgtRAM
			}
		}
		return srcRAM, tgtRAM
	case page == 0xA || page == 0xB: // $A000-$BFFF
		if hiram && loram && !exrom && !game {
			return srcCartHi, tgtRAM // 16K config only; 8K carts leave BASIC here
		}
		if hiram && loram {
			return srcBASIC, tgtRAM
		}
		return srcRAM, tgtRAM
	case page >= 0xC && page < 0xD: // $C000-$CFFF always RAM
		return srcRAM, tgtRAM
	case page == 0xD: // $D000-$DFFF
		if charen && (hiram || loram) {
			return srcIO, tgtIO
		}
		if hiram || loram {
			return srcCHAR, tgtRAM
		}
		return srcRAM, tgtRAM
	default: // $E000-$FFFF: KERNAL or RAM; cart HI only ever lands here in Ultimax
		if hiram {
			return srcKERNAL, tgtRAM
		}
		return srcRAM, tgtRAM
	}
}

func (m *Memory) bankIndex() int {
	exrom := 0
	if m.exromPin {
		exrom = 1
	}
	game := 0
	if m.gamePin {
		game = 1
	}
	return (exrom << 4) | (game << 3) | int(m.port.bankBits())
}

// Peek reads one byte, dispatching through the current bank overlay.
func (m *Memory) Peek(addr uint16) uint8 {
	idx := m.bankIndex()
	page := int(addr >> 12)
	switch m.peekSrc[idx][page] {
	case srcRAM:
		return m.ram[addr]
	case srcBASIC:
		return m.basic[addr&0x1FFF]
	case srcKERNAL:
		return m.kernal[addr&0x1FFF]
	case srcCHAR:
		return m.char[addr&0x0FFF]
	case srcIO:
		return m.peekIO(addr)
	case srcCartLo, srcCartHi:
		return m.peekCart(addr, m.peekSrc[idx][page] == srcCartHi)
	default:
		return 0xFF // open bus
	}
}

// SpyPeek is Peek without any register side effects (status clears,
// collision latches, VIA CA1/CA2 pulses, ...), used by debuggers and by
// snapshot code paths that must not perturb running state.
func (m *Memory) SpyPeek(addr uint16) uint8 {
	idx := m.bankIndex()
	page := int(addr >> 12)
	switch m.peekSrc[idx][page] {
	case srcRAM:
		return m.ram[addr]
	case srcBASIC:
		return m.basic[addr&0x1FFF]
	case srcKERNAL:
		return m.kernal[addr&0x1FFF]
	case srcCHAR:
		return m.char[addr&0x0FFF]
	case srcIO:
		return m.spyPeekIO(addr)
	case srcCartLo, srcCartHi:
		return m.peekCart(addr, m.peekSrc[idx][page] == srcCartHi)
	default:
		return 0xFF
	}
}

// Poke writes one byte through the bank overlay. Processor-port writes
// at $00/$01 regenerate the lookup tables before returning.
func (m *Memory) Poke(addr uint16, val uint8) {
	if addr == 0x0000 {
		m.port.setDDR(val)
		m.buildBankTables()
		return
	}
	if addr == 0x0001 {
		m.port.setData(val)
		m.buildBankTables()
		return
	}

	idx := m.bankIndex()
	page := int(addr >> 12)
	switch m.pokeTgt[idx][page] {
	case tgtRAM:
		m.ram[addr] = val
	case tgtIO:
		m.pokeIO(addr, val)
	case tgtCartLo:
		m.pokeCart(addr, val, false)
	case tgtCartHi:
		m.pokeCart(addr, val, true)
	case tgtDiscard:
		// ROM write: hardware-defined no-op.
	}
}

func (m *Memory) peekCart(addr uint16, hi bool) uint8 {
	if m.cartridge == nil {
		return 0xFF
	}
	if hi {
		return m.cartridge.Peek(addr)
	}
	return m.cartridge.Peek(addr)
}

func (m *Memory) pokeCart(addr uint16, val uint8, hi bool) {
	if m.cartridge == nil {
		return
	}
	m.cartridge.Poke(addr, val)
}

// peekIO routes the $D000-$DFFF window to the owning chip.
func (m *Memory) peekIO(addr uint16) uint8 {
	switch {
	case addr < 0xD400:
		if m.io.VIC != nil {
			return m.io.VIC.Peek(addr)
		}
	case addr < 0xD800:
		if m.io.SID != nil {
			return m.io.SID.Peek(addr)
		}
	case addr < 0xDC00:
		return m.colorRAM[addr&0x3FF] | 0xF0 // color RAM is 4 bits wide
	case addr < 0xDD00:
		if m.io.CIA1 != nil {
			return m.io.CIA1.Peek(addr)
		}
	case addr < 0xDE00:
		if m.io.CIA2 != nil {
			return m.io.CIA2.Peek(addr)
		}
	default:
		if m.io.Port != nil {
			return m.io.Port.Peek(addr)
		}
	}
	return 0xFF
}

func (m *Memory) spyPeekIO(addr uint16) uint8 {
	switch {
	case addr < 0xD400:
		if m.io.VIC != nil {
			return m.io.VIC.SpyPeek(addr)
		}
	case addr < 0xD800:
		if m.io.SID != nil {
			return m.io.SID.SpyPeek(addr)
		}
	case addr < 0xDC00:
		return m.colorRAM[addr&0x3FF] | 0xF0
	case addr < 0xDD00:
		if m.io.CIA1 != nil {
			return m.io.CIA1.SpyPeek(addr)
		}
	case addr < 0xDE00:
		if m.io.CIA2 != nil {
			return m.io.CIA2.SpyPeek(addr)
		}
	default:
		if m.io.Port != nil {
			return m.io.Port.SpyPeek(addr)
		}
	}
	return 0xFF
}

func (m *Memory) pokeIO(addr uint16, val uint8) {
	switch {
	case addr < 0xD400:
		if m.io.VIC != nil {
			m.io.VIC.Poke(addr, val)
		}
	case addr < 0xD800:
		if m.io.SID != nil {
			m.io.SID.Poke(addr, val)
		}
	case addr < 0xDC00:
		m.colorRAM[addr&0x3FF] = val & 0x0F
	case addr < 0xDD00:
		if m.io.CIA1 != nil {
			m.io.CIA1.Poke(addr, val)
		}
	case addr < 0xDE00:
		if m.io.CIA2 != nil {
			m.io.CIA2.Poke(addr, val)
		}
	default:
		if m.io.Port != nil {
			m.io.Port.Poke(addr, val)
		}
	}
}

// VICMemoryView returns the byte the VIC-II sees for the given 14-bit
// VIC-local address: RAM, with CHAR ROM substituted into $1000-$1FFF of
// banks 0 and 2, or cartridge HI there instead when running Ultimax.
func (m *Memory) VICMemoryView(bankBase uint16, addr uint16) uint8 {
	full := bankBase | (addr & 0x3FFF)
	bankNum := bankBase >> 14
	inCharWindow := (addr&0x3000) == 0x1000
	idx := m.bankIndex()
	if m.ultimax[idx] {
		if inCharWindow && (bankNum == 0 || bankNum == 2) && m.cartridge != nil {
			return m.cartridge.Peek(0xE000 | (addr & 0x0FFF))
		}
		return m.ram[full]
	}
	if inCharWindow && (bankNum == 0 || bankNum == 2) {
		return m.char[addr&0x0FFF]
	}
	return m.ram[full]
}

// tickPort advances the processor-port floating-bit discharge clock by one
// cycle; called once per system cycle from Machine.RunCycle.
func (m *Memory) tickPort() {
	m.port.Tick()
}

// Reset clears RAM and the processor port on a hard reset, preserving
// ROM contents.
func (m *Memory) Reset() {
	for i := range m.ram {
		m.ram[i] = 0
	}
	m.port.reset()
	m.exromPin, m.gamePin = true, true
	if m.cartridge != nil {
		m.gamePin = m.cartridge.GAME()
		m.exromPin = m.cartridge.EXROM()
	}
	m.buildBankTables()
}

// snapshotItems contributes the memory subsystem to the snapshot walk.
// The ROM images carry keepOnReset so the generic reset clear skips
// them; they still serialize, which lets a loaded snapshot carry its
// own ROM contents.
func (m *Memory) snapshotItems() []snapshotItem {
	return []snapshotItem{
		{name: "ram", data: m.ram[:], keepOnReset: false},
		{name: "colorRAM", data: m.colorRAM[:], keepOnReset: false},
		{name: "basicROM", data: m.basic[:], keepOnReset: true},
		{name: "kernalROM", data: m.kernal[:], keepOnReset: true},
		{name: "charROM", data: m.char[:], keepOnReset: true},
		{name: "port.ddr", data: []byte{m.port.ddr}, keepOnReset: false, restore: func(b []byte) {
			m.port.setDDR(b[0])
			m.buildBankTables()
		}},
		{name: "port.data", data: []byte{m.port.data}, keepOnReset: false, restore: func(b []byte) {
			m.port.setData(b[0])
			m.buildBankTables()
		}},
	}
}
