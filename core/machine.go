package core

import "github.com/rs/zerolog"

// RomImages bundles the four system ROM images a Machine needs to boot;
// callers load these from disk/embed before constructing the machine.
// ROMs are immutable for the machine's life.
type RomImages struct {
	Basic  []byte
	Kernal []byte
	Char   []byte
	Drive1541 []byte
}

// Machine is the top-level scheduler: it owns every component and
// drives them one CPU cycle at a time, folding the per-chip interrupt
// outputs into the wire-OR IRQ and NMI lines and the wire-AND BA line
// the CPU actually sees.
type Machine struct {
	cfg Config

	mem    *Memory
	cpu    *CycleCPU
	vic    *VICII
	sid    *FastSID
	cia1   *CIA
	cia2   *CIA
	port   *ExpansionPort
	drive  *VC1541

	cycleCount    int64
	pendingCycles int // cycles the last CPU step will consume, ticked before that step runs
	suspended     bool

	keyMatrix [8]uint8 // indexed by column (CIA1 PA line), one bit per row (PB line); 1 = key held (active-low on the real bus)

	log zerolog.Logger
}

// NewMachine wires up a complete, powered-off C64 from the given config and
// ROM set. AttachCartridge/LoadDisk are called afterward as needed.
func NewMachine(cfg Config, roms RomImages, log zerolog.Logger) *Machine {
	mem := NewMemory(roms.Basic, roms.Kernal, roms.Char)
	if cfg.ProcessorPortBit3DischargeCycles > 0 {
		mem.port.dischargePeriod = int64(cfg.ProcessorPortBit3DischargeCycles)
	}
	cpu := NewCycleCPU(mem)
	vic := NewVICII(mem, cfg.Model)
	sid := NewFastSID(cfg)
	cia1 := NewCIA(TimingForModel(cfg.Model).CPUClockHz)
	cia2 := NewCIA(TimingForModel(cfg.Model).CPUClockHz)
	port := NewExpansionPort()
	drive := NewVC1541(roms.Drive1541)

	m := &Machine{
		cfg:  cfg,
		mem:  mem,
		cpu:  cpu,
		vic:  vic,
		sid:  sid,
		cia1: cia1,
		cia2: cia2,
		port: port,
		drive: drive,
		log:  log,
	}

	mem.AttachIO(IOPage{VIC: vic, SID: sid, CIA1: cia1, CIA2: cia2, Port: port})

	// Keyboard matrix scan: CIA1 PA selects columns (active low, output),
	// PB reads back rows (active low, pressed keys pull their bit low).
	cia1.ReadPB = func(ddr, latch uint8) uint8 {
		colSelect := ^cia1.pra
		var rowBits uint8
		for col := 0; col < 8; col++ {
			if colSelect&(1<<uint(col)) == 0 {
				continue
			}
			rowBits |= m.keyMatrix[col]
		}
		return ^rowBits
	}

	// CIA2 port A bits 0-1 select the VIC bank (inverted); the remaining
	// bits drive the serial bus ATN/CLK/DATA lines.
	cia2.OnWritePA = func(val uint8) {
		bankSel := ^val & 0x03
		vic.SetBank(uint16(bankSel) << 14)
	}
	cia2.OnWritePA(0xFF) // power-on default: CIA2 PA floats high, selecting the VIC bank at $0000

	m.Reset()
	return m
}

// Reset performs a hard reset. The snapshot walk does the clearing:
// every item not flagged keep-on-reset is zeroed through the same list
// Serialize writes, so nothing with persistent state can be missed by a
// hand-written clear. ROMs and the drive's mechanical state carry the
// keep flag and survive; the disk substrate (the drive's track data) is
// not in the list at all, so the walk leaves it alone. The per-component
// reset calls that follow only re-establish power-on defaults the flat
// clear can't express (reset vectors, pulled-up lines, counter seeds).
func (m *Machine) Reset() {
	for _, it := range m.snapshotItems() {
		if it.keepOnReset {
			continue
		}
		zero := make([]byte, len(it.data))
		if it.restore != nil {
			it.restore(zero)
		} else {
			copy(it.data, zero)
		}
	}

	m.mem.Reset()
	m.cpu.Reset()
	m.vic.reset()
	m.sid.reset()
	m.cia1.reset()
	m.cia2.reset()
	m.drive.Reset()
	// cycleCount and pendingCycles were cleared by the walk: the CPU sits
	// at the reset vector until the first RunCycle executes an instruction.
}

// AttachCartridge plugs a cartridge into the expansion port and rebuilds
// the bank tables for its GAME/EXROM lines.
func (m *Machine) AttachCartridge(c Cartridge) error {
	if err := m.port.Attach(c); err != nil {
		return err
	}
	m.mem.AttachCartridge(c)
	return nil
}

// SetKey updates one cell of the keyboard matrix; row/col follow the
// standard C64 key-matrix coordinates (0-7 each). Frontends call this
// from their own input polling loop.
func (m *Machine) SetKey(row, col int, down bool) {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return
	}
	if down {
		m.keyMatrix[col] |= 1 << uint(row)
	} else {
		m.keyMatrix[col] &^= 1 << uint(row)
	}
}

func (m *Machine) DetachCartridge() {
	m.port.Detach()
	m.mem.AttachCartridge(nil)
}

// LoadDisk installs a set of GCR-encoded half-tracks into the drive.
// Decoding D64/G64 container formats is the image loader's business;
// callers supply already-decoded GCR bytes.
func (m *Machine) LoadDisk(tracks map[int][]uint8) {
	for ht, data := range tracks {
		m.drive.LoadTrack(ht, data)
	}
}

// Suspend/Resume pause the scheduler without disturbing component
// state, so a suspended machine can still be peeked and serialized.
func (m *Machine) Suspend() { m.suspended = true }
func (m *Machine) Resume()  { m.suspended = false }
func (m *Machine) Suspended() bool { return m.suspended }

// RunCycle executes one scheduler quantum. The hardware order within a
// cycle is VIC phi1 first, then the CPU's phi2 bus access: the VIC (and
// CIA/SID/drive) must run ahead of the CPU access they gate, so a BA
// pull computed this cycle can still stall the CPU step whose bus
// access it covers. Since the CPU core executes a whole instruction per
// Step() rather than phi2-by-phi2, RunCycle reproduces that ordering by
// ticking peripherals for the previous Step()'s cycle count before
// calling Step() again: m.pendingCycles, set by the prior call (zero on
// the first call after Reset), covers the cycles the last instruction
// consumed, and RaiseBA calls made while ticking them land on
// baStallCycles before the next Step() runs.
func (m *Machine) RunCycle() {
	if m.suspended {
		return
	}

	for i := 0; i < m.pendingCycles; i++ {
		baLow, vicIRQ := m.vic.Cycle()
		m.cia1.Tick()
		m.cia2.Tick()
		m.sid.Clock()
		m.drive.Cycle()
		m.mem.tickPort()

		if baLow {
			m.cpu.RaiseBA(1)
		}

		irq := vicIRQ || m.cia1.IRQAsserted()
		nmi := m.cia2.IRQAsserted()
		m.cpu.SetIRQLine(irq)
		m.cpu.SetNMILine(nmi)

		m.cycleCount++
	}

	m.pendingCycles = m.cpu.Step()
}

// RunFrame executes one video frame's worth of system cycles
// (cycles-per-line times lines-per-frame, 19,656 on PAL).
func (m *Machine) RunFrame() {
	frameCycles := int64(m.vic.timing.CyclesPerLine * m.vic.timing.LinesPerFrame)
	target := m.cycleCount + frameCycles
	for m.cycleCount < target && !m.suspended {
		m.RunCycle()
	}
}

// CycleCount returns the total number of system cycles executed since the
// last Reset, used by tests asserting timing relationships.
func (m *Machine) CycleCount() int64 { return m.cycleCount }

func (m *Machine) CPU() *CycleCPU    { return m.cpu }
func (m *Machine) VIC() *VICII       { return m.vic }
func (m *Machine) SID() *FastSID     { return m.sid }
func (m *Machine) CIA1() *CIA        { return m.cia1 }
func (m *Machine) CIA2() *CIA        { return m.cia2 }
func (m *Machine) Memory() *Memory   { return m.mem }
func (m *Machine) Drive() *VC1541    { return m.drive }

// LoadSnapshot verifies and restores a previously-serialized machine
// state. Corrupt or foreign snapshots are rejected before any component
// is mutated.
func (m *Machine) LoadSnapshot(data []byte) error {
	if err := m.VerifyState(data); err != nil {
		m.log.Warn().Err(err).Msg("rejected snapshot")
		return err
	}
	return m.Deserialize(data)
}

// SaveSnapshot is the Serialize convenience wrapper callers reach for
// symmetrically with LoadSnapshot.
func (m *Machine) SaveSnapshot() ([]byte, error) {
	return m.Serialize()
}

func (m *Machine) snapshotItems() []snapshotItem {
	items := []snapshotItem{
		{name: "machine.cycleCount", data: int64ToBytes(m.cycleCount), keepOnReset: false, restore: func(d []byte) {
			m.cycleCount = bytesToInt64(d)
		}},
		{name: "machine.pendingCycles", data: int64ToBytes(int64(m.pendingCycles)), keepOnReset: false, restore: func(d []byte) {
			m.pendingCycles = int(bytesToInt64(d))
		}},
	}
	items = append(items, m.mem.snapshotItems()...)
	items = append(items, m.cpu.snapshotItems()...)
	items = append(items, m.vic.snapshotItems()...)
	items = append(items, m.sid.snapshotItems()...)
	items = append(items, prefixItems("cia1", m.cia1.snapshotItems())...)
	items = append(items, prefixItems("cia2", m.cia2.snapshotItems())...)
	items = append(items, m.drive.snapshotItems()...)
	return items
}

func prefixItems(prefix string, items []snapshotItem) []snapshotItem {
	out := make([]snapshotItem, len(items))
	for i, it := range items {
		it.name = prefix + "." + it.name
		out[i] = it
	}
	return out
}
