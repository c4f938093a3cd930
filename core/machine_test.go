package core

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	roms := RomImages{
		Basic:     make([]byte, 0x2000),
		Kernal:    make([]byte, 0x2000),
		Char:      make([]byte, 0x1000),
		Drive1541: make([]byte, 0x4000),
	}
	roms.Kernal[0x1FFC&0x1FFF] = 0x00
	roms.Kernal[0x1FFD&0x1FFF] = 0xE0 // reset vector -> $E000, inside KERNAL
	return NewMachine(DefaultConfig(), roms, zerolog.Nop())
}

func TestMachine_NewMachineBootsWithCPUAtResetVector(t *testing.T) {
	m := newTestMachine(t)
	if m.CPU().PC() != 0xE000 {
		t.Errorf("expected PC at KERNAL reset vector 0xE000, got 0x%04X", m.CPU().PC())
	}
}

func TestMachine_SetKeyRejectsOutOfRangeCoordinates(t *testing.T) {
	m := newTestMachine(t)
	m.SetKey(8, 0, true)
	m.SetKey(0, 8, true)
	for col := range m.keyMatrix {
		if m.keyMatrix[col] != 0 {
			t.Fatal("expected out-of-range SetKey calls to be ignored")
		}
	}
}

func TestMachine_SetKeyThenScanViaCIA1(t *testing.T) {
	m := newTestMachine(t)
	m.SetKey(2, 3, true) // row 2, col 3

	m.cia1.pra = ^uint8(1 << 3) // select column 3 (active low)
	row := m.cia1.ReadPB(0xFF, m.cia1.prb)
	if row&(1<<2) != 0 {
		t.Errorf("expected row bit 2 pulled low for the pressed key, got 0x%02X", row)
	}
}

func TestMachine_RunCycleAdvancesCycleCount(t *testing.T) {
	m := newTestMachine(t)
	before := m.CycleCount()
	// RunCycle ticks peripherals for the cycle count of the previous
	// Step() before executing the next instruction. Right after Reset
	// nothing is pending, so the first call only executes an instruction
	// and the second call is the one that moves the cycle counter.
	m.RunCycle()
	m.RunCycle()
	if m.CycleCount() <= before {
		t.Error("expected RunCycle to advance the cycle counter")
	}
}

func TestMachine_SuspendStopsScheduler(t *testing.T) {
	m := newTestMachine(t)
	m.Suspend()
	if !m.Suspended() {
		t.Fatal("expected Suspended() true after Suspend()")
	}
	before := m.CycleCount()
	m.RunCycle()
	if m.CycleCount() != before {
		t.Error("expected RunCycle to be a no-op while suspended")
	}
	m.Resume()
	if m.Suspended() {
		t.Error("expected Suspended() false after Resume()")
	}
}

func TestMachine_AttachCartridgeRejectsNil(t *testing.T) {
	m := newTestMachine(t)
	if err := m.AttachCartridge(nil); err != ErrUnknownCartridgeFormat {
		t.Fatalf("expected ErrUnknownCartridgeFormat, got %v", err)
	}
}

func TestMachine_LoadDiskInstallsTracks(t *testing.T) {
	m := newTestMachine(t)
	m.LoadDisk(map[int][]uint8{36: {1, 2, 3}})
	if len(m.drive.trackData[36]) != 3 {
		t.Errorf("expected 3 bytes installed on half-track 36, got %d", len(m.drive.trackData[36]))
	}
}

func TestMachine_RunFrameExecutesOneFrameOfCycles(t *testing.T) {
	m := newTestMachine(t)
	frame := int64(63 * 312) // PAL
	before := m.CycleCount()
	m.RunFrame()
	elapsed := m.CycleCount() - before
	if elapsed < frame || elapsed > frame+8 {
		t.Errorf("expected one PAL frame (%d cycles, instruction-granular overshoot allowed), got %d", frame, elapsed)
	}
}

func TestMachine_ResetClearsItemsButKeepsFlaggedState(t *testing.T) {
	m := newTestMachine(t)
	m.mem.colorRAM[5] = 0x0A
	m.drive.bus.ram[3] = 0x77
	m.drive.track = 40
	m.drive.headPos = 9

	m.Reset()

	if m.mem.colorRAM[5] != 0 {
		t.Error("expected color RAM cleared by the reset walk")
	}
	if m.drive.bus.ram[3] != 0 {
		t.Error("expected drive RAM cleared by the reset walk")
	}
	if m.drive.track != 40 || m.drive.headPos != 9 {
		t.Errorf("expected head position to survive reset, got track %d offset %d", m.drive.track, m.drive.headPos)
	}
	// The KERNAL ROM carries the keep flag: the reset vector must still
	// point where the test ROM put it.
	if m.CPU().PC() != 0xE000 {
		t.Errorf("expected KERNAL ROM to survive reset (PC at 0xE000), got 0x%04X", m.CPU().PC())
	}
}
