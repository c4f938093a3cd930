package core

import "testing"

func TestCIA_TimerAUnderflowSetsICRAndReloadsLatch(t *testing.T) {
	c := NewCIA(985248)
	c.taLatch = 2
	c.taCounter = 0
	c.taRunning = true
	c.Tick() // counter==0 -> reload+flag this tick
	if c.icrFlags&0x01 == 0 {
		t.Error("expected timer A underflow to set ICR bit 0")
	}
	if c.taCounter != c.taLatch {
		t.Errorf("expected counter reloaded to latch %d, got %d", c.taLatch, c.taCounter)
	}
}

func TestCIA_TimerAOneShotStopsAfterUnderflow(t *testing.T) {
	c := NewCIA(985248)
	c.taLatch = 1
	c.taCounter = 0
	c.taRunning = true
	c.taOneShot = true
	c.Tick()
	if c.taRunning {
		t.Error("expected one-shot timer A to stop itself after underflow")
	}
}

func TestCIA_IRQAssertedRequiresMaskOverlap(t *testing.T) {
	c := NewCIA(985248)
	c.icrFlags = 0x01
	c.icrMask = 0x00
	if c.IRQAsserted() {
		t.Error("expected no IRQ with empty mask")
	}
	c.icrMask = 0x01
	if !c.IRQAsserted() {
		t.Error("expected IRQ asserted once mask overlaps flags")
	}
}

func TestCIA_ReadingICRClearsFlags(t *testing.T) {
	c := NewCIA(985248)
	c.icrFlags = 0x01
	c.icrMask = 0x01
	val := c.Peek(0xDC0D)
	if val&0x01 == 0 {
		t.Error("expected bit 0 set in the returned ICR value")
	}
	if val&0x80 == 0 {
		t.Error("expected bit 7 (IRQ-was-asserted summary) set in the returned ICR value")
	}
	if c.icrFlags != 0 {
		t.Error("expected reading ICR to clear icrFlags")
	}
}

func TestCIA_ICRMaskWriteSetOrClearBit(t *testing.T) {
	c := NewCIA(985248)
	c.Poke(0xDC0D, 0x81) // set bit 0
	if c.icrMask&0x01 == 0 {
		t.Error("expected bit 0 of icrMask to be set")
	}
	c.Poke(0xDC0D, 0x01) // clear bit 0 (bit 7 = 0 means clear)
	if c.icrMask&0x01 != 0 {
		t.Error("expected bit 0 of icrMask to be cleared")
	}
}

func TestCIA_TODAdvancesOneTenthPerTicksPerTenth(t *testing.T) {
	c := NewCIA(10) // todTicksPerTenth = 1
	c.todRunning = true
	c.Tick()
	if c.todTenths != 1 {
		t.Errorf("expected todTenths to advance to 1, got %d", c.todTenths)
	}
}

func TestCIA_PortReadReflectsDDRAndLatch(t *testing.T) {
	c := NewCIA(985248)
	c.ReadPA = func(ddr, latch uint8) uint8 { return latch | ^ddr }
	c.Poke(0xDC02, 0xFF) // DDRA all output
	c.Poke(0xDC00, 0x42) // PRA
	if got := c.Peek(0xDC00); got != 0x42 {
		t.Errorf("expected readback of PRA 0x42, got 0x%02X", got)
	}
}

func TestCIA_PortReadWithoutHookIsOpenBus(t *testing.T) {
	c := NewCIA(985248)
	c.Poke(0xDC00, 0x42)
	if got := c.Peek(0xDC00); got != 0xFF {
		t.Errorf("expected open bus 0xFF with no ReadPA hook, got 0x%02X", got)
	}
}

func TestCIA_ControlRegisterWriteLandsOneCycleLate(t *testing.T) {
	c := NewCIA(985248)
	c.Poke(0xDC0E, 0x01) // start timer A
	if c.taRunning {
		t.Fatal("expected the CRA write to still be pending in the write cycle")
	}
	c.Tick()
	if !c.taRunning {
		t.Fatal("expected the CRA write to apply on the following cycle")
	}
}

func TestCIA_TODWritesTargetClockOrAlarmPerCRB(t *testing.T) {
	c := NewCIA(985248)
	c.Poke(0xDC08, 0x05) // CRB bit 7 clear: writes set the clock
	if c.todTenths != 5 {
		t.Fatalf("expected tenths written to the clock, got %d", c.todTenths)
	}
	c.Poke(0xDC0F, 0x80) // select alarm writes
	c.Tick()             // CR writes land a cycle later
	c.Poke(0xDC08, 0x07)
	if c.todAlarmTenths != 7 {
		t.Errorf("expected tenths written to the alarm, got %d", c.todAlarmTenths)
	}
	if c.todTenths != 5 {
		t.Errorf("expected the clock untouched by an alarm write, got %d", c.todTenths)
	}
}

func TestCIA_TODHourWriteHaltsUntilTenthsWrite(t *testing.T) {
	c := NewCIA(985248)
	c.Poke(0xDC0B, 0x03)
	if c.todRunning {
		t.Fatal("expected an hour write to halt the TOD clock")
	}
	c.Poke(0xDC08, 0x00)
	if !c.todRunning {
		t.Fatal("expected a tenths write to restart the TOD clock")
	}
}
