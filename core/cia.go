package core

// CIA models a single 6526 Complex Interface Adapter: two 16-bit
// timers, a TOD clock, a serial shift register, and two 8-bit I/O
// ports. The C64 carries two identical instances (CIA1 drives IRQ plus
// the keyboard/joystick matrix; CIA2 drives NMI, the VIC bank select
// and the serial bus); Machine tells them apart only by which interrupt
// line it wires their output to.
type CIA struct {
	pra, prb, ddra, ddrb uint8

	taLatch, tbLatch     uint16
	taCounter, tbCounter uint16
	taRunning, tbRunning bool
	taOneShot, tbOneShot bool
	taOutputPB6          bool
	tbOutputPB7          bool
	taToggle, tbToggle   bool
	tbCountsUnderflowA   bool // CRB bit 6: timer B counts timer A underflows instead of phi2

	todTenths, todSec, todMin, todHour uint8
	todAlarmTenths, todAlarmSec, todAlarmMin, todAlarmHour uint8
	todRunning                                             bool
	todSetAlarm                                            bool // CRB bit 7: TOD writes set the alarm instead of the clock
	todIn50Hz                                              bool // CRA bit 7: TOD pin frequency select
	todLatched                                             bool
	todLatchTenths, todLatchSec, todLatchMin, todLatchHour  uint8
	todTickAccum                                            int
	todTicksPerTenth                                        int

	sdr uint8

	icrMask  uint8
	icrFlags uint8

	pendingCRA, pendingCRB int16 // -1 = none; CR writes land one cycle late

	// ReadPA/ReadPB let Machine wire in external pull from the keyboard
	// matrix, joystick ports, or the serial/VIC-bank lines without CIA
	// needing to know about any of them directly.
	ReadPA func(ddr, latch uint8) uint8
	ReadPB func(ddr, latch uint8) uint8
	// OnWritePA/OnWritePB notify Machine of output changes (keyboard
	// column strobe, CIA2 PA -> VIC bank select).
	OnWritePA func(val uint8)
	OnWritePB func(val uint8)

	delays delayLine
}

func NewCIA(cpuClockHz int) *CIA {
	c := &CIA{}
	c.reset()
	c.todTicksPerTenth = cpuClockHz / 10
	return c
}

func (c *CIA) reset() {
	c.pra, c.prb, c.ddra, c.ddrb = 0, 0, 0, 0
	c.taLatch, c.tbLatch = 0xFFFF, 0xFFFF
	c.taCounter, c.tbCounter = 0xFFFF, 0xFFFF
	c.taRunning, c.tbRunning = false, false
	c.icrMask, c.icrFlags = 0, 0
	c.sdr = 0
	c.todTenths, c.todSec, c.todMin, c.todHour = 0, 0, 0, 0
	c.todLatched = false
	c.todRunning = true
	c.todSetAlarm = false
	c.pendingCRA, c.pendingCRB = -1, -1
	c.delays.clear()
}

// Tick advances the CIA by one CPU cycle: applies any control-register
// write that landed last cycle (CR writes take effect one cycle after
// the bus access), decrements running timers,
// raises IRQ-flag bits on underflow, reloads from the latch, and stops
// one-shot timers.
func (c *CIA) Tick() {
	if c.delays.tick() {
		if c.pendingCRA >= 0 {
			c.applyCRA(uint8(c.pendingCRA))
			c.pendingCRA = -1
		}
		if c.pendingCRB >= 0 {
			c.applyCRB(uint8(c.pendingCRB))
			c.pendingCRB = -1
		}
	}

	taUnderflow := false
	if c.taRunning {
		if c.taCounter == 0 {
			c.taCounter = c.taLatch
			taUnderflow = true
		} else {
			c.taCounter--
			if c.taCounter == 0 {
				// will underflow and reload on the *next* tick's zero check;
				// to generate the interrupt on the same cycle the counter
				// hits zero, check here too.
				taUnderflow = true
				c.taCounter = c.taLatch
			}
		}
	}
	if taUnderflow {
		c.icrFlags |= 0x01
		if c.taOutputPB6 {
			c.taToggle = !c.taToggle
		}
		if c.taOneShot {
			c.taRunning = false
		}
	}

	tbUnderflow := false
	countSource := c.tbRunning && !c.tbCountsUnderflowA
	if countSource {
		if c.tbCounter == 0 {
			c.tbCounter = c.tbLatch
			tbUnderflow = true
		} else {
			c.tbCounter--
			if c.tbCounter == 0 {
				tbUnderflow = true
				c.tbCounter = c.tbLatch
			}
		}
	} else if c.tbRunning && c.tbCountsUnderflowA && taUnderflow {
		if c.tbCounter == 0 {
			c.tbCounter = c.tbLatch
			tbUnderflow = true
		} else {
			c.tbCounter--
		}
	}
	if tbUnderflow {
		c.icrFlags |= 0x02
		if c.tbOutputPB7 {
			c.tbToggle = !c.tbToggle
		}
		if c.tbOneShot {
			c.tbRunning = false
		}
	}

	if c.todRunning {
		c.todTickAccum++
		if c.todTicksPerTenth > 0 && c.todTickAccum >= c.todTicksPerTenth {
			c.todTickAccum = 0
			c.advanceTOD()
		}
	}
}

func (c *CIA) advanceTOD() {
	c.todTenths++
	if c.todTenths > 9 {
		c.todTenths = 0
		c.todSec++
		if c.todSec > 0x59 {
			c.todSec = 0
			c.todMin++
			if c.todMin > 0x59 {
				c.todMin = 0
				c.todHour++
				if c.todHour > 0x23 {
					c.todHour = 0
				}
			}
		}
	}
	if c.todTenths == c.todAlarmTenths && c.todSec == c.todAlarmSec &&
		c.todMin == c.todAlarmMin && c.todHour == c.todAlarmHour {
		c.icrFlags |= 0x04
	}
}

// IRQAsserted reports whether this CIA currently wants its interrupt
// line driven low; Machine polls this once per cycle and routes it to
// IRQ (CIA1) or NMI (CIA2).
func (c *CIA) IRQAsserted() bool {
	return c.icrFlags&c.icrMask != 0
}

func (c *CIA) Peek(addr uint16) uint8 {
	reg := addr & 0x0F
	switch reg {
	case 0x00:
		if c.ReadPA != nil {
			return c.ReadPA(c.ddra, c.pra)
		}
		return 0xFF
	case 0x01:
		val := uint8(0xFF)
		if c.ReadPB != nil {
			val = c.ReadPB(c.ddrb, c.prb)
		}
		if c.taOutputPB6 {
			val = setBit(val, 6, c.taToggle)
		}
		if c.tbOutputPB7 {
			val = setBit(val, 7, c.tbToggle)
		}
		return val
	case 0x02:
		return c.ddra
	case 0x03:
		return c.ddrb
	case 0x04:
		return uint8(c.taCounter)
	case 0x05:
		return uint8(c.taCounter >> 8)
	case 0x06:
		return uint8(c.tbCounter)
	case 0x07:
		return uint8(c.tbCounter >> 8)
	case 0x08:
		if c.todLatched {
			c.todLatched = false
			return c.todLatchTenths
		}
		return c.todTenths
	case 0x09:
		if c.todLatched {
			return c.todLatchSec
		}
		return c.todSec
	case 0x0A:
		if c.todLatched {
			return c.todLatchMin
		}
		return c.todMin
	case 0x0B:
		c.todLatched = true
		c.todLatchTenths, c.todLatchSec, c.todLatchMin, c.todLatchHour =
			c.todTenths, c.todSec, c.todMin, c.todHour
		return c.todLatchHour
	case 0x0C:
		return c.sdr
	case 0x0D:
		val := c.icrFlags | irqSetBit(c.IRQAsserted())
		c.icrFlags = 0 // reading ICR clears all flags
		return val
	case 0x0E:
		return c.craValue()
	case 0x0F:
		return c.crbValue()
	default:
		return 0xFF
	}
}

func (c *CIA) SpyPeek(addr uint16) uint8 {
	reg := addr & 0x0F
	switch reg {
	case 0x0D:
		return c.icrFlags | irqSetBit(c.IRQAsserted())
	default:
		return c.Peek(addr)
	}
}

func (c *CIA) Poke(addr uint16, val uint8) {
	reg := addr & 0x0F
	switch reg {
	case 0x00:
		c.pra = val
		if c.OnWritePA != nil {
			c.OnWritePA(c.effectivePort(c.ddra, c.pra))
		}
	case 0x01:
		c.prb = val
		if c.OnWritePB != nil {
			c.OnWritePB(c.effectivePort(c.ddrb, c.prb))
		}
	case 0x02:
		c.ddra = val
	case 0x03:
		c.ddrb = val
	case 0x04:
		c.taLatch = (c.taLatch & 0xFF00) | uint16(val)
	case 0x05:
		c.taLatch = (c.taLatch & 0x00FF) | uint16(val)<<8
		if !c.taRunning {
			c.taCounter = c.taLatch
		}
	case 0x06:
		c.tbLatch = (c.tbLatch & 0xFF00) | uint16(val)
	case 0x07:
		c.tbLatch = (c.tbLatch & 0x00FF) | uint16(val)<<8
		if !c.tbRunning {
			c.tbCounter = c.tbLatch
		}
	case 0x08:
		if c.todSetAlarm {
			c.todAlarmTenths = val & 0x0F
		} else {
			c.todTenths = val & 0x0F
			c.todRunning = true // a tenths write restarts a halted clock
		}
	case 0x09:
		if c.todSetAlarm {
			c.todAlarmSec = val & 0x7F
		} else {
			c.todSec = val & 0x7F
		}
	case 0x0A:
		if c.todSetAlarm {
			c.todAlarmMin = val & 0x7F
		} else {
			c.todMin = val & 0x7F
		}
	case 0x0B:
		if c.todSetAlarm {
			c.todAlarmHour = val
		} else {
			c.todHour = val
			c.todRunning = false // the clock halts until the tenths register is written
		}
	case 0x0C:
		c.sdr = val
	case 0x0D:
		if val&0x80 != 0 {
			c.icrMask |= val & 0x7F
		} else {
			c.icrMask &^= val & 0x7F
		}
	case 0x0E:
		c.pendingCRA = int16(val)
		c.delays.arm(0)
	case 0x0F:
		c.pendingCRB = int16(val)
		c.delays.arm(0)
	}
}

func (c *CIA) effectivePort(ddr, latch uint8) uint8 {
	return latch | ^ddr
}

func (c *CIA) craValue() uint8 {
	var v uint8
	if c.taRunning {
		v |= 0x01
	}
	if c.taOneShot {
		v |= 0x08
	}
	if c.taOutputPB6 {
		v |= 0x02
	}
	if c.todIn50Hz {
		v |= 0x80
	}
	return v
}

func (c *CIA) crbValue() uint8 {
	var v uint8
	if c.tbRunning {
		v |= 0x01
	}
	if c.tbOneShot {
		v |= 0x08
	}
	if c.tbOutputPB7 {
		v |= 0x02
	}
	if c.tbCountsUnderflowA {
		v |= 0x40
	}
	if c.todSetAlarm {
		v |= 0x80
	}
	return v
}

func (c *CIA) applyCRA(val uint8) {
	c.taRunning = val&0x01 != 0
	c.taOutputPB6 = val&0x02 != 0
	if val&0x04 != 0 {
		c.taToggle = false // force-load pulses the output low, handled as reset
	}
	c.taOneShot = val&0x08 != 0
	if val&0x10 != 0 {
		c.taCounter = c.taLatch
	}
	c.todIn50Hz = val&0x80 != 0
}

func (c *CIA) applyCRB(val uint8) {
	c.tbRunning = val&0x01 != 0
	c.tbOutputPB7 = val&0x02 != 0
	if val&0x04 != 0 {
		c.tbToggle = false
	}
	c.tbOneShot = val&0x08 != 0
	if val&0x10 != 0 {
		c.tbCounter = c.tbLatch
	}
	c.tbCountsUnderflowA = val&0x40 != 0
	c.todSetAlarm = val&0x80 != 0
}

func setBit(v uint8, bit uint, set bool) uint8 {
	mask := uint8(1) << bit
	if set {
		return v | mask
	}
	return v &^ mask
}

func (c *CIA) snapshotItems() []snapshotItem {
	return []snapshotItem{
		{name: "pra", data: []byte{c.pra}, keepOnReset: false, restore: func(d []byte) { c.pra = d[0] }},
		{name: "prb", data: []byte{c.prb}, keepOnReset: false, restore: func(d []byte) { c.prb = d[0] }},
		{name: "ddra", data: []byte{c.ddra}, keepOnReset: false, restore: func(d []byte) { c.ddra = d[0] }},
		{name: "ddrb", data: []byte{c.ddrb}, keepOnReset: false, restore: func(d []byte) { c.ddrb = d[0] }},
		{name: "taCounter", data: int64ToBytes(int64(c.taCounter)), keepOnReset: false, restore: func(d []byte) {
			c.taCounter = uint16(bytesToInt64(d))
		}},
		{name: "tbCounter", data: int64ToBytes(int64(c.tbCounter)), keepOnReset: false, restore: func(d []byte) {
			c.tbCounter = uint16(bytesToInt64(d))
		}},
		{name: "taLatch", data: int64ToBytes(int64(c.taLatch)), keepOnReset: false, restore: func(d []byte) {
			c.taLatch = uint16(bytesToInt64(d))
		}},
		{name: "tbLatch", data: int64ToBytes(int64(c.tbLatch)), keepOnReset: false, restore: func(d []byte) {
			c.tbLatch = uint16(bytesToInt64(d))
		}},
		{name: "ctrlFlags", data: []byte{c.packControlFlags()}, keepOnReset: false, restore: func(d []byte) { c.unpackControlFlags(d[0]) }},
		{name: "icrMask", data: []byte{c.icrMask}, keepOnReset: false, restore: func(d []byte) { c.icrMask = d[0] }},
		{name: "icrFlags", data: []byte{c.icrFlags}, keepOnReset: false, restore: func(d []byte) { c.icrFlags = d[0] }},
		{name: "sdr", data: []byte{c.sdr}, keepOnReset: false, restore: func(d []byte) { c.sdr = d[0] }},
		{name: "pendingCRA", data: int64ToBytes(int64(c.pendingCRA)), keepOnReset: false, restore: func(d []byte) {
			c.pendingCRA = int16(bytesToInt64(d))
		}},
		{name: "pendingCRB", data: int64ToBytes(int64(c.pendingCRB)), keepOnReset: false, restore: func(d []byte) {
			c.pendingCRB = int16(bytesToInt64(d))
		}},
		{name: "delays", data: int64ToBytes(int64(c.delays.bits)), keepOnReset: false, restore: func(d []byte) {
			c.delays.bits = uint64(bytesToInt64(d))
		}},
		{name: "tod", data: []byte{c.todTenths, c.todSec, c.todMin, c.todHour, c.todAlarmTenths, c.todAlarmSec, c.todAlarmMin, c.todAlarmHour}, keepOnReset: false, restore: func(d []byte) {
			c.todTenths, c.todSec, c.todMin, c.todHour = d[0], d[1], d[2], d[3]
			c.todAlarmTenths, c.todAlarmSec, c.todAlarmMin, c.todAlarmHour = d[4], d[5], d[6], d[7]
		}},
	}
}

// packControlFlags/unpackControlFlags flatten the boolean control state
// (run/one-shot/toggle/source bits plus the TOD alarm-select bit) into one byte
// for the snapshot walk.
func (c *CIA) packControlFlags() uint8 {
	var f uint8
	bools := []bool{c.taRunning, c.tbRunning, c.taOneShot, c.tbOneShot,
		c.taToggle, c.tbToggle, c.tbCountsUnderflowA, c.todSetAlarm}
	for i, b := range bools {
		if b {
			f |= 1 << uint(i)
		}
	}
	return f
}

func (c *CIA) unpackControlFlags(f uint8) {
	c.taRunning = f&0x01 != 0
	c.tbRunning = f&0x02 != 0
	c.taOneShot = f&0x04 != 0
	c.tbOneShot = f&0x08 != 0
	c.taToggle = f&0x10 != 0
	c.tbToggle = f&0x20 != 0
	c.tbCountsUnderflowA = f&0x40 != 0
	c.todSetAlarm = f&0x80 != 0
}
