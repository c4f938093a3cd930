package core

// VIA6522 models a single 6522 Versatile Interface Adapter; the 1541
// drive carries two (VIA1 talks to the serial bus, VIA2 to the GCR
// shift register, stepper and spindle motor). Compared to the CIA it
// has no TOD clock but adds the CA2/CB2 handshake modes the drive DOS
// leans on for its read/write select.
type VIA6522 struct {
	pra, prb, ddra, ddrb uint8

	t1Latch, t1Counter uint16
	t1FreeRun          bool
	t1Running          bool
	t2Latch, t2Counter uint16
	t2Running          bool
	t2PulseCounting    bool // T2 counts PB6 pulses instead of phi2

	sr uint8

	ier, ifr uint8

	ca2Mode, cb2Mode uint8 // 3-bit handshake mode fields from PCR

	ReadPA  func(ddr, latch uint8) uint8
	ReadPB  func(ddr, latch uint8) uint8
	WritePA func(val uint8)
	WritePB func(val uint8)
}

func NewVIA6522() *VIA6522 {
	v := &VIA6522{}
	v.reset()
	return v
}

func (v *VIA6522) reset() {
	v.pra, v.prb, v.ddra, v.ddrb = 0, 0, 0, 0
	v.t1Latch, v.t1Counter = 0xFFFF, 0xFFFF
	v.t2Latch, v.t2Counter = 0xFFFF, 0xFFFF
	v.ier, v.ifr = 0, 0
}

// Tick advances both timers by one cycle; VC1541.Cycle ticks both of the
// drive's VIAs once per C64 CPU cycle.
func (v *VIA6522) Tick() {
	if v.t1Running {
		if v.t1Counter == 0 {
			v.t1Counter = v.t1Latch
			v.ifr |= 0x40
			if !v.t1FreeRun {
				v.t1Running = false
			}
		} else {
			v.t1Counter--
		}
	}
	if v.t2Running && !v.t2PulseCounting {
		if v.t2Counter == 0 {
			v.t2Counter = v.t2Latch
			v.ifr |= 0x20
			v.t2Running = false
		} else {
			v.t2Counter--
		}
	}
}

func (v *VIA6522) IRQAsserted() bool {
	return v.ifr&v.ier&0x7F != 0
}

func (v *VIA6522) Peek(addr uint16) uint8 {
	reg := addr & 0x0F
	switch reg {
	case 0x00:
		val := uint8(0xFF)
		if v.ReadPB != nil {
			val = v.ReadPB(v.ddrb, v.prb)
		}
		return val
	case 0x01:
		if v.ReadPA != nil {
			return v.ReadPA(v.ddra, v.pra)
		}
		return 0xFF
	case 0x02:
		return v.ddrb
	case 0x03:
		return v.ddra
	case 0x04:
		v.ifr &^= 0x40
		return uint8(v.t1Counter)
	case 0x05:
		return uint8(v.t1Counter >> 8)
	case 0x06:
		return uint8(v.t1Latch)
	case 0x07:
		return uint8(v.t1Latch >> 8)
	case 0x08:
		v.ifr &^= 0x20
		return uint8(v.t2Counter)
	case 0x09:
		return uint8(v.t2Counter >> 8)
	case 0x0A:
		return v.sr
	case 0x0B:
		return v.acrValue()
	case 0x0C:
		return v.pcrValue()
	case 0x0D:
		return v.ifr | irqSetBit(v.IRQAsserted())
	case 0x0E:
		return v.ier | 0x80
	case 0x0F:
		if v.ReadPA != nil {
			return v.ReadPA(v.ddra, v.pra)
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (v *VIA6522) SpyPeek(addr uint16) uint8 { return v.Peek(addr) }

func (v *VIA6522) Poke(addr uint16, val uint8) {
	reg := addr & 0x0F
	switch reg {
	case 0x00:
		v.prb = val
		if v.WritePB != nil {
			v.WritePB(val | ^v.ddrb)
		}
	case 0x01:
		v.pra = val
		if v.WritePA != nil {
			v.WritePA(val | ^v.ddra)
		}
	case 0x02:
		v.ddrb = val
	case 0x03:
		v.ddra = val
	case 0x04:
		v.t1Latch = (v.t1Latch & 0xFF00) | uint16(val)
	case 0x05:
		v.t1Latch = (v.t1Latch & 0x00FF) | uint16(val)<<8
		v.t1Counter = v.t1Latch
		v.t1Running = true
		v.ifr &^= 0x40
	case 0x06:
		v.t1Latch = (v.t1Latch & 0xFF00) | uint16(val)
	case 0x07:
		v.t1Latch = (v.t1Latch & 0x00FF) | uint16(val)<<8
	case 0x08:
		v.t2Latch = (v.t2Latch & 0xFF00) | uint16(val)
	case 0x09:
		v.t2Latch = (v.t2Latch & 0x00FF) | uint16(val)<<8
		v.t2Counter = v.t2Latch
		v.t2Running = true
		v.ifr &^= 0x20
	case 0x0A:
		v.sr = val
	case 0x0B:
		v.setACR(val)
	case 0x0C:
		v.setPCR(val)
	case 0x0D:
		v.ifr &^= val & 0x7F
	case 0x0E:
		if val&0x80 != 0 {
			v.ier |= val & 0x7F
		} else {
			v.ier &^= val & 0x7F
		}
	case 0x0F:
		v.pra = val
		if v.WritePA != nil {
			v.WritePA(val | ^v.ddra)
		}
	}
}

func (v *VIA6522) acrValue() uint8 {
	var val uint8
	if v.t1FreeRun {
		val |= 0x40
	}
	if v.t2PulseCounting {
		val |= 0x20
	}
	return val
}

func (v *VIA6522) setACR(val uint8) {
	v.t1FreeRun = val&0x40 != 0
	v.t2PulseCounting = val&0x20 != 0
}

func (v *VIA6522) pcrValue() uint8 {
	return v.ca2Mode<<1 | v.cb2Mode<<5
}

func (v *VIA6522) setPCR(val uint8) {
	v.ca2Mode = (val >> 1) & 0x07
	v.cb2Mode = (val >> 5) & 0x07
}

func (v *VIA6522) snapshotItems(prefix string) []snapshotItem {
	return []snapshotItem{
		{name: prefix + ".pra", data: []byte{v.pra}, keepOnReset: false, restore: func(d []byte) { v.pra = d[0] }},
		{name: prefix + ".prb", data: []byte{v.prb}, keepOnReset: false, restore: func(d []byte) { v.prb = d[0] }},
		{name: prefix + ".t1Counter", data: int64ToBytes(int64(v.t1Counter)), keepOnReset: false, restore: func(d []byte) {
			v.t1Counter = uint16(bytesToInt64(d))
		}},
		{name: prefix + ".t2Counter", data: int64ToBytes(int64(v.t2Counter)), keepOnReset: false, restore: func(d []byte) {
			v.t2Counter = uint16(bytesToInt64(d))
		}},
		{name: prefix + ".ier", data: []byte{v.ier}, keepOnReset: false, restore: func(d []byte) { v.ier = d[0] }},
		{name: prefix + ".ifr", data: []byte{v.ifr}, keepOnReset: false, restore: func(d []byte) { v.ifr = d[0] }},
		{name: prefix + ".ddra", data: []byte{v.ddra}, keepOnReset: false, restore: func(d []byte) { v.ddra = d[0] }},
		{name: prefix + ".ddrb", data: []byte{v.ddrb}, keepOnReset: false, restore: func(d []byte) { v.ddrb = d[0] }},
		{name: prefix + ".sr", data: []byte{v.sr}, keepOnReset: false, restore: func(d []byte) { v.sr = d[0] }},
		{name: prefix + ".t1Latch", data: int64ToBytes(int64(v.t1Latch)), keepOnReset: false, restore: func(d []byte) {
			v.t1Latch = uint16(bytesToInt64(d))
		}},
		{name: prefix + ".t2Latch", data: int64ToBytes(int64(v.t2Latch)), keepOnReset: false, restore: func(d []byte) {
			v.t2Latch = uint16(bytesToInt64(d))
		}},
		{name: prefix + ".acr", data: []byte{v.acrValue()}, keepOnReset: false, restore: func(d []byte) { v.setACR(d[0]) }},
		{name: prefix + ".pcr", data: []byte{v.pcrValue()}, keepOnReset: false, restore: func(d []byte) { v.setPCR(d[0]) }},
		{name: prefix + ".timerRun", data: []byte{packTimerRun(v.t1Running, v.t2Running)}, keepOnReset: false, restore: func(d []byte) {
			v.t1Running = d[0]&0x01 != 0
			v.t2Running = d[0]&0x02 != 0
		}},
	}
}

func packTimerRun(t1, t2 bool) uint8 {
	var f uint8
	if t1 {
		f |= 0x01
	}
	if t2 {
		f |= 0x02
	}
	return f
}
