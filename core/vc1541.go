package core

// driveBus is the 1541's own 16-bit address space: 2KB RAM (mirrored),
// 16KB ROM at $C000-$FFFF, and the two VIAs at $1800/$1C00. It is
// intentionally separate from core.Memory, which models the C64 side of
// the serial bus; the two machines share nothing but the IEC lines.
type driveBus struct {
	ram  [0x0800]uint8
	rom  [0x4000]uint8
	via1 *VIA6522
	via2 *VIA6522
}

func (d *driveBus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x0800:
		return d.ram[addr]
	case addr < 0x1800:
		return d.ram[addr&0x07FF]
	case addr < 0x1C00:
		return d.via1.Peek(addr)
	case addr < 0x2000:
		return d.via2.Peek(addr)
	case addr >= 0xC000:
		return d.rom[addr&0x3FFF]
	default:
		return 0xFF
	}
}

func (d *driveBus) SpyPeek(addr uint16) uint8 {
	switch {
	case addr < 0x1800:
		return d.ram[addr&0x07FF]
	case addr < 0x1C00:
		return d.via1.SpyPeek(addr)
	case addr < 0x2000:
		return d.via2.SpyPeek(addr)
	case addr >= 0xC000:
		return d.rom[addr&0x3FFF]
	default:
		return 0xFF
	}
}

func (d *driveBus) Poke(addr uint16, val uint8) {
	switch {
	case addr < 0x1800:
		d.ram[addr&0x07FF] = val
	case addr < 0x1C00:
		d.via1.Poke(addr, val)
	case addr < 0x2000:
		d.via2.Poke(addr, val)
	default:
		// ROM: read-only, ignore
	}
}

// speedZoneDivisors gives the UE7 reload divisor for each of the four
// GCR density zones: outer tracks pack more bits, so their cells are
// shorter.
var speedZoneDivisors = [4]int{16, 15, 14, 13}

// VC1541 is the complete floppy drive unit: its own 6502, two VIAs, the
// GCR read/write shift registers, and the 16MHz-derived bit clock that
// ultimately paces everything. The clock chain is the UE7/UF4/UE3
// counter cascade: UE7 divides 16MHz by the density-zone
// divisor, UF4 divides UE7's carries by 4 into bit cells, and UE3 counts
// 8 bit cells into a byte-ready event.
type VC1541 struct {
	cpu  *CycleCPU
	bus  *driveBus
	via1 *VIA6522
	via2 *VIA6522

	track          int // half-track number, 1..84
	densityZone    uint8
	motorOn        bool
	ledOn          bool
	writeProtected bool
	diskModified   bool

	chainAccum int // 16MHz ticks accumulated toward the next bit cell
	cpuPending int // cycles left before the drive CPU's next instruction
	stepperPhase uint8

	headPos   int    // bit offset into the current half-track
	readShift uint16 // serial input; SYNC is 10 consecutive 1 bits here
	writeShift uint8
	shiftReg  uint8 // last completed byte, latched for VIA2 port A
	bitCount  uint8 // UE3: bits since the last byte boundary
	byteReady bool
	sync      bool

	trackData [85][]uint8 // GCR-encoded bytes per half-track (1-based); nil = unformatted
}

// NewVC1541 constructs a drive with the given DOS ROM image loaded at $C000.
func NewVC1541(rom []byte) *VC1541 {
	via1 := NewVIA6522()
	via2 := NewVIA6522()
	bus := &driveBus{via1: via1, via2: via2}
	copy(bus.rom[:], rom)

	d := &VC1541{
		bus:   bus,
		via1:  via1,
		via2:  via2,
		track: 36, // half-track of track 18, the directory track the DOS parks on
	}
	d.cpu = NewCycleCPU(bus)

	via2.ReadPA = func(ddr, latch uint8) uint8 {
		// In read mode the input latch follows the read shift register;
		// the DOS reads it on every byte-ready.
		return d.shiftReg
	}
	via2.ReadPB = func(ddr, latch uint8) uint8 {
		val := latch | ^ddr
		val = setBit(val, 7, !d.sync) // /SYNC, active low
		val = setBit(val, 4, !d.writeProtected)
		return val
	}
	via2.WritePB = func(val uint8) {
		d.densityZone = (val >> 5) & 0x03
		d.motorOn = val&0x04 != 0
		d.ledOn = val&0x08 != 0
		// Stepper: PB0-1 carry the motor phase; advancing the phase by one
		// moves the head one half-track in that direction.
		phase := val & 0x03
		switch (phase - d.stepperPhase) & 0x03 {
		case 1:
			d.stepHead(1)
		case 3:
			d.stepHead(-1)
		}
		d.stepperPhase = phase
	}

	return d
}

func (d *VC1541) Reset() {
	d.cpu.Reset()
	d.via1.reset()
	d.via2.reset()
	// Disk contents, head track/offset and stepper phase survive a reset;
	// the shift registers and clock-chain counters were already cleared by
	// the snapshot walk in Machine.Reset.
}

func (d *VC1541) stepHead(dir int) {
	next := d.track + dir
	if next < 1 {
		next = 1
	}
	if next > 84 {
		next = 84
	}
	if next != d.track {
		d.track = next
		d.headPos = 0
	}
}

// LoadTrack installs raw GCR bytes for a half-track; this is the
// substrate hook a D64/G64 image loader feeds.
func (d *VC1541) LoadTrack(halfTrack int, gcr []uint8) {
	if halfTrack < 1 || halfTrack >= len(d.trackData) {
		return
	}
	d.trackData[halfTrack] = gcr
}

// TrackData exposes the raw bit substrate of a half-track, for callers
// persisting a modified disk back out.
func (d *VC1541) TrackData(halfTrack int) []uint8 {
	if halfTrack < 1 || halfTrack >= len(d.trackData) {
		return nil
	}
	return d.trackData[halfTrack]
}

// Modified reports whether any write-mode pass has touched the disk. The
// flag survives Machine.Reset, and nothing in this type clears it.
func (d *VC1541) Modified() bool { return d.diskModified }

// readMode reports the VIA2 CB2 read/write select. The head writes when
// PCR bit 7 is set and bit 5 is clear (CB2 output modes 100 and 110);
// in every other mode, including CB2 as an input where the line floats
// high, the drive reads.
func (d *VC1541) readMode() bool {
	pcr := d.via2.pcrValue()
	return pcr&0x80 == 0 || pcr&0x20 != 0
}

// Cycle advances the drive by one C64 CPU cycle: 16 ticks of the 16MHz
// chain toward the next bit cell, one tick of each VIA's timers, and the
// drive CPU's own instruction stream. The
// drive CPU runs at 1MHz like the host CPU, so one instruction is begun
// whenever the previous one's cycles have elapsed, the same pending-cycle
// accounting Machine applies to the host CPU.
func (d *VC1541) Cycle() {
	bitCellTicks := 4 * speedZoneDivisors[d.densityZone] // UE7 carry x 4 (UF4 QA/QB)
	d.chainAccum += 16
	for d.chainAccum >= bitCellTicks {
		d.chainAccum -= bitCellTicks
		d.clockBitCell()
	}

	d.via1.Tick()
	d.via2.Tick()

	if d.cpuPending <= 0 {
		d.cpu.SetIRQLine(d.via1.IRQAsserted() || d.via2.IRQAsserted())
		d.cpuPending = d.cpu.Step()
	}
	d.cpuPending--
}

// clockBitCell moves one bit between the head and the disk substrate. In
// read mode the bit shifts into the 16-bit read register and every 8th
// bit latches a byte and pulses VIA2's CA1 (byte-ready); in write mode
// the MSB of the write shift register lands on the disk and the register
// reloads from VIA2's port A latch on byte boundaries.
func (d *VC1541) clockBitCell() {
	track := d.trackData[d.track]
	if !d.motorOn || len(track) == 0 {
		return
	}
	bitLen := len(track) * 8

	if d.readMode() {
		bit := (track[d.headPos>>3] >> (7 - uint(d.headPos&7))) & 1
		d.readShift = d.readShift<<1 | uint16(bit)
		d.sync = d.readShift&0x3FF == 0x3FF
		if d.sync {
			// SYNC resets the byte boundary; the next 0 bit starts bit 0
			// of a fresh byte.
			d.bitCount = 0
			d.byteReady = false
		} else {
			d.bitCount++
			if d.bitCount == 8 {
				d.bitCount = 0
				d.shiftReg = uint8(d.readShift)
				d.byteReady = true
				d.via2.ifr |= 0x02 // CA1: byte ready
			} else {
				d.byteReady = false
			}
		}
	} else {
		bit := (d.writeShift >> 7) & 1
		byteIdx := d.headPos >> 3
		mask := uint8(0x80) >> uint(d.headPos&7)
		if bit != 0 {
			track[byteIdx] |= mask
		} else {
			track[byteIdx] &^= mask
		}
		d.writeShift <<= 1
		d.diskModified = true
		d.bitCount++
		if d.bitCount == 8 {
			d.bitCount = 0
			d.writeShift = d.via2.pra
			d.via2.ifr |= 0x02
		}
	}

	d.headPos = (d.headPos + 1) % bitLen
}

func (d *VC1541) snapshotItems() []snapshotItem {
	items := []snapshotItem{
		{name: "vc1541.ram", data: d.bus.ram[:], keepOnReset: false},
		{name: "vc1541.rom", data: d.bus.rom[:], keepOnReset: true},
		{name: "vc1541.track", data: int64ToBytes(int64(d.track)), keepOnReset: true, restore: func(b []byte) {
			d.track = int(bytesToInt64(b))
		}},
		{name: "vc1541.headPos", data: int64ToBytes(int64(d.headPos)), keepOnReset: true, restore: func(b []byte) {
			d.headPos = int(bytesToInt64(b))
		}},
		{name: "vc1541.chainAccum", data: int64ToBytes(int64(d.chainAccum)), keepOnReset: false, restore: func(b []byte) {
			d.chainAccum = int(bytesToInt64(b))
		}},
		{name: "vc1541.cpuPending", data: int64ToBytes(int64(d.cpuPending)), keepOnReset: false, restore: func(b []byte) {
			d.cpuPending = int(bytesToInt64(b))
		}},
		{name: "vc1541.readShift", data: int64ToBytes(int64(d.readShift)), keepOnReset: false, restore: func(b []byte) {
			d.readShift = uint16(bytesToInt64(b))
		}},
		{name: "vc1541.writeShift", data: []byte{d.writeShift}, keepOnReset: false, restore: func(b []byte) { d.writeShift = b[0] }},
		{name: "vc1541.shiftReg", data: []byte{d.shiftReg}, keepOnReset: false, restore: func(b []byte) { d.shiftReg = b[0] }},
		{name: "vc1541.bitCount", data: []byte{d.bitCount}, keepOnReset: false, restore: func(b []byte) { d.bitCount = b[0] }},
		{name: "vc1541.stepperPhase", data: []byte{d.stepperPhase}, keepOnReset: true, restore: func(b []byte) { d.stepperPhase = b[0] }},
		{name: "vc1541.densityZone", data: []byte{d.densityZone}, keepOnReset: false, restore: func(b []byte) { d.densityZone = b[0] }},
		{name: "vc1541.motorOn", data: boolByte(d.motorOn), keepOnReset: false, restore: func(b []byte) { d.motorOn = b[0] != 0 }},
		{name: "vc1541.sync", data: boolByte(d.sync), keepOnReset: false, restore: func(b []byte) { d.sync = b[0] != 0 }},
		{name: "vc1541.byteReady", data: boolByte(d.byteReady), keepOnReset: false, restore: func(b []byte) { d.byteReady = b[0] != 0 }},
		{name: "vc1541.diskModified", data: boolByte(d.diskModified), keepOnReset: true, restore: func(b []byte) { d.diskModified = b[0] != 0 }},
	}
	items = append(items, prefixItems("vc1541", d.cpu.snapshotItems())...)
	items = append(items, d.via1.snapshotItems("vc1541.via1")...)
	items = append(items, d.via2.snapshotItems("vc1541.via2")...)
	return items
}

func boolByte(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}
