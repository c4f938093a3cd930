package core

import (
	"github.com/beevik/go6502/cpu"
)

// cpuBusAdapter satisfies the go6502 cpu.Memory contract by delegating
// to the machine's shared Bus.
type cpuBusAdapter struct {
	bus Bus
}

func (a *cpuBusAdapter) LoadByte(addr uint16) byte        { return a.bus.Peek(addr) }
func (a *cpuBusAdapter) StoreByte(addr uint16, b byte)    { a.bus.Poke(addr, b) }
func (a *cpuBusAdapter) LoadBytes(addr uint16, b []byte) {
	for i := range b {
		b[i] = a.bus.Peek(addr + uint16(i))
	}
}
func (a *cpuBusAdapter) StoreBytes(addr uint16, b []byte) {
	for i, v := range b {
		a.bus.Poke(addr+uint16(i), v)
	}
}
func (a *cpuBusAdapter) LoadAddress(addr uint16) uint16 {
	lo := a.bus.Peek(addr)
	hi := a.bus.Peek(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// CycleCPU wraps a go6502 NMOS 6502 core (the 6510 is a 6502 plus the
// on-die I/O port, handled separately by Memory/ProcessorPort) and adds
// cycle accounting, BA-stall accounting, and edge-triggered NMI
// latching. The underlying library executes one instruction per Step();
// elapsed cycles and interrupt edges are tracked around it rather than
// forking the library.
type CycleCPU struct {
	cpu *cpu.CPU
	bus *cpuBusAdapter

	irqLine bool // level-triggered, wire-OR'd by the machine before SetIRQLine
	nmiLine bool // last-seen level, for edge detection
	nmiPend bool // latched falling-edge NMI awaiting acknowledgement

	baStallCycles int // idle cycles to burn before the next real Step()
}

// NewCycleCPU constructs the 6510 CPU wrapper over the given bus.
func NewCycleCPU(bus Bus) *CycleCPU {
	adapter := &cpuBusAdapter{bus: bus}
	c := &CycleCPU{
		cpu: cpu.NewCPU(cpu.NMOS, adapter),
		bus: adapter,
	}
	return c
}

// Reset performs the 6502 reset sequence (loads PC from $FFFC/$FFFD).
func (c *CycleCPU) Reset() {
	c.cpu.Reset()
	c.irqLine = false
	c.nmiLine = false
	c.nmiPend = false
	c.baStallCycles = 0
}

// SetIRQLine sets the level-triggered IRQ input. The caller (Machine)
// is responsible for wire-OR'ing the VIC-II and CIA1 sources first.
func (c *CycleCPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
	c.cpu.Reg.IRQ = asserted
}

// SetNMILine sets the wire-OR'd NMI input and latches a pending NMI on
// the falling edge (asserted going from false to true, the line being
// pulled low); the pending NMI is consumed when the CPU acknowledges it.
func (c *CycleCPU) SetNMILine(asserted bool) {
	if !c.nmiLine && asserted {
		c.nmiPend = true
	}
	c.nmiLine = asserted
}

// RaiseBA requests the CPU stall the given number of cycles; requests do
// not accumulate, the larger one wins. On the real chip the VIC pulls BA
// low three cycles before it needs the bus and the CPU stalls only on a
// read. The CPU core here is stepped at instruction granularity, so the
// stall is accounted at the next instruction boundary rather than
// mid-instruction, and it is taken whether that instruction reads or
// writes.
func (c *CycleCPU) RaiseBA(cycles int) {
	if cycles > c.baStallCycles {
		c.baStallCycles = cycles
	}
}

// Step executes one instruction (or burns one stall cycle) and returns
// the number of CPU cycles consumed.
func (c *CycleCPU) Step() int {
	if c.baStallCycles > 0 {
		c.baStallCycles--
		return 1
	}

	if c.nmiPend {
		c.nmiPend = false
		c.cpu.Reg.NMI = true
	}

	before := c.cpu.Cycles
	c.cpu.Step()
	after := c.cpu.Cycles
	delta := int(after - before)
	if delta <= 0 {
		delta = 2
	}
	return delta
}

// PC, A, X, Y, SP expose register state for debugging and tests.
func (c *CycleCPU) PC() uint16 { return c.cpu.Reg.PC }
func (c *CycleCPU) A() uint8   { return c.cpu.Reg.A }
func (c *CycleCPU) X() uint8   { return c.cpu.Reg.X }
func (c *CycleCPU) Y() uint8   { return c.cpu.Reg.Y }
func (c *CycleCPU) SP() uint8  { return c.cpu.Reg.SP }

func (c *CycleCPU) snapshotItems() []snapshotItem {
	pc := make([]byte, 2)
	pc[0] = uint8(c.cpu.Reg.PC)
	pc[1] = uint8(c.cpu.Reg.PC >> 8)
	return []snapshotItem{
		{name: "cpu.PC", data: pc, width: 2, keepOnReset: false, restore: func(d []byte) {
			c.cpu.Reg.PC = uint16(d[0]) | uint16(d[1])<<8
		}},
		{name: "cpu.A", data: []byte{c.cpu.Reg.A}, keepOnReset: false, restore: func(d []byte) { c.cpu.Reg.A = d[0] }},
		{name: "cpu.X", data: []byte{c.cpu.Reg.X}, keepOnReset: false, restore: func(d []byte) { c.cpu.Reg.X = d[0] }},
		{name: "cpu.Y", data: []byte{c.cpu.Reg.Y}, keepOnReset: false, restore: func(d []byte) { c.cpu.Reg.Y = d[0] }},
		{name: "cpu.SP", data: []byte{c.cpu.Reg.SP}, keepOnReset: false, restore: func(d []byte) { c.cpu.Reg.SP = d[0] }},
	}
}
