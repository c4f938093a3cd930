package core

// ProcessorPort models the 6510's built-in I/O port at $00 (DDR) / $01
// (data), including the floating-bit discharge behavior of bits 3, 6
// and 7: an undriven bit keeps reading 1 until its charge decays.
type ProcessorPort struct {
	ddr  uint8
	data uint8

	// dischargeCycle[bit] is the cycle count at which a floating input
	// bit decays to 0, after being flipped from output to input while
	// last driven high.
	dischargeCycle [8]int64
	cycle          int64 // monotonic cycle counter, advanced by the owning CPU

	dischargePeriod int64 // model-tunable; Config.ProcessorPortBit3DischargeCycles
}

const floatingBits = uint8(0b1100_1000) // bits 3, 6, 7

func (p *ProcessorPort) reset() {
	p.ddr = 0
	p.data = 0x3F // power-on default: all known bits high
	for i := range p.dischargeCycle {
		p.dischargeCycle[i] = 0
	}
	if p.dischargePeriod == 0 {
		p.dischargePeriod = 1_000_000
	}
}

// Tick advances the port's internal cycle counter; called once per CPU
// cycle by the owning machine so discharge timers stay in the same
// clock domain as the rest of the core.
func (p *ProcessorPort) Tick() {
	p.cycle++
}

func (p *ProcessorPort) setDDR(val uint8) {
	prevDDR := p.ddr
	p.ddr = val
	p.noteDirectionChange(prevDDR)
}

func (p *ProcessorPort) setData(val uint8) {
	p.data = val
	// Any bit newly output at logic 1 resets its discharge timer; it
	// will start floating again only if later flipped back to input.
	for bit := uint(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		if floatingBits&mask == 0 {
			continue
		}
		if p.ddr&mask != 0 && val&mask != 0 {
			p.dischargeCycle[bit] = 0
		}
	}
}

// noteDirectionChange arms the discharge timer for bits that just
// transitioned from output-driven-high to input.
func (p *ProcessorPort) noteDirectionChange(prevDDR uint8) {
	for bit := uint(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		if floatingBits&mask == 0 {
			continue
		}
		wasOutput := prevDDR&mask != 0
		isInput := p.ddr&mask == 0
		if wasOutput && isInput && p.data&mask != 0 {
			p.dischargeCycle[bit] = p.cycle + p.dischargePeriod
		}
	}
}

// Read returns, per bit, the latched value for outputs and the
// discharge state for floating inputs: 1 until the decay deadline
// passes, 0 after.
func (p *ProcessorPort) Read() uint8 {
	var result uint8
	for bit := uint(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		isOutput := p.ddr&mask != 0
		if isOutput {
			if p.data&mask != 0 {
				result |= mask
			}
			continue
		}
		if floatingBits&mask != 0 {
			if p.cycle < p.dischargeCycle[bit] {
				result |= mask
			}
			continue
		}
		// Non-floating input bits read their external pull (all high
		// on real hardware absent external pull-downs).
		result |= mask
	}
	return result
}

// bankBits returns the 3-bit bank-configuration field (port data bits
// 0-2, masked through DDR so undriven bits read as 1).
func (p *ProcessorPort) bankBits() uint8 {
	return p.Read() & 0x07
}
