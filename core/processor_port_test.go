package core

import "testing"

func TestProcessorPort_DefaultsBankBitsReadHigh(t *testing.T) {
	var p ProcessorPort
	p.reset()
	if p.Read()&0x07 != 0x07 {
		t.Errorf("expected default bank bits 111, got %03b", p.Read()&0x07)
	}
}

func TestProcessorPort_BankBitsReflectData(t *testing.T) {
	var p ProcessorPort
	p.reset()
	p.setDDR(0x07)  // bits 0-2 output
	p.setData(0x05) // LORAM=1, HIRAM=0, CHAREN=1
	if got := p.bankBits(); got != 0x05 {
		t.Errorf("bankBits: expected 0x05, got 0x%02X", got)
	}
}

func TestProcessorPort_FloatingBitDischarges(t *testing.T) {
	var p ProcessorPort
	p.dischargePeriod = 10
	p.reset()

	p.setDDR(0xFF) // bit 3 driven as output
	p.setData(0xFF)
	p.setDDR(0x07) // bit 3 now input; was driven high, so it starts floating

	if p.Read()&0x08 == 0 {
		t.Fatal("expected bit 3 to still read high immediately after floating")
	}

	for i := 0; i < 20; i++ {
		p.Tick()
	}

	if p.Read()&0x08 != 0 {
		t.Error("expected bit 3 to have discharged to 0 after dischargePeriod cycles")
	}
}

func TestProcessorPort_OutputBitsNeverDischarge(t *testing.T) {
	var p ProcessorPort
	p.dischargePeriod = 1
	p.reset()
	p.setDDR(0xFF)
	p.setData(0xFF)

	for i := 0; i < 100; i++ {
		p.Tick()
	}

	if p.Read()&0x08 == 0 {
		t.Error("output-driven bit 3 should never discharge")
	}
}
