package core

import "testing"

func newTestSID() *FastSID {
	return NewFastSID(DefaultConfig())
}

func TestSID_FrequencyRegisterWriteLowHigh(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD400, 0x34) // voice1 freq lo
	s.Poke(0xD401, 0x12) // voice1 freq hi
	if s.voices[0].freq != 0x1234 {
		t.Errorf("expected voice0 freq 0x1234, got 0x%04X", s.voices[0].freq)
	}
}

func TestSID_GateRisingEdgeStartsAttack(t *testing.T) {
	s := newTestSID()
	s.voices[0].envPhase = adsrRelease
	s.voices[0].envValue = 0x10
	s.Poke(0xD404, 0x01) // waveform=0, gate=1
	if s.voices[0].envPhase != adsrAttack {
		t.Errorf("expected gate-on to restart attack phase, got %v", s.voices[0].envPhase)
	}
}

func TestSID_GateFallingEdgeForcesRelease(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD404, 0x01) // gate on
	s.Poke(0xD404, 0x00) // gate off
	if s.voices[0].envPhase != adsrRelease {
		t.Errorf("expected gate-off to force release phase, got %v", s.voices[0].envPhase)
	}
}

func TestSID_ADSRRegisterSplit(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD405, 0xA3) // attack=0xA, decay=0x3
	s.Poke(0xD406, 0x5C) // sustain=0x5, release=0xC
	v := &s.voices[0]
	if v.attack != 0xA || v.decay != 0x3 {
		t.Errorf("expected attack=0xA decay=0x3, got attack=%X decay=%X", v.attack, v.decay)
	}
	if v.sustain != 0x5 || v.release != 0xC {
		t.Errorf("expected sustain=0x5 release=0xC, got sustain=%X release=%X", v.sustain, v.release)
	}
}

func TestSID_FilterCutoffSplitAcrossTwoRegisters(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD415, 0x05) // low 3 bits
	s.Poke(0xD416, 0xFF) // high 8 bits
	want := uint16(0x07FD)
	if s.filterCutoff != want {
		t.Errorf("expected filterCutoff 0x%04X, got 0x%04X", want, s.filterCutoff)
	}
}

func TestSID_VolumeAndFilterModeRegister(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD418, 0x1F) // mode=0x10 (LP), volume=0xF
	if s.volume != 0x0F {
		t.Errorf("expected volume 0x0F, got 0x%02X", s.volume)
	}
	if s.filterMode != FilterLP {
		t.Errorf("expected FilterLP, got %v", s.filterMode)
	}
}

func TestSID_TestBitResetsAccumulatorAndNoise(t *testing.T) {
	s := newTestSID()
	v := &s.voices[0]
	v.accumulator = 0xABCDEF
	v.testBit = true
	v.clock(nil)
	if v.accumulator != 0 {
		t.Errorf("expected accumulator reset to 0 while test bit set, got 0x%06X", v.accumulator)
	}
	if v.noiseShift != noiseShiftReset {
		t.Errorf("expected noise shift reset while test bit set, got 0x%06X", v.noiseShift)
	}
}

func TestSID_SampleStaysWithinInt16Range(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD404, 0x11) // voice0 triangle + gate
	s.Poke(0xD418, 0x0F) // volume max, filter off
	for i := 0; i < 10000; i++ {
		s.Clock()
	}
	_ = s.Sample() // must not panic; int16 return type enforces the range
}

func TestSID_WriteOnlyRegistersReadLastBusValue(t *testing.T) {
	s := newTestSID()
	s.Poke(0xD400, 0x34)
	if got := s.Peek(0xD400); got != 0x34 {
		t.Errorf("expected bus-latch readback 0x34, got 0x%02X", got)
	}
	s.Poke(0xD412, 0x55) // any later write replaces the latch for every register
	if got := s.Peek(0xD400); got != 0x55 {
		t.Errorf("expected bus-latch readback 0x55 after a later write, got 0x%02X", got)
	}
}

func TestSID_PotRegistersReadOpenLine(t *testing.T) {
	s := newTestSID()
	if got := s.Peek(0xD419); got != 0xFF {
		t.Errorf("expected POTX to read 0xFF with no paddles, got 0x%02X", got)
	}
}

func TestSID_Voice3DisconnectBitSilencesVoice3(t *testing.T) {
	s := newTestSID()
	v := &s.voices[2]
	v.waveform = 0x02 // sawtooth
	v.accumulator = 0xF00000
	v.envValue = 0xFF

	s.Poke(0xD418, 0x0F) // full volume, filter off, voice 3 connected
	if s.Sample() == 0 {
		t.Fatal("expected non-zero output with voice 3 connected")
	}
	s.Poke(0xD418, 0x8F) // set the 3OFF bit
	if got := s.Sample(); got != 0 {
		t.Errorf("expected silence with the 3OFF bit set, got %d", got)
	}
}
