package core

// Wavetables and ADSR rate tables for the FastSID voice path. Fixed
// package-level data; nothing here is computed at runtime.

// adsrRatePeriods converts the 4-bit attack/decay/release register value
// into the number of envelope clock cycles per step, taken from the
// published 6581/8580 datasheet timing table.
var adsrRatePeriods = [16]uint16{
	9, 32, 63, 95, 149, 220, 267, 313,
	392, 977, 1954, 3126, 3907, 11720, 19532, 31251,
}

// noiseShiftReset is the LFSR value the noise waveform generator reloads
// on every reset and while the voice's test bit is set.
const noiseShiftReset uint32 = 0x7FFFFF

// combinedWaveform approximates the pulse+triangle/sawtooth "combined
// waveform" quirk of the real 6581: selecting two waveforms at once
// lets their output stages fight, which mostly ANDs the bits. The
// coarse AND is deliberate; modeling the analog bus-fight is the
// resid-grade path, not this one.
func combinedWaveform(a, b uint16) uint16 {
	return (a & b)
}
