package core

// Model identifies a VIC-II hardware variant, each with its own raster
// geometry and clock rate.
type Model int

const (
	ModelPAL Model = iota
	ModelPALR1
	ModelNTSC
	ModelNTSCOld // 6567R56A, 64 cycles/line instead of 65
)

func (m Model) String() string {
	switch m {
	case ModelPAL:
		return "PAL (6569 R3/8565)"
	case ModelPALR1:
		return "PAL (6569 R1)"
	case ModelNTSC:
		return "NTSC (6567/8562)"
	case ModelNTSCOld:
		return "NTSC (6567R56A)"
	default:
		return "unknown"
	}
}

// ModelTiming holds the per-model raster geometry.
type ModelTiming struct {
	CyclesPerLine int // 63 PAL, 64 NTSC-old, 65 NTSC
	LinesPerFrame int // 312 PAL, 263 NTSC
	CPUClockHz    int
	FPS           int
	VBlankFirst   int // first invisible raster line after the visible area
}

var palTiming = ModelTiming{
	CyclesPerLine: 63,
	LinesPerFrame: 312,
	CPUClockHz:    985248,
	FPS:           50,
	VBlankFirst:   300,
}

var ntscTiming = ModelTiming{
	CyclesPerLine: 65,
	LinesPerFrame: 263,
	CPUClockHz:    1022727,
	FPS:           60,
	VBlankFirst:   240,
}

var ntscOldTiming = ModelTiming{
	CyclesPerLine: 64,
	LinesPerFrame: 262,
	CPUClockHz:    1022727,
	FPS:           60,
	VBlankFirst:   240,
}

// TimingForModel returns the raster geometry for a VIC-II model.
// CyclesPerLine*LinesPerFrame is the exact CPU cycle count of one frame
// (19,656 PAL; 17,095 NTSC; 16,768 NTSC-old).
func TimingForModel(m Model) ModelTiming {
	switch m {
	case ModelNTSC:
		return ntscTiming
	case ModelNTSCOld:
		return ntscOldTiming
	default:
		return palTiming
	}
}

// IsPAL reports whether a model belongs to the PAL family (50Hz, 312 lines).
func (m Model) IsPAL() bool {
	return m == ModelPAL || m == ModelPALR1
}

// IsNTSC reports the complementary family.
func (m Model) IsNTSC() bool {
	return !m.IsPAL()
}
