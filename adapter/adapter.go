// Package adapter implements cli.CoreFactory for the C64 core: the glue
// an app harness drives the emulator through without knowing which
// machine it is hosting.
package adapter

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/user-none/goc64/cli"
	"github.com/user-none/goc64/core"
)

// Compile-time interface check.
var _ cli.CoreFactory = (*Factory)(nil)

// Factory implements cli.CoreFactory for the C64 emulator.
type Factory struct{}

// SystemInfo returns system metadata for frontend configuration.
func (f *Factory) SystemInfo() cli.SystemInfo {
	timing := core.TimingForModel(core.ModelPAL)
	return cli.SystemInfo{
		Name:            core.Name,
		ConsoleName:     "Commodore 64",
		Extensions:      []string{".d64", ".g64", ".t64", ".crt", ".prg"},
		ScreenWidth:     timing.CyclesPerLine * 8,
		MaxScreenHeight: timing.LinesPerFrame,
		// PAL C64 pixels are slightly narrow: the VIC-II's 7.882 MHz dot
		// clock against PAL's 52us active line time works out to roughly
		// 0.94 width per square-pixel unit.
		PixelAspectRatio: 0.9365,
		SampleRate:       44100,
		CoreVersion:      core.Version,
	}
}

// CreateMachine builds a machine from a validated ROM set. The C64 boots
// from four separate ROM images rather than a single cartridge file, so
// the factory takes the whole set and rejects wrong-sized images before
// any component is constructed.
func (f *Factory) CreateMachine(roms core.RomImages, cfg core.Config) (*core.Machine, error) {
	if err := validateROMSet(roms); err != nil {
		return nil, err
	}
	return core.NewMachine(cfg, roms, log.Logger), nil
}

// DetectModel reports whether the video timing can be inferred from the
// ROM set. It cannot: a C64's region lives in the VIC chip and the board
// crystal, not in software (the same KERNAL image ships on PAL and NTSC
// boards), so this always defers to the caller's configured default.
func (f *Factory) DetectModel(core.RomImages) (core.Model, bool) {
	return core.ModelPAL, false
}

func validateROMSet(roms core.RomImages) error {
	checks := []struct {
		name string
		data []byte
		want int
	}{
		{"basic", roms.Basic, 0x2000},
		{"kernal", roms.Kernal, 0x2000},
		{"char", roms.Char, 0x1000},
		{"1541", roms.Drive1541, 0x4000},
	}
	for _, c := range checks {
		if len(c.data) != c.want {
			return fmt.Errorf("adapter: %s rom: expected %d bytes, got %d", c.name, c.want, len(c.data))
		}
	}
	return nil
}
