//go:build !libretro

package cli

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/user-none/goc64/core"
)

// SystemInfo is the static metadata a frontend needs before it has a
// running machine: naming, window geometry, accepted file extensions,
// audio rate.
type SystemInfo struct {
	Name             string
	ConsoleName      string
	Extensions       []string
	ScreenWidth      int
	MaxScreenHeight  int
	PixelAspectRatio float64
	SampleRate       int
	CoreVersion      string
}

// CoreFactory is the seam between an app harness and the machine it
// hosts: system metadata, construction, and best-effort model detection.
// The adapter package provides the implementation; nothing in this
// package constructs a core.Machine except through it, so the windowed
// loop below stays ignorant of what it is running.
type CoreFactory interface {
	SystemInfo() SystemInfo
	CreateMachine(roms core.RomImages, cfg core.Config) (*core.Machine, error)

	// DetectModel reports the video timing implied by a ROM set, with the
	// bool indicating whether detection succeeded; on false the caller's
	// configured default stands.
	DetectModel(roms core.RomImages) (core.Model, bool)
}

// RunDirect boots a machine from the factory and runs the windowed loop
// until the window closes. region selects the video timing ("auto"
// defers to the factory's DetectModel); options carries string-keyed
// tunables ("sid-revision").
func RunDirect(factory CoreFactory, roms core.RomImages, region string, options map[string]string) error {
	cfg := core.DefaultConfig()

	switch region {
	case "", "auto":
		if model, ok := factory.DetectModel(roms); ok {
			if err := cfg.SetModel(model); err != nil {
				return err
			}
		}
	case "pal":
		cfg.Model = core.ModelPAL
	case "pal-r1":
		cfg.Model = core.ModelPALR1
	case "ntsc":
		cfg.Model = core.ModelNTSC
	case "ntsc-old":
		cfg.Model = core.ModelNTSCOld
	default:
		return fmt.Errorf("cli: unknown region %q", region)
	}

	switch options["sid-revision"] {
	case "", "6581":
		cfg.SIDRevision = core.SIDRevision6581
	case "8580":
		cfg.SIDRevision = core.SIDRevision8580
	default:
		return fmt.Errorf("cli: unknown SID revision %q", options["sid-revision"])
	}

	machine, err := factory.CreateMachine(roms, cfg)
	if err != nil {
		return err
	}

	info := factory.SystemInfo()
	ebiten.SetWindowTitle(info.Name)
	ebiten.SetWindowSize(info.ScreenWidth, info.MaxScreenHeight)
	return ebiten.RunGame(NewRunner(machine))
}
