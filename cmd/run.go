package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/user-none/goc64/adapter"
	"github.com/user-none/goc64/cli"
	"github.com/user-none/goc64/core"
	"github.com/user-none/goc64/diskimage"
)

var (
	flagBasic     string
	flagKernal    string
	flagChar      string
	flagDrive1541 string
	flagDisk      string
	flagCartridge string
	flagRegion    string
	flagSID       string
)

var runCmd = &cobra.Command{
	Use:   "run [disk-or-program-image]",
	Short: "boot the emulator, optionally with a disk image inserted",
	Args:  cobra.MaximumNArgs(1),
	Run:   runEmulator,
}

func init() {
	runCmd.Flags().StringVar(&flagBasic, "basic-rom", "roms/basic.901226-01.bin", "path to the BASIC ROM image")
	runCmd.Flags().StringVar(&flagKernal, "kernal-rom", "roms/kernal.901227-03.bin", "path to the KERNAL ROM image")
	runCmd.Flags().StringVar(&flagChar, "char-rom", "roms/characters.901225-01.bin", "path to the character ROM image")
	runCmd.Flags().StringVar(&flagDrive1541, "drive-rom", "roms/dos1541.251968-03.bin", "path to the 1541 DOS ROM image")
	runCmd.Flags().StringVar(&flagCartridge, "cartridge", "", "path to a cartridge (.crt) image")
	runCmd.Flags().StringVar(&flagRegion, "region", "auto", "video timing: auto, pal, pal-r1, ntsc, or ntsc-old")
	runCmd.Flags().StringVar(&flagSID, "sid-revision", "6581", "SID revision: 6581 or 8580")
}

func runEmulator(cmd *cobra.Command, args []string) {
	roms, err := loadROMs()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load ROM set")
	}

	if flagCartridge != "" {
		log.Warn().Msg("cartridge loading from .crt container format is not implemented by this build; pass a GenericRAM image via the API instead")
	}

	if len(args) == 1 {
		flagDisk = args[0]
	}
	if flagDisk != "" {
		data, name, err := diskimage.LoadImage(flagDisk)
		if err != nil {
			log.Fatal().Err(err).Str("path", flagDisk).Msg("failed to load disk image")
		}
		// TODO: wire a D64-to-GCR encoder so the extracted bytes can be
		// handed to Machine.LoadDisk; until then the image is unpacked
		// but not inserted.
		log.Warn().Str("name", name).Int("bytes", len(data)).Msg("disk image extracted but not inserted: no D64-to-GCR encoder in this build")
	}

	factory := &adapter.Factory{}
	options := map[string]string{"sid-revision": flagSID}

	if err := cli.RunDirect(factory, roms, flagRegion, options); err != nil {
		log.Fatal().Err(err).Msg("emulation loop exited with an error")
	}
}

func loadROMs() (core.RomImages, error) {
	basic, err := os.ReadFile(flagBasic)
	if err != nil {
		return core.RomImages{}, fmt.Errorf("basic rom: %w", err)
	}
	kernal, err := os.ReadFile(flagKernal)
	if err != nil {
		return core.RomImages{}, fmt.Errorf("kernal rom: %w", err)
	}
	char, err := os.ReadFile(flagChar)
	if err != nil {
		return core.RomImages{}, fmt.Errorf("char rom: %w", err)
	}
	drive, err := os.ReadFile(flagDrive1541)
	if err != nil {
		return core.RomImages{}, fmt.Errorf("1541 rom: %w", err)
	}
	return core.RomImages{Basic: basic, Kernal: kernal, Char: char, Drive1541: drive}, nil
}
