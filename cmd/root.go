package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/user-none/goc64/core"
)

const currentReleaseVersion = "v" + core.Version

var verbose bool

// rootCmd is the base for all commands; the CLI is a thin shell around
// core.Machine, and this file only owns flag parsing and logging setup.
var rootCmd = &cobra.Command{
	Use:   "goc64 [command]",
	Short: "goc64 is a cycle-accurate Commodore 64 emulator core",
	Long:  "goc64 runs C64 programs and disk images against a cycle-accurate VIC-II/SID/CIA/CPU core",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `goc64 help` for more information")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs goc64 according to the user's command/subcommand/flags.
func Execute() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cobra.OnInitialize(func() {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
