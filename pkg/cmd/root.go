// Package cmd assembles the hornverify CLI, in the style of
// Consensys-go-corset's pkg/cmd: one file per subcommand, a small set
// of getFlag/getUint helpers in util.go, and the command tree wired
// together in init().
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/hornverify/hornverify/pkg/hlog"
)

// Version is filled in when building with a release pipeline, but
// not when installing via "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "hornverify",
	Short: "A Constrained Horn Clause safety verifier.",
	Long:  "A Constrained Horn Clause safety verifier: decide SAFE / UNSAFE / UNKNOWN for transition systems extracted from CHC programs.",
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("hornverify ")

			switch {
			case Version != "":
				fmt.Print(Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Print(info.Main.Version)
				} else {
					fmt.Print("(unknown version)")
				}
			}

			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase logging verbosity (-v, -vv)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		hlog.SetVerbosity(verbosity)
	}
}
