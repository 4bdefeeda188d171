package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// getFlag reads an expected bool flag, exiting the process on a
// programmer error (an unregistered flag name).
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// getUint reads an expected uint flag.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// getString reads an expected string flag.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readFileOrDie reads filename's contents, failing the process with a
// diagnostic on any I/O error.
func readFileOrDie(filename string) []byte {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return bytes
}
