// Command echo runs an echo node. It takes no subcommand since the harness
// starts node binaries without arguments.
package main

import (
	"os"

	cmd "github.com/cbhcbhcbh/dist-sys/src/cmd/glomers/command"
)

func main() {
	rootCmd := cmd.NewEchoCmd()

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
