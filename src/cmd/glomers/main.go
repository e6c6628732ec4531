package main

import (
	"os"

	cmd "github.com/cbhcbhcbh/dist-sys/src/cmd/glomers/command"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.VersionCmd,
		cmd.NewEchoCmd(),
		cmd.NewUniqueIDsCmd(),
		cmd.NewBroadcastCmd())

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
