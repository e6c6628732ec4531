package command

import (
	"io"
	"os"

	"github.com/cbhcbhcbh/dist-sys/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()

	// stdin and stdout carry the protocol. Nothing else may write to stdout.
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// RootCmd is the root command of the glomers binary, which bundles every
// workload as a subcommand.
var RootCmd = &cobra.Command{
	Use:              "glomers",
	Short:            "Distributed systems workloads over stdin/stdout",
	TraverseChildren: true,
}
