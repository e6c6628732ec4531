package command

import (
	"fmt"

	"github.com/cbhcbhcbh/dist-sys/src/version"
	"github.com/spf13/cobra"
)

// VersionCmd displays the version of the binary
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}
