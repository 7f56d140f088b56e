package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// set by -ldflags at build time
var (
	buildVersion = ""
	commitHash   = ""
	buildDate    = ""
)

type versionCmd struct {
	BaseCmd
}

func GetVersionCmd() *versionCmd {
	versionCmdIns := new(versionCmd)

	versionCmdIns.cmd = &cobra.Command{
		Use:     "version",
		Short:   "View process version information.",
		Example: "xengine version",
		Run: func(cmd *cobra.Command, args []string) {
			Version()
		},
	}

	return versionCmdIns
}

func Version() {
	fmt.Printf("xengine %s-%s %s %s\n", buildVersion, commitHash, buildDate, runtime.Version())
}
