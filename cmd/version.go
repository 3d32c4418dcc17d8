// =============================================================================
// whalewatch - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   whalewatch version [--short]
//
// Prints the release, the VCS revision the binary was built from and the Go
// toolchain. The revision comes from the build info embedded by `go build`,
// so it is available without any ldflags.
//
// OUTPUT:
//   whalewatch 0.1.0
//     commit:  3f2c1ab (modified)
//     built:   2026-10-17T09:12:44Z
//     go:      go1.24.0 linux/amd64
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is the release number. Override with
// -ldflags "-X github.com/ginjaninja78/whalewatch/cmd.Version=1.2.3".
var Version = "0.1.0"

var shortVersion bool

// buildInfo describes the running binary.
type buildInfo struct {
	Version  string
	Revision string
	Time     string
	Modified bool
	Go       string
	Platform string
}

// readBuildInfo collects what the toolchain embedded. Fields it cannot find
// are left as "unknown".
func readBuildInfo() buildInfo {
	info := buildInfo{
		Version:  Version,
		Revision: "unknown",
		Time:     "unknown",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
			if len(info.Revision) > 7 {
				info.Revision = info.Revision[:7]
			}
		case "vcs.time":
			info.Time = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

func (b buildInfo) print(w io.Writer) {
	fmt.Fprintf(w, "whalewatch %s\n", b.Version)

	commit := b.Revision
	if b.Modified {
		commit += " (modified)"
	}
	fmt.Fprintf(w, "  commit:  %s\n", commit)
	fmt.Fprintf(w, "  built:   %s\n", b.Time)
	fmt.Fprintf(w, "  go:      %s %s\n", b.Go, b.Platform)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if shortVersion {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return
		}
		readBuildInfo().print(cmd.OutOrStdout())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&shortVersion, "short", false, "print only the release number")
	rootCmd.AddCommand(versionCmd)
}
