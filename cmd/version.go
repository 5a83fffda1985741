// =============================================================================
// FRSC Operations E-Dashboard - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   edash version
//
// OUTPUT:
//   FRSC Operations E-Dashboard v1.2.0
//   Revision:   3f2c1ab (2024-05-01T08:00:00Z, modified)
//   Go Version: go1.24.11
//   Store:      sqlite data/edash.db
//
// The version and revision come from the module build information embedded
// by the Go toolchain. A release build may still pin the version with
//   go build -ldflags "-X 'github.com/frsc-ops/edashboard/cmd.Version=v1.2.0'"
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/frsc-ops/edashboard/internal/config"
)

// Version overrides the module version reported by the build information.
var Version = ""

// shortRevision is how many characters of the commit hash are shown.
const shortRevision = 7

// buildInfo is what the version command reports about the binary.
type buildInfo struct {
	Version      string
	Revision     string
	RevisionTime string
	Modified     bool
	GoVersion    string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the build and store information",
	Long: `Display the module version, the VCS revision the binary was built from,
the Go version and the store the configuration selects.`,
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout(), readBuildInfo(debug.ReadBuildInfo), mainConfig.Store)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// readBuildInfo collects the version fields from read, which is
// debug.ReadBuildInfo outside of tests.
func readBuildInfo(read func() (*debug.BuildInfo, bool)) buildInfo {
	info := buildInfo{Version: "(devel)", GoVersion: "unknown"}
	if bi, ok := read(); ok {
		info.GoVersion = bi.GoVersion
		if bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Revision = s.Value
			case "vcs.time":
				info.RevisionTime = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if Version != "" {
		info.Version = Version
	}
	if len(info.Revision) > shortRevision {
		info.Revision = info.Revision[:shortRevision]
	}
	return info
}

func writeVersion(w io.Writer, info buildInfo, store config.StoreConfig) {
	fmt.Fprintf(w, "FRSC Operations E-Dashboard %s\n", info.Version)

	revision := "unknown"
	if info.Revision != "" {
		revision = info.Revision
		detail := info.RevisionTime
		if info.Modified {
			if detail != "" {
				detail += ", "
			}
			detail += "modified"
		}
		if detail != "" {
			revision += " (" + detail + ")"
		}
	}
	fmt.Fprintf(w, "Revision:   %s\n", revision)
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)

	if store.Driver == config.DriverMemory || store.Path == "" {
		fmt.Fprintf(w, "Store:      %s\n", store.Driver)
		return
	}
	fmt.Fprintf(w, "Store:      %s %s\n", store.Driver, store.Path)
}
