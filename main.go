// =============================================================================
// FRSC Operations E-Dashboard - Main Entry Point
// =============================================================================
//
// USAGE:
//   edash serve     - Start the dashboard HTTP API
//   edash export    - Export stored reports to files
//   edash catalog   - Print the effective catalogs
//   edash version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Form state, validation, storage, export, HTTP server
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/frsc-ops/edashboard/cmd"
)

func main() {
	cmd.Execute()
}
