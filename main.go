// =============================================================================
// whalewatch - Main Entry Point
// =============================================================================
//
// This is the main entry point for the whalewatch CLI application. It hands
// control to the Cobra command tree in the cmd package.
//
// USAGE:
//   whalewatch process       - Rebuild the whale list from the input directory
//   whalewatch analyze       - Look up the first whales of the whale list
//   whalewatch lookup [txid] - Look up a single transaction
//   whalewatch config        - Print the effective configuration
//   whalewatch version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (parsing, filtering, lookups, reporting)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/whalewatch/cmd"
)

func main() {
	cmd.Execute()
}
