/*
PURPOSE:
  Entry point for collect-snapshot.
  Runs the launcher and exits with its exit code.

REQUIREMENTS:
  User-specified:
  - Must serve as the single binary entry point.
  - Exit code is the collector's exit code or a launcher failure code.

  Implementation-discovered:
  - Uses cobra for CLI command management.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()
  - Depends on: internal/cli package

ERROR HANDLING:
  - All reporting happens inside internal/cli; main only exits.

IMPLEMENTATION RULES:
  - Critical: Keep main() minimal. All logic belongs in internal/ packages.
  - Do not put business logic here.

USAGE:
  go build -o collect-snapshot ./cmd/collect-snapshot
  ./collect-snapshot <identifier> [--snapshot-dir DIR]

SELF-HEALING INSTRUCTIONS:
  - If CLI fails to start, check internal/cli/root.go definition.
  - If imports fail, run `go mod tidy`.

RELATED FILES:
  - internal/cli/root.go - The actual root command definition.

MAINTENANCE:
  - Update when changing the CLI framework.
*/

package main

import (
	"os"

	"github.com/daryltucker/collect-snapshot/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
