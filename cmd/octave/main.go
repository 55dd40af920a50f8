// Octave reads, validates, repairs and writes OCTAVE documents.
//
// Usage:
//
//	# Normalize lenient text to canonical form
//	octave ingest notes.oct.md
//
//	# Validate every document under a directory
//	octave validate ./docs
//
//	# Write a document, applying safe repairs
//	octave create docs/status.oct.md draft.txt --fix
//
//	# Change one field, guarded by the current hash
//	octave amend docs/status.oct.md --set STATUS=DONE --base-hash <hash>
//
//	# Re-validate as files change
//	octave watch ./docs
package main

import (
	"fmt"
	"os"

	"github.com/roach88/octave/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
