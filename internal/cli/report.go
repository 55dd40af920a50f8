package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/repair"
	"github.com/roach88/octave/internal/tools"
)

// writeErrors lists validation errors, one per line.
func writeErrors(w io.Writer, errs []diag.ValidationError) {
	for _, e := range errs {
		line := "  " + styleCode.Render(e.Code)
		if e.Path != "" {
			line += " " + e.Path
		}
		line += ": " + e.Message
		if len(e.Candidates) > 0 && e.Code != diag.ErrTypeMismatch {
			line += styleDim.Render(" (one of " + strings.Join(e.Candidates, ", ") + ")")
		}
		fmt.Fprintln(w, line)
	}
}

// writeCorrections lists the correction log. Entries that were only
// proposed are marked as suggestions.
func writeCorrections(w io.Writer, log repair.Log) {
	for _, e := range log {
		tag := strings.ToLower(string(e.Tier))
		if e.Tier == repair.TierRepair && !e.Applied {
			tag = "suggestion"
		}
		line := fmt.Sprintf("  %s %s", styleCode.Render(e.Code), styleDim.Render(tag))
		if e.Path != "" {
			line += " " + e.Path
		}
		if e.Before != "" || e.After != "" {
			line += fmt.Sprintf(": %s → %s", e.Before, e.After)
		}
		if e.Tier != repair.TierNormalization {
			line += " (" + e.Message + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// writeDiff prints a LineDiff result with colored markers.
func writeDiff(w io.Writer, diff string) {
	if diff == tools.NoChanges {
		fmt.Fprintln(w, styleDim.Render(diff))
		return
	}
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(w, styleAdded.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(w, styleRemoved.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}

// writeStages prints pipeline stage timings.
func writeStages(w io.Writer, stages []tools.Stage) {
	for _, st := range stages {
		fmt.Fprintf(w, "  %-10s %3d  %s\n", st.Name, st.Count, styleDim.Render(st.Duration.Round(time.Microsecond).String()))
	}
}
