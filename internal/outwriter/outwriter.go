// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

// Fixed column budget of the stat tables, borders and padding included.
const (
	statBaseWidth  = 45
	modelColWidth  = 10
	minPathWidth   = 15
	maxPathWidth   = 70
	defaultTermCol = 80
)

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the number of model columns.
func GetMaxTablePathWidth(cfg *contract.Config, modelColumns int) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = defaultTermCol
		} else {
			termWidth = detectedWidth
		}
	}

	available := termWidth - statBaseWidth - modelColumns*modelColWidth
	return max(minPathWidth, min(available, maxPathWidth))
}

// bandLabel returns the error band of a difference, colored when enabled.
func bandLabel(cfg *contract.Config, diffMinutes float64) string {
	if cfg.UseColors {
		return contract.GetColorBand(diffMinutes)
	}
	return schema.GetErrorBand(diffMinutes)
}
