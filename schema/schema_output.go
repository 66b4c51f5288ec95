package schema

import "math"

// Error band labels for estimate differences.
const (
	ExactBand = "Exact"
	CloseBand = "Close"
	OffBand   = "Off"
	WrongBand = "Wrong"
)

// GetErrorBand returns a plain label for how far an estimate was from the real
// wait, given the signed difference in minutes.
func GetErrorBand(diffMinutes float64) string {
	d := math.Abs(diffMinutes)
	switch {
	case d < 5:
		return ExactBand
	case d < 30:
		return CloseBand
	case d < 120:
		return OffBand
	default:
		return WrongBand
	}
}
