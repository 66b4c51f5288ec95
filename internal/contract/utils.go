package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/huangsam/queuewait/schema"
)

// Color variables for console output.
var (
	ExactColor = color.New(color.FgGreen)               // ExactColor marks estimates within a few minutes.
	CloseColor = color.New(color.FgCyan)                // CloseColor marks usable estimates.
	OffColor   = color.New(color.FgYellow)              // OffColor marks estimates that need work.
	WrongColor = color.New(color.FgRed, color.Bold)     // WrongColor marks estimates off by hours.
	HeadColor  = color.New(color.FgHiWhite, color.Bold) // HeadColor is used for section titles.
)

// GetColorBand returns a colored error band label for console output (table).
// It uses schema.GetErrorBand to determine the string, and then applies the appropriate color.
func GetColorBand(diffMinutes float64) string {
	text := schema.GetErrorBand(diffMinutes)

	switch text {
	case schema.ExactBand:
		return ExactColor.Sprint(text)
	case schema.CloseBand:
		return CloseColor.Sprint(text)
	case schema.OffBand:
		return OffColor.Sprint(text)
	default:
		return WrongColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the run cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".queuewait_cache.db"
	}
	return filepath.Join(homeDir, ".queuewait_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for training history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".queuewait_history.db"
	}
	return filepath.Join(homeDir, ".queuewait_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for "..." and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
