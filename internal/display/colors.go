// Package display formats CLI output.
//
// Colors come from fatih/color, which already honors NO_COLOR and disables
// itself when stdout is not a terminal; InitColors adds the --no-color flag.
package display

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	mutedColor   = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
	cyanColor    = color.New(color.FgCyan)
)

// InitColors applies the --no-color flag. Call once during startup.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// ColorsEnabled returns whether colors are currently enabled.
func ColorsEnabled() bool {
	return !color.NoColor
}

// SetColorsEnabled allows manual control of color output (useful for testing).
func SetColorsEnabled(enabled bool) {
	color.NoColor = !enabled
}

// Success formats text as successful (green).
func Success(text string) string { return successColor.Sprint(text) }

// Error formats text as an error (red).
func Error(text string) string { return errorColor.Sprint(text) }

// Warning formats text as a warning (yellow).
func Warning(text string) string { return warningColor.Sprint(text) }

// Info formats text as informational (blue).
func Info(text string) string { return infoColor.Sprint(text) }

// Muted formats text as secondary (gray).
func Muted(text string) string { return mutedColor.Sprint(text) }

// Bold formats text as bold.
func Bold(text string) string { return boldColor.Sprint(text) }

// Cyan formats text in cyan (used for commands and paths).
func Cyan(text string) string { return cyanColor.Sprint(text) }

// SuccessMsg formats a success message with a checkmark.
func SuccessMsg(format string, args ...any) string {
	return fmt.Sprintf("%s %s", Success("✓"), fmt.Sprintf(format, args...))
}

// ErrorMsg formats an error message with a cross.
func ErrorMsg(format string, args ...any) string {
	return fmt.Sprintf("%s %s", Error("✗"), Error(fmt.Sprintf(format, args...)))
}

// WarningMsg formats a warning message.
func WarningMsg(format string, args ...any) string {
	return fmt.Sprintf("%s %s", Warning("⚠"), Warning(fmt.Sprintf(format, args...)))
}

// InfoMsg formats an info message with an arrow.
func InfoMsg(format string, args ...any) string {
	return fmt.Sprintf("%s %s", Info("→"), fmt.Sprintf(format, args...))
}

// ColorStatus colors a workspace status.
func ColorStatus(status string) string {
	switch status {
	case "active":
		return Success(status)
	case "unknown":
		return Warning(status)
	default:
		return status
	}
}
