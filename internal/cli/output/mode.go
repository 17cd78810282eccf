// Package output renders command results for humans and machines.
//
// Text mode is styled with lipgloss and meant for terminals. Markdown mode is
// the default when stdout is not a terminal, so piped output stays readable
// for both people and agents. JSON mode emits a single document per command.
package output

import "fmt"

// OutputMode selects how results are rendered.
type OutputMode string //nolint:revive // output.OutputMode reads better at call sites than output.Mode

// Mode is shorthand for OutputMode.
type Mode = OutputMode

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// ParseMode validates a mode name. The empty string means auto.
func ParseMode(s string) (OutputMode, error) {
	switch OutputMode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText, ModeMarkdown, ModeJSON:
		return OutputMode(s), nil
	case "md":
		return ModeMarkdown, nil
	}
	return "", fmt.Errorf("invalid output mode %q (expected auto, text, markdown or json)", s)
}
