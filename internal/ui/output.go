// Package ui formats engine output for a human terminal or for a
// downstream JSON consumer (spec.md §9 supplemented feature: CLI output
// modes), auto-detecting which to use from whether stdout is a TTY.
//
// Grounded on the teacher's internal/ui.Output, carried over almost
// unchanged since the concern (status/error/JSON dual-mode printing) is
// identical, plus docengine-specific renderers for sync status and doctor
// issues that the teacher had no equivalent of.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/lcgerke/docengine/internal/docsync"
	"github.com/lcgerke/docengine/internal/repohealth"
)

// Format selects how Output renders messages.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// Output handles formatted output to the user.
type Output struct {
	writer       io.Writer
	format       Format
	autoDetect   bool
	colorEnabled bool
}

// NewOutput creates an Output, auto-detecting human vs JSON from whether
// writer is a terminal.
func NewOutput(writer io.Writer) *Output {
	o := &Output{writer: writer, autoDetect: true}
	o.detectFormat()
	return o
}

func (o *Output) detectFormat() {
	if !o.autoDetect {
		return
	}

	if file, ok := o.writer.(*os.File); ok {
		fileInfo, err := file.Stat()
		if err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
			o.format = FormatHuman
			o.colorEnabled = true
		} else {
			o.format = FormatJSON
			o.colorEnabled = false
		}
	} else {
		o.format = FormatHuman
		o.colorEnabled = false
	}
}

// SetFormat manually overrides auto-detection.
func (o *Output) SetFormat(format Format) {
	o.format = format
	o.autoDetect = false
	o.colorEnabled = format == FormatHuman
}

// SetColorEnabled manually enables or disables ANSI colors.
func (o *Output) SetColorEnabled(enabled bool) {
	o.colorEnabled = enabled
}

// IsJSON reports whether the current format is JSON.
func (o *Output) IsJSON() bool {
	return o.format == FormatJSON
}

// Success prints a success message.
func (o *Output) Success(message string) {
	if o.format == FormatJSON {
		o.printJSON(map[string]interface{}{"status": "success", "message": message})
		return
	}
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s %s\n", color.GreenString("✓"), message)
	} else {
		fmt.Fprintf(o.writer, "✓ %s\n", message)
	}
}

// Error prints an error message.
func (o *Output) Error(message string) {
	if o.format == FormatJSON {
		o.printJSON(map[string]interface{}{"status": "error", "message": message})
		return
	}
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s %s\n", color.RedString("✗"), message)
	} else {
		fmt.Fprintf(o.writer, "✗ %s\n", message)
	}
}

// Warning prints a warning message.
func (o *Output) Warning(message string) {
	if o.format == FormatJSON {
		o.printJSON(map[string]interface{}{"status": "warning", "message": message})
		return
	}
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s %s\n", color.YellowString("⚠"), message)
	} else {
		fmt.Fprintf(o.writer, "⚠ %s\n", message)
	}
}

// Info prints an informational message.
func (o *Output) Info(message string) {
	if o.format == FormatJSON {
		o.printJSON(map[string]interface{}{"status": "info", "message": message})
		return
	}
	fmt.Fprintf(o.writer, "%s\n", message)
}

// Header prints a section header (human format only).
func (o *Output) Header(title string) {
	if o.format == FormatJSON {
		return
	}
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "\n%s\n", color.New(color.Bold).Sprint(title))
	} else {
		fmt.Fprintf(o.writer, "\n%s\n", title)
	}
}

// Separator prints a divider line (human format only).
func (o *Output) Separator() {
	if o.format == FormatJSON {
		return
	}
	fmt.Fprintln(o.writer, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// JSON prints data as indented JSON regardless of the current format.
func (o *Output) JSON(data interface{}) error {
	return o.printJSON(data)
}

func (o *Output) printJSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (o *Output) Infof(format string, args ...interface{})    { o.Info(fmt.Sprintf(format, args...)) }
func (o *Output) Successf(format string, args ...interface{}) { o.Success(fmt.Sprintf(format, args...)) }
func (o *Output) Errorf(format string, args ...interface{})   { o.Error(fmt.Sprintf(format, args...)) }
func (o *Output) Warningf(format string, args ...interface{}) { o.Warning(fmt.Sprintf(format, args...)) }

// SyncStatus renders a docsync.Status either as a table row or as JSON.
func (o *Output) SyncStatus(status docsync.Status) {
	if o.format == FormatJSON {
		o.printJSON(status)
		return
	}

	fmt.Fprintf(o.writer, "branch:   %s\n", status.Branch)
	fmt.Fprintf(o.writer, "upstream: %s\n", status.Upstream)
	fmt.Fprintf(o.writer, "ahead:    %d\n", status.Ahead)
	fmt.Fprintf(o.writer, "behind:   %d\n", status.Behind)
	if !status.OnDocsBranch {
		o.Warning("HEAD is not on the docs branch; sync would fail")
		return
	}
	if !status.WorkingTreeClean {
		o.Warning("working tree or index has uncommitted changes; sync would fail")
		return
	}
	if status.NeedsRebase {
		o.Warning("upstream has diverged; a rebase is required before syncing")
	} else if status.Ahead > 0 {
		o.Info("ready to push")
	} else {
		o.Success("up to date")
	}
}

// Issues renders doctor diagnostics as a list or as JSON.
func (o *Output) Issues(issues []repohealth.Issue) {
	if o.format == FormatJSON {
		o.printJSON(issues)
		return
	}

	if len(issues) == 0 {
		o.Success("no issues found")
		return
	}

	for _, issue := range issues {
		line := fmt.Sprintf("[%s] %s: %s", issue.Severity, issue.ProjectID, issue.Description)
		switch issue.Severity {
		case repohealth.SeverityHigh:
			o.Error(line)
		case repohealth.SeverityMedium:
			o.Warning(line)
		default:
			o.Info(line)
		}
	}
}
