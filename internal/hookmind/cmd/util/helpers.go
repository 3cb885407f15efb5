package util

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/moby/term"
)

// CheckErr prints a user friendly error to STDERR and exits with a non-zero
// exit code.
func CheckErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
	os.Exit(1)
}

// SetupColor disables colours unless out is a terminal.
func SetupColor(out io.Writer) {
	if _, isTerminal := term.GetFdInfo(out); !isTerminal {
		color.NoColor = true
	}
}

// NewTable returns a table with the column headers in bold.
func NewTable(headers ...interface{}) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true

	bold := color.New(color.Bold)
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = bold.Sprint(h)
	}
	table.AddRow(row...)
	return table
}

// StateColor colours a plugin state for display.
func StateColor(state string) string {
	switch state {
	case "activated":
		return color.GreenString(state)
	case "deactivated":
		return color.YellowString(state)
	case "uninstalled":
		return color.RedString(state)
	default:
		return state
	}
}
