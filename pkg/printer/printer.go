//nolint:forbidigo // Printer is used for customer friendly output to terminal
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/guumaster/logsymbols"
)

//nolint:gochecknoglobals // read only, initialize objects once for performance.
var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("251"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	itemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Out is where the Print helpers write. Tests swap it for a buffer.
var Out io.Writer = os.Stdout //nolint:gochecknoglobals // swapped in tests

// SuccessLine renders a passed-check line.
func SuccessLine(msg string) string {
	return successStyle.Render(string(logsymbols.Success)) + " " + msg
}

// ErrorLine renders a failed-check line.
func ErrorLine(msg string) string {
	return errorStyle.Render(string(logsymbols.Error)) + " " + msg
}

// WarnLine renders a non-critical warning line.
func WarnLine(msg string) string {
	return warnStyle.Render(string(logsymbols.Warn)) + " " + msg
}

// InfoLine renders an informational line.
func InfoLine(msg string) string {
	return infoStyle.Render(string(logsymbols.Info)) + " " + msg
}

// ItemLine renders a bulleted sub item.
func ItemLine(msg string) string {
	return "   " + itemStyle.Render("-") + " " + msg
}

func Errorf(format string, args ...any) {
	fmt.Fprintln(Out, ErrorLine(fmt.Sprintf(format, args...)))
}

func Infoln(msg string) {
	fmt.Fprintln(Out, msg)
}

func Headerln(msg string) {
	fmt.Fprintln(Out, headerStyle.Render(msg))
}

// Println is the default line sink of the validator and the rollback manager.
func Println(line string) {
	fmt.Fprintln(Out, line)
}
