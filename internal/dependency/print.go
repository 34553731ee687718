package dependency

import (
	"github.com/chatia/deploykit/pkg/printer"
)

// PrintStatus returns the status list and the help text of the missing dependencies.
func PrintStatus(depStatus []Status) (string, string) {
	var depList string
	var help string
	for _, dep := range depStatus {
		if dep.IsInstalled {
			depList += printer.SuccessLine(dep.Name) + "\n"
		} else {
			depList += printer.ErrorLine(dep.Name) + "\n"
			help += dep.Help + "\n\n"
		}
	}
	return depList, help
}
