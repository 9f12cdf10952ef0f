package ui

import (
	"github.com/pterm/pterm"
)

// Table renders rows below a header line on the console
func Table(header []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	outputMutex.Lock()
	defer outputMutex.Unlock()

	if clearneeded {
		pterm.Fprinto(console)
		clearneeded = false
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(console).WithData(data).Render()
}
