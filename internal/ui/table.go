package ui

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// DeploymentRow is one line of the batch summary
type DeploymentRow struct {
	Template string
	View     string
	Target   string
	Success  bool
}

// ShowDeploymentSummary prints one row per attempted view
func ShowDeploymentSummary(rows []DeploymentRow) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Template", "View", "Target", "Status"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, row := range rows {
		status := "FAILED"
		if row.Success {
			status = "DEPLOYED"
		}
		if supportsColor {
			if row.Success {
				status = color.GreenString(status)
			} else {
				status = color.RedString(status)
			}
		}

		table.Append([]string{strconv.Itoa(i + 1), row.Template, row.View, row.Target, status})
	}

	table.Render()
}
