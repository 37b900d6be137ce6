// cmd/table.go
package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtranslate/internal/codec"
)

// tableGroups is the number of character/code column pairs
const tableGroups = 3

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the Morse code reference table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), referenceTable().View())
		return err
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}

// referenceTable lays A-M, N-Z and 0-9 out side by side
func referenceTable() table.Model {
	var letters, digits []codec.Entry
	for _, e := range codec.Entries() {
		if e.Char >= '0' && e.Char <= '9' {
			digits = append(digits, e)
		} else {
			letters = append(letters, e)
		}
	}
	half := (len(letters) + 1) / 2
	groups := [tableGroups][]codec.Entry{letters[:half], letters[half:], digits}

	columns := make([]table.Column, 0, 2*tableGroups)
	width := 0
	for range tableGroups {
		columns = append(columns,
			table.Column{Title: "Character", Width: 9},
			table.Column{Title: "Morse Code", Width: 10})
		// cells carry one space of padding each side
		width += 9 + 10 + 4
	}

	rows := make([]table.Row, half)
	for i := range rows {
		row := make(table.Row, 0, 2*tableGroups)
		for _, g := range groups {
			if i < len(g) {
				row = append(row, string(g[i].Char), g[i].Code)
			} else {
				row = append(row, "", "")
			}
		}
		rows[i] = row
	}

	// height counts the two-line header
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+2),
		table.WithWidth(width),
	)
	t.SetStyles(referenceTableStyles())
	return t
}

func referenceTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Bold(true).
		Padding(0, 1)
	styles.Cell = styles.Cell.Padding(0, 1)
	// no cursor row in static output
	styles.Selected = lipgloss.NewStyle()
	return styles
}
