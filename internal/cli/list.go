package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List shelf entries, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		entries, err := a.engine.List()
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(entries)
		}

		if len(entries) == 0 {
			PrintEmptyState("No shelf entries")
			return nil
		}

		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				e.ID[:min(len(e.ID), 8)],
				e.Name,
				e.CreatedAt.Local().Format(time.DateTime),
				strconv.Itoa(e.FileCount),
				e.WorkspaceRoot,
			}
		}
		PrintTable([]string{"ID", "NAME", "CREATED", "FILES", "WORKSPACE"}, rows)
		return nil
	},
}
