package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [ref]",
	Short: "Show the files of a shelf entry",
	Long: `Show the files of a shelf entry and where their captured bytes are stored.

A ref is an entry ID, a unique ID prefix, or an entry name. Without a ref
the newest entry is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		result, err := a.engine.Show(refArg(args))
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSection("Shelf " + result.Entry.Label)
		PrintLabelValue("ID", result.Entry.ID)
		if result.Entry.Name != "" {
			PrintLabelValue("Name", result.Entry.Name)
		}
		PrintLabelValue("Created", result.Entry.CreatedAt.Local().Format(time.DateTime))
		PrintLabelValue("Workspace", result.Entry.WorkspaceRoot)
		PrintLabelValue("Files", PrintCount(len(result.Files), "file", "files"))
		if len(result.Files) > 0 {
			items := make([]string, len(result.Files))
			for i, f := range result.Files {
				items[i] = f.Path
			}
			PrintList(items, 2)
		}
		return nil
	},
}

// refArg returns the optional entry reference argument.
func refArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
