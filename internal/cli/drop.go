package cli

import (
	"github.com/spf13/cobra"
)

var dropCmd = &cobra.Command{
	Use:   "drop <ref>",
	Short: "Delete a shelf entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		result, err := a.engine.Drop(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSuccess("Dropped " + result.Entry.Label)
		return nil
	},
}
