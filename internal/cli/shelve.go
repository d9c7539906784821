package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/shelf/internal/engine"
	"github.com/danieljhkim/shelf/internal/prompt"
)

var (
	shelveName        string
	shelveInclude     []string
	shelveExclude     []string
	shelveInteractive bool
)

var shelveCmd = &cobra.Command{
	Use:   "shelve [paths...]",
	Short: "Capture files into a new shelf entry",
	Long: `Capture files into a new shelf entry.

Without paths, every file git reports as modified, added or untracked is
captured. Deleted files are skipped. Directories are captured recursively.

Examples:
  shelf shelve
  shelf shelve -n experiment src/ config.json
  shelf shelve --include '*.json' --exclude 'fixtures/**'
  shelf shelve -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		cwd, err := getwd()
		if err != nil {
			return err
		}

		ctx := context.Background()
		req := &engine.ShelveRequest{
			CWD:     cwd,
			Paths:   args,
			Name:    shelveName,
			Include: shelveInclude,
			Exclude: shelveExclude,
		}

		if shelveInteractive {
			err = pickShelveFiles(ctx, a.engine, req)
		}

		var result *engine.ShelveResult
		if err == nil {
			result, err = a.engine.Shelve(ctx, req)
		}
		switch {
		case errors.Is(err, engine.ErrNothingToShelve) && !jsonOutput:
			PrintWarning("Nothing to shelve")
			return nil
		case errors.Is(err, prompt.ErrCanceled):
			PrintWarning("Canceled")
			return nil
		case err != nil:
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSuccess(fmt.Sprintf("Shelved %s as %s", PrintCount(result.Entry.FileCount, "file", "files"), result.Entry.Label))
		PrintLabelValue("ID", result.Entry.ID)
		if len(result.Skipped) > 0 {
			PrintSubsection("Skipped:")
			items := make([]string, len(result.Skipped))
			for i, s := range result.Skipped {
				items[i] = fmt.Sprintf("%s (%s)", s.Path, s.Reason)
			}
			PrintList(items, 2)
		}
		return nil
	},
}

// pickShelveFiles lets the user narrow the candidates, then pins req to the
// chosen files.
func pickShelveFiles(ctx context.Context, eng *engine.Engine, req *engine.ShelveRequest) error {
	candidates, err := eng.Candidates(ctx, req)
	if err != nil {
		return err
	}
	if len(candidates.Files) == 0 {
		return engine.ErrNothingToShelve
	}

	selected, err := prompt.SelectFiles(ctx, "Select files to shelve:", candidates.Paths())
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return engine.ErrNothingToShelve
	}

	// Selected paths are root-relative; resolve them from the root.
	req.CWD = candidates.WorkspaceRoot
	req.Paths = selected
	req.Include = nil
	req.Exclude = nil
	return nil
}

func init() {
	shelveCmd.Flags().StringVarP(&shelveName, "name", "n", "", "Name for the new entry")
	shelveCmd.Flags().StringSliceVar(&shelveInclude, "include", nil, "Only shelve files matching these globs")
	shelveCmd.Flags().StringSliceVar(&shelveExclude, "exclude", nil, "Skip files matching these globs")
	shelveCmd.Flags().BoolVarP(&shelveInteractive, "interactive", "i", false, "Choose files interactively")
}
