package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/shelf/internal/config"
	"github.com/danieljhkim/shelf/internal/engine"
	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/merge"
	"github.com/danieljhkim/shelf/internal/prompt"
	"github.com/danieljhkim/shelf/internal/restore"
)

var (
	restoreForce      bool
	restoreOnConflict string
	restoreDrop       bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [ref] [paths...]",
	Short: "Restore a shelf entry into the workspace",
	Long: `Restore a shelf entry into the workspace it was captured from.

Files missing from the workspace are written and identical files are left
alone. For files that differ, --on-conflict decides what happens:

  prompt  ask for each file (default, configurable as restore.on_conflict)
  apply   overwrite with the shelved version
  keep    keep the current file
  mark    write both versions into the file with conflict markers

--force is the same as --on-conflict apply. Without a ref the newest entry
is restored; paths limit the restore to part of the entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		cwd, err := getwd()
		if err != nil {
			return err
		}

		onConflict := a.settings.Restore.OnConflict
		if cmd.Flags().Changed("on-conflict") {
			onConflict = restoreOnConflict
		}

		req := &engine.RestoreRequest{
			Ref:   refArg(args),
			CWD:   cwd,
			Force: restoreForce,
			Drop:  restoreDrop,
		}
		if len(args) > 1 {
			req.Paths = args[1:]
		}
		if !req.Force {
			req.Policy, err = newPolicy(onConflict, a.fs, a.logger)
			if err != nil {
				return err
			}
		}

		result, err := a.engine.Restore(context.Background(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(result); err != nil {
				return err
			}
		} else {
			printRestore(result)
		}

		if result.Summary.Errors > 0 {
			return fmt.Errorf("%s failed to restore", PrintCount(result.Summary.Errors, "file", "files"))
		}
		return nil
	},
}

// newPolicy maps an on-conflict setting to a restore.Policy.
func newPolicy(onConflict string, fs fsops.FS, logger zerolog.Logger) (restore.Policy, error) {
	if strings.EqualFold(strings.TrimSpace(onConflict), config.OnConflictPrompt) {
		return prompt.NewPolicy(fs, logger), nil
	}

	resolution, err := restore.ParseResolution(onConflict)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrValidation, err)
	}
	return restore.FixedPolicy{Resolution: resolution}, nil
}

func printRestore(result *engine.RestoreResult) {
	initColors()
	for _, f := range result.Files {
		_, _ = outcomeColor(f.Outcome).Printf("  %-15s ", f.Outcome)
		fmt.Print(f.Path)
		switch {
		case f.Err != nil && errors.Is(f.Err, restore.ErrSnapshotMissing):
			_, _ = dimColor.Print("  (snapshot missing)")
		case f.Error != "":
			_, _ = dimColor.Printf("  (%s)", f.Error)
		case f.Strategy == merge.StrategyJSON && len(f.ConflictPaths) > 0:
			_, _ = dimColor.Printf("  (json: %s)", strings.Join(f.ConflictPaths, ", "))
		case f.Strategy == merge.StrategyJSON:
			_, _ = dimColor.Print("  (json)")
		}
		fmt.Println()
	}

	fmt.Println()
	fmt.Println(renderSummary(result.Summary))

	if result.Dropped {
		PrintSuccess("Dropped " + result.Entry.Label)
	} else if restoreDrop {
		PrintWarning("Kept " + result.Entry.Label + ": not every file was restored cleanly")
	}
}

// renderSummary renders the one-line outcome counts.
func renderSummary(s restore.Summary) string {
	initColors()
	parts := []struct {
		label string
		count int
		clr   *color.Color
	}{
		{"restored", s.Restored, successColor},
		{"identical", s.Identical, dimColor},
		{"skipped", s.Skipped, warningColor},
		{"conflict-marked", s.ConflictMarked, warningColor},
		{"conflicts", s.Conflicts, infoColor},
		{"errors", s.Errors, errorColor},
	}

	rendered := make([]string, len(parts))
	for i, p := range parts {
		text := fmt.Sprintf("%s %d", p.label, p.count)
		if p.count > 0 {
			text = p.clr.Sprint(text)
		}
		rendered[i] = text
	}
	return strings.Join(rendered, ", ")
}

func outcomeColor(o restore.Outcome) *color.Color {
	switch o {
	case restore.OutcomeRestored:
		return successColor
	case restore.OutcomeSkipped, restore.OutcomeConflictMarked:
		return warningColor
	case restore.OutcomeError:
		return errorColor
	default:
		return dimColor
	}
}

func init() {
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "Overwrite differing files without asking")
	restoreCmd.Flags().StringVar(&restoreOnConflict, "on-conflict", config.OnConflictPrompt, "Conflict handling: prompt, apply, keep or mark")
	restoreCmd.Flags().BoolVar(&restoreDrop, "drop", false, "Delete the entry when every file was restored cleanly")
}
