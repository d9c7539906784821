package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/shelf/internal/engine"
	"github.com/danieljhkim/shelf/internal/prompt"
)

var (
	diffStat       bool
	diffNameStatus bool
)

var diffCmd = &cobra.Command{
	Use:   "diff [ref] [paths...]",
	Short: "Compare a shelf entry with the workspace",
	Long: `Compare a shelf entry with the workspace.

Lines prefixed with - are in the workspace only; lines prefixed with + are in
the shelf only and would come back on restore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		cwd, err := getwd()
		if err != nil {
			return err
		}

		req := &engine.DiffRequest{
			Ref:         refArg(args),
			CWD:         cwd,
			ShowContent: !diffStat && !diffNameStatus,
		}
		if len(args) > 1 {
			req.Paths = args[1:]
		}

		result, err := a.engine.Diff(context.Background(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if diffNameStatus {
			return formatNameStatus(result)
		}
		return formatDefaultDiff(result)
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffStat, "stat", false, "Show only per-file line counts")
	diffCmd.Flags().BoolVar(&diffNameStatus, "name-status", false, "Show file names with status")
}

// formatNameStatus outputs filenames with status indicators.
func formatNameStatus(result *engine.DiffResult) error {
	for _, file := range changedFiles(result) {
		statusChar := getStatusChar(file.Status)
		_, _ = statusColor(file.Status).Printf("%s\t%s\n", statusChar, file.Path)
	}
	return nil
}

// formatDefaultDiff outputs each differing file with its lines plus a change summary.
func formatDefaultDiff(result *engine.DiffResult) error {
	initColors()

	files := changedFiles(result)
	if len(files) == 0 {
		PrintEmptyState("No changes detected")
		return nil
	}

	fmt.Println()
	_, _ = dimColor.Printf("  shelf: ")
	_, _ = infoColor.Printf("%s", result.Entry.Label)
	_, _ = dimColor.Printf("  workspace: ")
	_, _ = infoColor.Printf("%s\n", result.Entry.WorkspaceRoot)

	insertions := 0
	deletions := 0

	for _, file := range files {
		fmt.Println()
		printDiffFileHeader(file)

		if len(file.Segments) > 0 {
			for _, line := range strings.Split(prompt.RenderDiff(file.Segments, diffStyles()), "\n") {
				fmt.Printf("  %s\n", line)
			}
		}

		insertions += file.Added
		deletions += file.Removed
	}

	fmt.Println()
	_, _ = dimColor.Print("  ")
	fmt.Printf("%d file%s differ", len(files), plural(len(files)))
	if insertions > 0 {
		_, _ = successColor.Printf(", %d insertion%s(+)", insertions, plural(insertions))
	}
	if deletions > 0 {
		_, _ = errorColor.Printf(", %d deletion%s(-)", deletions, plural(deletions))
	}
	fmt.Println()

	return nil
}

// diffStyles follows the fatih/color switch so piped output stays plain.
func diffStyles() prompt.Styles {
	if colorDisabled() {
		return prompt.PlainStyles()
	}
	return prompt.DefaultStyles()
}

func changedFiles(result *engine.DiffResult) []engine.DiffFileInfo {
	files := make([]engine.DiffFileInfo, 0, len(result.Files))
	for _, file := range result.Files {
		if file.Status != engine.DiffIdentical {
			files = append(files, file)
		}
	}
	return files
}

// getStatusChar returns the single-character status indicator.
func getStatusChar(status engine.DiffStatus) string {
	switch status {
	case engine.DiffModified:
		return "M"
	case engine.DiffMissing:
		return "A"
	case engine.DiffSnapshotMissing:
		return "!"
	case engine.DiffIdentical:
		return "U"
	default:
		return "?"
	}
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func printDiffFileHeader(file engine.DiffFileInfo) {
	_, _ = statusColor(file.Status).Printf("  %s ", getStatusChar(file.Status))
	_, _ = headerColor.Printf("%s", file.Path)

	if file.Added > 0 {
		_, _ = successColor.Printf("  +%d", file.Added)
	}
	if file.Removed > 0 {
		_, _ = errorColor.Printf("  -%d", file.Removed)
	}
	switch file.Status {
	case engine.DiffMissing:
		_, _ = dimColor.Print("  (not in workspace)")
	case engine.DiffSnapshotMissing:
		_, _ = dimColor.Print("  (snapshot missing)")
	case engine.DiffError:
		_, _ = dimColor.Printf("  (%s)", file.Error)
	}
	fmt.Println()

	_, _ = dimColor.Println("  " + strings.Repeat("─", 50))
}

func statusColor(status engine.DiffStatus) *color.Color {
	switch status {
	case engine.DiffMissing:
		return successColor
	case engine.DiffSnapshotMissing, engine.DiffError:
		return errorColor
	case engine.DiffModified:
		return warningColor
	default:
		return dimColor
	}
}
