package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/shelf/internal/engine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [ref]",
	Short: "Check captured files against their recorded checksums",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		result, err := a.engine.Verify(refArg(args))
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(result); err != nil {
				return err
			}
		} else {
			printVerify(result)
		}

		if !result.OK() {
			return fmt.Errorf("%w: shelf %s failed verification", engine.ErrValidation, result.Entry.Label)
		}
		return nil
	},
}

func printVerify(result *engine.VerifyResult) {
	initColors()
	for _, f := range result.Files {
		if f.OK {
			_, _ = successColor.Printf("  ✓ ")
			fmt.Println(f.Path)
			continue
		}
		_, _ = errorColor.Printf("  ✗ ")
		reason := f.Error
		if reason == "" {
			reason = "checksum mismatch"
		}
		fmt.Printf("%s ", f.Path)
		_, _ = dimColor.Printf("(%s)\n", reason)
	}
}
