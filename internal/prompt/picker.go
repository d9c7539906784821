package prompt

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrCanceled indicates the user dismissed a prompt.
var ErrCanceled = errors.New("prompt canceled")

// SelectFiles asks the user to pick a subset of files. All files start
// selected.
func SelectFiles(ctx context.Context, title string, files []string) ([]string, error) {
	selected := append([]string(nil), files...)
	options := make([]huh.Option[string], 0, len(files))
	for _, file := range files {
		options = append(options, huh.NewOption(file, file).Selected(true))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCanceled
		}
		return nil, err
	}

	return selected, nil
}
