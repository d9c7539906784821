// Package prompt holds the interactive terminal surfaces: the conflict
// resolution prompt, the diff viewer it opens, and the file picker used
// when shelving.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"

	"github.com/danieljhkim/shelf/internal/fsops"
	"github.com/danieljhkim/shelf/internal/merge"
	"github.com/danieljhkim/shelf/internal/restore"
)

// choice is one answer of the conflict prompt.
type choice string

const (
	choiceDiff  choice = "diff"
	choiceApply choice = choice(restore.ResolutionApply)
	choiceKeep  choice = choice(restore.ResolutionKeep)
	choiceMark  choice = choice(restore.ResolutionMark)
)

// Policy asks the user how to resolve each conflicting file. Viewing the
// diff returns to the question afterwards.
type Policy struct {
	fs     fsops.FS
	logger zerolog.Logger

	ask  func(ctx context.Context, req *restore.ConflictRequest) (choice, error)
	view func(ctx context.Context, title, content string) error
}

// NewPolicy creates a terminal-backed Policy.
func NewPolicy(fs fsops.FS, logger zerolog.Logger) *Policy {
	return &Policy{
		fs:     fs,
		logger: logger,
		ask:    askResolution,
		view:   ShowDiff,
	}
}

// Resolve implements restore.Policy.
func (p *Policy) Resolve(ctx context.Context, req *restore.ConflictRequest) (restore.Resolution, error) {
	for {
		answer, err := p.ask(ctx, req)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return "", restore.ErrResolutionCanceled
			}
			return "", err
		}

		if answer != choiceDiff {
			return restore.ParseResolution(string(answer))
		}

		title := fmt.Sprintf("%s  (- current workspace, + shelf %s)", req.RelPath, req.EntryLabel)
		if err := p.view(ctx, title, p.renderDiff(req)); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			p.logger.Warn().Err(err).Str("path", req.RelPath).Msg("diff viewer failed")
		}
	}
}

func (p *Policy) renderDiff(req *restore.ConflictRequest) string {
	current, err := p.fs.ReadFile(req.CurrentPath)
	if err != nil {
		return fmt.Sprintf("failed to read %s: %v", req.CurrentPath, err)
	}
	shelved, err := p.fs.ReadFile(req.ShelfPath)
	if err != nil {
		return fmt.Sprintf("failed to read %s: %v", req.ShelfPath, err)
	}
	return RenderDiff(merge.DiffLines(string(current), string(shelved)), DefaultStyles())
}

func askResolution(ctx context.Context, req *restore.ConflictRequest) (choice, error) {
	answer := choiceDiff

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[choice]().
				Title(fmt.Sprintf("%s differs from shelf %s", req.RelPath, req.EntryLabel)).
				Options(
					huh.NewOption("Show diff", choiceDiff),
					huh.NewOption("Apply shelved version", choiceApply),
					huh.NewOption("Keep current file", choiceKeep),
					huh.NewOption("Insert conflict markers", choiceMark),
				).
				Value(&answer),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return answer, nil
}
