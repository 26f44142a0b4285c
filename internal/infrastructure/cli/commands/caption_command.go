package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/application/session"
	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/infrastructure/cli/helpers"
	"github.com/doeshing/recogaize/internal/infrastructure/picker"
)

type captionOptions struct {
	pick    bool
	asJSON  bool
	timeout time.Duration
}

// captionReport is one line of --json output.
type captionReport struct {
	File       string `json:"file"`
	Caption    string `json:"caption,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewCaptionCommand creates the caption command
func NewCaptionCommand(container *app.Container) *cobra.Command {
	var opts captionOptions

	cmd := &cobra.Command{
		Use:   "caption [image]...",
		Short: "Generate captions for one or more images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaption(cmd, container, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.pick, "pick", false, "Choose images with a native file dialog")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-image timeout (default from config)")
	return cmd
}

// CaptionPaths captions paths with default options.
func CaptionPaths(cmd *cobra.Command, container *app.Container, paths []string) error {
	return runCaption(cmd, container, paths, captionOptions{})
}

// runCaption captions paths in order through a single session.
func runCaption(cmd *cobra.Command, container *app.Container, paths []string, opts captionOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.pick {
		if container.Picker == nil {
			return fmt.Errorf("file picker unavailable")
		}
		picked, err := container.Picker.PickImages(ctx)
		if errors.Is(err, picker.ErrCanceled) {
			fmt.Fprintln(out, MsgSelectionCanceled)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to pick images: %w", err)
		}
		paths = append(paths, picked...)
	}
	if len(paths) == 0 {
		return errors.New(ErrNoImages)
	}
	if container.Client == nil {
		return errors.New(ErrClientUnavailable)
	}

	sess := container.NewSession()
	showSpinner := !opts.asJSON && helpers.IsTerminal(cmd.ErrOrStderr())

	var reports []captionReport
	failed := 0
	for _, path := range paths {
		report := captionPath(ctx, sess, path, opts.timeout, showSpinner, cmd.ErrOrStderr())
		if report.Error != "" {
			failed++
		}
		reports = append(reports, report)
		if !opts.asJSON {
			renderReport(out, report)
		}
	}
	sess.Wait()

	if opts.asJSON {
		if err := writeCaptionJSON(out, reports, sess.History()); err != nil {
			return err
		}
	} else {
		RenderHistory(out, sess.History())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func captionPath(ctx context.Context, sess *session.Session, path string, timeout time.Duration, spin bool, spinOut io.Writer) captionReport {
	image, err := helpers.LoadImageFile(path)
	if err != nil {
		return captionReport{File: path, Error: err.Error()}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var spinner *helpers.Spinner
	if spin {
		spinner = helpers.NewSpinner(spinOut, "Generating caption for "+image.Name)
		spinner.Start()
	}
	outcome := <-sess.Submit(ctx, image)
	if spinner != nil {
		spinner.Stop()
	}

	return captionReport{
		File:       path,
		Caption:    outcome.State.Caption,
		Error:      outcome.State.Error,
		DurationMS: outcome.Duration.Milliseconds(),
	}
}

func writeCaptionJSON(out io.Writer, reports []captionReport, history []domain.CaptionResult) error {
	payload := struct {
		Results []captionReport        `json:"results"`
		History []domain.CaptionResult `json:"history"`
	}{Results: reports, History: history}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
