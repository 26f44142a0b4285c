package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/domain"
)

// NewHealthCommand creates the health command
func NewHealthCommand(container *app.Container) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the captioning service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Client == nil {
				return errors.New(ErrClientUnavailable)
			}
			resp, err := container.Client.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			return displayHealth(cmd.OutOrStdout(), resp, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "json", false, "Print the raw health body")
	return cmd
}

func displayHealth(out io.Writer, resp domain.HealthResponse, raw bool) error {
	if raw {
		body := resp.Raw
		if len(body) == 0 {
			body, _ = json.Marshal(resp)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			return fmt.Errorf("failed to format health body: %w", err)
		}
		fmt.Fprintln(out, pretty.String())
		return nil
	}

	status := resp.Status
	if status == "" {
		status = "unknown"
	}
	fmt.Fprintf(out, "Status: %s\n", status)
	fmt.Fprintf(out, "Model loaded: %t\n", resp.ModelLoaded)
	return nil
}
