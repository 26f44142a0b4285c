package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// Builder constructs the container once flags are parsed.
type Builder func(cmd *cobra.Command, opts app.Options) (*app.Container, error)

// DefaultBuilder loads configuration from disk.
func DefaultBuilder(cmd *cobra.Command, opts app.Options) (*app.Container, error) {
	return app.BuildContainer(cmd.Context(), opts)
}

// NewRootCmd wires the cobra root command. The container is filled in before
// any subcommand runs so global flags can influence it.
func NewRootCmd(opts Options, build Builder) *cobra.Command {
	if build == nil {
		build = DefaultBuilder
	}
	container := &app.Container{}
	appOpts := app.Options{Verbose: opts.Verbose}

	root := &cobra.Command{
		Use:   "recogaize [image]...",
		Short: "recogaize - image caption client",
		Long:  "recogaize uploads images to a captioning service and keeps a short history of the results.",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsContainer(cmd) {
				return nil
			}
			built, err := build(cmd, appOpts)
			if err != nil {
				return err
			}
			*container = *built
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return container.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return commands.CaptionPaths(cmd, container, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&appOpts.ConfigPath, "config", "", "Config file (default ~/.recogaize/config.yaml)")
	flags.StringVar(&appOpts.APIURL, "api-url", "", "Captioning API base URL")
	flags.StringVar(&appOpts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVarP(&appOpts.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		commands.NewCaptionCommand(container),
		commands.NewHealthCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewCacheCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewServeCommand(container),
		commands.NewVersionCommand(),
	)
	return root
}

func needsContainer(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}
