// Package cli holds the memberimport commands. Running the binary without a
// command starts the HTTP server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/memberimport/internal/config"
	"github.com/mrlokans/memberimport/internal/entrypoint"
)

// ConfigLoader returns the configuration a command runs with.
type ConfigLoader func() *config.Config

// extraCommands are registered by files behind build tags.
var extraCommands []func(ConfigLoader) *cobra.Command

// NewRootCommand builds the command tree for the given version.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, config.NewConfig)
}

func newRootCommand(version string, load ConfigLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "memberimport",
		Short:         "Import members from spreadsheets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(load(), version)
		},
	}

	root.AddCommand(
		newServeCommand(version, load),
		newPreviewCommand(load),
		newImportCommand(load),
	)
	for _, extra := range extraCommands {
		root.AddCommand(extra(load))
	}
	return root
}

func newServeCommand(version string, load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(load(), version)
		},
	}
}

// withApp opens the application for a one-shot command.
func withApp(load ConfigLoader, fn func(app *entrypoint.App) error) (err error) {
	app, err := entrypoint.NewApp(load())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(app)
}
