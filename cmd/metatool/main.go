// Package main provides the metatool command line interface.
//
// metatool validates bibliographic metadata documents: well-formedness checks
// on individual identifiers, lookups against external authorities and
// cross-referencing of the local values against the authority records.
package main

import (
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/metatool-io/metatool/internal/api"
	"github.com/metatool-io/metatool/internal/authority"
	"github.com/metatool-io/metatool/internal/config"
	"github.com/metatool-io/metatool/internal/engine"
	"github.com/metatool-io/metatool/internal/plugins"
)

const (
	version = "1.0.0-dev"
	name    = "metatool"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         "Validate and cross-reference bibliographic metadata",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(
		newValidateCommand(),
		newServeCommand(),
		newVersionCommand(),
	)

	return cmd
}

func newValidateCommand() *cobra.Command {
	var (
		modeltype string
		offline   bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a metadata document and print the results as JSON",
		Long: `Validate reads a metadata document (from the given file, or stdin when
no file is named), parses it with the generator registered for the model
type, runs every field through the validation pipeline and prints the
resulting FieldSets as a JSON array on stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.LoadOptionsFromEnv()
			if offline {
				opts.Offline = true
			}

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: config.GetEnvLogLevel("METATOOL_LOG_LEVEL", slog.LevelWarn),
			}))

			input := cmd.InOrStdin()

			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open document: %w", err)
				}
				defer file.Close()

				input = file
			}

			client := authority.NewClient(nil, opts)
			eng := engine.New(plugins.Default(client), logger)

			sets, err := eng.ValidateModel(cmd.Context(), modeltype, input, opts)
			if err != nil {
				return fmt.Errorf("validate document: %w", err)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")

			if err := encoder.Encode(sets); err != nil {
				return fmt.Errorf("encode results: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&modeltype, "modeltype", "t", "ukriss_outputs", "model type of the input document")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip authority lookups, format checks only")

	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the metatool HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			opts := config.LoadOptionsFromEnv()
			serverConfig := api.LoadServerConfig()

			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: serverConfig.LogLevel,
			}))

			logger.Info("Starting metatool service",
				slog.String("service", name),
				slog.String("version", version),
				slog.String("host", serverConfig.Host),
				slog.Int("port", serverConfig.Port),
				slog.Bool("offline", opts.Offline),
			)

			client := authority.NewClient(nil, opts)
			eng := engine.New(plugins.Default(client), logger)

			return api.NewServer(serverConfig, eng, opts, version).Start()
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", name, version)
		},
	}
}
