// Package cli provides the command-line interface for the ThanoSQL client.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/internal/cli/commands"
	"github.com/smartmind-team/thanosql-go/internal/cli/config"
	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

var cfgFile string

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thanosql",
		Short: "ThanoSQL - Workspace Engine Client",
		Long: `thanosql talks to a ThanoSQL workspace engine over its HTTP API.

It executes queries, inspects query logs, and manages tables, views,
schemas, query templates, versioned table templates, and workspace files.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}

			client, err := thanosql.NewClient(
				thanosql.WithEngineURL(cfg.EngineURL),
				thanosql.WithToken(cfg.APIToken),
				thanosql.WithAPIVersion(cfg.APIVersion),
				thanosql.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			cmd.SetContext(commands.WithClient(cmd.Context(), client))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./thanosql.yaml)")
	rootCmd.PersistentFlags().String("engine-url", "", "Engine base URL (or THANOSQL_ENGINE_URL)")
	rootCmd.PersistentFlags().String("token", "", "API token (or THANOSQL_API_TOKEN)")
	rootCmd.PersistentFlags().String("api-version", "", "Engine API version (default: v1)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|md)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewTableCommand())
	rootCmd.AddCommand(commands.NewTableTemplateCommand())
	rootCmd.AddCommand(commands.NewViewCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewFileCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
