package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command and its subcommands. Schemas
// can only be listed and created through the API; dropping one is a query.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List and create schemas",
	}

	cmd.AddCommand(newSchemaListCommand())
	cmd.AddCommand(newSchemaCreateCommand())

	return cmd
}

func newSchemaListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			schemas, err := client.Schema.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolveFormat(cmd, format) == "json" {
				return renderJSON(out, schemas)
			}
			for _, schema := range schemas {
				_, _ = fmt.Fprintln(out, schema.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")

	return cmd
}

func newSchemaCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Schema.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
}
