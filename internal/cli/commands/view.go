package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// NewViewCommand creates the view command and its subcommands. Views are
// created through queries; the CLI only lists, shows, and drops them.
func NewViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Inspect and drop views",
	}

	cmd.AddCommand(newViewListCommand())
	cmd.AddCommand(newViewGetCommand())
	cmd.AddCommand(newViewDeleteCommand())

	return cmd
}

func newViewListCommand() *cobra.Command {
	var (
		schema string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List views",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			views, err := client.View.List(cmd.Context(), thanosql.ViewListInput{Schema: schema})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolveFormat(cmd, format) == "json" {
				return renderJSON(out, views)
			}
			for _, view := range views {
				_, _ = fmt.Fprintf(out, "%s.%s\n", view.Schema, view.Name)
			}
			_, _ = fmt.Fprintf(out, "(%d views)\n", len(views))
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Restrict the listing to one schema")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")

	return cmd
}

func newViewGetCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show one view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			view, err := client.View.Get(cmd.Context(), args[0], schema)
			if err != nil {
				return err
			}
			return renderJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the view (default: public)")

	return cmd
}

func newViewDeleteCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Drop a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			if err := client.View.Delete(cmd.Context(), args[0], schema); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted view %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the view (default: public)")

	return cmd
}
