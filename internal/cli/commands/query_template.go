package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

func newQueryTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage stored query templates",
		Long: `Manage stored query templates.

A template is a reusable query string with {{ parameter }} markers. The
engine derives the parameter list from the markers when the template is
stored.`,
	}

	cmd.AddCommand(newQueryTemplateListCommand())
	cmd.AddCommand(newQueryTemplateGetCommand())
	cmd.AddCommand(newQueryTemplateCreateCommand())
	cmd.AddCommand(newQueryTemplateUpdateCommand())
	cmd.AddCommand(newQueryTemplateDeleteCommand())

	return cmd
}

func printQueryTemplate(cmd *cobra.Command, tpl *thanosql.QueryTemplate) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Name:       %s\n", tpl.Name)
	if len(tpl.Parameters) > 0 {
		_, _ = fmt.Fprintf(out, "Parameters: %v\n", tpl.Parameters)
	}
	_, _ = fmt.Fprintf(out, "Query:      %s\n", tpl.Query)
}

func newQueryTemplateListCommand() *cobra.Command {
	var (
		search  string
		orderBy string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored query templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			templates, err := client.Query.Template.List(cmd.Context(), thanosql.QueryTemplateListInput{
				Search:  search,
				OrderBy: orderBy,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolveFormat(cmd, format) == "json" {
				return renderJSON(out, templates)
			}
			for _, tpl := range templates {
				_, _ = fmt.Fprintf(out, "%-30s %s\n", tpl.Name, tpl.Query)
			}
			_, _ = fmt.Fprintf(out, "(%d templates)\n", len(templates))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by template name")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "Listing order: recent, name_asc, name_desc")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")

	return cmd
}

func newQueryTemplateGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show one stored query template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			tpl, err := client.Query.Template.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printQueryTemplate(cmd, tpl)
			return nil
		},
	}
}

func newQueryTemplateCreateCommand() *cobra.Command {
	var (
		query  string
		input  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Store a new query template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			if input != "" {
				content, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				query = string(content)
			}

			createInput := thanosql.QueryTemplateCreateInput{Name: args[0], Query: query}
			if dryRun {
				createInput.DryRun = thanosql.Bool(true)
			}

			tpl, err := client.Query.Template.Create(cmd.Context(), createInput)
			if err != nil {
				return err
			}
			if dryRun {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Dry run, template not stored")
			}
			printQueryTemplate(cmd, tpl)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Template query string")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read the template query from file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without storing")

	return cmd
}

func newQueryTemplateUpdateCommand() *cobra.Command {
	var (
		newName string
		query   string
	)

	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Rename a template or replace its query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			tpl, err := client.Query.Template.Update(cmd.Context(), args[0], thanosql.QueryTemplateUpdateInput{
				NewName: newName,
				Query:   query,
			})
			if err != nil {
				return err
			}
			printQueryTemplate(cmd, tpl)
			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "New template name")
	cmd.Flags().StringVarP(&query, "query", "q", "", "New template query string")

	return cmd
}

func newQueryTemplateDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored query template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			if err := client.Query.Template.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted query template %s\n", args[0])
			return nil
		},
	}
}
